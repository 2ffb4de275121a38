// Package catalog talks to the restaurant catalog service. The catalog owns
// menu items; this service only reads one item at a time during validation.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Item is the catalog's view of a menu item at lookup time. ActiveFrom and
// ActiveTill are hours of day, both ends inclusive; windows do not cross
// midnight.
type Item struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	RestaurantID string  `json:"restaurant_id"`
	ActiveFrom   int     `json:"active_from"`
	ActiveTill   int     `json:"active_till"`
}

// ErrUnauthorized means the catalog rejected the forwarded credential.
var ErrUnauthorized = errors.New("catalog: unauthorized")

type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: baseURL,
	}
}

// GetItem fetches one item by id, forwarding the caller's bearer token.
// A missing item is (nil, nil), not an error.
func (c *Client) GetItem(ctx context.Context, itemID, token string) (*Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/item/%s", c.BaseURL, itemID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound, http.StatusNoContent:
		return nil, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("catalog: item lookup: %s", res.Status)
	}

	var it Item
	if err := json.NewDecoder(res.Body).Decode(&it); err != nil {
		return nil, fmt.Errorf("catalog: decode item: %w", err)
	}
	return &it, nil
}
