package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/savoria/order-service/internal/auth"
	"github.com/savoria/order-service/internal/catalog"
	kafkax "github.com/savoria/order-service/internal/kafka"
)

// Catalog is the synchronous item lookup the orchestrator validates against.
type Catalog interface {
	GetItem(ctx context.Context, itemID, token string) (*catalog.Item, error)
}

// Publisher is the outbound side of the event channel. Publishing is
// fire-and-forget; failures are logged by the producer loop, never surfaced
// here.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service is the order orchestrator. Every multi-step operation is a saga:
// the stores and the catalog share no transaction, so completed steps
// register compensating deletes that run in reverse when a later step fails.
type Service struct {
	orders   OrderStore
	items    ItemStore
	catalog  Catalog
	producer Publisher
	name     string
	log      *zap.Logger

	// now is swappable so the availability-window check is testable.
	now func() time.Time
}

func NewService(orders OrderStore, items ItemStore, cat Catalog, producer Publisher, name string, log *zap.Logger) *Service {
	return &Service{
		orders:   orders,
		items:    items,
		catalog:  cat,
		producer: producer,
		name:     name,
		log:      log,
		now:      time.Now,
	}
}

// PlaceOrder creates an order and its validated items, or leaves no active
// order behind. Steps: persist a provisional CREATED row, validate and
// persist each line against the catalog, then publish. Any line failure
// rolls back the items persisted so far and the provisional order itself.
func (s *Service) PlaceOrder(ctx context.Context, customerID, restaurantID string, lines []ItemInput) (*Order, error) {
	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return nil, Auth(CodeCredentialMissing, "missing credential")
	}

	saved, err := s.orders.Save(ctx, &Order{
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Status:       StatusCreated,
	})
	if err != nil {
		return nil, Internal("save order", err)
	}

	sg := newSaga(s.log)
	sg.add("delete provisional order", func(ctx context.Context) error {
		return s.orders.Delete(ctx, saved.ID)
	})

	for _, line := range lines {
		item, err := s.validateLine(ctx, token, saved, line)
		if err != nil {
			return nil, sg.rollback(ctx, err)
		}
		persisted, err := s.items.Save(ctx, item)
		if err != nil {
			return nil, sg.rollback(ctx, Internal("save item", err))
		}
		itemID := persisted.ID
		sg.add("delete item", func(ctx context.Context) error {
			return s.items.DeleteByID(ctx, itemID)
		})
	}

	s.publish(EventOrderPlaced, saved)
	s.log.Info("order placed",
		zap.String("order_id", saved.ID),
		zap.String("customer_id", customerID),
		zap.Int("items", len(lines)))
	return saved, nil
}

// CancelOrder moves the customer's active order to CANCELLED. The active
// check and the write are one conditional store operation, so a concurrent
// terminal transition cannot slip in between. false means there was nothing
// active to cancel; that is a normal outcome.
func (s *Service) CancelOrder(ctx context.Context, orderID, customerID string) (bool, error) {
	ok, err := s.orders.UpdateStatusActive(ctx, orderID, customerID, StatusCancelled)
	if err != nil {
		return false, Internal("cancel order", err)
	}
	if ok {
		s.log.Info("order cancelled", zap.String("order_id", orderID))
	}
	return ok, nil
}

// UpdateOrder replaces the active order's item set wholesale. The stored
// restaurant is immutable and checked before any catalog call. Pre-existing
// items are only deleted after every new line has validated and persisted,
// so a failed update never touches the original committed state.
func (s *Service) UpdateOrder(ctx context.Context, orderID, customerID, restaurantID string, lines []ItemInput) (*UpdateResult, error) {
	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return nil, Auth(CodeCredentialMissing, "missing credential")
	}

	existing, err := s.orders.FindActiveByCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, Internal("find order", err)
	}
	if existing == nil {
		return nil, Validation(CodeOrderNotFound, "update failed, respective order not found")
	}
	if restaurantID != existing.RestaurantID {
		return nil, Validation(CodeRestaurantImmutable, "update failed, cannot change restaurants while updating order")
	}

	prevItems, err := s.items.FindByOrderID(ctx, existing.ID)
	if err != nil {
		return nil, Internal("load existing items", err)
	}

	sg := newSaga(s.log)
	newItems := make([]OrderedItem, 0, len(lines))
	for _, line := range lines {
		item, err := s.validateLine(ctx, token, existing, line)
		if err != nil {
			return nil, sg.rollback(ctx, err)
		}
		persisted, err := s.items.Save(ctx, item)
		if err != nil {
			return nil, sg.rollback(ctx, Internal("save item", err))
		}
		itemID := persisted.ID
		sg.add("delete item", func(ctx context.Context) error {
			return s.items.DeleteByID(ctx, itemID)
		})
		newItems = append(newItems, *persisted)
	}

	// All new lines are in; now retire the old set. Each delete registers a
	// re-insert so a later failure still restores the pre-call state.
	for i := range prevItems {
		old := prevItems[i]
		if err := s.items.DeleteByID(ctx, old.ID); err != nil {
			return nil, sg.rollback(ctx, Internal("delete replaced item", err))
		}
		sg.add("restore replaced item", func(ctx context.Context) error {
			_, err := s.items.Save(ctx, &old)
			return err
		})
	}

	saved, err := s.orders.Save(ctx, &Order{
		ID:           existing.ID,
		CustomerID:   customerID,
		RestaurantID: existing.RestaurantID,
		Status:       StatusUpdated,
		CreatedAt:    existing.CreatedAt,
	})
	if err != nil {
		return nil, sg.rollback(ctx, Internal("save order", err))
	}

	s.publish(EventOrderUpdated, saved)
	s.log.Info("order updated",
		zap.String("order_id", saved.ID),
		zap.Int("items", len(newItems)))
	return &UpdateResult{
		OrderID:      saved.ID,
		CustomerID:   saved.CustomerID,
		Status:       saved.Status,
		RestaurantID: saved.RestaurantID,
		Items:        newItems,
	}, nil
}

// GetOrderByID returns the order regardless of status, or nil when absent.
func (s *Service) GetOrderByID(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, Internal("find order", err)
	}
	return o, nil
}

// GetOrderAmountByOrderID sums the unit prices of the order's items. An
// unknown order is a validation failure; a sum of zero is a legitimate
// result.
func (s *Service) GetOrderAmountByOrderID(ctx context.Context, orderID string) (float64, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return 0, Internal("find order", err)
	}
	if o == nil {
		return 0, Validation(CodeOrderNotFound, "order not found")
	}
	sum, err := s.items.SumPriceByOrderID(ctx, orderID)
	if err != nil {
		return 0, Internal("sum item prices", err)
	}
	return sum, nil
}

// validateLine runs the per-line checks in order: quantity, catalog
// existence, restaurant ownership, availability window. It returns the item
// ready to persist, priced from the catalog snapshot.
func (s *Service) validateLine(ctx context.Context, token string, o *Order, line ItemInput) (*OrderedItem, error) {
	if line.Quantity <= 0 {
		return nil, Validation(CodeInvalidQuantity, "quantity of item cannot be 0")
	}

	item, err := s.catalog.GetItem(ctx, line.ItemID, token)
	if errors.Is(err, catalog.ErrUnauthorized) {
		return nil, Auth(CodeCredentialRejected, "catalog rejected credential")
	}
	if err != nil {
		return nil, Internal("catalog lookup", err)
	}
	if item == nil {
		return nil, Validation(CodeItemNotFound, "item not found")
	}
	if item.RestaurantID != o.RestaurantID {
		return nil, Validation(CodeItemWrongRestaurant, "item not in given restaurant")
	}
	hour := s.now().Hour()
	if hour < item.ActiveFrom || hour > item.ActiveTill {
		return nil, Validation(CodeItemUnavailable, "item currently unavailable in given restaurant")
	}

	return &OrderedItem{
		OrderID:  o.ID,
		ItemID:   line.ItemID,
		Name:     item.Name,
		Quantity: line.Quantity,
		Price:    item.Price,
	}, nil
}

func (s *Service) publish(eventType string, o *Order) {
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.name,
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(Snapshot(o)),
	}
	s.producer.Publish(PartitionKey(o.ID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
