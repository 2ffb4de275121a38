// Package statussync applies order snapshots arriving from the fulfillment
// domain. Delivery is at-most-once and best-effort: nothing this handler
// does may fail the consumer loop, so every error ends in a log line and a
// committed offset.
package statussync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/savoria/order-service/internal/kafka"
	"github.com/savoria/order-service/internal/orders"
	"github.com/savoria/order-service/internal/redisx"
)

const dedupScope = "statussync"

type Service struct {
	Orders   orders.OrderStore
	Redis    *redis.Client
	Producer orders.Publisher
	Name     string
	Log      *zap.Logger
}

// HandleFulfillmentEvent is the consumer handler for the inbound topic.
// It always returns nil: a snapshot we cannot apply is dropped, not retried.
func (s *Service) HandleFulfillmentEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Log.Warn("undecodable fulfillment message", zap.Error(err))
		return nil
	}

	// Dedup on event id. Redis being down just means we lose dedup, not
	// processing.
	if env.EventID != "" && s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, dedupScope, env.EventID)
		if seen, err := redisx.Exists(ctx, s.Redis, dkey); err == nil && seen {
			return nil
		}
		_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	}

	snap, err := kafkax.UnwrapPayload[orders.OrderSnapshot](env.Payload)
	if err != nil {
		s.Log.Warn("undecodable order snapshot",
			zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	if snap.OrderID == "" || !snap.Status.Valid() {
		s.Log.Warn("order snapshot missing id or status",
			zap.String("event_id", env.EventID),
			zap.String("order_id", snap.OrderID))
		return nil
	}

	s.apply(ctx, snap)
	return nil
}

// apply writes the snapshot over the stored order only while that order is
// still active. Terminal or unknown orders drop the snapshot silently: a
// completion racing a cancellation must not resurrect the order.
func (s *Service) apply(ctx context.Context, snap orders.OrderSnapshot) {
	o := snap.Order()
	applied, err := s.Orders.ApplyActive(ctx, o)
	if err != nil {
		s.Log.Error("apply fulfillment snapshot failed",
			zap.String("order_id", o.ID), zap.Error(err))
		return
	}
	if !applied {
		s.Log.Debug("snapshot dropped, order terminal or unknown",
			zap.String("order_id", o.ID),
			zap.String("status", string(o.Status)))
		return
	}

	s.republish(o)
	s.refreshCache(ctx, o)
	s.Log.Info("order status synced",
		zap.String("order_id", o.ID),
		zap.String("status", string(o.Status)))
}

func (s *Service) republish(o *orders.Order) {
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Name,
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(orders.Snapshot(o)),
	}
	s.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) refreshCache(ctx context.Context, o *orders.Order) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	body, _ := json.Marshal(map[string]any{"status": o.Status})
	_ = s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}
