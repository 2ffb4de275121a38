package statussync

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	kafkax "github.com/savoria/order-service/internal/kafka"
	"github.com/savoria/order-service/internal/orders"
)

// applyStore implements just enough of orders.OrderStore for the handler.
type applyStore struct {
	mu   sync.Mutex
	rows map[string]*orders.Order
}

func newApplyStore(seed ...*orders.Order) *applyStore {
	s := &applyStore{rows: map[string]*orders.Order{}}
	for _, o := range seed {
		cp := *o
		s.rows[cp.ID] = &cp
	}
	return s
}

func (s *applyStore) ApplyActive(ctx context.Context, in *orders.Order) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.rows[in.ID]
	if !ok || o.Status.Terminal() {
		return false, nil
	}
	o.Status = in.Status
	o.CustomerID = in.CustomerID
	o.RestaurantID = in.RestaurantID
	o.UpdatedAt = time.Now()
	return true, nil
}

func (s *applyStore) Save(ctx context.Context, o *orders.Order) (*orders.Order, error) {
	panic("not used")
}
func (s *applyStore) Delete(ctx context.Context, id string) error { panic("not used") }
func (s *applyStore) FindByID(ctx context.Context, id string) (*orders.Order, error) {
	panic("not used")
}
func (s *applyStore) FindActive(ctx context.Context, id string) (*orders.Order, error) {
	panic("not used")
}
func (s *applyStore) FindActiveByCustomer(ctx context.Context, id, customerID string) (*orders.Order, error) {
	panic("not used")
}
func (s *applyStore) UpdateStatusActive(ctx context.Context, id, customerID string, to orders.Status) (bool, error) {
	panic("not used")
}

type recordingPublisher struct {
	mu     sync.Mutex
	values [][]byte
}

func (p *recordingPublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = append(p.values, value)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.values)
}

func fulfillmentMessage(t *testing.T, o *orders.Order) kafkago.Message {
	t.Helper()
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "fulfillment",
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(orders.Snapshot(o)),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestAppliesSnapshotToActiveOrder(t *testing.T) {
	active := &orders.Order{ID: "o1", CustomerID: "c1", RestaurantID: "r1", Status: orders.StatusCreated}
	store := newApplyStore(active)
	pub := &recordingPublisher{}
	svc := &Service{Orders: store, Producer: pub, Name: "test", Log: zap.NewNop()}

	incoming := *active
	incoming.Status = orders.StatusCompleted
	err := svc.HandleFulfillmentEvent(context.Background(), fulfillmentMessage(t, &incoming))
	require.NoError(t, err)

	assert.Equal(t, orders.StatusCompleted, store.rows["o1"].Status)
	require.Equal(t, 1, pub.count())

	// the re-published envelope carries the applied snapshot
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(pub.values[0], &env))
	assert.Equal(t, orders.EventOrderStatusChanged, env.EventType)
	snap, err := kafkax.UnwrapPayload[orders.OrderSnapshot](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "o1", snap.OrderID)
	assert.Equal(t, orders.StatusCompleted, snap.Status)
}

func TestDropsSnapshotForTerminalOrder(t *testing.T) {
	cancelled := &orders.Order{ID: "o1", CustomerID: "c1", RestaurantID: "r1", Status: orders.StatusCancelled}
	store := newApplyStore(cancelled)
	pub := &recordingPublisher{}
	svc := &Service{Orders: store, Producer: pub, Name: "test", Log: zap.NewNop()}

	incoming := *cancelled
	incoming.Status = orders.StatusCompleted
	err := svc.HandleFulfillmentEvent(context.Background(), fulfillmentMessage(t, &incoming))
	require.NoError(t, err)

	// stored status untouched and nothing re-published
	assert.Equal(t, orders.StatusCancelled, store.rows["o1"].Status)
	assert.Zero(t, pub.count())
}

func TestDropsSnapshotForUnknownOrder(t *testing.T) {
	store := newApplyStore()
	pub := &recordingPublisher{}
	svc := &Service{Orders: store, Producer: pub, Name: "test", Log: zap.NewNop()}

	ghost := &orders.Order{ID: "nope", Status: orders.StatusCompleted}
	err := svc.HandleFulfillmentEvent(context.Background(), fulfillmentMessage(t, ghost))
	require.NoError(t, err)
	assert.Zero(t, pub.count())
}

func TestSwallowsUndecodableInput(t *testing.T) {
	store := newApplyStore()
	pub := &recordingPublisher{}
	svc := &Service{Orders: store, Producer: pub, Name: "test", Log: zap.NewNop()}

	err := svc.HandleFulfillmentEvent(context.Background(), kafkago.Message{Value: []byte("not json")})
	require.NoError(t, err)

	// envelope decodes but the payload does not
	env := orders.Envelope{EventID: uuid.NewString(), Payload: []byte(`"scalar"`)}
	err = svc.HandleFulfillmentEvent(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)})
	require.NoError(t, err)

	// snapshot without an order id
	env = orders.Envelope{EventID: uuid.NewString(), Payload: kafkax.MustMarshal(orders.OrderSnapshot{Status: orders.StatusCompleted})}
	err = svc.HandleFulfillmentEvent(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)})
	require.NoError(t, err)
	assert.Zero(t, pub.count())
}
