package commands_test

import (
	"context"
	"sync"
	"time"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
)

// fakeOrderRepository is an in-memory store with the same per-id contract as
// the real repository. Handlers re-read aggregates under the per-order lock,
// so the fake must hand out independent snapshots like persistence would.
type fakeOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func newFakeOrderRepository() *fakeOrderRepository {
	return &fakeOrderRepository{orders: make(map[string]*order.Order)}
}

func (f *fakeOrderRepository) snapshot(o *order.Order) *order.Order {
	restored, err := order.RestoreOrder(
		o.ID(), o.Fulfillment(), o.Customer(), o.DeliveryAddress(), o.Items(), o.Totals(),
		o.Status(), o.PosProvider(), o.PosOrderID(),
		o.CourierProvider(), o.CourierJobID(), o.TrackingURL(),
		o.Timestamps(), o.PlacedAt(), o.ETA(),
	)
	if err != nil {
		panic(err)
	}
	return restored
}

func (f *fakeOrderRepository) Add(_ context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID().String()] = f.snapshot(o)
	return nil
}

func (f *fakeOrderRepository) Update(_ context.Context, o *order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[o.ID().String()]; !ok {
		return errs.NewObjectNotFoundError("order", o.ID().String())
	}
	f.orders[o.ID().String()] = f.snapshot(o)
	return nil
}

func (f *fakeOrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id.String()]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return f.snapshot(o), nil
}

func (f *fakeOrderRepository) GetByPosOrderID(_ context.Context, provider, externalOrderID string) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.PosProvider() == provider && o.PosOrderID() == externalOrderID {
			return f.snapshot(o), nil
		}
	}
	return nil, errs.NewObjectNotFoundError("order", externalOrderID)
}

func (f *fakeOrderRepository) GetByCourierJobID(_ context.Context, provider, jobID string) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.CourierProvider() == provider && o.CourierJobID() == jobID {
			return f.snapshot(o), nil
		}
	}
	return nil, errs.NewObjectNotFoundError("order", jobID)
}

func (f *fakeOrderRepository) GetAwaitingDispatch(_ context.Context) ([]*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*order.Order
	for _, o := range f.orders {
		if o.NeedsCourierDispatch() {
			result = append(result, f.snapshot(o))
		}
	}
	return result, nil
}

func (f *fakeOrderRepository) GetActive(_ context.Context) ([]*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*order.Order
	for _, o := range f.orders {
		if !o.Status().IsTerminal() {
			result = append(result, f.snapshot(o))
		}
	}
	return result, nil
}

// recordingPublisher collects published snapshots.
type recordingPublisher struct {
	mu        sync.Mutex
	published []*order.Order
}

func (p *recordingPublisher) Publish(o *order.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, o)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func (p *recordingPublisher) at(i int) *order.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.published[i]
}

func (p *recordingPublisher) last() *order.Order {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.published) == 0 {
		return nil
	}
	return p.published[len(p.published)-1]
}

type MockPosAdapter struct {
	mock.Mock
	name string

	// createDone, when set, receives a signal after every CreateOrder call
	// so tests can wait for the detached submission goroutine.
	createDone chan struct{}
}

func (m *MockPosAdapter) Name() string { return m.name }

func (m *MockPosAdapter) CreateOrder(ctx context.Context, o *order.Order) (string, error) {
	args := m.Called(ctx, o)
	if m.createDone != nil {
		select {
		case m.createDone <- struct{}{}:
		default:
		}
	}
	return args.String(0), args.Error(1)
}

func (m *MockPosAdapter) UpdateOrder(ctx context.Context, externalOrderID string, patch ports.OrderPatch) error {
	args := m.Called(ctx, externalOrderID, patch)
	return args.Error(0)
}

func (m *MockPosAdapter) ParseWebhook(payload []byte) (ports.WebhookEvent, error) {
	args := m.Called(payload)
	return args.Get(0).(ports.WebhookEvent), args.Error(1)
}

func (m *MockPosAdapter) MapToOrderStatus(event ports.WebhookEvent) order.Status {
	return event.MappedStatus
}

type MockCourierAdapter struct {
	mock.Mock
	name string

	// requestDelay emulates provider latency inside the dispatch critical
	// section for the concurrency tests.
	requestDelay time.Duration
}

func (m *MockCourierAdapter) Name() string { return m.name }

func (m *MockCourierAdapter) QuoteDelivery(ctx context.Context, pickupAddress, dropoffAddress string) (ports.DeliveryQuote, error) {
	args := m.Called(ctx, pickupAddress, dropoffAddress)
	return args.Get(0).(ports.DeliveryQuote), args.Error(1)
}

func (m *MockCourierAdapter) RequestDelivery(ctx context.Context, o *order.Order, restaurant ports.RestaurantInfo) (ports.CourierJob, error) {
	if m.requestDelay > 0 {
		time.Sleep(m.requestDelay)
	}
	args := m.Called(ctx, o, restaurant)
	return args.Get(0).(ports.CourierJob), args.Error(1)
}

func (m *MockCourierAdapter) UpdateOrder(ctx context.Context, jobID string, patch ports.OrderPatch) error {
	args := m.Called(ctx, jobID, patch)
	return args.Error(0)
}

func (m *MockCourierAdapter) ParseWebhook(payload []byte) (ports.WebhookEvent, error) {
	args := m.Called(payload)
	return args.Get(0).(ports.WebhookEvent), args.Error(1)
}

func (m *MockCourierAdapter) MapToOrderStatus(event ports.WebhookEvent) order.Status {
	return event.MappedStatus
}

// stub registries resolve a single adapter, mirroring the real registries'
// not-found behavior.
type stubPosRegistry struct {
	adapter ports.PosAdapter
}

func (s stubPosRegistry) Get(name string) (ports.PosAdapter, error) {
	if s.adapter == nil || s.adapter.Name() != name {
		return nil, errs.NewObjectNotFoundError("pos provider", name)
	}
	return s.adapter, nil
}

type stubCourierRegistry struct {
	adapter ports.CourierAdapter
}

func (s stubCourierRegistry) Get(name string) (ports.CourierAdapter, error) {
	if s.adapter == nil || s.adapter.Name() != name {
		return nil, errs.NewObjectNotFoundError("courier provider", name)
	}
	return s.adapter, nil
}
