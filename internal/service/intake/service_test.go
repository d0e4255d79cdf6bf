package intake_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
	"github.com/vladislavdragonenkov/order-intake/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/order-intake/internal/service/intake"
	"github.com/vladislavdragonenkov/order-intake/internal/service/sequence"
	"github.com/vladislavdragonenkov/order-intake/internal/storage/memory"
)

var fixedNow = time.Date(2024, 11, 25, 10, 0, 0, 0, time.UTC)

// flakyStore оборачивает in-memory хранилище и проваливает заданное
// число первых Create.
type flakyStore struct {
	mu        sync.Mutex
	inner     domain.RecordStore
	failCount int
	createCnt int
}

func (s *flakyStore) Create(ctx context.Context, order domain.Order) error {
	s.mu.Lock()
	s.createCnt++
	fail := s.createCnt <= s.failCount
	s.mu.Unlock()

	if fail {
		return errors.New("transient write failure")
	}
	return s.inner.Create(ctx, order)
}

func (s *flakyStore) Get(ctx context.Context, number string) (domain.Order, error) {
	return s.inner.Get(ctx, number)
}

func (s *flakyStore) ListNumbers(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.ListNumbers(ctx, prefix)
}

func (s *flakyStore) creates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCnt
}

type stubPublisher struct {
	mu     sync.Mutex
	events []*kafka.OrderEvent
	err    error
}

func (p *stubPublisher) PublishOrderCreated(event *kafka.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func payload() intake.Payload {
	return intake.Payload{
		Name:        "Budi",
		Email:       "budi@example.com",
		Address:     "Jakarta",
		PaymentType: "transfer",
		Items: []domain.OrderItem{
			{ProductID: 1, Name: "keyboard", UnitPrice: decimal.NewFromInt(10000), Qty: 2},
			{ProductID: 2, Name: "mouse", UnitPrice: decimal.NewFromInt(5000), Qty: 1},
		},
	}
}

func newService(store domain.RecordStore, publisher intake.EventPublisher, logger *log.Entry) *intake.Service {
	cache := memory.NewSequenceCache()
	scanner := sequence.NewScanner(store, logger)
	gen := sequence.NewGenerator(cache, scanner, time.UTC, logger).
		WithClock(func() time.Time { return fixedNow })
	return intake.NewService(gen, store, publisher, nil, logger).
		WithRetryDelay(time.Millisecond)
}

func TestService_ProcessSuccess(t *testing.T) {
	store := memory.NewRecordStore()
	publisher := &stubPublisher{}
	svc := newService(store, publisher, nil)

	number, err := svc.Process(context.Background(), 1, payload())
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	want := domain.NewScope(1, fixedNow).OrderNumber(1)
	if number != want {
		t.Fatalf("expected %s, got %s", want, number)
	}

	stored, err := store.Get(context.Background(), number)
	if err != nil {
		t.Fatalf("stored order not found: %v", err)
	}
	if !stored.Total.Equal(decimal.NewFromInt(25000)) {
		t.Fatalf("expected total 25000, got %s", stored.Total)
	}
	if stored.Status != domain.OrderStatusReceived {
		t.Fatalf("expected status %s, got %s", domain.OrderStatusReceived, stored.Status)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(publisher.events))
	}
	if publisher.events[0].OrderNumber != number {
		t.Fatalf("event carries wrong number: %s", publisher.events[0].OrderNumber)
	}
}

func TestService_ProcessInvalidPayload(t *testing.T) {
	store := memory.NewRecordStore()
	svc := newService(store, nil, nil)

	p := payload()
	p.Items = nil

	_, err := svc.Process(context.Background(), 1, p)
	if !domain.IsInvalidOrderData(err) {
		t.Fatalf("expected invalid order data, got %v", err)
	}

	// Ничего не должно быть записано.
	numbers, listErr := store.ListNumbers(context.Background(), "ORDER-")
	if listErr != nil {
		t.Fatalf("list failed: %v", listErr)
	}
	if len(numbers) != 0 {
		t.Fatalf("expected empty store, got %v", numbers)
	}
}

func TestService_PersistRecoversWithinRetryBudget(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	store := &flakyStore{inner: memory.NewRecordStore(), failCount: 2}
	svc := newService(store, nil, logger.WithField("component", "intake-service"))

	number, err := svc.Process(context.Background(), 1, payload())
	if err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if store.creates() != 3 {
		t.Fatalf("expected 3 create attempts, got %d", store.creates())
	}

	if _, getErr := store.Get(context.Background(), number); getErr != nil {
		t.Fatalf("order should be persisted: %v", getErr)
	}

	// Ровно две неудачные попытки должны попасть в лог.
	var failedAttempts int
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.WarnLevel && entry.Message == "order persist attempt failed" {
			failedAttempts++
		}
	}
	if failedAttempts != 2 {
		t.Fatalf("expected 2 logged failed attempts, got %d", failedAttempts)
	}
}

func TestService_PersistExhaustsRetriesLeavesGap(t *testing.T) {
	store := &flakyStore{inner: memory.NewRecordStore(), failCount: 3}
	svc := newService(store, nil, nil)

	_, err := svc.Process(context.Background(), 1, payload())

	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if pe.Attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", pe.Attempts)
	}

	// Счётчик не откатывается: следующий заказ получает следующий номер,
	// в нумерации остаётся осознанный пропуск вместо риска дубликата.
	number, err := svc.Process(context.Background(), 1, payload())
	if err != nil {
		t.Fatalf("second process failed: %v", err)
	}
	want := domain.NewScope(1, fixedNow).OrderNumber(2)
	if number != want {
		t.Fatalf("expected %s after gap, got %s", want, number)
	}
}

// occupiedStore всегда отвечает, что номер занят.
type occupiedStore struct {
	domain.RecordStore
	mu      sync.Mutex
	creates int
}

func (s *occupiedStore) Create(context.Context, domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	return domain.ErrOrderExists
}

func TestService_CollisionIsNotRetried(t *testing.T) {
	store := &occupiedStore{RecordStore: memory.NewRecordStore()}
	svc := newService(store, nil, nil)

	_, err := svc.Process(context.Background(), 1, payload())

	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if !errors.Is(err, domain.ErrOrderExists) {
		t.Fatalf("expected ErrOrderExists cause, got %v", pe.Err)
	}
	if pe.Attempts != 1 {
		t.Fatalf("collision must not be retried, got %d attempts", pe.Attempts)
	}
	if store.creates != 1 {
		t.Fatalf("expected single create call, got %d", store.creates)
	}
}

func TestService_PublishFailureDoesNotFailRequest(t *testing.T) {
	store := memory.NewRecordStore()
	publisher := &stubPublisher{err: errors.New("broker down")}
	svc := newService(store, publisher, nil)

	number, err := svc.Process(context.Background(), 1, payload())
	if err != nil {
		t.Fatalf("publish failure must not fail the request: %v", err)
	}
	if _, getErr := store.Get(context.Background(), number); getErr != nil {
		t.Fatalf("order should be persisted: %v", getErr)
	}
}
