package intake

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
	"github.com/vladislavdragonenkov/order-intake/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/order-intake/internal/metrics"
	"github.com/vladislavdragonenkov/order-intake/internal/service/sequence"
)

const (
	// persistAttempts — сколько раз всего пробуем записать заказ в хранилище.
	persistAttempts = 3

	defaultRetryDelay = 100 * time.Millisecond
)

// Payload — поля заказа, переданные вызывающей стороной.
// Валидация обязательности полей остаётся на слое запроса;
// здесь проверяются только позиции заказа.
type Payload struct {
	Name        string
	Email       string
	Address     string
	PaymentType string
	Items       []domain.OrderItem
}

// EventPublisher публикует события о принятых заказах. Публикация
// best-effort: её сбой не влияет на результат запроса.
type EventPublisher interface {
	PublishOrderCreated(event *kafka.OrderEvent) error
}

// Service принимает заказ: выдаёт номер, собирает запись и сохраняет её
// с ограниченным числом повторов.
type Service struct {
	sequences  *sequence.Generator
	store      domain.RecordStore
	publisher  EventPublisher
	metrics    *metrics.IntakeMetrics
	logger     *log.Entry
	retryDelay time.Duration
}

// NewService конструирует сервис приёма заказов.
// publisher и intakeMetrics опциональны и могут быть nil.
func NewService(
	sequences *sequence.Generator,
	store domain.RecordStore,
	publisher EventPublisher,
	intakeMetrics *metrics.IntakeMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "intake-service")
	}
	return &Service{
		sequences:  sequences,
		store:      store,
		publisher:  publisher,
		metrics:    intakeMetrics,
		logger:     logger,
		retryDelay: defaultRetryDelay,
	}
}

// WithRetryDelay подменяет паузу между попытками записи. Нужен тестам.
func (s *Service) WithRetryDelay(d time.Duration) *Service {
	s.retryDelay = d
	return s
}

// Process обрабатывает один входящий заказ и возвращает его номер.
//
// Ошибки наружу выходят только двух видов: семейство InvalidOrderData
// (см. domain.IsInvalidOrderData) и *domain.PersistenceError после
// исчерпания попыток записи. Выданный номер при сбое записи не
// отзывается — в нумерации остаётся пропуск, но не дубликат.
func (s *Service) Process(ctx context.Context, customerID int64, payload Payload) (string, error) {
	started := time.Now()

	number := s.sequences.Next(ctx, customerID)
	requestLog := s.logger.WithFields(log.Fields{
		"order_number": number,
		"customer_id":  customerID,
	})

	order, err := domain.NewOrder(
		number,
		customerID,
		payload.Name,
		payload.Email,
		payload.Address,
		payload.PaymentType,
		payload.Items,
	)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordOrderRejected()
		}
		requestLog.WithError(err).Warn("order payload rejected")
		return "", err
	}

	if err := s.persist(ctx, requestLog, order); err != nil {
		if s.metrics != nil {
			s.metrics.RecordPersistFailure()
		}
		return "", err
	}

	s.publishCreated(order, requestLog)

	if s.metrics != nil {
		s.metrics.RecordOrderCreated()
		s.metrics.ObserveProcessDuration(time.Since(started))
	}
	requestLog.Info("order accepted")

	return number, nil
}

// persist сохраняет запись заказа, повторяя только транзиентные сбои.
// Занятый номер (ErrOrderExists) повторять бессмысленно: это либо уже
// сохранённый заказ, либо коллизия выдачи номеров.
func (s *Service) persist(ctx context.Context, requestLog *log.Entry, order domain.Order) error {
	attempts := 0
	var lastErr error

	err := retry.Do(ctx, retry.WithMaxRetries(persistAttempts-1, retry.NewConstant(s.retryDelay)), func(ctx context.Context) error {
		attempts++
		err := s.store.Create(ctx, order)
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, domain.ErrOrderExists) {
			requestLog.WithField("attempt", attempts).Error("order number already taken")
			return err
		}

		requestLog.WithError(err).WithField("attempt", attempts).Warn("order persist attempt failed")
		if s.metrics != nil {
			s.metrics.RecordPersistRetry()
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return &domain.PersistenceError{
			OrderNumber: order.Number,
			Attempts:    attempts,
			Err:         lastErr,
		}
	}

	return nil
}

func (s *Service) publishCreated(order domain.Order, requestLog *log.Entry) {
	if s.publisher == nil {
		return
	}

	event := kafka.NewOrderCreatedEvent(order.Number, order.CustomerID, string(order.Status))
	if err := s.publisher.PublishOrderCreated(event); err != nil {
		requestLog.WithError(err).Warn("failed to publish order created event")
	}
}
