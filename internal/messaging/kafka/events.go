package kafka

import (
	"time"

	"github.com/google/uuid"
)

// EventType определяет тип события
type EventType string

const (
	// EventTypeOrderCreated — заказ принят и записан в хранилище.
	EventTypeOrderCreated EventType = "order.created"
)

// Topics для Kafka
const (
	TopicOrderEvents = "intake.order.events"
)

// OrderEvent представляет событие по заказу.
type OrderEvent struct {
	EventID     string    `json:"event_id"`
	EventType   EventType `json:"event_type"`
	OrderNumber string    `json:"order_number"`
	CustomerID  int64     `json:"customer_id"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOrderCreatedEvent создаёт событие о принятом заказе.
func NewOrderCreatedEvent(orderNumber string, customerID int64, status string) *OrderEvent {
	return &OrderEvent{
		EventID:     uuid.NewString(),
		EventType:   EventTypeOrderCreated,
		OrderNumber: orderNumber,
		CustomerID:  customerID,
		Status:      status,
		Timestamp:   time.Now().UTC(),
	}
}
