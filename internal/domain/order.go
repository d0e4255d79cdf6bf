package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	// OrderStatusReceived — начальный статус: заказ принят и записан.
	// Дальнейшие переходы статуса выполняются вне этого сервиса.
	OrderStatusReceived OrderStatus = "received"
)

// OrderItem представляет одну позицию заказа.
// JSON-теги повторяют внешний формат записи заказа.
type OrderItem struct {
	// ProductID — внешний идентификатор товара.
	ProductID int64 `json:"id_product"`
	// Name — название товара на момент заказа.
	Name string `json:"name"`
	// UnitPrice — цена за единицу. Decimal, чтобы суммирование было точным
	// для валют с дробными единицами.
	UnitPrice decimal.Decimal `json:"price"`
	// Qty — количество единиц товара.
	Qty int32 `json:"qty"`
}

// Order — неизменяемая запись заказа. Создаётся один раз через NewOrder,
// сохраняется один раз в RecordStore и этим сервисом больше не мутируется.
type Order struct {
	Number      string          `json:"no_order"`
	CustomerID  int64           `json:"id_customer"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Address     string          `json:"address"`
	PaymentType string          `json:"payment_type"`
	Items       []OrderItem     `json:"items"`
	Total       decimal.Decimal `json:"total"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewOrder собирает запись заказа из полей запроса, считает итоговую сумму
// и проставляет начальный статус. I/O не выполняет.
// Валидируются только позиции: пустой список, price < 0 или qty <= 0
// возвращают ошибку из семейства InvalidOrderData (см. IsInvalidOrderData).
func NewOrder(number string, customerID int64, name, email, address, paymentType string, items []OrderItem) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrItemsRequired
	}

	total := decimal.Zero
	for _, item := range items {
		if item.Qty <= 0 {
			return Order{}, ErrItemQtyInvalid
		}
		if item.UnitPrice.IsNegative() {
			return Order{}, ErrItemPriceInvalid
		}
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt32(item.Qty)))
	}

	return Order{
		Number:      number,
		CustomerID:  customerID,
		Name:        name,
		Email:       email,
		Address:     address,
		PaymentType: paymentType,
		Items:       items,
		Total:       total,
		Status:      OrderStatusReceived,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
