package domain

import (
	"fmt"
	"time"
)

// Scope определяет единицу счёта порядковых номеров: один клиент в один календарный день.
// Новый день (в фиксированной локальной таймзоне) даёт новый scope и счёт с нуля.
type Scope struct {
	// CustomerID — идентификатор клиента.
	CustomerID int64
	// DatePart — календарный день в формате ddmmyy.
	DatePart string
}

// NewScope строит scope для клиента на момент времени at.
// Таймзону выбирает вызывающая сторона: at уже должен быть приведён к локальному времени.
func NewScope(customerID int64, at time.Time) Scope {
	return Scope{
		CustomerID: customerID,
		DatePart:   fmt.Sprintf("%02d%02d%02d", at.Day(), int(at.Month()), at.Year()%100),
	}
}

// CacheKey возвращает ключ счётчика в кэше: order:{customerId}:{ddmmyy}.
func (s Scope) CacheKey() string {
	return fmt.Sprintf("order:%d:%s", s.CustomerID, s.DatePart)
}

// NumberPrefix возвращает общий префикс всех номеров заказов этого scope.
func (s Scope) NumberPrefix() string {
	return fmt.Sprintf("ORDER-%d-%s-", s.CustomerID, s.DatePart)
}

// OrderNumber форматирует номер заказа для порядкового номера n:
// ORDER-{customerId}-{ddmmyy}-{n:05d}.
func (s Scope) OrderNumber(n int64) string {
	return fmt.Sprintf("%s%05d", s.NumberPrefix(), n)
}
