package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// ErrOrderExists возвращается хранилищем, если номер заказа уже занят.
	// Занятый номер означает либо ранее сохранённый заказ, либо коллизию
	// выдачи номеров; молча перезаписывать запись нельзя.
	ErrOrderExists = errors.New("order already exists")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
)

// IsInvalidOrderData проверяет, относится ли ошибка к некорректным данным заказа.
// Такие ошибки фатальны для запроса и не ретраятся: вход должен исправить вызывающий.
func IsInvalidOrderData(err error) bool {
	return errors.Is(err, ErrItemsRequired) ||
		errors.Is(err, ErrItemQtyInvalid) ||
		errors.Is(err, ErrItemPriceInvalid)
}

// PersistenceError сигнализирует, что запись заказа не удалось сохранить
// за отведённое число попыток. Выданный номер при этом не отзывается:
// пропуск в нумерации — допустимое следствие сбоя, дубликат — нет.
type PersistenceError struct {
	// OrderNumber — номер, под которым заказ пытались сохранить.
	OrderNumber string
	// Attempts — сколько попыток записи было сделано.
	Attempts int
	// Err — последняя ошибка хранилища.
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist order %s failed after %d attempts: %v", e.OrderNumber, e.Attempts, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceFailure проверяет, является ли ошибка исчерпанием попыток записи.
func IsPersistenceFailure(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
