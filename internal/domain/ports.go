package domain

import "context"

// SequenceCache описывает быстрый волатильный счётчик последних выданных
// порядковых номеров по scope. Кэш может потерять данные в любой момент;
// источником истины при отсутствии значения служит RecordStore.
type SequenceCache interface {
	// Get возвращает последний выданный номер scope. ok=false означает,
	// что значения в кэше нет (в том числе после сброса кэша).
	Get(ctx context.Context, scope Scope) (value int64, ok bool, err error)
	// Set записывает последний выданный номер scope.
	Set(ctx context.Context, scope Scope, value int64) error
	// SetIfAbsent записывает value, только если значения для scope ещё нет.
	// Возвращает true, если запись произошла.
	SetIfAbsent(ctx context.Context, scope Scope, value int64) (bool, error)
	// Increment атомарно увеличивает счётчик scope на единицу и возвращает
	// новое значение. Счётчик должен быть предварительно засеян через
	// Set или SetIfAbsent, иначе отсчёт начнётся с нуля.
	Increment(ctx context.Context, scope Scope) (int64, error)
}

// RecordStore описывает долговременное хранилище записей заказов:
// key-value по номеру заказа с перечислением ключей по префиксу.
type RecordStore interface {
	// Create сохраняет новую запись под её номером. Возвращает ErrOrderExists,
	// если номер уже занят; существующая запись не перезаписывается.
	Create(ctx context.Context, order Order) error
	// Get возвращает запись по номеру или ErrOrderNotFound.
	Get(ctx context.Context, number string) (Order, error)
	// ListNumbers возвращает все номера заказов, начинающиеся с prefix.
	ListNumbers(ctx context.Context, prefix string) ([]string, error)
}
