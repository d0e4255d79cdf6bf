package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
)

// recordStoreInMemory — простая in-memory реализация RecordStore.
type recordStoreInMemory struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

// NewRecordStore возвращает in-memory хранилище заказов для локальной разработки и тестов.
func NewRecordStore() domain.RecordStore {
	return &recordStoreInMemory{
		orders: make(map[string]domain.Order),
	}
}

// Create сохраняет новую запись, если номер ещё не занят.
func (s *recordStoreInMemory) Create(_ context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.Number]; exists {
		return domain.ErrOrderExists
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	s.orders[order.Number] = order
	return nil
}

// Get возвращает запись или ErrOrderNotFound, если её нет.
func (s *recordStoreInMemory) Get(_ context.Context, number string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[number]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListNumbers возвращает отсортированные номера заказов с данным префиксом.
func (s *recordStoreInMemory) ListNumbers(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	numbers := make([]string, 0, len(s.orders))
	for number := range s.orders {
		if strings.HasPrefix(number, prefix) {
			numbers = append(numbers, number)
		}
	}
	sort.Strings(numbers)
	return numbers, nil
}

var _ domain.RecordStore = (*recordStoreInMemory)(nil)
