package sequence

import (
	"context"
	"regexp"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
)

// Scanner восстанавливает последний выданный порядковый номер scope
// из долговременного хранилища, когда в кэше значения нет (например,
// после сброса кэша).
type Scanner struct {
	store  domain.RecordStore
	logger *log.Entry
}

// NewScanner создаёт fallback-сканер поверх RecordStore.
func NewScanner(store domain.RecordStore, logger *log.Entry) *Scanner {
	if logger == nil {
		logger = log.WithField("component", "sequence-scanner")
	}
	return &Scanner{store: store, logger: logger}
}

// LastIssued возвращает максимальный порядковый номер среди сохранённых
// заказов scope, либо 0, если их нет.
//
// Политика намеренно мягкая: ошибка перечисления логируется на уровне Warn
// и трактуется как "предыдущих заказов нет". Выдача номеров не должна
// останавливаться из-за недоступного чтения; защита от дубликата остаётся
// за write-if-absent семантикой RecordStore.
func (s *Scanner) LastIssued(ctx context.Context, scope domain.Scope) int64 {
	numbers, err := s.store.ListNumbers(ctx, scope.NumberPrefix())
	if err != nil {
		s.logger.WithError(err).WithField("scope", scope.CacheKey()).
			Warn("record scan failed, assuming no prior orders")
		return 0
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(scope.NumberPrefix()) + `(\d{5})$`)

	var max int64
	for _, number := range numbers {
		match := pattern.FindStringSubmatch(number)
		if match == nil {
			continue
		}
		n, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max
}
