package sequence

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/order-intake/internal/domain"
	"github.com/vladislavdragonenkov/order-intake/internal/metrics"
)

// Generator выдаёт следующий номер заказа для клиента в рамках текущего
// календарного дня: кэш хранит последний выданный порядковый номер, при
// его отсутствии значение восстанавливается сканом хранилища.
//
// Выдача построена на атомарном Increment кэша, а не на get/+1/set:
// конкурентные запросы одного scope получают разные номера без внешней
// синхронизации. Сам кэш при этом остаётся best-effort — любой его сбой
// переводит выдачу на локальный отсчёт от результата скана, и запрос
// всё равно получает корректно отформатированный номер.
type Generator struct {
	cache    domain.SequenceCache
	scanner  *Scanner
	logger   *log.Entry
	location *time.Location
	now      func() time.Time
	metrics  *metrics.IntakeMetrics
}

// NewGenerator создаёт генератор номеров. location задаёт фиксированную
// локальную таймзону, по которой считается календарный день scope.
func NewGenerator(cache domain.SequenceCache, scanner *Scanner, location *time.Location, logger *log.Entry) *Generator {
	if logger == nil {
		logger = log.WithField("component", "sequence-generator")
	}
	if location == nil {
		location = time.Local
	}
	return &Generator{
		cache:    cache,
		scanner:  scanner,
		logger:   logger,
		location: location,
		now:      time.Now,
	}
}

// WithClock подменяет источник времени. Нужен тестам, где важен
// детерминированный календарный день.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithMetrics включает учёт fallback-сканов в метриках.
func (g *Generator) WithMetrics(m *metrics.IntakeMetrics) *Generator {
	g.metrics = m
	return g
}

// Next выдаёт следующий номер заказа для клиента.
//
// Ошибки кэша нефатальны и не всплывают наружу: недоступный кэш — повод
// для fallback-скана и локального инкремента, а не для отказа запросу.
// Выданный в обход кэша номер останется уникальным, пока запись заказа
// успевает в хранилище до следующего fallback-скана; коллизию на стыке
// отлавливает write-if-absent при сохранении.
func (g *Generator) Next(ctx context.Context, customerID int64) string {
	scope := domain.NewScope(customerID, g.now().In(g.location))
	scopeLog := g.logger.WithField("scope", scope.CacheKey())

	last, ok, err := g.cache.Get(ctx, scope)
	cacheHealthy := err == nil
	if err != nil {
		scopeLog.WithError(err).Warn("sequence cache unavailable, falling back to record scan")
	}

	if !ok {
		if g.metrics != nil {
			g.metrics.RecordFallbackScan()
		}
		last = g.scanner.LastIssued(ctx, scope)
		if cacheHealthy {
			if _, err := g.cache.SetIfAbsent(ctx, scope, last); err != nil {
				scopeLog.WithError(err).Warn("sequence cache seed failed, issuing without cache")
				cacheHealthy = false
			}
		}
	}

	next := last + 1
	if cacheHealthy {
		value, err := g.cache.Increment(ctx, scope)
		if err != nil {
			scopeLog.WithError(err).Warn("sequence cache increment failed, issuing without cache")
		} else {
			next = value
		}
	}

	return scope.OrderNumber(next)
}
