package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IntakeMetrics содержит метрики приёма заказов.
type IntakeMetrics struct {
	// Счётчики исходов запроса
	ordersCreated  prometheus.Counter
	ordersRejected prometheus.Counter
	persistFailed  prometheus.Counter

	// Счётчики работы ядра выдачи номеров
	persistRetries prometheus.Counter
	fallbackScans  prometheus.Counter

	// Гистограмма времени обработки запроса
	processDuration prometheus.Histogram
}

// NewIntakeMetrics создаёт метрики приёма заказов в default-реестре.
func NewIntakeMetrics() *IntakeMetrics {
	return newIntakeMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newIntakeMetricsWithRegisterer(registerer prometheus.Registerer) *IntakeMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &IntakeMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "intake_orders_created_total",
			Help: "Total number of orders accepted and persisted",
		}),
		ordersRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "intake_orders_rejected_total",
			Help: "Total number of orders rejected due to invalid data",
		}),
		persistFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "intake_persist_failures_total",
			Help: "Total number of orders lost after exhausting persist attempts",
		}),
		persistRetries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "intake_persist_retries_total",
			Help: "Total number of failed persist attempts that were retried",
		}),
		fallbackScans: registerCounter(registerer, prometheus.CounterOpts{
			Name: "intake_sequence_fallback_scans_total",
			Help: "Total number of record-store scans performed on sequence cache miss",
		}),
		processDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "intake_process_duration_seconds",
			Help:    "Duration of order intake processing in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик принятых заказов.
func (m *IntakeMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderRejected увеличивает счётчик отклонённых заказов.
func (m *IntakeMetrics) RecordOrderRejected() {
	m.ordersRejected.Inc()
}

// RecordPersistFailure увеличивает счётчик заказов, не сохранённых после всех попыток.
func (m *IntakeMetrics) RecordPersistFailure() {
	m.persistFailed.Inc()
}

// RecordPersistRetry увеличивает счётчик повторённых попыток записи.
func (m *IntakeMetrics) RecordPersistRetry() {
	m.persistRetries.Inc()
}

// RecordFallbackScan увеличивает счётчик fallback-сканов хранилища.
func (m *IntakeMetrics) RecordFallbackScan() {
	m.fallbackScans.Inc()
}

// ObserveProcessDuration фиксирует длительность обработки запроса.
func (m *IntakeMetrics) ObserveProcessDuration(d time.Duration) {
	m.processDuration.Observe(d.Seconds())
}
