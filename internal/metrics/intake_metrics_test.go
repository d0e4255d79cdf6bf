package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNewIntakeMetrics_Collectors(t *testing.T) {
	m := newIntakeMetricsWithRegisterer(prometheus.NewRegistry())

	if m.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}
	if m.ordersRejected == nil {
		t.Error("ordersRejected counter should not be nil")
	}
	if m.persistFailed == nil {
		t.Error("persistFailed counter should not be nil")
	}
	if m.persistRetries == nil {
		t.Error("persistRetries counter should not be nil")
	}
	if m.fallbackScans == nil {
		t.Error("fallbackScans counter should not be nil")
	}
	if m.processDuration == nil {
		t.Error("processDuration histogram should not be nil")
	}
}

func TestIntakeMetrics_Record(t *testing.T) {
	m := newIntakeMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordOrderCreated()
	m.RecordOrderCreated()
	m.RecordOrderRejected()
	m.RecordPersistRetry()
	m.RecordPersistFailure()
	m.RecordFallbackScan()
	m.ObserveProcessDuration(25 * time.Millisecond)

	if got := counterValue(t, m.ordersCreated); got != 2 {
		t.Errorf("expected 2 created, got %v", got)
	}
	if got := counterValue(t, m.ordersRejected); got != 1 {
		t.Errorf("expected 1 rejected, got %v", got)
	}
	if got := counterValue(t, m.persistRetries); got != 1 {
		t.Errorf("expected 1 retry, got %v", got)
	}
	if got := counterValue(t, m.persistFailed); got != 1 {
		t.Errorf("expected 1 failure, got %v", got)
	}
	if got := counterValue(t, m.fallbackScans); got != 1 {
		t.Errorf("expected 1 fallback scan, got %v", got)
	}
}

func TestIntakeMetrics_DoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newIntakeMetricsWithRegisterer(registry)
	first.RecordOrderCreated()

	// Повторная регистрация в том же реестре возвращает существующие коллекторы.
	second := newIntakeMetricsWithRegisterer(registry)
	second.RecordOrderCreated()

	if got := counterValue(t, first.ordersCreated); got != 2 {
		t.Errorf("expected shared counter value 2, got %v", got)
	}
}
