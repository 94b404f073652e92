package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIntakeMetrics_Counters(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := newIntakeMetricsWithRegisterer(registry)

	m.RecordOrderCreated()
	m.RecordOrderCreated()
	m.RecordOrderFailed("insufficient_stock")
	m.RecordPromotionApplied()
	m.RecordIntakeDuration(25 * time.Millisecond)

	if got := testutil.ToFloat64(m.ordersCreated); got != 2 {
		t.Fatalf("expected 2 orders created, got %v", got)
	}
	if got := testutil.ToFloat64(m.ordersFailed.WithLabelValues("insufficient_stock")); got != 1 {
		t.Fatalf("expected 1 failed order, got %v", got)
	}
	if got := testutil.ToFloat64(m.promotionsApplied); got != 1 {
		t.Fatalf("expected 1 promotion applied, got %v", got)
	}
}

func TestIntakeMetrics_DoubleRegistrationReusesCollectors(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()

	first := newIntakeMetricsWithRegisterer(registry)
	second := newIntakeMetricsWithRegisterer(registry)

	first.RecordOrderCreated()
	second.RecordOrderCreated()

	if got := testutil.ToFloat64(second.ordersCreated); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}
}
