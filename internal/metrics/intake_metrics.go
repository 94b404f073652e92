package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IntakeMetrics содержит метрики конвейера оформления заказов.
type IntakeMetrics struct {
	ordersCreated     prometheus.Counter
	ordersFailed      *prometheus.CounterVec
	promotionsApplied prometheus.Counter
	intakeDuration    prometheus.Histogram
}

// NewIntakeMetrics создаёт метрики в default registerer.
func NewIntakeMetrics() *IntakeMetrics {
	return newIntakeMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newIntakeMetricsWithRegisterer(registerer prometheus.Registerer) *IntakeMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &IntakeMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bookstore_orders_created_total",
			Help: "Total number of orders committed successfully",
		}),
		ordersFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "bookstore_orders_failed_total",
			Help: "Total number of rejected order requests grouped by reason",
		}, []string{"reason"}),
		promotionsApplied: registerCounter(registerer, prometheus.CounterOpts{
			Name: "bookstore_promotions_applied_total",
			Help: "Total number of orders created with a promotional discount",
		}),
		intakeDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "bookstore_order_intake_duration_seconds",
			Help:    "Duration of the fetch-validate-commit cycle in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordOrderCreated увеличивает счётчик успешно оформленных заказов.
func (m *IntakeMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordOrderFailed увеличивает счётчик отказов с указанной причиной.
func (m *IntakeMetrics) RecordOrderFailed(reason string) {
	m.ordersFailed.WithLabelValues(reason).Inc()
}

// RecordPromotionApplied увеличивает счётчик применённых промоакций.
func (m *IntakeMetrics) RecordPromotionApplied() {
	m.promotionsApplied.Inc()
}

// RecordIntakeDuration записывает длительность полного цикла оформления.
func (m *IntakeMetrics) RecordIntakeDuration(duration time.Duration) {
	m.intakeDuration.Observe(duration.Seconds())
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

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
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
