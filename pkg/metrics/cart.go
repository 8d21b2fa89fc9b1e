package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// CartMetrics records cart operation outcomes, latency and the item count
// observed after each mutation.
type CartMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	lockWait   prometheus.Histogram
	cartItems  prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations by operation and result.",
	}, []string{"operation", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_operation_duration_seconds",
		Help:    "Duration of cart operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	lockWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_session_lock_wait_seconds",
		Help:    "Time spent waiting for a cart session lock.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})
	cartItems := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_total_items",
		Help:    "Total item count of a cart after a mutation.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})
	reg.MustRegister(operations, duration, lockWait, cartItems)
	return &CartMetrics{
		operations: operations,
		duration:   duration,
		lockWait:   lockWait,
		cartItems:  cartItems,
	}
}

// Observe records one finished operation.
func (c *CartMetrics) Observe(operation string, duration time.Duration, err error) {
	if c == nil || c.operations == nil {
		return
	}
	op := normalizeLabel(operation)
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	c.operations.WithLabelValues(op, result).Inc()
	c.duration.WithLabelValues(op).Observe(duration.Seconds())
}

// ObserveLockWait records how long a caller waited for the session lock.
func (c *CartMetrics) ObserveLockWait(duration time.Duration) {
	if c == nil || c.lockWait == nil {
		return
	}
	c.lockWait.Observe(duration.Seconds())
}

// ObserveCartSize records the total item count after a mutation.
func (c *CartMetrics) ObserveCartSize(totalItems int) {
	if c == nil || c.cartItems == nil {
		return
	}
	c.cartItems.Observe(float64(totalItems))
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
