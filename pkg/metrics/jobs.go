package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics tracks background maintenance jobs such as the expired cart sweep.
type JobMetrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	affected *prometheus.CounterVec
}

func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_job_runs_total",
		Help: "Background job runs by job and result.",
	}, []string{"job", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_job_duration_seconds",
		Help:    "Background job duration in seconds.",
		Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60},
	}, []string{"job"})
	affected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_job_rows_affected_total",
		Help: "Rows removed or changed by background jobs.",
	}, []string{"job"})
	reg.MustRegister(runs, duration, affected)
	return &JobMetrics{runs: runs, duration: duration, affected: affected}
}

func (m *JobMetrics) Observe(job string, duration time.Duration, err error) {
	if m == nil || m.runs == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	job = normalizeLabel(job)
	m.runs.WithLabelValues(job, result).Inc()
	m.duration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *JobMetrics) AddAffected(job string, rows int64) {
	if m == nil || m.affected == nil || rows <= 0 {
		return
	}
	m.affected.WithLabelValues(normalizeLabel(job)).Add(float64(rows))
}
