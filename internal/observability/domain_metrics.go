package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankchat_resolutions_total",
			Help: "Total number of completed resolutions by outcome.",
		},
		[]string{"outcome"},
	)
	resolutionAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rankchat_resolution_attempts",
			Help:    "Generation attempts consumed per resolution.",
			Buckets: []float64{1, 2, 3},
		},
	)
	resolutionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rankchat_resolution_duration_seconds",
			Help:    "End-to-end resolution latency in seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
	)
	llmCallDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rankchat_llm_call_duration_seconds",
			Help:    "LLM completion call latency by prompt role.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"role", "status"},
	)
	sqlRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankchat_sql_rejections_total",
			Help: "SQL statements rejected by the static validator, by reason.",
		},
		[]string{"reason"},
	)
	sqlExecDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rankchat_sql_exec_duration_seconds",
			Help:    "Read-only report query execution latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	reportRowsLoadedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rankchat_report_rows_loaded_total",
			Help: "Total report rows inserted by the loader.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		resolutionsTotal,
		resolutionAttempts,
		resolutionDurationSeconds,
		llmCallDurationSeconds,
		sqlRejectionsTotal,
		sqlExecDurationSeconds,
		reportRowsLoadedTotal,
	)
}

func ObserveResolution(outcome string, attempts int, elapsed time.Duration) {
	resolutionsTotal.WithLabelValues(outcome).Inc()
	if attempts > 0 {
		resolutionAttempts.Observe(float64(attempts))
	}
	resolutionDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveLLMCall(role string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmCallDurationSeconds.WithLabelValues(role, status).Observe(elapsed.Seconds())
}

func IncrementSQLRejection(reason string) {
	sqlRejectionsTotal.WithLabelValues(reason).Inc()
}

func ObserveSQLExec(elapsed time.Duration) {
	sqlExecDurationSeconds.Observe(elapsed.Seconds())
}

func AddReportRowsLoaded(count int) {
	if count > 0 {
		reportRowsLoadedTotal.Add(float64(count))
	}
}
