package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlprompt_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqlprompt_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlprompt_queries_total",
			Help: "Prompt-to-SQL runs by target driver and outcome.",
		},
		[]string{"driver", "status"},
	)

	queryDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqlprompt_query_duration_seconds",
			Help:    "End-to-end latency of prompt-to-SQL runs.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"driver", "status"},
	)

	tableCorrectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sqlprompt_table_corrections_total",
			Help: "Table names rewritten by fuzzy matching.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDurationSeconds, queriesTotal, queryDurationSeconds, tableCorrectionsTotal)
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, path, status string, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

// ObserveQuery records one pipeline run.
func ObserveQuery(driver, status string, elapsed time.Duration) {
	queriesTotal.WithLabelValues(driver, status).Inc()
	queryDurationSeconds.WithLabelValues(driver, status).Observe(elapsed.Seconds())
}

// TableCorrected counts a fuzzy table-name rewrite.
func TableCorrected() {
	tableCorrectionsTotal.Inc()
}
