package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gm_requests_total",
		Help: "Total get/list requests by resource, operation and outcome",
	}, []string{"resource", "operation", "outcome"})
	QueryDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gm_query_duration_ms",
		Help:    "Database query duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"resource"})
	FeaturesReturned = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gm_features_returned",
		Help:    "Features per list response",
		Buckets: []float64{0, 1, 10, 100, 1000, 10000},
	}, []string{"resource"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(FeaturesReturned)
}

// ObserveQuery records how long one resource query took.
func ObserveQuery(resource string, d time.Duration) {
	QueryDurationMs.WithLabelValues(resource).Observe(float64(d.Microseconds()) / 1000)
}

// Handler exposes every registered metric for scraping.
func Handler() http.Handler { return promhttp.Handler() }
