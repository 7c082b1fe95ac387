// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chizu_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "code"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chizu_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
	SearchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chizu_searches_total",
		Help: "Total searches by kind (map, year)",
	}, []string{"kind"})
	EmptySearchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chizu_empty_searches_total",
		Help: "Total searches with a blank term",
	})
	SearchFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chizu_search_fail_total",
		Help: "Total searches that failed with a store error",
	}, []string{"kind"})
	ResolveDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chizu_resolve_duration_ms",
		Help:    "Per-year resolve duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"year"})
	FeaturesReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chizu_features_returned",
		Help:    "Number of map features per search",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200},
	})
	ConfidenceScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chizu_confidence_score",
		Help:    "Building confidence score distribution",
		Buckets: []float64{10, 20, 40, 60, 80, 90, 100},
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(EmptySearchesTotal)
	prometheus.MustRegister(SearchFailTotal)
	prometheus.MustRegister(ResolveDurationMs)
	prometheus.MustRegister(FeaturesReturned)
	prometheus.MustRegister(ConfidenceScore)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler { return promhttp.Handler() }
