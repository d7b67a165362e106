package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	slc = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_session_load_count",
		Help: "The number of session load attempts (per outcome).",
	}, []string{"outcome"})
	sqd = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_session_query_duration_seconds",
		Help:    "The duration of session queries (per query).",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"query"})
	sqe = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storage_session_query_error_count",
		Help: "The number of session queries that failed.",
	})
)

func sessionLoadCounter(outcome string) prometheus.Counter {
	return slc.With(prometheus.Labels{"outcome": outcome})
}

func queryErrorCounter() prometheus.Counter {
	return sqe
}

// observeQuery starts a timer for the given query name. The returned func
// must be called when the query has completed.
func observeQuery(name string) func() {
	t := prometheus.NewTimer(sqd.With(prometheus.Labels{"query": name}))
	return func() {
		t.ObserveDuration()
	}
}
