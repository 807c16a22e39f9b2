package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assist_queries_total",
			Help: "Total queries served, labeled by answer source",
		},
		[]string{"source"},
	)

	QueriesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assist_queries_rejected_total",
			Help: "Queries rejected before reaching the pipeline",
		},
		[]string{"reason"},
	)

	ModelLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assist_model_latency_seconds",
			Help:    "Upstream model completion latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	ModelFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assist_model_failures_total",
			Help: "Model gateway failures by classification",
		},
		[]string{"kind"},
	)

	ConnectionOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assist_connection_online",
			Help: "1 while the model backend is considered reachable",
		},
	)
)
