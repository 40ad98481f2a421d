package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// buildTotal counts graph builds by result (success, error).
	buildTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sixdegrees_graph_build_total",
		Help: "Total graph builds by result",
	}, []string{"result"})

	// buildDuration tracks how long a full build takes.
	buildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sixdegrees_graph_build_duration_seconds",
		Help:    "Graph build duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	})

	// cacheLookups counts snapshot cache lookups by result (hit, miss).
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sixdegrees_graph_cache_lookups_total",
		Help: "Graph snapshot cache lookups by result",
	}, []string{"result"})

	graphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sixdegrees_graph_nodes",
		Help: "Node count of the most recently built graph",
	})

	graphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sixdegrees_graph_edges",
		Help: "Edge count of the most recently built graph",
	})
)
