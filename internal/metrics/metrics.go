package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// seconds, sized for multi-second backend and LLM calls
	latencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40}

	BackendQueries = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_backend_queries_total",
			Help: "Backend searches issued by the fan-out executor",
		},
		[]string{"backend", "outcome"}, // outcome: ok | error
	)

	RerankSelections = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "sift_rerank_selections_total",
			Help: "Reranker chosen per advanced-mode search",
		},
		[]string{"strategy"},
	)

	ExpansionFallbacks = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "sift_expansion_fallbacks_total",
			Help: "Query expansions that fell back to the original query",
		},
	)

	PipelineLatency = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sift_pipeline_duration_seconds",
			Help:    "End-to-end pipeline latency",
			Buckets: latencyBuckets,
		},
		[]string{"mode", "status"},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

func Registry() *prometheus.Registry {
	return registry
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
