// Package obs carries the in-process Prometheus instrumentation of
// SPEC_FULL.md §2 item 12/§11: counters and histograms gathered once at the
// end of a run and printed by the CLI, never served over HTTP (the "no
// network I/O" Non-goal rules out a /metrics endpoint, not metrics
// themselves).
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/histogram this package exposes. Adapted from
// the teacher's obs.Metrics: the field set is renamed from vector-insert/
// search concerns to parse/cache/BFS/dominator concerns, but the
// promauto-constructed-struct shape is unchanged.
type Metrics struct {
	NodesParsed     prometheus.Counter
	EdgesParsed     prometheus.Counter
	ParseErrors     prometheus.Counter
	ParseLatency    prometheus.Histogram
	CacheBuilds     prometheus.Counter
	BFSLayersWalked prometheus.Counter
	DominatorPasses prometheus.Counter
}

// NewRegistry returns a fresh, empty registry for a single CLI invocation
// to register Metrics against and later Gather() for printing.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// NewMetrics constructs a fresh Metrics registered against reg. A nil reg
// registers against prometheus.DefaultRegisterer, matching promauto's own
// default and the teacher's NewMetrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		NodesParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "heapsnap_nodes_parsed_total",
			Help: "Total node records decoded from the nodes array.",
		}),
		EdgesParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "heapsnap_edges_parsed_total",
			Help: "Total edge records decoded from the edges array.",
		}),
		ParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "heapsnap_parse_errors_total",
			Help: "Total parse failures (malformed JSON, meta binding, framing).",
		}),
		ParseLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "heapsnap_parse_latency_seconds",
			Help: "Wall-clock time spent parsing one snapshot file.",
		}),
		CacheBuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "heapsnap_lazy_cache_builds_total",
			Help: "Total builder invocations across the constructor index, reverse adjacency, and dominator map caches.",
		}),
		BFSLayersWalked: factory.NewCounter(prometheus.CounterOpts{
			Name: "heapsnap_retainer_bfs_layers_total",
			Help: "Total backward BFS layers walked while computing retainer distances.",
		}),
		DominatorPasses: factory.NewCounter(prometheus.CounterOpts{
			Name: "heapsnap_dominator_fixpoint_passes_total",
			Help: "Total fixed-point iteration passes in the dominator-tree builder.",
		}),
	}
}
