package heapsnap

import (
	"fmt"

	"github.com/nilsy/heapsnap/internal/obs"
	"github.com/nilsy/heapsnap/internal/progress"
)

// config collects every Open-time setting an Option may set. It is never
// exported; Option is the only way to influence it.
type config struct {
	useMmap bool

	cancel func() bool
	report func(stage string, n int64)

	metrics *obs.Metrics

	defaultTopK             int
	defaultMaxDepth         int
	defaultMaxPaths         int
	defaultTopRetainers     int
	defaultTopOutgoingEdges int
}

func defaultConfig() *config {
	return &config{
		defaultTopK:             50,
		defaultMaxDepth:         64,
		defaultMaxPaths:         1,
		defaultTopRetainers:     10,
		defaultTopOutgoingEdges: 10,
	}
}

// Option configures a Session at Open time, grounded on the teacher's
// functional-options pattern (libravdb/options.go's Option func(*Config)
// error).
type Option func(*config) error

// WithMmap selects internal/ingest's memory-mapped byte source instead of a
// plain buffered file read. Purely a performance choice; it does not change
// any result.
func WithMmap() Option {
	return func(c *config) error {
		c.useMmap = true
		return nil
	}
}

// WithCancel installs the cooperative cancel predicate every long-running
// operation polls, per spec.md §5. fn must be safe to call repeatedly and
// must not block.
func WithCancel(fn func() bool) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("heapsnap: WithCancel requires a non-nil function")
		}
		c.cancel = fn
		return nil
	}
}

// WithCancelFlag installs a progress.Flag as the session's cancel source.
// Callers that want to trigger cancellation themselves (e.g. on SIGINT)
// should keep the Flag and call Set on it.
func WithCancelFlag(flag *progress.Flag) Option {
	return func(c *config) error {
		if flag == nil {
			return fmt.Errorf("heapsnap: WithCancelFlag requires a non-nil flag")
		}
		c.cancel = flag.IsSet
		return nil
	}
}

// WithProgress installs the progress sink every long-running operation
// reports coarse milestones to.
func WithProgress(fn func(stage string, n int64)) Option {
	return func(c *config) error {
		c.report = fn
		return nil
	}
}

// WithMetrics installs a metrics sink; the Session increments it as it
// parses and builds caches. The Session does not expose m again: callers
// keep m, or the registry it was registered against, to inspect or Gather
// the counters.
func WithMetrics(m *obs.Metrics) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithDefaultTopK sets the default row count for Summary/Diff when a caller
// does not specify one explicitly via a query option.
func WithDefaultTopK(k int) Option {
	return func(c *config) error {
		if k <= 0 {
			return fmt.Errorf("heapsnap: WithDefaultTopK requires k > 0, got %d", k)
		}
		c.defaultTopK = k
		return nil
	}
}

// WithDefaultSearchLimits sets the default maxDepth/maxPaths Retainers uses
// when a caller does not override them.
func WithDefaultSearchLimits(maxDepth, maxPaths int) Option {
	return func(c *config) error {
		if maxDepth <= 0 || maxPaths <= 0 {
			return fmt.Errorf("heapsnap: WithDefaultSearchLimits requires positive values, got (%d, %d)", maxDepth, maxPaths)
		}
		c.defaultMaxDepth = maxDepth
		c.defaultMaxPaths = maxPaths
		return nil
	}
}

// WithDefaultTopSelections sets the default "top retainers" / "top outgoing
// edges" selection sizes the collaborator contract (§6) names as CLI
// parameters.
func WithDefaultTopSelections(topRetainers, topOutgoingEdges int) Option {
	return func(c *config) error {
		if topRetainers < 0 || topOutgoingEdges < 0 {
			return fmt.Errorf("heapsnap: WithDefaultTopSelections requires non-negative values")
		}
		c.defaultTopRetainers = topRetainers
		c.defaultTopOutgoingEdges = topOutgoingEdges
		return nil
	}
}

func (c *config) hooks() *progress.Hooks {
	if c.cancel == nil && c.report == nil {
		return nil
	}
	return &progress.Hooks{Cancel: c.cancel, Report: c.report}
}
