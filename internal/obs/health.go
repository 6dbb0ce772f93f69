package obs

import (
	"fmt"

	"github.com/nilsy/heapsnap/internal/snapshot"
)

// CheckResult is one structural check's outcome.
type CheckResult struct {
	Name    string
	Healthy bool
	Message string
}

// Report is the aggregate outcome of running every structural check against
// a parsed snapshot: spec.md §8's testable properties 1, 3, and 4, surfaced
// for the CLI's "build" subcommand to print alongside the summary/meta
// output. Adapted from the teacher's HealthChecker/HealthStatus, retargeted
// from a live-database health probe (connection, index freshness) to a
// one-shot structural audit of an already-parsed Raw.
type Report struct {
	Healthy bool
	Checks  []CheckResult
}

// RunChecks runs every structural check against raw and aggregates the
// results. EdgeStart must already be populated (BuildEdgeRanges has run);
// RunChecks itself never mutates raw.
func RunChecks(raw *snapshot.Raw) *Report {
	report := &Report{Healthy: true}
	add := func(name string, err error) {
		res := CheckResult{Name: name, Healthy: err == nil}
		if err != nil {
			res.Message = err.Error()
			report.Healthy = false
		} else {
			res.Message = "ok"
		}
		report.Checks = append(report.Checks, res)
	}

	add("framing", raw.ValidateFraming())
	add("string_refs", raw.CheckStringRefs())
	add("to_node_refs", raw.CheckToNodeRefs())
	add("edge_range_total", checkEdgeRangeTotal(raw))

	return report
}

func checkEdgeRangeTotal(raw *snapshot.Raw) error {
	if raw.EdgeStart == nil {
		return fmt.Errorf("edge range table not built")
	}
	n := raw.NodeCount()
	if len(raw.EdgeStart) != n+1 {
		return fmt.Errorf("edge range table length %d, want %d", len(raw.EdgeStart), n+1)
	}
	if int(raw.EdgeStart[n]) != raw.EdgeCount() {
		return fmt.Errorf("edge range total %d does not match edge count %d", raw.EdgeStart[n], raw.EdgeCount())
	}
	return nil
}
