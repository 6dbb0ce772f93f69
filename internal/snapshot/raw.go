package snapshot

import (
	"fmt"

	"github.com/nilsy/heapsnap/internal/errs"
)

// Raw is the immutable, flat-array snapshot representation: the SnapshotRaw
// of spec.md §3. It is constructed once by the parser and thereafter only
// read; no method here mutates Nodes, Edges, or Strings after BuildEdgeRanges
// has run.
type Raw struct {
	Meta    BoundMeta
	Nodes   []int64
	Edges   []int64
	Strings []string

	// EdgeStart is the EdgeRangeTable: EdgeStart[i]..EdgeStart[i+1] is the
	// half-open range of edge slots owned by node i. Length NodeCount()+1.
	// Populated by BuildEdgeRanges, nil until then.
	EdgeStart []int64
}

// NodeCount returns the number of node records.
func (r *Raw) NodeCount() int {
	if r.Meta.NodeWidth == 0 {
		return 0
	}
	return len(r.Nodes) / r.Meta.NodeWidth
}

// EdgeCount returns the number of edge records.
func (r *Raw) EdgeCount() int {
	if r.Meta.EdgeWidth == 0 {
		return 0
	}
	return len(r.Edges) / r.Meta.EdgeWidth
}

// ValidateFraming checks testable property 1 of spec.md §8: both flat arrays
// must be an exact multiple of their record width.
func (r *Raw) ValidateFraming() error {
	if r.Meta.NodeWidth == 0 || len(r.Nodes)%r.Meta.NodeWidth != 0 {
		return errs.IndexOutOfRange(fmt.Sprintf("nodes length %d is not a multiple of node width %d", len(r.Nodes), r.Meta.NodeWidth))
	}
	if r.Meta.EdgeWidth == 0 || len(r.Edges)%r.Meta.EdgeWidth != 0 {
		return errs.IndexOutOfRange(fmt.Sprintf("edges length %d is not a multiple of edge width %d", len(r.Edges), r.Meta.EdgeWidth))
	}
	return nil
}

// BuildEdgeRanges computes the EdgeRangeTable in a single forward pass over
// edge_count, per spec.md §4.4: edge_start(i+1) = edge_start(i) +
// edge_count(i), edge_start(0) = 0. It then checks the required consistency
// invariant edge_start(node_count) == edges.length/edge_width.
func (r *Raw) BuildEdgeRanges() error {
	if err := r.ValidateFraming(); err != nil {
		return err
	}
	n := r.NodeCount()
	starts := make([]int64, n+1)
	for i := 0; i < n; i++ {
		ec := r.Nodes[i*r.Meta.NodeWidth+r.Meta.NodeEdgeCountIdx]
		starts[i+1] = starts[i] + ec
	}
	total := int64(r.EdgeCount())
	if starts[n] != total {
		return errs.IndexOutOfRange(fmt.Sprintf(
			"edge range total %d does not match edges length/width %d", starts[n], total))
	}
	r.EdgeStart = starts
	return nil
}

// CheckStringRefs validates testable property 3 of spec.md §8: every string
// index referenced by a node or edge name field falls within
// 0..len(Strings). It is not run automatically — callers invoke it when they
// want the stronger guarantee (e.g. test suites), since the views already
// bounds-check on access.
func (r *Raw) CheckStringRefs() error {
	n := r.NodeCount()
	for i := 0; i < n; i++ {
		idx := r.Nodes[i*r.Meta.NodeWidth+r.Meta.NodeNameIdx]
		if idx < 0 || int(idx) >= len(r.Strings) {
			return errs.IndexOutOfRange(fmt.Sprintf("node %d name string index %d out of range", i, idx))
		}
	}
	e := r.EdgeCount()
	for i := 0; i < e; i++ {
		typeName, err := r.Edge(i).TypeName()
		if err != nil {
			return err
		}
		if isNumericEdgeKind(typeName) {
			continue
		}
		idx := r.Edges[i*r.Meta.EdgeWidth+r.Meta.EdgeNameOrIndexIdx]
		if idx < 0 || int(idx) >= len(r.Strings) {
			return errs.IndexOutOfRange(fmt.Sprintf("edge %d name string index %d out of range", i, idx))
		}
	}
	return nil
}

// CheckToNodeRefs validates testable property 4 of spec.md §8: every edge's
// to_node is a valid byte-base into Nodes.
func (r *Raw) CheckToNodeRefs() error {
	e := r.EdgeCount()
	for i := 0; i < e; i++ {
		to := r.Edges[i*r.Meta.EdgeWidth+r.Meta.EdgeToNodeIdx]
		if to < 0 || to%int64(r.Meta.NodeWidth) != 0 || int(to) >= len(r.Nodes) {
			return errs.IndexOutOfRange(fmt.Sprintf("edge %d to_node %d is not a valid node byte-base", i, to))
		}
	}
	return nil
}
