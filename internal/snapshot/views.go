package snapshot

import (
	"strconv"

	"github.com/nilsy/heapsnap/internal/errs"
)

// NodeView is a logical record: a (Raw, index) pair, not an owned object.
// Every accessor resolves against Raw's flat arrays at call time.
type NodeView struct {
	Raw   *Raw
	Index int
}

// Node returns the view for node index i. It does not bounds-check; callers
// that accept externally-supplied indices should validate against
// r.NodeCount() first.
func (r *Raw) Node(i int) NodeView { return NodeView{Raw: r, Index: i} }

func (n NodeView) base() int { return n.Index*n.Raw.Meta.NodeWidth }

// Name resolves the node's constructor-name string.
func (n NodeView) Name() (string, error) {
	idx := n.Raw.Nodes[n.base()+n.Raw.Meta.NodeNameIdx]
	return n.Raw.stringAt(idx)
}

// ID returns the node's declared id. V8 snapshots always populate this
// field, but a node that legitimately lacks one resolves to (0, false) so
// callers can emit null per spec.md §6.
func (n NodeView) ID() (int64, bool) {
	v := n.Raw.Nodes[n.base()+n.Raw.Meta.NodeIDIdx]
	return v, v != 0
}

// SelfSize returns the node's self_size field.
func (n NodeView) SelfSize() int64 {
	return n.Raw.Nodes[n.base()+n.Raw.Meta.NodeSelfSizeIdx]
}

// TypeName resolves the node's type through the node-type enum table.
func (n NodeView) TypeName() (string, error) {
	v := n.Raw.Nodes[n.base()+n.Raw.Meta.NodeTypeIdx]
	return n.Raw.enumAt(n.Raw.Meta.NodeTypeEnum, v, "node")
}

// EdgeCount returns the node's declared outgoing edge count.
func (n NodeView) EdgeCount() int64 {
	return n.Raw.Nodes[n.base()+n.Raw.Meta.NodeEdgeCountIdx]
}

// OutgoingEdges returns the half-open [start, end) range of edge indices
// owned by this node, per the EdgeRangeTable. BuildEdgeRanges must have run.
func (n NodeView) OutgoingEdges() (start, end int) {
	return int(n.Raw.EdgeStart[n.Index]), int(n.Raw.EdgeStart[n.Index+1])
}

// EdgeView is the edge analogue of NodeView.
type EdgeView struct {
	Raw   *Raw
	Index int
}

// Edge returns the view for edge index i.
func (r *Raw) Edge(i int) EdgeView { return EdgeView{Raw: r, Index: i} }

func (e EdgeView) base() int { return e.Index*e.Raw.Meta.EdgeWidth }

// TypeName resolves the edge's type through the edge-type enum table.
func (e EdgeView) TypeName() (string, error) {
	v := e.Raw.Edges[e.base()+e.Raw.Meta.EdgeTypeIdx]
	return e.Raw.enumAt(e.Raw.Meta.EdgeTypeEnum, v, "edge")
}

// NameOrIndex returns the raw name_or_index field, uninterpreted.
func (e EdgeView) NameOrIndex() int64 {
	return e.Raw.Edges[e.base()+e.Raw.Meta.EdgeNameOrIndexIdx]
}

// ToNodeIndex converts the edge's byte-base to_node field into a logical
// node index by dividing by node_width.
func (e EdgeView) ToNodeIndex() int {
	to := e.Raw.Edges[e.base()+e.Raw.Meta.EdgeToNodeIdx]
	return int(to) / e.Raw.Meta.NodeWidth
}

// ResolvedName implements spec.md §4.4's edge name resolution: the
// referenced string when the edge is a property/string-named kind, a
// decimal rendering of name_or_index when it is numeric, or empty when the
// type name suggests "element".
func (e EdgeView) ResolvedName() (string, error) {
	typeName, err := e.TypeName()
	if err != nil {
		return "", err
	}
	if typeName == "element" {
		return "", nil
	}
	if isNumericEdgeKind(typeName) {
		return strconv.FormatInt(e.NameOrIndex(), 10), nil
	}
	return e.Raw.stringAt(e.NameOrIndex())
}

// isNumericEdgeKind reports whether an edge type name denotes an index-like
// reference rather than a string-table reference. V8 snapshots otherwise
// route every edge name other than element and hidden through the string
// table.
func isNumericEdgeKind(typeName string) bool {
	switch typeName {
	case "element", "hidden":
		return true
	default:
		return false
	}
}

func (r *Raw) stringAt(idx int64) (string, error) {
	if idx < 0 || int(idx) >= len(r.Strings) {
		return "", errs.IndexOutOfRange("string table index " + strconv.FormatInt(idx, 10) + " out of range")
	}
	return r.Strings[idx], nil
}

func (r *Raw) enumAt(table []string, v int64, side string) (string, error) {
	if v < 0 || int(v) >= len(table) {
		return "", errs.IndexOutOfRange(side + " type enum value " + strconv.FormatInt(v, 10) + " out of range")
	}
	return table[v], nil
}
