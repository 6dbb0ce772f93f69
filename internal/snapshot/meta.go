// Package snapshot owns the raw flat-array representation of a parsed heap
// snapshot (spec.md §3) and the zero-allocation NodeView/EdgeView handles
// that interpret it (spec.md §4.4). Nothing in this package allocates a
// per-record object: a view is a (Raw, index) pair resolved on access.
package snapshot

import (
	"fmt"
	"sort"

	"github.com/nilsy/heapsnap/internal/errs"
)

// FieldKind is the primitive shape of a record field, per spec.md §3.
type FieldKind int

const (
	KindNumber FieldKind = iota
	KindString
	KindStringOrNumber
	KindEnum
)

// FieldType describes one field's declared type: either a primitive kind or
// an enum with an ordered member list.
type FieldType struct {
	Kind    FieldKind
	Members []string // non-nil only when Kind == KindEnum
}

// Meta is the as-declared SnapshotMeta: parallel field-name/field-type lists
// for nodes and edges, exactly as captured from snapshot.meta.
type Meta struct {
	NodeFields []string
	NodeTypes  []FieldType
	EdgeFields []string
	EdgeTypes  []FieldType
}

// BoundMeta is the derived, index-resolved form every view consults. Field
// indices of -1 would violate the binding invariant; Bind never returns a
// BoundMeta with a missing required index — it fails instead.
type BoundMeta struct {
	NodeWidth int
	EdgeWidth int

	NodeTypeIdx      int
	NodeNameIdx      int
	NodeIDIdx        int
	NodeSelfSizeIdx  int
	NodeEdgeCountIdx int

	EdgeTypeIdx         int
	EdgeNameOrIndexIdx  int
	EdgeToNodeIdx       int

	NodeTypeEnum []string
	EdgeTypeEnum []string
}

var requiredNodeFields = []string{"type", "name", "id", "self_size", "edge_count"}
var requiredEdgeFields = []string{"type", "name_or_index", "to_node"}

// Bind validates a Meta and computes the field offsets and enum decode
// tables every view relies on, per spec.md §4.3. On failure, the returned
// error names every missing or misshapen required field.
func Bind(m Meta) (*BoundMeta, error) {
	if len(m.NodeFields) != len(m.NodeTypes) {
		return nil, errs.MetaBinding([]string{"node_fields/node_types length mismatch"})
	}
	if len(m.EdgeFields) != len(m.EdgeTypes) {
		return nil, errs.MetaBinding([]string{"edge_fields/edge_types length mismatch"})
	}

	var missing []string

	nodeIdx := indexFields(m.NodeFields)
	edgeIdx := indexFields(m.EdgeFields)

	bound := &BoundMeta{
		NodeWidth: len(m.NodeFields),
		EdgeWidth: len(m.EdgeFields),
	}

	bound.NodeTypeIdx = requireField(nodeIdx, "type", &missing, "node")
	bound.NodeNameIdx = requireField(nodeIdx, "name", &missing, "node")
	bound.NodeIDIdx = requireField(nodeIdx, "id", &missing, "node")
	bound.NodeSelfSizeIdx = requireField(nodeIdx, "self_size", &missing, "node")
	bound.NodeEdgeCountIdx = requireField(nodeIdx, "edge_count", &missing, "node")

	bound.EdgeTypeIdx = requireField(edgeIdx, "type", &missing, "edge")
	bound.EdgeNameOrIndexIdx = requireField(edgeIdx, "name_or_index", &missing, "edge")
	bound.EdgeToNodeIdx = requireField(edgeIdx, "to_node", &missing, "edge")

	if bound.NodeTypeIdx >= 0 && m.NodeTypes[bound.NodeTypeIdx].Kind != KindEnum {
		missing = append(missing, "node.type (must be enum-kind)")
	} else if bound.NodeTypeIdx >= 0 {
		bound.NodeTypeEnum = append([]string(nil), m.NodeTypes[bound.NodeTypeIdx].Members...)
	}

	if bound.EdgeTypeIdx >= 0 && m.EdgeTypes[bound.EdgeTypeIdx].Kind != KindEnum {
		missing = append(missing, "edge.type (must be enum-kind)")
	} else if bound.EdgeTypeIdx >= 0 {
		bound.EdgeTypeEnum = append([]string(nil), m.EdgeTypes[bound.EdgeTypeIdx].Members...)
	}

	if len(missing) > 0 {
		return nil, errs.MetaBinding(missing)
	}
	return bound, nil
}

func indexFields(names []string) map[string]int {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return idx
}

func requireField(idx map[string]int, name string, missing *[]string, side string) int {
	if i, ok := idx[name]; ok {
		return i
	}
	*missing = append(*missing, fmt.Sprintf("%s.%s", side, name))
	return -1
}

// NearestNames returns up to limit field/constructor-style names from pool
// that contain substr (case-sensitive), sorted lexicographically. Used to
// build the up-to-10 candidate list spec.md §7 requires for TargetNotFound.
func NearestNames(pool []string, substr string, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range pool {
		if seen[n] {
			continue
		}
		if substr == "" || containsSubstr(n, substr) {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func containsSubstr(s, sub string) bool {
	return len(sub) == 0 || indexOf(s, sub) >= 0
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// Required exposes the required field-name lists for documentation/tests.
func Required() (node, edge []string) {
	return append([]string(nil), requiredNodeFields...), append([]string(nil), requiredEdgeFields...)
}
