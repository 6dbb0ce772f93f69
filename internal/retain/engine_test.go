package retain

import (
	"testing"

	"github.com/nilsy/heapsnap/internal/snapshot"
)

// buildDiamondRaw builds: "GC roots"(0) -> A(1) -> C(3) -> D(4),
//                          "GC roots"(0) -> B(2) -> C(3) -> D(4).
// Two edge-distinct shortest paths of length 3 reach D from the root.
func buildDiamondRaw(t *testing.T) *snapshot.Raw {
	t.Helper()
	bound, err := snapshot.Bind(snapshot.Meta{
		NodeFields: []string{"type", "name", "id", "self_size", "edge_count"},
		NodeTypes: []snapshot.FieldType{
			{Kind: snapshot.KindEnum, Members: []string{"object"}},
			{Kind: snapshot.KindString},
			{Kind: snapshot.KindNumber},
			{Kind: snapshot.KindNumber},
			{Kind: snapshot.KindNumber},
		},
		EdgeFields: []string{"type", "name_or_index", "to_node"},
		EdgeTypes: []snapshot.FieldType{
			{Kind: snapshot.KindEnum, Members: []string{"property"}},
			{Kind: snapshot.KindStringOrNumber},
			{Kind: snapshot.KindNumber},
		},
	})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	names := []string{"GC roots", "A", "B", "C", "D"}
	edgeCounts := []int64{2, 1, 1, 1, 0}
	nodes := make([]int64, 0, len(names)*5)
	for i, name := range names {
		id := int64(i + 1)
		if name == "GC roots" {
			id = 0 // absent id, per spec.md §6's "id when a node lacks one"
		}
		nodes = append(nodes, 0, int64(i), id, int64(10*(i+1)), edgeCounts[i])
	}

	strings := append(append([]string(nil), names...), "a", "b", "c", "d")

	edges := []int64{
		0, 5, 1 * 5, // root -> A
		0, 6, 2 * 5, // root -> B
		0, 7, 3 * 5, // A -> C
		0, 7, 3 * 5, // B -> C
		0, 8, 4 * 5, // C -> D
	}

	raw := &snapshot.Raw{Meta: *bound, Nodes: nodes, Edges: edges, Strings: strings}
	if err := raw.BuildEdgeRanges(); err != nil {
		t.Fatalf("BuildEdgeRanges() error = %v", err)
	}
	return raw
}

func TestChooseRoot_FindsByName(t *testing.T) {
	raw := buildDiamondRaw(t)
	root, err := ChooseRoot(raw)
	if err != nil {
		t.Fatalf("ChooseRoot() error = %v", err)
	}
	if root.Index != 0 || root.Synthetic {
		t.Errorf("ChooseRoot() = %+v, want {Index:0 Synthetic:false}", root)
	}
}

func TestChooseRoot_SyntheticFallback(t *testing.T) {
	raw := buildDiamondRaw(t)
	raw.Nodes[raw.Meta.NodeNameIdx] = 1 // rename node 0 away from "GC roots"
	root, err := ChooseRoot(raw)
	if err != nil {
		t.Fatalf("ChooseRoot() error = %v", err)
	}
	if root.Index != 0 || !root.Synthetic {
		t.Errorf("ChooseRoot() = %+v, want synthetic fallback to index 0", root)
	}
}

func TestResolveTargetByID(t *testing.T) {
	raw := buildDiamondRaw(t)
	idx, err := ResolveTargetByID(raw, 5, nil) // node D has id 5
	if err != nil {
		t.Fatalf("ResolveTargetByID() error = %v", err)
	}
	if idx != 4 {
		t.Errorf("ResolveTargetByID() = %d, want 4", idx)
	}
}

func TestResolveTargetByID_NotFound(t *testing.T) {
	raw := buildDiamondRaw(t)
	if _, err := ResolveTargetByID(raw, 999, nil); err == nil {
		t.Fatal("ResolveTargetByID() error = nil, want TargetNotFound")
	}
}

func TestResolveTargetByName_Unique(t *testing.T) {
	raw := buildDiamondRaw(t)
	idx, err := ResolveTargetByName(raw, "D", "", []string{"D"})
	if err != nil {
		t.Fatalf("ResolveTargetByName() error = %v", err)
	}
	if idx != 4 {
		t.Errorf("ResolveTargetByName() = %d, want 4", idx)
	}
}

func TestResolveTargetByName_AmbiguousWithoutPolicy(t *testing.T) {
	raw := buildDiamondRaw(t)
	raw.Nodes[2*5+raw.Meta.NodeNameIdx] = raw.Nodes[1*5+raw.Meta.NodeNameIdx] // B now named "A" too
	if _, err := ResolveTargetByName(raw, "A", "", []string{"A"}); err == nil {
		t.Fatal("ResolveTargetByName() error = nil, want AmbiguousTarget")
	}
}

func TestResolveTargetByName_PickLargestResolves(t *testing.T) {
	raw := buildDiamondRaw(t)
	raw.Nodes[2*5+raw.Meta.NodeNameIdx] = raw.Nodes[1*5+raw.Meta.NodeNameIdx] // B now named "A" too; B has the larger self_size
	idx, err := ResolveTargetByName(raw, "A", PickLargest, []string{"A"})
	if err != nil {
		t.Fatalf("ResolveTargetByName() error = %v", err)
	}
	if idx != 2 {
		t.Errorf("ResolveTargetByName() = %d, want 2 (B, the larger candidate)", idx)
	}
}

func TestBFS_FindsBothShortestPaths(t *testing.T) {
	raw := buildDiamondRaw(t)
	adj := NewAdjacency(raw)

	paths, err := BFS(raw, adj, 0, 4, 64, 2, nil)
	if err != nil {
		t.Fatalf("BFS() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("BFS() returned %d paths, want 2", len(paths))
	}
	for _, p := range paths {
		if len(p.Steps) != 3 {
			t.Errorf("path has %d steps, want 3", len(p.Steps))
		}
		if p.Steps[0].From != 0 || p.Steps[len(p.Steps)-1].To != 4 {
			t.Errorf("path does not start at root and end at target: %+v", p)
		}
	}
	// Deterministic ordering: the A-branch (lower edge index) enumerates first.
	if paths[0].Steps[0].To != 1 {
		t.Errorf("paths[0] first hop = %d, want 1 (A)", paths[0].Steps[0].To)
	}
}

func TestBFS_RespectsMaxPaths(t *testing.T) {
	raw := buildDiamondRaw(t)
	adj := NewAdjacency(raw)
	paths, err := BFS(raw, adj, 0, 4, 64, 1, nil)
	if err != nil {
		t.Fatalf("BFS() error = %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("BFS() returned %d paths, want 1", len(paths))
	}
}

func TestBFS_DepthExhaustedIsNotAnError(t *testing.T) {
	raw := buildDiamondRaw(t)
	adj := NewAdjacency(raw)
	paths, err := BFS(raw, adj, 0, 4, 2, 5, nil)
	if err != nil {
		t.Fatalf("BFS() error = %v, want nil (unreachable within depth is informational)", err)
	}
	if paths != nil {
		t.Errorf("BFS() = %v, want nil paths when the target is unreachable within maxDepth", paths)
	}
}

func TestAdjacency_EnsureScannedIsIdempotent(t *testing.T) {
	raw := buildDiamondRaw(t)
	adj := NewAdjacency(raw)
	if err := adj.EnsureScanned(nil); err != nil {
		t.Fatalf("EnsureScanned() error = %v", err)
	}
	first := adj.Predecessors(4)
	if err := adj.EnsureScanned(nil); err != nil {
		t.Fatalf("EnsureScanned() second call error = %v", err)
	}
	second := adj.Predecessors(4)
	if len(first) != len(second) {
		t.Errorf("Predecessors(4) changed across EnsureScanned calls: %v vs %v", first, second)
	}
}
