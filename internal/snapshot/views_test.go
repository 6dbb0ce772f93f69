package snapshot

import "testing"

func TestNodeView_Accessors(t *testing.T) {
	raw := buildChainRaw(t)
	if err := raw.BuildEdgeRanges(); err != nil {
		t.Fatalf("BuildEdgeRanges() error = %v", err)
	}

	node := raw.Node(1)
	name, err := node.Name()
	if err != nil || name != "A" {
		t.Fatalf("Node(1).Name() = (%q, %v), want (\"A\", nil)", name, err)
	}
	if id, ok := node.ID(); !ok || id != 2 {
		t.Errorf("Node(1).ID() = (%d, %v), want (2, true)", id, ok)
	}
	if got := node.SelfSize(); got != 20 {
		t.Errorf("Node(1).SelfSize() = %d, want 20", got)
	}
	typeName, err := node.TypeName()
	if err != nil || typeName != "object" {
		t.Fatalf("Node(1).TypeName() = (%q, %v), want (\"object\", nil)", typeName, err)
	}
	start, end := node.OutgoingEdges()
	if start != 2 || end != 3 {
		t.Errorf("Node(1).OutgoingEdges() = (%d, %d), want (2, 3)", start, end)
	}
}

func TestNodeView_ID_ZeroMeansAbsent(t *testing.T) {
	raw := buildChainRaw(t)
	raw.Nodes[raw.Meta.NodeIDIdx] = 0 // node 0's id field, forced to zero
	if id, ok := raw.Node(0).ID(); ok || id != 0 {
		t.Errorf("Node(0).ID() = (%d, %v), want (0, false)", id, ok)
	}
}

func TestEdgeView_Accessors(t *testing.T) {
	raw := buildChainRaw(t)
	if err := raw.BuildEdgeRanges(); err != nil {
		t.Fatalf("BuildEdgeRanges() error = %v", err)
	}

	edge := raw.Edge(0) // root -> A, property "a"
	typeName, err := edge.TypeName()
	if err != nil || typeName != "property" {
		t.Fatalf("Edge(0).TypeName() = (%q, %v), want (\"property\", nil)", typeName, err)
	}
	if got := edge.ToNodeIndex(); got != 1 {
		t.Errorf("Edge(0).ToNodeIndex() = %d, want 1", got)
	}
	name, err := edge.ResolvedName()
	if err != nil || name != "a" {
		t.Fatalf("Edge(0).ResolvedName() = (%q, %v), want (\"a\", nil)", name, err)
	}
}

func TestEdgeView_ResolvedName_Element(t *testing.T) {
	raw := buildChainRaw(t)
	raw.Edges[raw.Meta.EdgeTypeIdx] = 1 // "element", per the enum table in buildChainRaw
	raw.Edges[raw.Meta.EdgeNameOrIndexIdx] = 7
	name, err := raw.Edge(0).ResolvedName()
	if err != nil || name != "" {
		t.Fatalf("ResolvedName() = (%q, %v), want (\"\", nil) for an element edge", name, err)
	}
}

func TestRaw_StringAt_OutOfRange(t *testing.T) {
	raw := buildChainRaw(t)
	raw.Nodes[raw.Meta.NodeNameIdx] = -1
	if _, err := raw.Node(0).Name(); err == nil {
		t.Fatal("Name() error = nil, want out-of-range error for negative string index")
	}
}

func TestRaw_EnumAt_OutOfRange(t *testing.T) {
	raw := buildChainRaw(t)
	raw.Nodes[raw.Meta.NodeTypeIdx] = 99
	if _, err := raw.Node(0).TypeName(); err == nil {
		t.Fatal("TypeName() error = nil, want out-of-range error for invalid enum value")
	}
}
