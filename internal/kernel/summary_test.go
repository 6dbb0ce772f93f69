package kernel

import (
	"testing"

	"github.com/nilsy/heapsnap/internal/snapshot"
)

func buildRaw(t *testing.T, names []string, typeNames []string, selfSizes []int64) *snapshot.Raw {
	t.Helper()
	bound, err := snapshot.Bind(snapshot.Meta{
		NodeFields: []string{"type", "name", "id", "self_size", "edge_count"},
		NodeTypes: []snapshot.FieldType{
			{Kind: snapshot.KindEnum, Members: []string{"object", "string", "closure"}},
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
	members := []string{"object", "string", "closure"}
	nodes := make([]int64, 0, len(names)*5)
	for i := range names {
		var typeIdx int64
		for j, m := range members {
			if m == typeNames[i] {
				typeIdx = int64(j)
			}
		}
		nodes = append(nodes, typeIdx, int64(i), int64(i+1), selfSizes[i], 0)
	}
	raw := &snapshot.Raw{Meta: *bound, Nodes: nodes, Edges: nil, Strings: append([]string(nil), names...)}
	if err := raw.BuildEdgeRanges(); err != nil {
		t.Fatalf("BuildEdgeRanges() error = %v", err)
	}
	return raw
}

func TestSummarize_AggregatesByName(t *testing.T) {
	raw := buildRaw(t,
		[]string{"A", "B", "A", "A"},
		[]string{"object", "object", "object", "object"},
		[]int64{10, 20, 30, 40})

	agg, err := Summarize(raw, nil, nil)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if agg.TotalNodes != 4 {
		t.Errorf("TotalNodes = %d, want 4", agg.TotalNodes)
	}
	a := agg.Rows["A"]
	if a == nil || a.Count != 3 || a.SelfSizeSum != 80 {
		t.Fatalf("Rows[A] = %+v, want Count=3 SelfSizeSum=80", a)
	}
	b := agg.Rows["B"]
	if b == nil || b.Count != 1 || b.SelfSizeSum != 20 {
		t.Fatalf("Rows[B] = %+v, want Count=1 SelfSizeSum=20", b)
	}
}

func TestSummarize_EmptyNameTracksTypeHistogram(t *testing.T) {
	raw := buildRaw(t,
		[]string{"", "", "X"},
		[]string{"object", "closure", "object"},
		[]int64{1, 2, 3})

	agg, err := Summarize(raw, nil, nil)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	anon := agg.Rows[""]
	if anon == nil || anon.TypeHistogram == nil {
		t.Fatal("Rows[\"\"].TypeHistogram = nil, want populated histogram")
	}
	if anon.TypeHistogram["object"] != 1 || anon.TypeHistogram["closure"] != 1 {
		t.Errorf("TypeHistogram = %v, want object:1 closure:1", anon.TypeHistogram)
	}
	named := agg.Rows["X"]
	if named != nil && named.TypeHistogram != nil {
		t.Error("a named row should not carry a TypeHistogram")
	}
}

func TestSubstringFilter(t *testing.T) {
	raw := buildRaw(t, []string{"Foo", "Bar", "Foobar"}, []string{"object", "object", "object"}, []int64{1, 1, 1})

	agg, err := Summarize(raw, SubstringFilter("Foo"), nil)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if agg.TotalNodes != 2 {
		t.Errorf("TotalNodes = %d, want 2", agg.TotalNodes)
	}
	if _, ok := agg.Rows["Bar"]; ok {
		t.Error("Rows contains \"Bar\", want it excluded by the substring filter")
	}
}

func TestSubstringFilter_EmptyMatchesEverything(t *testing.T) {
	if f := SubstringFilter(""); f != nil {
		t.Error("SubstringFilter(\"\") != nil, want nil (matches everything)")
	}
}

func TestAggregate_SortedRows(t *testing.T) {
	raw := buildRaw(t,
		[]string{"Small", "Big", "Mid"},
		[]string{"object", "object", "object"},
		[]int64{10, 100, 50})

	agg, err := Summarize(raw, nil, nil)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	rows := agg.SortedRows()
	want := []string{"Big", "Mid", "Small"}
	for i, w := range want {
		if rows[i].Name != w {
			t.Errorf("SortedRows()[%d] = %q, want %q", i, rows[i].Name, w)
		}
	}
}
