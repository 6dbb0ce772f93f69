package heapsnap

import (
	"errors"
	"testing"

	"github.com/nilsy/heapsnap/internal/errs"
)

// Scenarios A-F exercise the testdata/ fixtures against the exact
// end-to-end expectations, one file (or pair) per scenario.

func openFixture(t *testing.T, path string) *Session {
	t.Helper()
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", path, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestScenarioA_MinimumSnapshotSummary(t *testing.T) {
	s := openFixture(t, "../testdata/scenario_abc.heapsnapshot")
	res, err := s.Summary()
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if res.TotalNodes != 2 {
		t.Errorf("TotalNodes = %d, want 2", res.TotalNodes)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(res.Rows))
	}
	// FooStore first: larger self_size_sum (42 vs 0).
	if res.Rows[0].Name != "FooStore" || res.Rows[0].Count != 1 || res.Rows[0].SelfSizeSum != 42 {
		t.Errorf("Rows[0] = %+v, want FooStore/1/42", res.Rows[0])
	}
	if res.Rows[1].Name != "GC roots" || res.Rows[1].Count != 1 || res.Rows[1].SelfSizeSum != 0 {
		t.Errorf("Rows[1] = %+v, want \"GC roots\"/1/0", res.Rows[1])
	}
}

func TestScenarioB_RetainersToFooStore(t *testing.T) {
	s := openFixture(t, "../testdata/scenario_abc.heapsnapshot")
	res, err := s.Query().ID(2).Retainers() // FooStore has id 2
	if err != nil {
		t.Fatalf("Retainers() error = %v", err)
	}
	if len(res.Paths) != 1 {
		t.Fatalf("len(Paths) = %d, want 1", len(res.Paths))
	}
	steps := res.Paths[0].Steps
	if len(steps) != 1 {
		t.Fatalf("len(Steps) = %d, want 1", len(steps))
	}
	step := steps[0]
	if step.From != 0 || step.To != 1 {
		t.Errorf("step = %+v, want From=0 To=1", step)
	}
	if step.Edge.EdgeType != "property" || step.Edge.Name != "store" {
		t.Errorf("step.Edge = %+v, want edge_type=property name=store", step.Edge)
	}
}

func TestScenarioC_DominatorChainForFooStore(t *testing.T) {
	s := openFixture(t, "../testdata/scenario_abc.heapsnapshot")
	res, err := s.Query().ID(2).Dominator()
	if err != nil {
		t.Fatalf("Dominator() error = %v", err)
	}
	want := []int{0, 1}
	if len(res.Chain) != len(want) {
		t.Fatalf("Chain = %v, want %v", res.Chain, want)
	}
	for i, w := range want {
		if res.Chain[i] != w {
			t.Errorf("Chain = %v, want %v", res.Chain, want)
		}
	}
}

func TestScenarioD_DiffFooStoreGrowsBarUnchanged(t *testing.T) {
	a := openFixture(t, "../testdata/scenario_d_a.heapsnapshot")
	b := openFixture(t, "../testdata/scenario_d_b.heapsnapshot")
	res, err := a.Diff(b)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	byName := make(map[string]DiffRow, len(res.Rows))
	for _, r := range res.Rows {
		byName[r.Name] = r
	}
	foo := byName["FooStore"]
	if foo.CountA != 10 || foo.CountB != 12 || foo.CountDelta != 2 {
		t.Errorf("FooStore row = %+v, want CountA=10 CountB=12 CountDelta=2", foo)
	}
	if foo.SelfSizeSumA != 2048 || foo.SelfSizeSumB != 3072 || foo.SelfSizeSumDelta != 1024 {
		t.Errorf("FooStore row = %+v, want SelfSizeSumA=2048 SelfSizeSumB=3072 SelfSizeSumDelta=1024", foo)
	}
	bar := byName["Bar"]
	if bar.CountDelta != 0 || bar.SelfSizeSumDelta != 0 {
		t.Errorf("Bar row = %+v, want all deltas zero", bar)
	}
}

func TestScenarioE_SummaryRestrictedBySubstring(t *testing.T) {
	s := openFixture(t, "../testdata/scenario_e.heapsnapshot")
	res, err := s.Summary(WithSubstring("Store"))
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	names := make(map[string]bool, len(res.Rows))
	for _, r := range res.Rows {
		names[r.Name] = true
	}
	if len(names) != 2 || !names["FooStore"] || !names["StoreKeeper"] {
		t.Errorf("Rows = %+v, want exactly FooStore and StoreKeeper", res.Rows)
	}
	if names["Bar"] {
		t.Error("Rows includes Bar, want it excluded by the \"Store\" substring filter")
	}
}

func TestScenarioF_TruncatedNodesArrayFailsWithByteOffset(t *testing.T) {
	_, err := Open("../testdata/scenario_f_truncated.heapsnapshot")
	if err == nil {
		t.Fatal("Open() error = nil, want MalformedJson")
	}
	if !errors.Is(err, errs.ErrMalformedJSON) {
		t.Errorf("Open() error = %v, want ErrMalformedJSON", err)
	}
	var structured *errs.Error
	if !errors.As(err, &structured) {
		t.Fatalf("error does not unwrap to *errs.Error: %v", err)
	}
	if structured.Offset == nil {
		t.Error("structured error carries no byte offset")
	}
}
