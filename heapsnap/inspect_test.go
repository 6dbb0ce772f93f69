package heapsnap

import "testing"

func TestInspect_TopRetainersRankedBySelfSize(t *testing.T) {
	s := openDiamond(t)
	res, err := s.Inspect(3, WithTopRetainers(2), WithTopOutgoingEdges(0)) // C
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if len(res.TopRetainers) != 2 {
		t.Fatalf("TopRetainers = %v, want 2 entries", res.TopRetainers)
	}
	if res.TopRetainers[0].NodeName != "B" || res.TopRetainers[0].SelfSize != 30 {
		t.Errorf("TopRetainers[0] = %+v, want B/30", res.TopRetainers[0])
	}
	if res.TopRetainers[1].NodeName != "A" || res.TopRetainers[1].SelfSize != 20 {
		t.Errorf("TopRetainers[1] = %+v, want A/20", res.TopRetainers[1])
	}
	if len(res.TopOutgoingEdges) != 0 {
		t.Errorf("TopOutgoingEdges = %v, want none (k=0)", res.TopOutgoingEdges)
	}
}

func TestInspect_TopOutgoingEdgesRankedByTargetSelfSize(t *testing.T) {
	s := openDiamond(t)
	res, err := s.Inspect(0, WithTopRetainers(0), WithTopOutgoingEdges(1)) // GC roots
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if len(res.TopOutgoingEdges) != 1 {
		t.Fatalf("TopOutgoingEdges = %v, want 1 entry", res.TopOutgoingEdges)
	}
	if res.TopOutgoingEdges[0].NodeName != "B" || res.TopOutgoingEdges[0].SelfSize != 30 {
		t.Errorf("TopOutgoingEdges[0] = %+v, want B/30 (the larger of root's two children)", res.TopOutgoingEdges[0])
	}
}

func TestInspect_IndexOutOfRange(t *testing.T) {
	s := openDiamond(t)
	if _, err := s.Inspect(99); err == nil {
		t.Fatal("Inspect() error = nil, want IndexOutOfRange")
	}
}
