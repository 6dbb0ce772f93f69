package heapsnap

import (
	"github.com/nilsy/heapsnap/internal/errs"
	"github.com/nilsy/heapsnap/internal/topk"
)

// inspectParams collects Inspect's options.
type inspectParams struct {
	topRetainers     int
	topOutgoingEdges int
}

// InspectOption configures one Inspect call.
type InspectOption func(*inspectParams)

// WithTopRetainers caps the number of immediate predecessors Inspect
// returns, ranked by self_size. n <= 0 means none.
func WithTopRetainers(n int) InspectOption {
	return func(p *inspectParams) { p.topRetainers = n }
}

// WithTopOutgoingEdges caps the number of outgoing edges Inspect returns,
// ranked by the self_size of the edge's target node. n <= 0 means none.
func WithTopOutgoingEdges(n int) InspectOption {
	return func(p *inspectParams) { p.topOutgoingEdges = n }
}

// Inspect reports idx's immediate neighborhood: its top retainers (direct
// predecessors) and top outgoing edges (direct successors), each capped to
// a caller-chosen K and selected with internal/topk rather than sorting the
// full predecessor/edge list. This realizes the collaborator contract's
// (spec.md §6) "top retainers"/"top outgoing edges" CLI parameters as a
// session-level operation.
func (s *Session) Inspect(idx int, opts ...InspectOption) (*InspectResult, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if idx < 0 || idx >= s.raw.NodeCount() {
		return nil, errs.IndexOutOfRange("node index out of range")
	}
	p := &inspectParams{topRetainers: s.cfg.defaultTopRetainers, topOutgoingEdges: s.cfg.defaultTopOutgoingEdges}
	for _, opt := range opts {
		opt(p)
	}

	target, err := s.targetInfo(idx)
	if err != nil {
		return nil, err
	}

	retainers, err := s.topRetainersFor(idx, p.topRetainers)
	if err != nil {
		return nil, err
	}
	outgoing, err := s.topOutgoingEdgesFor(idx, p.topOutgoingEdges)
	if err != nil {
		return nil, err
	}

	return &InspectResult{
		Version:          schemaVersion,
		Target:           target,
		TopRetainers:     retainers,
		TopOutgoingEdges: outgoing,
	}, nil
}

// topRetainersFor selects idx's K largest-by-self_size immediate
// predecessors. A predecessor reachable via more than one edge (a
// multi-edge) is counted once, keeping its lowest-index edge.
func (s *Session) topRetainersFor(idx, k int) ([]NeighborInfo, error) {
	adj, err := s.adj()
	if err != nil {
		return nil, err
	}

	firstEdge := make(map[int]int)
	var order []int
	for _, pe := range adj.Predecessors(idx) {
		if _, seen := firstEdge[pe.From]; seen {
			continue
		}
		firstEdge[pe.From] = pe.Edge
		order = append(order, pe.From)
	}

	sel := topk.NewSelector(k)
	for _, from := range order {
		sel.Push(topk.Item{Key: from, Score: s.raw.Node(from).SelfSize()})
	}

	out := make([]NeighborInfo, 0, len(sel.Items()))
	for _, it := range sel.Items() {
		edge, err := edgeInfo(s.raw, firstEdge[it.Key])
		if err != nil {
			return nil, err
		}
		name, err := s.raw.Node(it.Key).Name()
		if err != nil {
			return nil, err
		}
		out = append(out, NeighborInfo{NodeIndex: it.Key, NodeName: name, SelfSize: it.Score, Edge: edge})
	}
	return out, nil
}

// topOutgoingEdgesFor selects idx's K largest-by-target-self_size outgoing
// edges. Unlike predecessors, outgoing edges are ranked individually rather
// than deduped by target: two distinct edges to the same target are two
// distinct pieces of retained-by information.
func (s *Session) topOutgoingEdgesFor(idx, k int) ([]NeighborInfo, error) {
	start, end := s.raw.Node(idx).OutgoingEdges()

	sel := topk.NewSelector(k)
	for ei := start; ei < end; ei++ {
		to := s.raw.Edge(ei).ToNodeIndex()
		sel.Push(topk.Item{Key: ei, Score: s.raw.Node(to).SelfSize()})
	}

	out := make([]NeighborInfo, 0, len(sel.Items()))
	for _, it := range sel.Items() {
		edge, err := edgeInfo(s.raw, it.Key)
		if err != nil {
			return nil, err
		}
		to := s.raw.Edge(it.Key).ToNodeIndex()
		name, err := s.raw.Node(to).Name()
		if err != nil {
			return nil, err
		}
		out = append(out, NeighborInfo{NodeIndex: to, NodeName: name, SelfSize: it.Score, Edge: edge})
	}
	return out, nil
}
