package heapsnap

// schemaVersion is carried by every result struct as "version", per
// spec.md §6.
const schemaVersion = 1

// SummaryResult is the Summary output schema of spec.md §6.
type SummaryResult struct {
	Version    int          `json:"version"`
	TotalNodes int64        `json:"total_nodes"`
	Rows       []SummaryRow `json:"rows"`
}

// SummaryRow is one constructor's aggregate row within a SummaryResult.
type SummaryRow struct {
	Name        string `json:"name"`
	Count       int64  `json:"count"`
	SelfSizeSum int64  `json:"self_size_sum"`
}

// DiffResult is the Diff output schema of spec.md §6.
type DiffResult struct {
	Version      int       `json:"version"`
	TotalNodesA  int64     `json:"total_nodes_a"`
	TotalNodesB  int64     `json:"total_nodes_b"`
	Rows         []DiffRow `json:"rows"`
}

// DiffRow is one constructor's delta row within a DiffResult.
type DiffRow struct {
	Name                 string `json:"name"`
	CountA               int64  `json:"count_a"`
	CountB               int64  `json:"count_b"`
	CountDelta           int64  `json:"count_delta"`
	SelfSizeSumA         int64  `json:"self_size_sum_a"`
	SelfSizeSumB         int64  `json:"self_size_sum_b"`
	SelfSizeSumDelta     int64  `json:"self_size_sum_delta"`
}

// TargetInfo identifies the resolved target node in RetainersResult and
// DominatorResult. Fields are nullable per spec.md §6 ("id when a node
// lacks one"); ID uses a pointer so that nullability round-trips through
// encoding/json as a JSON null rather than 0.
type TargetInfo struct {
	Index    int     `json:"index"`
	ID       *int64  `json:"id"`
	Name     string  `json:"name"`
	NodeType string  `json:"node_type"`
}

// RetainersResult is the Retainers output schema of spec.md §6.
type RetainersResult struct {
	Version int          `json:"version"`
	Target  TargetInfo   `json:"target"`
	Paths   []RetainPath `json:"paths"`
}

// RetainPath is one root-to-target walk within a RetainersResult.
type RetainPath struct {
	Steps []RetainStep `json:"steps"`
}

// RetainStep is one (from, edge, to) hop of a RetainPath.
type RetainStep struct {
	From int      `json:"from"`
	Edge EdgeInfo `json:"edge"`
	To   int      `json:"to"`
}

// EdgeInfo describes one traversed edge, per spec.md §6.
type EdgeInfo struct {
	Index       int    `json:"index"`
	EdgeType    string `json:"edge_type"`
	NameOrIndex int64  `json:"name_or_index"`
	Name        string `json:"name"`
}

// BuildMeta is the Build meta output schema of spec.md §6, written to
// meta.json by the build command alongside summary.json.
type BuildMeta struct {
	Version      int   `json:"version"`
	TotalNodes   int64 `json:"total_nodes"`
	TotalEdges   int64 `json:"total_edges"`
	TotalStrings int64 `json:"total_strings"`
}

// DominatorResult is the Dominator output schema of spec.md §6.
type DominatorResult struct {
	Version int        `json:"version"`
	Target  TargetInfo `json:"target"`
	Chain   []int      `json:"chain"`
}

// NeighborInfo describes one immediate predecessor or successor surfaced by
// Inspect, ranked by the self_size of the neighboring node.
type NeighborInfo struct {
	NodeIndex int      `json:"node_index"`
	NodeName  string   `json:"node_name"`
	SelfSize  int64    `json:"self_size"`
	Edge      EdgeInfo `json:"edge"`
}

// InspectResult is the Inspect output schema: the collaborator contract's
// "top retainers"/"top outgoing edges" node-neighborhood parameters (spec.md
// §6), selected with internal/topk rather than a full sort of every
// predecessor/edge.
type InspectResult struct {
	Version          int            `json:"version"`
	Target           TargetInfo     `json:"target"`
	TopRetainers     []NeighborInfo `json:"top_retainers"`
	TopOutgoingEdges []NeighborInfo `json:"top_outgoing_edges"`
}
