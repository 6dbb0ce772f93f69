// Package retain implements the retainer engine of spec.md §4.7: target and
// root selection, amortized lazy reverse-adjacency construction, and
// edge-distinct bounded BFS producing up to N shortest retainer paths.
//
// The frontier-expansion shape is grounded on the teacher's
// internal/index/hnsw/search.go searchLevel: a visited-bool-slice guarding
// an adjacency-list traversal, expanded frontier-wave by frontier-wave. The
// adjacency here is reverse (who points at me) rather than forward (who do I
// point at), and is populated lazily rather than precomputed.
package retain

import (
	"sort"
	"strconv"

	"github.com/nilsy/heapsnap/internal/errs"
	"github.com/nilsy/heapsnap/internal/progress"
	"github.com/nilsy/heapsnap/internal/snapshot"
)

// RootNodeName is the canonical root marker, per spec.md §4.7.
const RootNodeName = "GC roots"

// Root identifies the chosen root node and whether it was found by name or
// fell back to the synthetic index-0 convention.
type Root struct {
	Index     int
	Synthetic bool
}

// ChooseRoot implements spec.md §4.7's root selection: the lowest-index node
// named "GC roots", or a synthetic fallback to index 0.
func ChooseRoot(raw *snapshot.Raw) (Root, error) {
	n := raw.NodeCount()
	for i := 0; i < n; i++ {
		name, err := raw.Node(i).Name()
		if err != nil {
			return Root{}, err
		}
		if name == RootNodeName {
			return Root{Index: i}, nil
		}
	}
	return Root{Index: 0, Synthetic: true}, nil
}

// PickPolicy disambiguates among multiple nodes sharing a constructor name.
type PickPolicy string

const (
	PickLargest PickPolicy = "largest"
	PickCount   PickPolicy = "count"
)

// ResolveTargetByID implements the numeric-id half of spec.md §4.7's target
// selection: a single-pass, cancellable linear scan of the id field.
func ResolveTargetByID(raw *snapshot.Raw, id int64, hooks *progress.Hooks) (int, error) {
	n := raw.NodeCount()
	for i := 0; i < n; i++ {
		if i%(1<<20) == 0 {
			if hooks.Cancelled() {
				return 0, errs.Cancelled()
			}
		}
		if v, ok := raw.Node(i).ID(); ok && v == id {
			return i, nil
		}
	}
	return 0, errs.TargetNotFound("no node with id "+strconv.FormatInt(id, 10), nil)
}

// ResolveTargetByName implements the constructor-name half of spec.md
// §4.7's target selection. An empty policy with more than one candidate is
// an AmbiguousTarget failure; spec.md's open question on "count" is resolved
// (DESIGN.md) as an alias for "largest".
func ResolveTargetByName(raw *snapshot.Raw, name string, policy PickPolicy, candidateNames []string) (int, error) {
	var candidates []int
	n := raw.NodeCount()
	for i := 0; i < n; i++ {
		nm, err := raw.Node(i).Name()
		if err != nil {
			return 0, err
		}
		if nm == name {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		near := snapshot.NearestNames(candidateNames, name, 10)
		return 0, errs.TargetNotFound("no node with constructor name "+name, near)
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	if policy == "" {
		return 0, errs.AmbiguousTarget("multiple nodes named "+name+" and no pick policy given", namesFor(candidates))
	}
	// largest and count (aliased to largest, see DESIGN.md) both pick the
	// candidate with maximum self_size; ties keep the lowest index for
	// determinism (spec.md §5).
	best := candidates[0]
	bestSize := raw.Node(best).SelfSize()
	for _, idx := range candidates[1:] {
		sz := raw.Node(idx).SelfSize()
		if sz > bestSize {
			best, bestSize = idx, sz
		}
	}
	return best, nil
}

func namesFor(indices []int) []string {
	out := make([]string, len(indices))
	for i, idx := range indices {
		out[i] = strconv.Itoa(idx)
	}
	return out
}

// reverseEdge is one (from-node-index, edge-index) pair pointing at a node.
type reverseEdge struct {
	From int
	Edge int
}

// Adjacency is the lazily-populated reverse adjacency map of spec.md §3/§4.7.
type Adjacency struct {
	raw      *snapshot.Raw
	rev      map[int][]reverseEdge
	scanned  bool
}

// NewAdjacency returns an empty reverse-adjacency structure bound to raw. It
// performs no work until EnsureScanned is called.
func NewAdjacency(raw *snapshot.Raw) *Adjacency {
	return &Adjacency{raw: raw, rev: make(map[int][]reverseEdge)}
}

// EnsureScanned performs the one-time full edge scan spec.md §4.7 describes:
// "on the first demand in a BFS, it scans the entire edges array once and
// populates reverse adjacency for all nodes encountered". Subsequent calls
// are no-ops.
func (a *Adjacency) EnsureScanned(hooks *progress.Hooks) error {
	if a.scanned {
		return nil
	}
	e := a.raw.EdgeCount()
	n := a.raw.NodeCount()
	owner := 0
	for ei := 0; ei < e; ei++ {
		for owner+1 <= n && ei >= int(a.raw.EdgeStart[owner+1]) {
			owner++
		}
		to := a.raw.Edge(ei).ToNodeIndex()
		a.rev[to] = append(a.rev[to], reverseEdge{From: owner, Edge: ei})
		if ei%(1<<18) == 0 {
			if hooks.Cancelled() {
				return errs.Cancelled()
			}
			hooks.Tick("reverse_adjacency", int64(ei))
		}
	}
	hooks.Tick("reverse_adjacency", int64(e))
	a.scanned = true
	return nil
}

// Predecessors returns the (from, edge) pairs pointing at v. EnsureScanned
// must have been called first; see BFS for the usual caller.
func (a *Adjacency) Predecessors(v int) []reverseEdge {
	return a.rev[v]
}

// Step is one (from, edge, to) hop of a RetainerPath, per spec.md §3.
type Step struct {
	From int
	Edge int
	To   int
}

// Path is an ordered, root-to-target sequence of steps.
type Path struct {
	Steps []Step
}

// dagEdge is one forward hop (u -> v via edge) that lies on a shortest path
// from some node to target, kept in ascending edge-index discovery order for
// determinism (spec.md §5).
type dagEdge struct {
	edge int
	to   int
}

// BFS implements spec.md §4.7's bounded, edge-distinct shortest-path search.
//
// A single-parent-pointer BFS tree can only ever yield one path to a given
// node, which would silently collapse genuinely distinct shortest paths
// whenever more than one predecessor reaches the same node at the same
// layer (most importantly, whenever more than one chain reaches root
// itself). Instead this computes, layer by layer, every node's distance to
// target (classical multi-source-free BFS, unbounded fan-in per layer), then
// derives the subgraph of edges that lie on *some* shortest path (u -> v
// where dist(u) == dist(v)+1), and enumerates up to maxPaths distinct
// root-to-target walks of that subgraph by depth-first search. Every such
// walk is automatically simple (dist strictly decreases along it) and
// edge-distinct paths differing only by a multi-edge are both kept, per
// spec.md §4.7's path-diversity rule.
func BFS(raw *snapshot.Raw, adj *Adjacency, root, target, maxDepth, maxPaths int, hooks *progress.Hooks) ([]Path, error) {
	if err := adj.EnsureScanned(hooks); err != nil {
		return nil, err
	}

	dist := map[int]int{target: 0}
	queue := []int{target}
	depth := 0
	for len(queue) > 0 && depth < maxDepth {
		if hooks.Cancelled() {
			return nil, errs.Cancelled()
		}
		hooks.Tick("bfs_layer", int64(depth))

		var next []int
		for _, v := range queue {
			for _, pe := range adj.Predecessors(v) {
				if _, ok := dist[pe.From]; ok {
					continue
				}
				dist[pe.From] = depth + 1
				next = append(next, pe.From)
			}
		}
		queue = next
		depth++
	}
	hooks.Tick("bfs_layer", int64(depth))

	if _, ok := dist[root]; !ok {
		return nil, nil // DepthExhausted/unreachable is informational, not a failure (spec.md §4.7/§7)
	}

	// Map iteration order is randomized; build the DAG by walking visited
	// nodes in ascending index order so dag[u]'s edge list order (and thus
	// path enumeration order) is deterministic across runs, per spec.md §5.
	visitedNodes := make([]int, 0, len(dist))
	for v := range dist {
		visitedNodes = append(visitedNodes, v)
	}
	sort.Ints(visitedNodes)

	dag := make(map[int][]dagEdge)
	for _, v := range visitedNodes {
		dv := dist[v]
		for _, pe := range adj.Predecessors(v) {
			if du, ok := dist[pe.From]; ok && du == dv+1 {
				dag[pe.From] = append(dag[pe.From], dagEdge{edge: pe.Edge, to: v})
			}
		}
	}
	for u := range dag {
		sort.Slice(dag[u], func(i, j int) bool { return dag[u][i].edge < dag[u][j].edge })
	}

	var paths []Path
	var walk func(node int, acc []Step) bool // returns true once maxPaths reached
	walk = func(node int, acc []Step) bool {
		if hooks.Cancelled() {
			return true
		}
		if node == target {
			paths = append(paths, Path{Steps: append([]Step(nil), acc...)})
			return len(paths) >= maxPaths
		}
		for _, e := range dag[node] {
			acc = append(acc, Step{From: node, Edge: e.edge, To: e.to})
			if walk(e.to, acc) {
				return true
			}
			acc = acc[:len(acc)-1]
		}
		return false
	}
	walk(root, nil)

	if hooks.Cancelled() {
		return nil, errs.Cancelled()
	}
	return paths, nil
}
