// Package dominate implements the dominator engine of spec.md §4.8:
// immediate dominators over the forward graph rooted at the retainer
// engine's chosen root, via the iterative Cooper-Harvey-Kennedy algorithm.
//
// This is deliberately NOT Lengauer-Tarjan, despite strong LT grounding
// material in the retrieved example pack (a hprof dominator-tree analyzer):
// spec.md §4.8 names the simpler iterative data-flow algorithm explicitly,
// so only LT's general shape — array-based node-index state, an iterative
// (non-recursive) DFS via an explicit stack to avoid recursion overflow on
// deep graphs — is carried over; the semidominator/link-eval machinery is
// not.
package dominate

import (
	"sort"

	"github.com/nilsy/heapsnap/internal/errs"
	"github.com/nilsy/heapsnap/internal/progress"
	"github.com/nilsy/heapsnap/internal/retain"
	"github.com/nilsy/heapsnap/internal/snapshot"
)

// Map is the DominatorMap of spec.md §3: idom[n] for every reachable node n,
// root included (idom[root] == root). Unreachable nodes have no entry.
type Map struct {
	idom map[int]int
	root int
}

// frame is one explicit-stack entry of the iterative forward DFS that
// assigns reverse-postorder numbers.
type frame struct {
	node     int
	edgeNext int
	edgeEnd  int
}

// Build computes the DominatorMap rooted at root. adj need not have been
// scanned yet; Build calls EnsureScanned itself so the session may share one
// Adjacency instance between the retainer and dominator engines.
func Build(raw *snapshot.Raw, adj *retain.Adjacency, root int, hooks *progress.Hooks) (*Map, error) {
	if err := adj.EnsureScanned(hooks); err != nil {
		return nil, err
	}

	rpoOrder, err := reversePostorder(raw, root, hooks)
	if err != nil {
		return nil, err
	}
	rpoNum := make(map[int]int, len(rpoOrder))
	for i, n := range rpoOrder {
		rpoNum[n] = i
	}

	idom := map[int]int{root: root}
	pass := 0
	for {
		if hooks.Cancelled() {
			return nil, errs.Cancelled()
		}
		hooks.Tick("dominator_pass", int64(pass))
		changed := false
		for _, b := range rpoOrder {
			if b == root {
				continue
			}
			preds := uniquePredecessors(adj, b)
			newIdom := -1
			haveNew := false
			for _, p := range preds {
				if _, ok := idom[p]; !ok {
					continue
				}
				if !haveNew {
					newIdom = p
					haveNew = true
					continue
				}
				newIdom = intersect(p, newIdom, idom, rpoNum)
			}
			if !haveNew {
				continue
			}
			if old, ok := idom[b]; !ok || old != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
		pass++
		if !changed {
			break
		}
	}

	return &Map{idom: idom, root: root}, nil
}

// reversePostorder performs an iterative (explicit-stack) forward DFS from
// root over the outgoing-edge graph and returns reachable nodes in
// reverse-postorder, root first.
func reversePostorder(raw *snapshot.Raw, root int, hooks *progress.Hooks) ([]int, error) {
	visited := map[int]bool{root: true}
	var postorder []int

	s0, e0 := raw.Node(root).OutgoingEdges()
	stack := []frame{{node: root, edgeNext: s0, edgeEnd: e0}}

	iter := 0
	for len(stack) > 0 {
		iter++
		if iter%(1<<20) == 0 {
			if hooks.Cancelled() {
				return nil, errs.Cancelled()
			}
		}
		top := &stack[len(stack)-1]
		if top.edgeNext < top.edgeEnd {
			ei := top.edgeNext
			top.edgeNext++
			to := raw.Edge(ei).ToNodeIndex()
			if !visited[to] {
				visited[to] = true
				s, e := raw.Node(to).OutgoingEdges()
				stack = append(stack, frame{node: to, edgeNext: s, edgeEnd: e})
			}
			continue
		}
		postorder = append(postorder, top.node)
		stack = stack[:len(stack)-1]
	}

	rpo := make([]int, len(postorder))
	for i, n := range postorder {
		rpo[len(postorder)-1-i] = n
	}
	return rpo, nil
}

// uniquePredecessors dedupes adj's predecessor list down to distinct node
// indices, dropping self-loops, preserving first-seen (ascending edge index)
// order: spec.md §4.8's "self-loops ignored; multi-edges counted once".
func uniquePredecessors(adj *retain.Adjacency, b int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, pe := range adj.Predecessors(b) {
		if pe.From == b {
			continue
		}
		if seen[pe.From] {
			continue
		}
		seen[pe.From] = true
		out = append(out, pe.From)
	}
	return out
}

// intersect walks both pointers up the dominator tree, always advancing the
// one with the larger reverse-postorder number, until they meet.
func intersect(a, b int, idom map[int]int, rpoNum map[int]int) int {
	for a != b {
		for rpoNum[a] > rpoNum[b] {
			a = idom[a]
		}
		for rpoNum[b] > rpoNum[a] {
			b = idom[b]
		}
	}
	return a
}

// Chain walks idom from target up to root, reversed to root->target order.
// Returns a TargetNotFound-kind error if target is unreachable from root.
func (m *Map) Chain(target int) ([]int, error) {
	var chain []int
	cur := target
	for {
		chain = append(chain, cur)
		if cur == m.root {
			break
		}
		next, ok := m.idom[cur]
		if !ok {
			return nil, errs.TargetNotFound("node is unreachable from root; no dominator chain exists", nil)
		}
		cur = next
	}
	reverse(chain)
	return chain, nil
}

// Idom returns the immediate dominator of n and whether n is reachable.
func (m *Map) Idom(n int) (int, bool) {
	v, ok := m.idom[n]
	return v, ok
}

// ReachableCount returns how many nodes have a recorded dominator (root
// included). Exposed for tests verifying property 5 of spec.md §8.
func (m *Map) ReachableCount() int { return len(m.idom) }

// SortedReachable returns every reachable node index in ascending order, for
// deterministic iteration in tests and renderers.
func (m *Map) SortedReachable() []int {
	out := make([]int, 0, len(m.idom))
	for n := range m.idom {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

func reverse(xs []int) {
	for i, j := 0, len(xs)-1; i < j; i, j = i+1, j-1 {
		xs[i], xs[j] = xs[j], xs[i]
	}
}
