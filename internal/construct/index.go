// Package construct implements the ConstructorIndex of spec.md §3/§4.5: a
// mapping from constructor name to the ordered sequence of node indices with
// that name, built by a single linear pass on first use and cached for the
// lifetime of the raw snapshot.
package construct

import (
	"github.com/nilsy/heapsnap/internal/errs"
	"github.com/nilsy/heapsnap/internal/progress"
	"github.com/nilsy/heapsnap/internal/snapshot"
)

// Index is the built ConstructorIndex: name -> node indices, in original
// nodes order (first-seen order for the bucket itself, per spec.md §5's
// determinism guarantee).
type Index struct {
	byName map[string][]int
	// order preserves first-seen constructor-name order, for callers that
	// want deterministic iteration without re-sorting.
	order []string
}

// Build performs the single linear pass spec.md §4.5 describes. Callers
// should not call Build directly outside of an oncecache.Cache[*Index] —
// see heapsnap.Session for the cached entry point.
func Build(raw *snapshot.Raw, hooks *progress.Hooks) (*Index, error) {
	idx := &Index{byName: make(map[string]([]int))}
	n := raw.NodeCount()
	for i := 0; i < n; i++ {
		if i%(1<<20) == 0 {
			if hooks.Cancelled() {
				return nil, errs.Cancelled()
			}
			hooks.Tick("constructor_index", int64(i))
		}
		name, err := raw.Node(i).Name()
		if err != nil {
			return nil, err
		}
		if _, ok := idx.byName[name]; !ok {
			idx.order = append(idx.order, name)
		}
		idx.byName[name] = append(idx.byName[name], i)
	}
	hooks.Tick("constructor_index", int64(n))
	return idx, nil
}

// Names returns every distinct constructor name, in first-seen order.
func (idx *Index) Names() []string {
	return append([]string(nil), idx.order...)
}

// NodesFor returns the node indices with the given constructor name, in
// original nodes order. The returned slice is shared; callers must not
// mutate it.
func (idx *Index) NodesFor(name string) []int {
	return idx.byName[name]
}

// Count returns how many nodes carry the given constructor name.
func (idx *Index) Count(name string) int {
	return len(idx.byName[name])
}

