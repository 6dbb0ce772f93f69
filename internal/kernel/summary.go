// Package kernel implements the summary and diff kernels of spec.md §4.5 and
// §4.6: constructor-keyed aggregation over a single snapshot, and a
// pairwise join of two aggregates into deltas.
package kernel

import (
	"sort"
	"strings"

	"github.com/nilsy/heapsnap/internal/errs"
	"github.com/nilsy/heapsnap/internal/progress"
	"github.com/nilsy/heapsnap/internal/snapshot"
)

// cancelCheckEvery matches spec.md §5's "every 64K iterations is sufficient"
// cadence for the summary/diff main loops.
const cancelCheckEvery = 1 << 16

// Row is one constructor's aggregate, keyed by Name.
type Row struct {
	Name         string
	Count        int64
	SelfSizeSum  int64
	TypeHistogram map[string]int64 // present for empty-name entries, per spec.md §4.5
}

// Aggregate is the Summary kernel's result: every constructor's Row plus the
// total node count actually walked.
type Aggregate struct {
	Rows       map[string]*Row
	TotalNodes int64
}

// NodeFilter decides whether a node participates in the aggregate. A nil
// NodeFilter matches every node.
type NodeFilter func(snapshot.NodeView) (bool, error)

// SubstringFilter implements spec.md §4.5's default filter: case-sensitive
// substring match against the constructor name. An empty substr matches
// everything.
func SubstringFilter(substr string) NodeFilter {
	if substr == "" {
		return nil
	}
	return func(n snapshot.NodeView) (bool, error) {
		name, err := n.Name()
		if err != nil {
			return false, err
		}
		return strings.Contains(name, substr), nil
	}
}

// Summarize walks every node once, accumulating into constructor-keyed Rows,
// per spec.md §4.5.
func Summarize(raw *snapshot.Raw, filter NodeFilter, hooks *progress.Hooks) (*Aggregate, error) {
	agg := &Aggregate{Rows: make(map[string]*Row)}
	n := raw.NodeCount()
	for i := 0; i < n; i++ {
		if i%cancelCheckEvery == 0 {
			if hooks.Cancelled() {
				return nil, errs.Cancelled()
			}
			hooks.Tick("summary", int64(i))
		}
		node := raw.Node(i)
		if filter != nil {
			ok, err := filter(node)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		name, err := node.Name()
		if err != nil {
			return nil, err
		}
		row := agg.Rows[name]
		if row == nil {
			row = &Row{Name: name}
			if name == "" {
				row.TypeHistogram = make(map[string]int64)
			}
			agg.Rows[name] = row
		}
		row.Count++
		row.SelfSizeSum += node.SelfSize()
		if row.TypeHistogram != nil {
			typeName, err := node.TypeName()
			if err != nil {
				return nil, err
			}
			row.TypeHistogram[typeName]++
		}
		agg.TotalNodes++
	}
	hooks.Tick("summary", int64(n))
	return agg, nil
}

// SortedRows returns the aggregate's rows in spec.md §4.5's canonical order:
// descending self_size_sum, ties by descending count, ties by name.
func (a *Aggregate) SortedRows() []*Row {
	out := make([]*Row, 0, len(a.Rows))
	for _, r := range a.Rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SelfSizeSum != out[j].SelfSizeSum {
			return out[i].SelfSizeSum > out[j].SelfSizeSum
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
