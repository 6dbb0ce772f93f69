package kernel

import "sort"

// DiffRow is one constructor's delta between two aggregates, per spec.md
// §4.6.
type DiffRow struct {
	Name            string
	CountA          int64
	CountB          int64
	CountDelta      int64
	SelfSizeSumA    int64
	SelfSizeSumB    int64
	SelfSizeSumDelta int64
}

// Diff joins two summary aggregates over the union of constructor names.
// Missing entries on either side contribute zero, per spec.md §4.6.
func Diff(a, b *Aggregate) []*DiffRow {
	names := make(map[string]bool)
	for name := range a.Rows {
		names[name] = true
	}
	for name := range b.Rows {
		names[name] = true
	}

	out := make([]*DiffRow, 0, len(names))
	for name := range names {
		var ca, sa, cb, sb int64
		if r, ok := a.Rows[name]; ok {
			ca, sa = r.Count, r.SelfSizeSum
		}
		if r, ok := b.Rows[name]; ok {
			cb, sb = r.Count, r.SelfSizeSum
		}
		out = append(out, &DiffRow{
			Name:             name,
			CountA:           ca,
			CountB:           cb,
			CountDelta:       cb - ca,
			SelfSizeSumA:     sa,
			SelfSizeSumB:     sb,
			SelfSizeSumDelta: sb - sa,
		})
	}
	return out
}

// SortDiffRows sorts in spec.md §4.6's canonical order: descending absolute
// size delta, ties by descending absolute count delta, ties by name.
func SortDiffRows(rows []*DiffRow) {
	sort.Slice(rows, func(i, j int) bool {
		ai, aj := abs64(rows[i].SelfSizeSumDelta), abs64(rows[j].SelfSizeSumDelta)
		if ai != aj {
			return ai > aj
		}
		ci, cj := abs64(rows[i].CountDelta), abs64(rows[j].CountDelta)
		if ci != cj {
			return ci > cj
		}
		return rows[i].Name < rows[j].Name
	})
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
