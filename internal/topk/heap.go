// Package topk selects the K largest-by-score items from a stream without
// sorting the full set, for the CLI's "top retainers"/"top outgoing edges"
// parameters (spec.md §6 collaborator contract).
//
// Adapted from the teacher's internal/util/heap.go Candidate min/max-heap:
// the same container/heap.Interface min-heap-of-size-K trick, retargeted
// from ANN search candidates to generic (key, score) pairs.
package topk

import (
	"container/heap"
	"sort"
)

// Item is one scored entry; Key is opaque to this package (a node index, an
// edge index, whatever the caller is ranking).
type Item struct {
	Key   int
	Score int64
}

// minHeap is a container/heap.Interface min-heap over Item.Score, used to
// keep only the K largest scores seen so far: whenever it grows past K, the
// current minimum (the weakest of the top-K so far) is evicted.
type minHeap []Item

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(Item)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Selector collects the K items with the highest Score pushed into it.
type Selector struct {
	k int
	h minHeap
}

// NewSelector returns a Selector that retains at most k items.
func NewSelector(k int) *Selector {
	if k < 0 {
		k = 0
	}
	return &Selector{k: k}
}

// Push offers one candidate item.
func (s *Selector) Push(it Item) {
	if s.k == 0 {
		return
	}
	if s.h.Len() < s.k {
		heap.Push(&s.h, it)
		return
	}
	if s.h.Len() > 0 && it.Score > s.h[0].Score {
		heap.Pop(&s.h)
		heap.Push(&s.h, it)
	}
}

// Items returns a copy of the retained items sorted by descending score
// (ties broken by ascending Key for determinism). The selector itself is
// left unchanged.
func (s *Selector) Items() []Item {
	out := make([]Item, s.h.Len())
	copy(out, s.h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	return out
}
