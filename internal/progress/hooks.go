// Package progress implements the cancellation/progress hooks of spec.md §2
// item 9 and the polling points §5 enumerates: a shared cancel flag polled
// between records and at coarse milestones, and a progress sink called at
// those same milestones. Hooks is intentionally the only thing every other
// core package needs to import from here — it has zero dependencies on the
// rest of the core, so it cannot create an import cycle.
package progress

// Hooks bundles the cancel flag and progress sink a long-running operation
// polls. A nil *Hooks (or a nil field) behaves as "never cancelled, no
// progress sink" — every core loop is safe to call with hooks == nil.
type Hooks struct {
	// Cancel, when non-nil, is polled at well-defined points (parser record
	// boundaries, every 64K summary/diff iterations, BFS layer boundaries,
	// dominator iteration boundaries, reverse-adjacency scan chunks). It
	// must be safe to call from the goroutine driving the operation; it is
	// never called concurrently with itself.
	Cancel func() bool

	// Report, when non-nil, is called at coarse milestones with a stage
	// name and a monotonically increasing count for that stage. The exact
	// cadence within a stage is unobservable to callers, per spec.md §4.2.
	Report func(stage string, n int64)
}

// Cancelled reports whether cancellation has been requested. Safe to call on
// a nil *Hooks.
func (h *Hooks) Cancelled() bool {
	return h != nil && h.Cancel != nil && h.Cancel()
}

// Tick invokes the progress sink, if any. Safe to call on a nil *Hooks.
func (h *Hooks) Tick(stage string, n int64) {
	if h != nil && h.Report != nil {
		h.Report(stage, n)
	}
}

// Flag is a trivial settable cancel source, grounded on the "shared cancel
// flag, settable by an external signal handler" of spec.md §5. The public
// package wires it into Hooks.Cancel through heapsnap.WithCancelFlag; a
// session opened without a cancel option has no cancel source.
type Flag struct {
	ch chan struct{}
}

// NewFlag returns an unset Flag.
func NewFlag() *Flag {
	return &Flag{ch: make(chan struct{})}
}

// Set requests cancellation. Idempotent.
func (f *Flag) Set() {
	select {
	case <-f.ch:
	default:
		close(f.ch)
	}
}

// IsSet reports whether Set has been called. Suitable as Hooks.Cancel.
func (f *Flag) IsSet() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}
