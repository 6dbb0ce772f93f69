// Package heapsnap is the public entry point: Open a V8 heap snapshot file
// and run the summary, retainer-search, dominator, and diff operations of
// spec.md §4 against it. Session construction is grounded on the teacher's
// Database/New(opts ...Option) shape (libravdb/database.go), adapted from a
// long-lived connection pool to a single immutable parsed snapshot with a
// handful of lazily-built derived structures.
package heapsnap

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/nilsy/heapsnap/internal/construct"
	"github.com/nilsy/heapsnap/internal/dominate"
	"github.com/nilsy/heapsnap/internal/filter"
	"github.com/nilsy/heapsnap/internal/ingest"
	"github.com/nilsy/heapsnap/internal/kernel"
	"github.com/nilsy/heapsnap/internal/oncecache"
	"github.com/nilsy/heapsnap/internal/progress"
	"github.com/nilsy/heapsnap/internal/retain"
	"github.com/nilsy/heapsnap/internal/snapshot"
	"github.com/nilsy/heapsnap/internal/surrogate"
	"github.com/nilsy/heapsnap/internal/wire"
)

// Session holds one parsed snapshot and the lazily-built structures derived
// from it: ConstructorIndex, reverse adjacency, the chosen root, and the
// DominatorMap rooted there. Every derived structure is built at most once,
// on first demand, per spec.md §5.
type Session struct {
	cfg *config
	raw *snapshot.Raw

	mu     sync.Mutex
	closed bool

	constructorIndex oncecache.Cache[*construct.Index]
	adjacency        oncecache.Cache[*retain.Adjacency]
	root             oncecache.Cache[retain.Root]
	dominatorMap     oncecache.Cache[*dominate.Map]
}

// Open parses the heap snapshot at path and returns a Session ready for
// querying. The whole file is read into the in-memory flat-array
// representation before Open returns; there is no partial/streaming session
// state beyond that point.
func Open(path string, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	src, err := ingest.OpenSource(path, cfg.useMmap)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	hooks := cfg.hooks()
	raw, err := wire.Parse(surrogate.New(src.Reader()), hooks)
	if err != nil {
		return nil, err
	}
	if cfg.metrics != nil {
		cfg.metrics.NodesParsed.Add(float64(raw.NodeCount()))
		cfg.metrics.EdgesParsed.Add(float64(raw.EdgeCount()))
	}

	return &Session{cfg: cfg, raw: raw}, nil
}

// Close releases the session. A Session holds no file descriptors or other
// OS resources past Open returning (the byte source is closed there), so
// Close only guards against further use; it never returns an error.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Session) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) hooks() *progress.Hooks { return s.cfg.hooks() }

// Raw exposes the parsed snapshot for callers that need direct NodeView/
// EdgeView access beyond the four named operations (e.g. a renderer walking
// arbitrary nodes). Mutating the returned Raw is the caller's own problem.
func (s *Session) Raw() *snapshot.Raw { return s.raw }

func (s *Session) constructorIdx() (*construct.Index, error) {
	return s.constructorIndex.Get(func() (*construct.Index, error) {
		return construct.Build(s.raw, s.hooks())
	})
}

func (s *Session) adj() (*retain.Adjacency, error) {
	return s.adjacency.Get(func() (*retain.Adjacency, error) {
		a := retain.NewAdjacency(s.raw)
		if err := a.EnsureScanned(s.hooks()); err != nil {
			return nil, err
		}
		return a, nil
	})
}

func (s *Session) chosenRoot() (retain.Root, error) {
	return s.root.Get(func() (retain.Root, error) {
		return retain.ChooseRoot(s.raw)
	})
}

func (s *Session) dominators() (*dominate.Map, error) {
	return s.dominatorMap.Get(func() (*dominate.Map, error) {
		root, err := s.chosenRoot()
		if err != nil {
			return nil, err
		}
		adj, err := s.adj()
		if err != nil {
			return nil, err
		}
		m, err := dominate.Build(s.raw, adj, root.Index, s.hooks())
		if s.cfg.metrics != nil {
			s.cfg.metrics.DominatorPasses.Inc()
		}
		return m, err
	})
}

// summaryParams collects Summary's options, grounded on the teacher's
// Option-func-over-a-private-struct shape applied at call scope rather than
// session scope.
type summaryParams struct {
	substr string
	filter kernel.NodeFilter
	topK   int
}

// SummaryOption configures one Summary call.
type SummaryOption func(*summaryParams)

// WithSubstring restricts Summary to constructor names containing substr,
// per spec.md §4.5's default filter.
func WithSubstring(substr string) SummaryOption {
	return func(p *summaryParams) { p.substr = substr }
}

// WithNodeFilter restricts Summary to nodes matching f, per the supplemental
// query filter layer (§4.9). Combines with WithSubstring by requiring both.
func WithNodeFilter(f filter.Filter) SummaryOption {
	return func(p *summaryParams) {
		p.filter = func(n snapshot.NodeView) (bool, error) { return f.Match(n) }
	}
}

// WithTopK caps the number of rows Summary returns to the k largest by
// self_size_sum, per spec.md §6's collaborator-contract "top K" parameter.
// k <= 0 means unlimited.
func WithTopK(k int) SummaryOption {
	return func(p *summaryParams) { p.topK = k }
}

// Summary runs the summary kernel of spec.md §4.5 over the session's
// snapshot.
func (s *Session) Summary(opts ...SummaryOption) (*SummaryResult, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	p := &summaryParams{topK: s.cfg.defaultTopK}
	for _, opt := range opts {
		opt(p)
	}

	nodeFilter := combineFilters(kernel.SubstringFilter(p.substr), p.filter)
	agg, err := kernel.Summarize(s.raw, nodeFilter, s.hooks())
	if err != nil {
		return nil, err
	}

	rows := agg.SortedRows()
	if p.topK > 0 && len(rows) > p.topK {
		rows = rows[:p.topK]
	}
	out := &SummaryResult{Version: schemaVersion, TotalNodes: agg.TotalNodes, Rows: make([]SummaryRow, len(rows))}
	for i, r := range rows {
		out.Rows[i] = SummaryRow{Name: r.Name, Count: r.Count, SelfSizeSum: r.SelfSizeSum}
	}
	return out, nil
}

// combineFilters ANDs two kernel.NodeFilters, treating a nil filter as
// "always matches".
func combineFilters(a, b kernel.NodeFilter) kernel.NodeFilter {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(n snapshot.NodeView) (bool, error) {
		ok, err := a(n)
		if err != nil || !ok {
			return ok, err
		}
		return b(n)
	}
}

// diffParams collects Diff's options.
type diffParams struct {
	topK int
}

// DiffOption configures one Diff call.
type DiffOption func(*diffParams)

// WithDiffTopK caps the number of rows Diff returns to the k largest by
// absolute self-size delta. k <= 0 means unlimited.
func WithDiffTopK(k int) DiffOption {
	return func(p *diffParams) { p.topK = k }
}

// Diff runs the diff kernel of spec.md §4.6 between this session (treated
// as snapshot A) and other (snapshot B).
func (s *Session) Diff(other *Session, opts ...DiffOption) (*DiffResult, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if err := other.checkOpen(); err != nil {
		return nil, err
	}
	p := &diffParams{topK: s.cfg.defaultTopK}
	for _, opt := range opts {
		opt(p)
	}

	aggA, err := kernel.Summarize(s.raw, nil, s.hooks())
	if err != nil {
		return nil, err
	}
	aggB, err := kernel.Summarize(other.raw, nil, other.hooks())
	if err != nil {
		return nil, err
	}

	rows := kernel.Diff(aggA, aggB)
	kernel.SortDiffRows(rows)
	if p.topK > 0 && len(rows) > p.topK {
		rows = rows[:p.topK]
	}

	out := &DiffResult{
		Version:     schemaVersion,
		TotalNodesA: aggA.TotalNodes,
		TotalNodesB: aggB.TotalNodes,
		Rows:        make([]DiffRow, len(rows)),
	}
	for i, r := range rows {
		out.Rows[i] = DiffRow{
			Name:             r.Name,
			CountA:           r.CountA,
			CountB:           r.CountB,
			CountDelta:       r.CountDelta,
			SelfSizeSumA:     r.SelfSizeSumA,
			SelfSizeSumB:     r.SelfSizeSumB,
			SelfSizeSumDelta: r.SelfSizeSumDelta,
		}
	}
	return out, nil
}

// targetInfo builds a TargetInfo for node index idx.
func (s *Session) targetInfo(idx int) (TargetInfo, error) {
	node := s.raw.Node(idx)
	name, err := node.Name()
	if err != nil {
		return TargetInfo{}, err
	}
	typeName, err := node.TypeName()
	if err != nil {
		return TargetInfo{}, err
	}
	info := TargetInfo{Index: idx, Name: name, NodeType: typeName}
	if id, ok := node.ID(); ok {
		info.ID = &id
	}
	return info, nil
}

// Build runs the minimal build operation of spec.md §6: it writes
// summary.json and meta.json to dir, the only persisted state between
// invocations.
func (s *Session) Build(dir string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("heapsnap: creating build directory: %w", err)
	}

	summary, err := s.Summary()
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, "summary.json"), summary); err != nil {
		return err
	}

	meta := &BuildMeta{
		Version:      schemaVersion,
		TotalNodes:   int64(s.raw.NodeCount()),
		TotalEdges:   int64(s.raw.EdgeCount()),
		TotalStrings: int64(len(s.raw.Strings)),
	}
	if s.cfg.metrics != nil {
		s.cfg.metrics.CacheBuilds.Inc()
	}
	return writeJSON(filepath.Join(dir, "meta.json"), meta)
}

func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("heapsnap: encoding %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, b, 0o644)
}
