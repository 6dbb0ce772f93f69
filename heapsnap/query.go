package heapsnap

import (
	"strconv"

	"github.com/nilsy/heapsnap/internal/errs"
	"github.com/nilsy/heapsnap/internal/retain"
	"github.com/nilsy/heapsnap/internal/snapshot"
)

// PickPolicy disambiguates among multiple nodes sharing a constructor name,
// re-exported from internal/retain so callers never need that import.
type PickPolicy = retain.PickPolicy

// Pick policy values, per spec.md §4.7. PickCount is an alias for
// PickLargest (see DESIGN.md's resolution of that open question).
const (
	PickLargest = retain.PickLargest
	PickCount   = retain.PickCount
)

// TargetQuery builds the target-selection/search-limit parameters Retainers
// and Dominator need, grounded on the teacher's fluent QueryBuilder
// (libravdb/query.go): each setter returns the query itself, and a terminal
// method (Retainers/Dominator) runs the engine.
type TargetQuery struct {
	session *Session

	byID   *int64
	byName string
	pick   PickPolicy

	maxDepth int
	maxPaths int

	err error
}

// Query starts a new TargetQuery against the session.
func (s *Session) Query() *TargetQuery {
	return &TargetQuery{
		session:  s,
		maxDepth: s.cfg.defaultMaxDepth,
		maxPaths: s.cfg.defaultMaxPaths,
	}
}

// ID selects the target by its declared id field, per spec.md §4.7.
func (q *TargetQuery) ID(id int64) *TargetQuery {
	q.byID = &id
	q.byName = ""
	return q
}

// Name selects the target by constructor name, disambiguated by Pick when
// more than one node shares the name.
func (q *TargetQuery) Name(name string) *TargetQuery {
	q.byName = name
	q.byID = nil
	return q
}

// Pick sets the disambiguation policy Name() uses when multiple candidates
// share the chosen name.
func (q *TargetQuery) Pick(policy PickPolicy) *TargetQuery {
	q.pick = policy
	return q
}

// MaxDepth overrides the default retainer-search depth bound.
func (q *TargetQuery) MaxDepth(d int) *TargetQuery {
	if d <= 0 {
		q.err = errs.IndexOutOfRange("MaxDepth requires a positive value, got " + strconv.Itoa(d))
		return q
	}
	q.maxDepth = d
	return q
}

// MaxPaths overrides the default number of retainer paths returned.
func (q *TargetQuery) MaxPaths(n int) *TargetQuery {
	if n <= 0 {
		q.err = errs.IndexOutOfRange("MaxPaths requires a positive value, got " + strconv.Itoa(n))
		return q
	}
	q.maxPaths = n
	return q
}

// resolve runs spec.md §4.7's target selection against the query's
// accumulated settings.
func (q *TargetQuery) resolve() (int, error) {
	if q.err != nil {
		return 0, q.err
	}
	s := q.session
	if q.byID != nil {
		return retain.ResolveTargetByID(s.raw, *q.byID, s.hooks())
	}
	if q.byName != "" {
		names, err := s.constructorIdx()
		if err != nil {
			return 0, err
		}
		return retain.ResolveTargetByName(s.raw, q.byName, q.pick, names.Names())
	}
	return 0, ErrNoTarget
}

// Retainers runs the retainer-search engine of spec.md §4.7, returning up to
// MaxPaths shortest root-to-target paths within MaxDepth hops.
func (q *TargetQuery) Retainers() (*RetainersResult, error) {
	if err := q.session.checkOpen(); err != nil {
		return nil, err
	}
	targetIdx, err := q.resolve()
	if err != nil {
		return nil, err
	}
	s := q.session

	root, err := s.chosenRoot()
	if err != nil {
		return nil, err
	}
	adj, err := s.adj()
	if err != nil {
		return nil, err
	}

	paths, err := retain.BFS(s.raw, adj, root.Index, targetIdx, q.maxDepth, q.maxPaths, s.hooks())
	if err != nil {
		return nil, err
	}

	target, err := s.targetInfo(targetIdx)
	if err != nil {
		return nil, err
	}

	out := &RetainersResult{Version: schemaVersion, Target: target, Paths: make([]RetainPath, len(paths))}
	for i, p := range paths {
		steps := make([]RetainStep, len(p.Steps))
		for j, st := range p.Steps {
			edge, err := edgeInfo(s.raw, st.Edge)
			if err != nil {
				return nil, err
			}
			steps[j] = RetainStep{From: st.From, Edge: edge, To: st.To}
		}
		out.Paths[i] = RetainPath{Steps: steps}
	}
	return out, nil
}

// Dominator runs the dominator engine of spec.md §4.8, returning the
// root-to-target immediate-dominator chain.
func (q *TargetQuery) Dominator() (*DominatorResult, error) {
	if err := q.session.checkOpen(); err != nil {
		return nil, err
	}
	targetIdx, err := q.resolve()
	if err != nil {
		return nil, err
	}
	s := q.session

	doms, err := s.dominators()
	if err != nil {
		return nil, err
	}
	chain, err := doms.Chain(targetIdx)
	if err != nil {
		return nil, err
	}
	target, err := s.targetInfo(targetIdx)
	if err != nil {
		return nil, err
	}
	return &DominatorResult{Version: schemaVersion, Target: target, Chain: chain}, nil
}

func edgeInfo(raw *snapshot.Raw, edgeIdx int) (EdgeInfo, error) {
	e := raw.Edge(edgeIdx)
	typeName, err := e.TypeName()
	if err != nil {
		return EdgeInfo{}, err
	}
	name, err := e.ResolvedName()
	if err != nil {
		return EdgeInfo{}, err
	}
	return EdgeInfo{Index: edgeIdx, EdgeType: typeName, NameOrIndex: e.NameOrIndex(), Name: name}, nil
}
