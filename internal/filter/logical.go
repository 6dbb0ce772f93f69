package filter

import (
	"fmt"
	"strings"

	"github.com/nilsy/heapsnap/internal/snapshot"
)

// LogicalOperator names a LogicalFilter's combination rule.
type LogicalOperator int

const (
	AndOperator LogicalOperator = iota
	OrOperator
	NotOperator
)

// LogicalFilter implements logical operations (AND, OR, NOT) on other
// filters. Adapted from the teacher's LogicalFilter, which composed over
// materialized []*VectorEntry result sets (set-intersection AND, set-union
// OR); a per-node Filter composes by short-circuiting boolean evaluation
// instead, since Match takes one node at a time.
type LogicalFilter struct {
	Operator LogicalOperator
	Filters  []Filter
}

// NewAndFilter creates a filter that requires all child filters to match.
func NewAndFilter(filters ...Filter) *LogicalFilter {
	return &LogicalFilter{Operator: AndOperator, Filters: filters}
}

// NewOrFilter creates a filter that requires any child filter to match.
func NewOrFilter(filters ...Filter) *LogicalFilter {
	return &LogicalFilter{Operator: OrOperator, Filters: filters}
}

// NewNotFilter creates a filter that negates the result of the child filter.
func NewNotFilter(filter Filter) *LogicalFilter {
	return &LogicalFilter{Operator: NotOperator, Filters: []Filter{filter}}
}

// Match applies the logical operation to the child filters against node.
func (f *LogicalFilter) Match(node snapshot.NodeView) (bool, error) {
	switch f.Operator {
	case AndOperator:
		for _, child := range f.Filters {
			ok, err := child.Match(node)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case OrOperator:
		for _, child := range f.Filters {
			ok, err := child.Match(node)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case NotOperator:
		ok, err := f.Filters[0].Match(node)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default:
		return false, fmt.Errorf("unsupported logical operator: %v", f.Operator)
	}
}

// Validate checks if the filter configuration is valid.
func (f *LogicalFilter) Validate() error {
	if len(f.Filters) == 0 {
		return newError(-1, "logical filter must have at least one child filter")
	}
	if f.Operator == NotOperator && len(f.Filters) != 1 {
		return newError(-1, "NOT filter must have exactly one child filter")
	}
	for i, child := range f.Filters {
		if err := child.Validate(); err != nil {
			return newError(-1, fmt.Sprintf("child filter %d validation failed: %v", i, err))
		}
	}
	return nil
}

// String returns a string representation of the filter.
func (f *LogicalFilter) String() string {
	if len(f.Filters) == 0 {
		return "EMPTY"
	}
	switch f.Operator {
	case AndOperator:
		return joinChildren(f.Filters, " AND ")
	case OrOperator:
		return joinChildren(f.Filters, " OR ")
	case NotOperator:
		return fmt.Sprintf("NOT (%s)", f.Filters[0].String())
	default:
		return "UNKNOWN"
	}
}

func joinChildren(filters []Filter, sep string) string {
	parts := make([]string, len(filters))
	for i, child := range filters {
		parts[i] = fmt.Sprintf("(%s)", child.String())
	}
	return strings.Join(parts, sep)
}
