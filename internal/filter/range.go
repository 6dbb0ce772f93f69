package filter

import (
	"fmt"

	"github.com/nilsy/heapsnap/internal/snapshot"
)

// RangeFilter matches nodes whose numeric attribute falls within [Min, Max].
// Adapted from the teacher's RangeFilter (numeric/string/time bounds over a
// metadata field): NodeView's numeric attributes are already int64, so the
// string/time branches of the teacher's compareValues have no counterpart
// here and are dropped.
type RangeFilter struct {
	Attribute Attribute
	Min       *int64 // nil means no lower bound
	Max       *int64 // nil means no upper bound
}

// NewRangeFilter creates a new range filter over a numeric attribute.
func NewRangeFilter(attr Attribute, min, max *int64) *RangeFilter {
	return &RangeFilter{Attribute: attr, Min: min, Max: max}
}

// NewGreaterThanFilter creates a filter for values >= value.
func NewGreaterThanFilter(attr Attribute, value int64) *RangeFilter {
	return &RangeFilter{Attribute: attr, Min: &value}
}

// NewLessThanFilter creates a filter for values <= value.
func NewLessThanFilter(attr Attribute, value int64) *RangeFilter {
	return &RangeFilter{Attribute: attr, Max: &value}
}

// NewBetweenFilter creates a filter for values between min and max (inclusive).
func NewBetweenFilter(attr Attribute, min, max int64) *RangeFilter {
	return &RangeFilter{Attribute: attr, Min: &min, Max: &max}
}

// Match reports whether node's attribute falls within the filter's range.
func (f *RangeFilter) Match(node snapshot.NodeView) (bool, error) {
	v, err := numericValue(node, f.Attribute)
	if err != nil {
		return false, err
	}
	if f.Min != nil && v < *f.Min {
		return false, nil
	}
	if f.Max != nil && v > *f.Max {
		return false, nil
	}
	return true, nil
}

// Validate checks if the filter configuration is valid.
func (f *RangeFilter) Validate() error {
	switch f.Attribute {
	case AttrSelfSize, AttrID, AttrEdgeCount:
	default:
		return newError(f.Attribute, "range filter requires a numeric attribute")
	}
	if f.Min == nil && f.Max == nil {
		return newError(f.Attribute, "at least one bound (min or max) must be specified")
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return newError(f.Attribute, "min value must be less than or equal to max value")
	}
	return nil
}

// String returns a string representation of the filter.
func (f *RangeFilter) String() string {
	switch {
	case f.Min != nil && f.Max != nil:
		return fmt.Sprintf("%s BETWEEN %d AND %d", f.Attribute, *f.Min, *f.Max)
	case f.Min != nil:
		return fmt.Sprintf("%s >= %d", f.Attribute, *f.Min)
	default:
		return fmt.Sprintf("%s <= %d", f.Attribute, *f.Max)
	}
}
