package filter

import (
	"fmt"

	"github.com/nilsy/heapsnap/internal/snapshot"
)

// EqualityFilter matches nodes whose string attribute equals Value exactly
// (case-sensitive). Adapted from the teacher's metadata-field EqualityFilter
// (interface{}-valued, reflect.DeepEqual plus numeric/string coercions);
// NodeView attributes are already typed, so no coercion layer is needed.
type EqualityFilter struct {
	Attribute Attribute
	Value     string
}

// NewEqualityFilter creates a new equality filter over a string attribute.
func NewEqualityFilter(attr Attribute, value string) *EqualityFilter {
	return &EqualityFilter{Attribute: attr, Value: value}
}

// Match reports whether node's attribute equals Value exactly.
func (f *EqualityFilter) Match(node snapshot.NodeView) (bool, error) {
	v, err := stringValue(node, f.Attribute)
	if err != nil {
		return false, err
	}
	return v == f.Value, nil
}

// Validate checks if the filter configuration is valid.
func (f *EqualityFilter) Validate() error {
	switch f.Attribute {
	case AttrName, AttrTypeName:
		return nil
	default:
		return newError(f.Attribute, "equality filter requires a string-valued attribute")
	}
}

// String returns a string representation of the filter.
func (f *EqualityFilter) String() string {
	return fmt.Sprintf("%s == %q", f.Attribute, f.Value)
}
