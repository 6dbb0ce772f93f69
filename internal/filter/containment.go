package filter

import (
	"fmt"
	"strings"

	"github.com/nilsy/heapsnap/internal/snapshot"
)

// ContainmentFilter matches nodes whose string attribute contains Substr.
// Adapted from the teacher's array-containment ContainmentFilter (ContainsAny/
// ContainsAll/ExactMatch over a metadata slice field): NodeView attributes
// are scalar, not multi-valued, so the only containment relation that
// survives the retargeting is substring containment over name/type_name.
type ContainmentFilter struct {
	Attribute Attribute
	Substr    string
}

// NewContainmentFilter creates a filter matching nodes whose attribute
// contains substr.
func NewContainmentFilter(attr Attribute, substr string) *ContainmentFilter {
	return &ContainmentFilter{Attribute: attr, Substr: substr}
}

// Match reports whether node's attribute contains Substr.
func (f *ContainmentFilter) Match(node snapshot.NodeView) (bool, error) {
	v, err := stringValue(node, f.Attribute)
	if err != nil {
		return false, err
	}
	return strings.Contains(v, f.Substr), nil
}

// Validate checks if the filter configuration is valid.
func (f *ContainmentFilter) Validate() error {
	switch f.Attribute {
	case AttrName, AttrTypeName:
	default:
		return newError(f.Attribute, "containment filter requires a string-valued attribute")
	}
	if f.Substr == "" {
		return newError(f.Attribute, "substring cannot be empty")
	}
	return nil
}

// String returns a string representation of the filter.
func (f *ContainmentFilter) String() string {
	return fmt.Sprintf("%s CONTAINS %q", f.Attribute, f.Substr)
}
