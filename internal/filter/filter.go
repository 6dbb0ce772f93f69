// Package filter implements the supplemental node-predicate language of
// SPEC_FULL.md §4.9: equality, numeric range, substring containment, and
// boolean combination over NodeView attributes.
//
// Adapted from the teacher's internal/filter package (containment/equality/
// range/logical combinators over vector metadata): the same Filter
// interface and combinator shapes are kept, retargeted from
// map[string]interface{} metadata fields to the five NodeView attributes
// the core exposes (name, type_name, self_size, id, edge_count). Unlike the
// teacher's package, which filters a materialized []*VectorEntry slice, a
// Filter here evaluates one snapshot.NodeView at a time, so it can run
// inline inside the summary kernel's single pass without ever materializing
// a node slice (spec.md §4.5's single-pass requirement).
package filter

import (
	"fmt"

	"github.com/nilsy/heapsnap/internal/snapshot"
)

// Filter matches individual nodes.
type Filter interface {
	// Match reports whether node satisfies the filter.
	Match(node snapshot.NodeView) (bool, error)
	// Validate checks the filter's own configuration, independent of any
	// particular node.
	Validate() error
	// String renders a human-readable form, for CLI echo/debugging.
	String() string
}

// Attribute names a NodeView field this package knows how to read.
type Attribute int

const (
	AttrName Attribute = iota
	AttrTypeName
	AttrSelfSize
	AttrID
	AttrEdgeCount
)

func (a Attribute) String() string {
	switch a {
	case AttrName:
		return "name"
	case AttrTypeName:
		return "type_name"
	case AttrSelfSize:
		return "self_size"
	case AttrID:
		return "id"
	case AttrEdgeCount:
		return "edge_count"
	default:
		return "unknown"
	}
}

// Error mirrors the teacher's FilterError shape: a typed error naming the
// attribute and a message, rather than a bare fmt.Errorf.
type Error struct {
	Attribute string
	Message   string
}

func (e *Error) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("filter error on attribute %q: %s", e.Attribute, e.Message)
	}
	return fmt.Sprintf("filter error: %s", e.Message)
}

func newError(attr Attribute, msg string) *Error {
	return &Error{Attribute: attr.String(), Message: msg}
}

func stringValue(node snapshot.NodeView, attr Attribute) (string, error) {
	switch attr {
	case AttrName:
		return node.Name()
	case AttrTypeName:
		return node.TypeName()
	default:
		return "", newError(attr, "not a string-valued attribute")
	}
}

func numericValue(node snapshot.NodeView, attr Attribute) (int64, error) {
	switch attr {
	case AttrSelfSize:
		return node.SelfSize(), nil
	case AttrEdgeCount:
		return node.EdgeCount(), nil
	case AttrID:
		v, _ := node.ID()
		return v, nil
	default:
		return 0, newError(attr, "not a numeric attribute")
	}
}
