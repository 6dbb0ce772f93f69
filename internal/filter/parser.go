package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses the CLI's small filter expression language (spec.md §6's
// collaborator filter flag) into a Filter tree. Adapted from the teacher's
// FilterParser, which parsed typed values against a caller-supplied field
// schema; here the "schema" is fixed to the five known NodeView attributes,
// so there is no per-field type table to thread through.
type Parser struct{}

// NewParser creates a new expression parser.
func NewParser() *Parser {
	return &Parser{}
}

// attrByName resolves a CLI attribute token to an Attribute, mirroring
// Attribute.String()'s inverse.
func attrByName(name string) (Attribute, bool) {
	switch name {
	case "name":
		return AttrName, true
	case "type_name":
		return AttrTypeName, true
	case "self_size":
		return AttrSelfSize, true
	case "id":
		return AttrID, true
	case "edge_count":
		return AttrEdgeCount, true
	default:
		return 0, false
	}
}

// Parse parses one expression of the form "attr op value", where op is one
// of "==", "contains", ">=", "<=", or "between" (value then being
// "min,max"). Logical combination is left to the caller via NewAndFilter/
// NewOrFilter/NewNotFilter on the parsed leaves.
func (p *Parser) Parse(expr string) (Filter, error) {
	fields := strings.Fields(expr)
	if len(fields) < 3 {
		return nil, fmt.Errorf("filter expression %q: expected \"attr op value\"", expr)
	}
	attr, ok := attrByName(fields[0])
	if !ok {
		return nil, fmt.Errorf("filter expression %q: unknown attribute %q", expr, fields[0])
	}
	op := fields[1]
	value := strings.Join(fields[2:], " ")

	switch op {
	case "==":
		return NewEqualityFilter(attr, value), nil
	case "contains":
		return NewContainmentFilter(attr, value), nil
	case ">=":
		v, err := parseInt(value)
		if err != nil {
			return nil, err
		}
		return NewGreaterThanFilter(attr, v), nil
	case "<=":
		v, err := parseInt(value)
		if err != nil {
			return nil, err
		}
		return NewLessThanFilter(attr, v), nil
	case "between":
		min, max, err := parseRange(value)
		if err != nil {
			return nil, err
		}
		return NewBetweenFilter(attr, min, max), nil
	default:
		return nil, fmt.Errorf("filter expression %q: unsupported operator %q", expr, op)
	}
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %q: %w", s, err)
	}
	return v, nil
}

func parseRange(s string) (int64, int64, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid range value %q: expected \"min,max\"", s)
	}
	min, err := parseInt(parts[0])
	if err != nil {
		return 0, 0, err
	}
	max, err := parseInt(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return min, max, nil
}
