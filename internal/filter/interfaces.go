package filter

// FilterType names the three leaf filter kinds. Adapted from the teacher's
// FilterType enum; EqualityFilterType/RangeFilterType/ContainmentFilterType
// carry over unchanged and there is no logical-filter value. Nothing in this
// module reads it: Parser.Parse returns a Filter, and the parser builds
// every filter, LogicalFilter included, directly.
type FilterType int

const (
	EqualityFilterType FilterType = iota
	RangeFilterType
	ContainmentFilterType
)
