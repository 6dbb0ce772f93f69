package filter

import "testing"

func TestRangeFilter_Match(t *testing.T) {
	node := singleNode(t, "x", 150, 3)

	tests := []struct {
		name   string
		filter *RangeFilter
		want   bool
	}{
		{name: "within range", filter: NewBetweenFilter(AttrSelfSize, 100, 200), want: true},
		{name: "below range", filter: NewBetweenFilter(AttrSelfSize, 200, 300), want: false},
		{name: "above lower bound", filter: NewGreaterThanFilter(AttrSelfSize, 100), want: true},
		{name: "above upper bound", filter: NewLessThanFilter(AttrSelfSize, 100), want: false},
		{name: "edge_count bound", filter: NewGreaterThanFilter(AttrEdgeCount, 3), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.Match(node)
			if err != nil {
				t.Fatalf("Match() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRangeFilter_Validate(t *testing.T) {
	tests := []struct {
		name      string
		filter    *RangeFilter
		wantError bool
	}{
		{name: "valid between", filter: NewBetweenFilter(AttrSelfSize, 10, 20), wantError: false},
		{name: "no bounds", filter: NewRangeFilter(AttrSelfSize, nil, nil), wantError: true},
		{name: "min greater than max", filter: NewBetweenFilter(AttrSelfSize, 20, 10), wantError: true},
		{name: "string attribute", filter: NewBetweenFilter(AttrName, 1, 2), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestRangeFilter_String(t *testing.T) {
	tests := []struct {
		name     string
		filter   *RangeFilter
		expected string
	}{
		{name: "both bounds", filter: NewBetweenFilter(AttrSelfSize, 10, 20), expected: "self_size BETWEEN 10 AND 20"},
		{name: "lower bound only", filter: NewGreaterThanFilter(AttrSelfSize, 10), expected: "self_size >= 10"},
		{name: "upper bound only", filter: NewLessThanFilter(AttrSelfSize, 20), expected: "self_size <= 20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.String(); got != tt.expected {
				t.Errorf("String() = %s, want %s", got, tt.expected)
			}
		})
	}
}
