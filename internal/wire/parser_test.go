package wire

import (
	"strings"
	"testing"

	"github.com/nilsy/heapsnap/internal/errs"
	"github.com/nilsy/heapsnap/internal/progress"
)

const sampleSnapshot = `{
  "snapshot": {
    "meta": {
      "node_fields": ["type", "name", "id", "self_size", "edge_count"],
      "node_types": [["object", "string"], "string", "number", "number", "number"],
      "edge_fields": ["type", "name_or_index", "to_node"],
      "edge_types": [["property", "element"], "string_or_number", "number"]
    },
    "node_count": 2,
    "edge_count": 1
  },
  "nodes": [0, 0, 1, 16, 1, 0, 1, 2, 24, 0],
  "edges": [0, 2, 5],
  "strings": ["root", "child", "link"]
}`

func TestParse_Success(t *testing.T) {
	raw, err := Parse(strings.NewReader(sampleSnapshot), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := raw.NodeCount(); got != 2 {
		t.Fatalf("NodeCount() = %d, want 2", got)
	}
	if got := raw.EdgeCount(); got != 1 {
		t.Fatalf("EdgeCount() = %d, want 1", got)
	}
	name, err := raw.Node(0).Name()
	if err != nil || name != "root" {
		t.Fatalf("Node(0).Name() = (%q, %v), want (\"root\", nil)", name, err)
	}
	if raw.EdgeStart == nil {
		t.Fatal("Parse() did not build the edge range table")
	}
}

func TestParse_SkipsUnknownTopLevelKeys(t *testing.T) {
	withExtra := strings.Replace(sampleSnapshot, `"nodes":`, `"unrelated": {"a": [1,2,{"b":3}]}, "nodes":`, 1)
	raw, err := Parse(strings.NewReader(withExtra), nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := raw.NodeCount(); got != 2 {
		t.Errorf("NodeCount() = %d, want 2", got)
	}
}

func TestParse_MissingMeta(t *testing.T) {
	input := `{"nodes": [], "edges": [], "strings": []}`
	_, err := Parse(strings.NewReader(input), nil)
	if err == nil {
		t.Fatal("Parse() error = nil, want MetaBindingError for missing snapshot.meta")
	}
	if _, ok := errs.As(err, errs.KindMetaBinding); !ok {
		t.Errorf("Parse() error = %v, want KindMetaBinding", err)
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	input := strings.Replace(sampleSnapshot, `"nodes": [0, 0, 1, 16, 1, 0, 1, 2, 24, 0],`, `"nodes": [0, 0, 1, "oops", 1],`, 1)
	_, err := Parse(strings.NewReader(input), nil)
	if err == nil {
		t.Fatal("Parse() error = nil, want MalformedJson for a non-numeric node field")
	}
	if _, ok := errs.As(err, errs.KindMalformedJSON); !ok {
		t.Errorf("Parse() error = %v, want KindMalformedJSON", err)
	}
}

func TestParse_ReportsProgress(t *testing.T) {
	var stages []string
	hooks := &progress.Hooks{Report: func(stage string, n int64) { stages = append(stages, stage) }}
	if _, err := Parse(strings.NewReader(sampleSnapshot), hooks); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(stages) == 0 {
		t.Fatal("Parse() reported no progress stages")
	}
}
