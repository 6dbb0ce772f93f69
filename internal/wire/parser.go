// Package wire implements the streaming parser of spec.md §4.2: it reads a
// lenient character stream positioned at the start of a JSON object and
// produces a snapshot.Raw without ever materializing a per-record container
// for nodes, edges, or strings. The decoder is goccy/go-json, chosen for its
// encoding/json-compatible Token()/InputOffset() API with materially better
// throughput on exactly this kind of large flat-array payload.
package wire

import (
	"errors"
	"io"

	json "github.com/goccy/go-json"

	"github.com/nilsy/heapsnap/internal/errs"
	"github.com/nilsy/heapsnap/internal/progress"
	"github.com/nilsy/heapsnap/internal/snapshot"
)

// cancelCheckEvery matches spec.md §4.2's "e.g. 1 million" cadence for
// progress events and cancellation polling during the large flat-array
// reads.
const cancelCheckEvery = 1 << 20

// Parse reads a full snapshot from src (normally internal/surrogate's
// lenient reader wrapping the caller's file) and returns a bound
// snapshot.Raw with its EdgeRangeTable already built.
func Parse(src io.Reader, hooks *progress.Hooks) (*snapshot.Raw, error) {
	dec := json.NewDecoder(src)
	dec.UseNumber()

	p := &parser{dec: dec, hooks: hooks}
	meta, err := p.parseTop()
	if err != nil {
		return nil, err
	}

	bound, err := snapshot.Bind(*meta)
	if err != nil {
		return nil, err
	}

	raw := &snapshot.Raw{
		Meta:    *bound,
		Nodes:   p.nodes,
		Edges:   p.edges,
		Strings: p.strings,
	}
	if err := raw.BuildEdgeRanges(); err != nil {
		return nil, err
	}
	return raw, nil
}

type parser struct {
	dec   *json.Decoder
	hooks *progress.Hooks

	nodes   []int64
	edges   []int64
	strings []string
}

func (p *parser) offset() int64 { return p.dec.InputOffset() }

func (p *parser) malformed(key string, err error) error {
	return errs.MalformedJSON(p.offset(), key, err)
}

// parseTop consumes the top-level object, recognizing only snapshot, nodes,
// edges, strings; every other key is skipped by balanced token recognition.
func (p *parser) parseTop() (*snapshot.Meta, error) {
	if err := p.expectDelim('{', "<top>"); err != nil {
		return nil, err
	}

	var meta snapshot.Meta
	var sawMeta bool

	for p.dec.More() {
		key, err := p.nextKey("<top>")
		if err != nil {
			return nil, err
		}
		switch key {
		case "snapshot":
			m, err := p.parseSnapshot()
			if err != nil {
				return nil, err
			}
			if m != nil {
				meta = *m
				sawMeta = true
			}
		case "nodes":
			if err := p.readNumbers("nodes", &p.nodes); err != nil {
				return nil, err
			}
		case "edges":
			if err := p.readNumbers("edges", &p.edges); err != nil {
				return nil, err
			}
		case "strings":
			if err := p.readStrings("strings", &p.strings); err != nil {
				return nil, err
			}
		default:
			if err := p.skipValue(); err != nil {
				return nil, p.malformed(key, err)
			}
		}
	}
	if err := p.expectCloseConsumed("<top>"); err != nil {
		return nil, err
	}

	if !sawMeta {
		return nil, errs.MetaBinding([]string{"snapshot.meta"})
	}
	return &meta, nil
}

// parseSnapshot consumes the "snapshot" object, retaining only "meta".
func (p *parser) parseSnapshot() (*snapshot.Meta, error) {
	if err := p.expectDelim('{', "snapshot"); err != nil {
		return nil, err
	}
	var meta *snapshot.Meta
	for p.dec.More() {
		key, err := p.nextKey("snapshot")
		if err != nil {
			return nil, err
		}
		if key == "meta" {
			m, err := p.parseMeta()
			if err != nil {
				return nil, err
			}
			meta = m
			continue
		}
		if err := p.skipValue(); err != nil {
			return nil, p.malformed("snapshot."+key, err)
		}
	}
	if err := p.expectCloseConsumed("snapshot"); err != nil {
		return nil, err
	}
	return meta, nil
}

// parseMeta consumes the "meta" object, retaining only node_fields,
// node_types, edge_fields, edge_types.
func (p *parser) parseMeta() (*snapshot.Meta, error) {
	if err := p.expectDelim('{', "snapshot.meta"); err != nil {
		return nil, err
	}
	var m snapshot.Meta
	for p.dec.More() {
		key, err := p.nextKey("snapshot.meta")
		if err != nil {
			return nil, err
		}
		switch key {
		case "node_fields":
			names, err := p.readStringList("snapshot.meta.node_fields")
			if err != nil {
				return nil, err
			}
			m.NodeFields = names
		case "node_types":
			types, err := p.readTypeList("snapshot.meta.node_types")
			if err != nil {
				return nil, err
			}
			m.NodeTypes = types
		case "edge_fields":
			names, err := p.readStringList("snapshot.meta.edge_fields")
			if err != nil {
				return nil, err
			}
			m.EdgeFields = names
		case "edge_types":
			types, err := p.readTypeList("snapshot.meta.edge_types")
			if err != nil {
				return nil, err
			}
			m.EdgeTypes = types
		default:
			if err := p.skipValue(); err != nil {
				return nil, p.malformed("snapshot.meta."+key, err)
			}
		}
	}
	if err := p.expectCloseConsumed("snapshot.meta"); err != nil {
		return nil, err
	}
	return &m, nil
}

// readStringList reads a flat JSON array of strings (e.g. node_fields).
func (p *parser) readStringList(key string) ([]string, error) {
	if err := p.expectDelim('[', key); err != nil {
		return nil, err
	}
	var out []string
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.malformed(key, err)
		}
		s, ok := tok.(string)
		if !ok {
			return nil, p.malformed(key, errUnexpectedToken)
		}
		out = append(out, s)
	}
	if err := p.expectCloseConsumed(key); err != nil {
		return nil, err
	}
	return out, nil
}

// readTypeList reads node_types/edge_types: each element is either a string
// naming a primitive kind, or an array of strings naming enum members.
func (p *parser) readTypeList(key string) ([]snapshot.FieldType, error) {
	if err := p.expectDelim('[', key); err != nil {
		return nil, err
	}
	var out []snapshot.FieldType
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.malformed(key, err)
		}
		switch v := tok.(type) {
		case string:
			out = append(out, snapshot.FieldType{Kind: primitiveKind(v)})
		case json.Delim:
			if v != '[' {
				return nil, p.malformed(key, errUnexpectedToken)
			}
			var members []string
			for p.dec.More() {
				mt, err := p.dec.Token()
				if err != nil {
					return nil, p.malformed(key, err)
				}
				s, ok := mt.(string)
				if !ok {
					return nil, p.malformed(key, errUnexpectedToken)
				}
				members = append(members, s)
			}
			if err := p.expectCloseConsumed(key); err != nil {
				return nil, err
			}
			out = append(out, snapshot.FieldType{Kind: snapshot.KindEnum, Members: members})
		default:
			return nil, p.malformed(key, errUnexpectedToken)
		}
	}
	if err := p.expectCloseConsumed(key); err != nil {
		return nil, err
	}
	return out, nil
}

func primitiveKind(name string) snapshot.FieldKind {
	switch name {
	case "number":
		return snapshot.KindNumber
	case "string_or_number":
		return snapshot.KindStringOrNumber
	default:
		return snapshot.KindString
	}
}

// readNumbers streams a flat JSON array of integers directly into *dest,
// growing it with append's amortized doubling so no per-record container is
// ever constructed.
func (p *parser) readNumbers(key string, dest *[]int64) error {
	if err := p.expectDelim('[', key); err != nil {
		return err
	}
	var count int64
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return p.malformed(key, err)
		}
		num, ok := tok.(json.Number)
		if !ok {
			return p.malformed(key, errUnexpectedToken)
		}
		v, err := num.Int64()
		if err != nil {
			return p.malformed(key, err)
		}
		*dest = append(*dest, v)
		count++
		if count%cancelCheckEvery == 0 {
			if p.hooks.Cancelled() {
				return errs.Cancelled()
			}
			p.hooks.Tick(key, count)
		}
	}
	p.hooks.Tick(key, count)
	return p.expectCloseConsumed(key)
}

// readStrings streams a flat JSON array of strings directly into *dest.
func (p *parser) readStrings(key string, dest *[]string) error {
	if err := p.expectDelim('[', key); err != nil {
		return err
	}
	var count int64
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return p.malformed(key, err)
		}
		s, ok := tok.(string)
		if !ok {
			return p.malformed(key, errUnexpectedToken)
		}
		*dest = append(*dest, s)
		count++
		if count%cancelCheckEvery == 0 {
			if p.hooks.Cancelled() {
				return errs.Cancelled()
			}
			p.hooks.Tick(key, count)
		}
	}
	p.hooks.Tick(key, count)
	return p.expectCloseConsumed(key)
}

// skipValue consumes exactly one balanced JSON value (scalar, array, or
// object) without retaining it.
func (p *parser) skipValue() error {
	tok, err := p.dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil // scalar already consumed
	}
	if delim != '{' && delim != '[' {
		return errUnexpectedToken
	}
	isObject := delim == '{'
	for p.dec.More() {
		if isObject {
			if _, err := p.dec.Token(); err != nil { // key
				return err
			}
		}
		if err := p.skipValue(); err != nil {
			return err
		}
	}
	_, err = p.dec.Token() // closing delim
	return err
}

func (p *parser) nextKey(context string) (string, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return "", p.malformed(context, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", p.malformed(context, errUnexpectedToken)
	}
	return s, nil
}

func (p *parser) expectDelim(want json.Delim, key string) error {
	tok, err := p.dec.Token()
	if err != nil {
		return p.malformed(key, err)
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return p.malformed(key, errUnexpectedToken)
	}
	return nil
}

func (p *parser) expectCloseConsumed(key string) error {
	if _, err := p.dec.Token(); err != nil {
		return p.malformed(key, err)
	}
	return nil
}

var errUnexpectedToken = errors.New("unexpected token")
