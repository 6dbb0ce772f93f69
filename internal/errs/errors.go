// Package errs defines the typed error taxonomy the core surfaces to callers.
//
// The core never logs; every failure is returned, never printed. Each kind
// has a sentinel for errors.Is checks and a structured *Error carrying the
// detail spec.md §7 requires (byte offsets, missing-field lists, candidate
// names).
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one of the error categories spec.md §7 names.
type Kind int

const (
	KindIO Kind = iota
	KindMalformedJSON
	KindMetaBinding
	KindIndexOutOfRange
	KindTargetNotFound
	KindAmbiguousTarget
	KindDepthExhausted
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IoError"
	case KindMalformedJSON:
		return "MalformedJson"
	case KindMetaBinding:
		return "MetaBindingError"
	case KindIndexOutOfRange:
		return "IndexOutOfRange"
	case KindTargetNotFound:
		return "TargetNotFound"
	case KindAmbiguousTarget:
		return "AmbiguousTarget"
	case KindDepthExhausted:
		return "DepthExhausted"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is. Wrapped by the matching *Error below.
var (
	ErrIO              = errors.New("io error")
	ErrMalformedJSON   = errors.New("malformed json")
	ErrMetaBinding     = errors.New("meta binding error")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrTargetNotFound  = errors.New("target not found")
	ErrAmbiguousTarget = errors.New("ambiguous target")
	ErrDepthExhausted  = errors.New("depth exhausted")
	ErrCancelled       = errors.New("cancelled")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindIO:
		return ErrIO
	case KindMalformedJSON:
		return ErrMalformedJSON
	case KindMetaBinding:
		return ErrMetaBinding
	case KindIndexOutOfRange:
		return ErrIndexOutOfRange
	case KindTargetNotFound:
		return ErrTargetNotFound
	case KindAmbiguousTarget:
		return ErrAmbiguousTarget
	case KindDepthExhausted:
		return ErrDepthExhausted
	case KindCancelled:
		return ErrCancelled
	default:
		return nil
	}
}

// Error is the structured error every core failure path returns.
type Error struct {
	Kind       Kind
	Message    string
	Offset     *int64   // byte offset, when known (MalformedJson)
	Missing    []string // missing/misshapen field names (MetaBindingError)
	Candidates []string // near-match candidate names (TargetNotFound)
	Key        string   // top-level key being consumed when the error occurred
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Key != "" {
		fmt.Fprintf(&b, " (while reading %q)", e.Key)
	}
	if e.Offset != nil {
		fmt.Fprintf(&b, " at byte offset %d", *e.Offset)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing/misshapen fields: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Candidates) > 0 {
		fmt.Fprintf(&b, "; candidates: %s", strings.Join(e.Candidates, ", "))
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return sentinelFor(e.Kind)
}

// IO builds an IoError.
func IO(message string, cause error) *Error {
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return &Error{Kind: KindIO, Message: message}
}

// MalformedJSON builds a MalformedJson error carrying the byte offset and the
// top-level key being consumed when the tokenizer rejected the input.
func MalformedJSON(offset int64, key string, cause error) *Error {
	msg := "unexpected token"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: KindMalformedJSON, Message: msg, Offset: &offset, Key: key}
}

// MetaBinding builds a MetaBindingError naming every missing or misshapen
// field encountered while binding a SnapshotMeta.
func MetaBinding(missing []string) *Error {
	return &Error{
		Kind:    KindMetaBinding,
		Message: "snapshot meta failed to bind",
		Missing: missing,
	}
}

// IndexOutOfRange builds an IndexOutOfRange error.
func IndexOutOfRange(message string) *Error {
	return &Error{Kind: KindIndexOutOfRange, Message: message}
}

// TargetNotFound builds a TargetNotFound error with up to 10 near-match
// candidates, per spec.md §7.
func TargetNotFound(message string, candidates []string) *Error {
	if len(candidates) > 10 {
		candidates = candidates[:10]
	}
	return &Error{Kind: KindTargetNotFound, Message: message, Candidates: candidates}
}

// AmbiguousTarget builds an AmbiguousTarget error naming the candidates that
// could not be disambiguated without a pick policy.
func AmbiguousTarget(message string, candidates []string) *Error {
	return &Error{Kind: KindAmbiguousTarget, Message: message, Candidates: candidates}
}

// DepthExhausted builds the informational DepthExhausted condition. Callers
// that treat it as a hard failure may still do so, but spec.md §4.7 requires
// it not be emitted as one by the retainer engine itself.
func DepthExhausted(message string) *Error {
	return &Error{Kind: KindDepthExhausted, Message: message}
}

// Cancelled builds the error returned when the cooperative cancel flag was
// observed mid-operation.
func Cancelled() *Error {
	return &Error{Kind: KindCancelled, Message: "operation cancelled"}
}

// As reports whether err is (or wraps) an *Error of the given kind.
func As(err error, kind Kind) (*Error, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	return e, e.Kind == kind
}
