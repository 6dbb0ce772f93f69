package heapsnap

import (
	"errors"

	"github.com/nilsy/heapsnap/internal/errs"
)

// Sentinels re-exported from internal/errs so callers outside this module
// can errors.Is against them without importing internal/errs directly.
var (
	ErrIO              = errs.ErrIO
	ErrMalformedJSON   = errs.ErrMalformedJSON
	ErrMetaBinding     = errs.ErrMetaBinding
	ErrIndexOutOfRange = errs.ErrIndexOutOfRange
	ErrTargetNotFound  = errs.ErrTargetNotFound
	ErrAmbiguousTarget = errs.ErrAmbiguousTarget
	ErrDepthExhausted  = errs.ErrDepthExhausted
	ErrCancelled       = errs.ErrCancelled
)

// ErrSessionClosed is returned by every Session method once Close has run.
var ErrSessionClosed = errors.New("heapsnap: session is closed")

// ErrNoTarget is returned by Retainers/Dominator when the query was given
// neither an ID nor a Name.
var ErrNoTarget = errors.New("heapsnap: no target id or name given")
