package ingest

import (
	"fmt"
	"io"
	"os"
)

// Source is a closeable byte source for the parser pipeline: a plain file
// handle or a MappedFile, both exposing the same Reader()/Close() surface.
type Source interface {
	Reader() io.Reader
	Close() error
}

// fileSource wraps a plain *os.File as a Source, for the default
// (non-mmap) ingest path.
type fileSource struct {
	f *os.File
}

func (s *fileSource) Reader() io.Reader { return s.f }
func (s *fileSource) Close() error      { return s.f.Close() }

// Open opens path for reading, returning an ordinary streamed file Source.
// Use OpenMapped directly for the memory-mapped alternative.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	return &fileSource{f: f}, nil
}

// mappedSource adapts *MappedFile to the Source interface.
type mappedSource struct {
	m *MappedFile
}

func (s *mappedSource) Reader() io.Reader { return s.m.Reader() }
func (s *mappedSource) Close() error      { return s.m.Close() }

// OpenSource opens path as a Source, memory-mapping it when useMmap is
// true and falling back to a plain streamed file otherwise. Mmap is
// opt-in: it only pays off on large files held entirely on local disk, and
// callers reading from a pipe or a remote filesystem should pass false.
func OpenSource(path string, useMmap bool) (Source, error) {
	if !useMmap {
		return Open(path)
	}
	m, err := OpenMapped(path)
	if err != nil {
		return nil, err
	}
	return &mappedSource{m: m}, nil
}
