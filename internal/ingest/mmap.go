// Package ingest provides byte sources for the streaming parser (spec.md
// §4.1/§4.2): a plain *os.File reader for the common path, and a read-only
// memory-mapped option for large snapshot files where avoiding the page
// cache copy-through a Go-managed buffer matters.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// MappedFile is a read-only memory-mapped snapshot file. Adapted from the
// teacher's internal/memory/mmap.go MemoryMap: the read-write/resize/Sync
// machinery has no counterpart here, since a heap snapshot is consumed
// once and never written back; only the open/map/close lifecycle survives.
type MappedFile struct {
	file *os.File
	data []byte
}

// OpenMapped memory-maps path read-only for the life of the returned
// MappedFile. The caller must call Close when done.
func OpenMapped(path string) (*MappedFile, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("ingest: stat %s: %w", path, err)
	}
	size := stat.Size()
	if size == 0 {
		file.Close()
		return nil, fmt.Errorf("ingest: cannot memory-map empty file %s", path)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("ingest: mmap %s: %w", path, err)
	}

	return &MappedFile{file: file, data: data}, nil
}

// Reader returns an io.Reader over the mapped bytes, suitable for handing
// straight to the surrogate rewriter / streaming parser. The returned
// reader wraps the mapping directly; it does not copy it.
func (m *MappedFile) Reader() io.Reader {
	return bytes.NewReader(m.data)
}

// Bytes exposes the mapped region directly, for callers (like tests) that
// want to inspect the raw content without an io.Reader indirection.
func (m *MappedFile) Bytes() []byte {
	return m.data
}

// Close unmaps the memory and closes the underlying file.
func (m *MappedFile) Close() error {
	var err error
	if m.data != nil {
		if unmapErr := unix.Munmap(m.data); unmapErr != nil {
			err = fmt.Errorf("ingest: munmap: %w", unmapErr)
		}
		m.data = nil
	}
	if closeErr := m.file.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("ingest: close: %w", closeErr)
	}
	return err
}
