package region

import (
	"fmt"

	"github.com/spf13/afero"
)

// Handle is an open region file: its parsed index header plus the
// still-open file handle needed to slice out individual chunk
// frames on demand. The file handle is read-only and must not be
// shared across goroutines; open one Handle per worker.
type Handle struct {
	RX, RZ   int32
	file     afero.File
	index    *Index
	fileSize int64
}

// Open opens a region file through fs and parses its header. fs is an
// afero.Fs so callers (and tests) can substitute an in-memory
// filesystem for a real one.
func Open(fs afero.Fs, path string, rx, rz int32) (*Handle, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("region: opening %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("region: stat %s: %w", path, err)
	}

	idx, err := ReadIndex(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("region: reading header of %s: %w", path, err)
	}

	return &Handle{RX: rx, RZ: rz, file: f, index: idx, fileSize: info.Size()}, nil
}

// Close releases the underlying file handle.
func (h *Handle) Close() error {
	return h.file.Close()
}

// Index returns the parsed region header.
func (h *Handle) Index() *Index {
	return h.index
}

// ReadFrame slices and parses the chunk frame for local coordinates
// cx, cz. The slot must be present; callers should check Slot.Present
// first.
func (h *Handle) ReadFrame(cx, cz int) (Frame, error) {
	slot := h.index.At(cx, cz)
	if !slot.Present() {
		return Frame{}, fmt.Errorf("region: slot (%d,%d) is not present", cx, cz)
	}
	if err := CheckRange(slot, h.fileSize, cx, cz); err != nil {
		return Frame{}, err
	}

	start, end := slot.ByteRange()
	buf := make([]byte, end-start)
	if _, err := h.file.ReadAt(buf, start); err != nil {
		return Frame{}, fmt.Errorf("region: reading sector range for (%d,%d): %w", cx, cz, err)
	}
	return ReadFrame(buf)
}
