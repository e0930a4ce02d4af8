// Package region decodes the Anvil region file format: the 8 KiB
// location/timestamp header (this file) and the per-chunk compression
// framing and decompression (frame.go).
package region

import (
	"errors"
	"fmt"
	"io"

	"github.com/bits-and-blooms/bitset"

	"github.com/mcanvil/reader/internal/cursor"
)

const (
	// SectorSize is the unit region offsets and lengths are measured in.
	SectorSize = 4096
	// HeaderSize is the combined size of the location and timestamp tables.
	HeaderSize = 2 * SectorSize
	// ChunkGridSize is the number of chunk slots in one region (32x32).
	ChunkGridSize = 32 * 32
)

// ErrTruncatedHeader is returned when a region file is shorter than
// the 8 KiB header.
var ErrTruncatedHeader = errors.New("region: truncated region header")

// OutOfRangeSlotError reports a slot whose declared sector range
// falls outside the file. The walker skips such a slot and continues
// with the rest of the region.
type OutOfRangeSlotError struct {
	CX, CZ int
}

func (e *OutOfRangeSlotError) Error() string {
	return fmt.Sprintf("region: slot (%d,%d) declares a sector range outside the file", e.CX, e.CZ)
}

// Slot is one entry of the region index: the sector range a chunk's
// frame occupies and its last-modified time.
type Slot struct {
	SectorOffset uint32 // in 4 KiB sectors from the start of the file
	SectorCount  uint8
	Mtime        uint32 // epoch seconds

	// Overlapping records whether this slot's sector range intersects
	// another present slot's range. The format does not forbid this
	// (compaction windows can leave stale overlaps); it is surfaced
	// for diagnostics only and never turns into an error.
	Overlapping bool
}

// Present reports whether a slot refers to an actual chunk frame.
func (s Slot) Present() bool {
	return s.SectorOffset > 0 && s.SectorCount > 0
}

// ByteRange returns the [start, end) byte range on disk this slot's
// frame occupies.
func (s Slot) ByteRange() (start, end int64) {
	start = int64(s.SectorOffset) * SectorSize
	end = int64(s.SectorOffset+uint32(s.SectorCount)) * SectorSize
	return start, end
}

// Index is the 1024-slot location+timestamp table of one region file,
// ordered by local chunk coordinate with array index cz*32+cx.
type Index [ChunkGridSize]Slot

// At returns the slot for local chunk coordinates cx, cz in [0, 32).
func (idx *Index) At(cx, cz int) Slot {
	return idx[cz*32+cx]
}

// ReadIndex parses the 8 KiB header of a region file. fileSize is the
// total size of the file in bytes.
func ReadIndex(r io.ReaderAt, fileSize int64) (*Index, error) {
	if fileSize < HeaderSize {
		return nil, ErrTruncatedHeader
	}

	locationBuf := make([]byte, SectorSize)
	if _, err := r.ReadAt(locationBuf, 0); err != nil {
		return nil, fmt.Errorf("region: reading location table: %w", err)
	}
	timestampBuf := make([]byte, SectorSize)
	if _, err := r.ReadAt(timestampBuf, SectorSize); err != nil {
		return nil, fmt.Errorf("region: reading timestamp table: %w", err)
	}

	var idx Index
	locC := cursor.New(locationBuf)
	tsC := cursor.New(timestampBuf)

	maxSector := uint32(fileSize / SectorSize)
	used := bitset.New(uint(maxSector) + 1)

	for i := 0; i < ChunkGridSize; i++ {
		offset, err := locC.U24()
		if err != nil {
			return nil, fmt.Errorf("region: reading slot %d offset: %w", i, err)
		}
		count, err := locC.U8()
		if err != nil {
			return nil, fmt.Errorf("region: reading slot %d sector count: %w", i, err)
		}
		mtime, err := tsC.U32()
		if err != nil {
			return nil, fmt.Errorf("region: reading slot %d timestamp: %w", i, err)
		}

		slot := Slot{SectorOffset: offset, SectorCount: count, Mtime: mtime}
		if slot.Present() {
			overlap := false
			for p := uint32(0); p < uint32(slot.SectorCount); p++ {
				pos := uint(slot.SectorOffset + p)
				if used.Test(pos) {
					overlap = true
				}
				used.Set(pos)
			}
			slot.Overlapping = overlap
		}
		idx[i] = slot
	}
	return &idx, nil
}

// CheckRange validates that a present slot's declared sector range
// fits within fileSize, returning OutOfRangeSlotError when it does
// not.
func CheckRange(slot Slot, fileSize int64, cx, cz int) error {
	_, end := slot.ByteRange()
	if end > fileSize {
		return &OutOfRangeSlotError{CX: cx, CZ: cz}
	}
	return nil
}
