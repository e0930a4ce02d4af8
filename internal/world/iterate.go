package world

import "github.com/mcanvil/reader/internal/region"

// RegionResult is one entry of the world-level iterator: either a
// successfully opened region handle or a region-level error (header
// truncation, I/O). A region-level failure does not abort the world
// walk — the caller simply moves on to the next region.
type RegionResult struct {
	Ref    RegionRef
	Handle *region.Handle
	Err    error
}

// RegionIterator is a restartable lazy sequence over a world's region
// files: it holds only the slice of discovered files and the index of
// the next one to open, so a caller can resume it across suspension
// points without the producer keeping any goroutine alive.
type RegionIterator struct {
	w    *World
	refs []RegionRef
	i    int
	canc *Canceler
}

// RegionIterator returns an iterator over every region file the world
// enumerates. canc may be nil, in which case the iterator never
// cancels early.
func (w *World) RegionIterator(canc *Canceler) (*RegionIterator, error) {
	refs, err := w.Regions()
	if err != nil {
		return nil, err
	}
	return &RegionIterator{w: w, refs: refs, canc: canc}, nil
}

// Next opens the next region file, returning (result, true), or
// (zero, false) once the sequence — or cancellation — is exhausted.
func (it *RegionIterator) Next() (RegionResult, bool) {
	if it.canc.Cancelled() {
		return RegionResult{}, false
	}
	if it.i >= len(it.refs) {
		return RegionResult{}, false
	}
	ref := it.refs[it.i]
	it.i++

	h, err := it.w.OpenRegion(ref)
	if err != nil {
		return RegionResult{Ref: ref, Err: err}, true
	}
	return RegionResult{Ref: ref, Handle: h}, true
}

// ChunkIterator is a restartable lazy sequence over the (up to 1024)
// chunk slots of one open region. It resumes from whatever local
// chunk index it last yielded.
type ChunkIterator struct {
	h    *region.Handle
	i    int
	canc *Canceler
}

// NewChunkIterator returns a ChunkIterator over h. canc may be nil.
func NewChunkIterator(h *region.Handle, canc *Canceler) *ChunkIterator {
	return &ChunkIterator{h: h, canc: canc}
}

// Next decodes the next chunk slot in (cx, cz) = (i%32, i/32) order,
// returning (result, true), or (zero, false) once all 1024 slots have
// been visited or cancellation was observed. Present and non-present
// slots are both yielded; callers typically skip
// State == StateNotPresent.
func (it *ChunkIterator) Next() (ChunkResult, bool) {
	if it.canc.Cancelled() {
		return ChunkResult{}, false
	}
	if it.i >= region.ChunkGridSize {
		return ChunkResult{}, false
	}
	cx, cz := it.i%32, it.i/32
	it.i++
	return DecodeChunk(it.h, cx, cz), true
}
