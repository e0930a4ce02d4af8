// Package world enumerates region files under a world root and drives
// the decode pipeline (region index → frame → decompress → NBT parse
// → chunk projection) per chunk, without requiring any cross-region
// coordination.
package world

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/mcanvil/reader/internal/chunk"
	"github.com/mcanvil/reader/internal/cursor"
	"github.com/mcanvil/reader/internal/nbt"
	"github.com/mcanvil/reader/internal/region"
)

var regionFilePattern = regexp.MustCompile(`^r\.(-?\d+)\.(-?\d+)\.(mca|mcr)$`)

// World is an opened world root directory. It holds no file handles
// itself — Regions/RegionIterator only enumerate and validate region
// file names; each region is opened independently by the caller or by
// WalkParallel.
type World struct {
	fs   afero.Fs
	root string
	log  *logrus.Logger
}

// Open validates that root/region exists and returns a World over it.
// It does not read level.dat, poi/, entities/, or playerdata/; those
// are out of the core's scope.
func Open(fs afero.Fs, root string, log *logrus.Logger) (*World, error) {
	regionDir := path.Join(root, "region")
	info, err := fs.Stat(regionDir)
	if err != nil {
		return nil, fmt.Errorf("world: %s: %w", regionDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("world: %s is not a directory", regionDir)
	}
	if log == nil {
		log = logrus.New()
	}
	return &World{fs: fs, root: root, log: log}, nil
}

// RegionRef identifies one region file by its region coordinates and
// path.
type RegionRef struct {
	RX, RZ int32
	Path   string
}

// Regions enumerates the region files under <root>/region/ whose
// names match r.<rx>.<rz>.(mca|mcr). Order is not observable to the
// caller — the spec leaves it unspecified — so results are sorted by
// (RX, RZ) purely to make output deterministic across runs.
func (w *World) Regions() ([]RegionRef, error) {
	regionDir := path.Join(w.root, "region")
	entries, err := afero.ReadDir(w.fs, regionDir)
	if err != nil {
		return nil, fmt.Errorf("world: listing %s: %w", regionDir, err)
	}

	var refs []RegionRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := regionFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		rx, err := strconv.ParseInt(m[1], 10, 32)
		if err != nil {
			continue
		}
		rz, err := strconv.ParseInt(m[2], 10, 32)
		if err != nil {
			continue
		}
		refs = append(refs, RegionRef{
			RX:   int32(rx),
			RZ:   int32(rz),
			Path: path.Join(regionDir, e.Name()),
		})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].RX != refs[j].RX {
			return refs[i].RX < refs[j].RX
		}
		return refs[i].RZ < refs[j].RZ
	})
	return refs, nil
}

// OpenRegion opens one region file for chunk-by-chunk decoding.
func (w *World) OpenRegion(ref RegionRef) (*region.Handle, error) {
	return region.Open(w.fs, ref.Path, ref.RX, ref.RZ)
}

// ChunkResult is one chunk's outcome from the decode pipeline: either
// a projected Chunk (State == StateProjected) or an error tagged with
// the state it failed at.
type ChunkResult struct {
	RX, RZ int32
	CX, CZ int
	Mtime  uint32
	State  State
	Chunk  *chunk.Chunk
	Err    error
}

// DecodeChunk runs the full per-chunk pipeline — frame → decompress →
// NBT parse → project — for local coordinates cx, cz within an open
// region. It never panics; every failure mode is returned as an
// error tagged with the pipeline stage it occurred at.
func DecodeChunk(h *region.Handle, cx, cz int) ChunkResult {
	slot := h.Index().At(cx, cz)
	res := ChunkResult{RX: h.RX, RZ: h.RZ, CX: cx, CZ: cz, Mtime: slot.Mtime}
	if !slot.Present() {
		res.State = StateNotPresent
		return res
	}

	frame, err := h.ReadFrame(cx, cz)
	if err != nil {
		res.State = StateFrameError
		res.Err = err
		return res
	}

	raw, err := region.Decompress(frame)
	if err != nil {
		res.State = StateFrameError
		res.Err = err
		return res
	}
	res.State = StateDecompressed

	tag, err := nbt.Decode(cursor.New(raw))
	if err != nil {
		res.State = StateNBTError
		res.Err = err
		return res
	}
	res.State = StateParsed

	projected, err := chunk.Project(tag)
	if err != nil {
		res.State = StateProjectionError
		res.Err = err
		return res
	}

	res.State = StateProjected
	res.Chunk = projected
	return res
}
