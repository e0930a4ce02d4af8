package chunk

import (
	"errors"
	"fmt"
	"math/bits"
)

// Errors returned by the palette grid unpacker.
var (
	ErrInsufficientPackedData = errors.New("chunk: packed long array too short for cell count")
	ErrPaletteIndexOutOfRange = errors.New("chunk: palette index out of range")
	ErrBadBitsPerEntry        = errors.New("chunk: invalid bits-per-entry")
)

// BlockBits returns the bits-per-entry for a block palette of size p:
// max(4, ceil(log2(p))).
func BlockBits(p int) int {
	return maxInt(4, ceilLog2(p))
}

// BiomeBits returns the bits-per-entry for a biome palette of size p:
// max(1, ceil(log2(p))).
func BiomeBits(p int) int {
	return maxInt(1, ceilLog2(p))
}

func ceilLog2(p int) int {
	if p <= 1 {
		return 0
	}
	return bits.Len(uint(p - 1))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// UnpackGrid decodes cellCount palette indices from longs, packed
// bitsPerEntry bits at a time, low-bits-first, with entries never
// spanning a long boundary (the post-1.16 Anvil packing rule). Each
// long holds floor(64/bitsPerEntry) entries; any remaining high bits
// are padding and are ignored. It is an error for longs to be too
// short to produce cellCount entries, and an error for any decoded
// index to be >= paletteSize.
func UnpackGrid(bitsPerEntry int, cellCount int, longs []int64, paletteSize int) ([]uint32, error) {
	if bitsPerEntry <= 0 || bitsPerEntry > 64 {
		return nil, fmt.Errorf("%w: %d", ErrBadBitsPerEntry, bitsPerEntry)
	}

	entriesPerLong := 64 / bitsPerEntry
	needed := (cellCount + entriesPerLong - 1) / entriesPerLong
	if len(longs) < needed {
		return nil, fmt.Errorf("%w: need %d longs for %d entries at %d bits, have %d",
			ErrInsufficientPackedData, needed, cellCount, bitsPerEntry, len(longs))
	}

	mask := uint64(1)<<uint(bitsPerEntry) - 1
	out := make([]uint32, cellCount)
	for i := 0; i < cellCount; i++ {
		longIdx := i / entriesPerLong
		within := i % entriesPerLong
		shift := uint(within * bitsPerEntry)
		v := uint32((uint64(longs[longIdx]) >> shift) & mask)
		if int(v) >= paletteSize {
			return nil, fmt.Errorf("%w: index %d at cell %d (palette size %d)",
				ErrPaletteIndexOutOfRange, v, i, paletteSize)
		}
		out[i] = v
	}
	return out, nil
}

// ZeroGrid returns a cellCount-length grid of all zeros, used when a
// section's palette has a single entry and the data array is omitted
// from the NBT.
func ZeroGrid(cellCount int) []uint32 {
	return make([]uint32, cellCount)
}
