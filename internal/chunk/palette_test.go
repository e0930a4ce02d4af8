package chunk

import (
	"errors"
	"testing"
)

func TestUnpackGridWorkedExample(t *testing.T) {
	// S4: bits=4, one long 0x0000000076543210, cellCount=16, paletteSize=8.
	longs := []int64{0x0000000076543210}
	got, err := UnpackGrid(4, 16, longs, 8)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 1, 2, 3, 4, 5, 6, 7, 0, 0, 0, 0, 0, 0, 0, 0}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSinglePalleteEntryIsZeroGrid(t *testing.T) {
	// S5: a palette with one entry carries no data tag; callers decode
	// to an all-zero grid without touching UnpackGrid at all.
	grid := ZeroGrid(BlockCellCount)
	if len(grid) != BlockCellCount {
		t.Fatalf("len = %d, want %d", len(grid), BlockCellCount)
	}
	for i, v := range grid {
		if v != 0 {
			t.Fatalf("grid[%d] = %d, want 0", i, v)
		}
	}
}

func TestUnpackGridInsufficientData(t *testing.T) {
	_, err := UnpackGrid(4, 16, nil, 8)
	if !errors.Is(err, ErrInsufficientPackedData) {
		t.Fatalf("err = %v, want ErrInsufficientPackedData", err)
	}
}

func TestUnpackGridPaletteIndexOutOfRange(t *testing.T) {
	// Single cell holding index 7 but the palette only has 4 entries.
	longs := []int64{0x7}
	_, err := UnpackGrid(4, 1, longs, 4)
	if !errors.Is(err, ErrPaletteIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrPaletteIndexOutOfRange", err)
	}
}

func TestUnpackGridBadBitsPerEntry(t *testing.T) {
	if _, err := UnpackGrid(0, 16, []int64{0}, 8); !errors.Is(err, ErrBadBitsPerEntry) {
		t.Fatalf("err = %v, want ErrBadBitsPerEntry", err)
	}
	if _, err := UnpackGrid(65, 16, []int64{0}, 8); !errors.Is(err, ErrBadBitsPerEntry) {
		t.Fatalf("err = %v, want ErrBadBitsPerEntry", err)
	}
}

func TestBlockBitsMinimumFour(t *testing.T) {
	for p := 0; p <= 16; p++ {
		if got := BlockBits(p); got < 4 {
			t.Fatalf("BlockBits(%d) = %d, want >= 4", p, got)
		}
	}
	if got := BlockBits(17); got != 5 {
		t.Fatalf("BlockBits(17) = %d, want 5", got)
	}
}

func TestBiomeBitsMinimumOne(t *testing.T) {
	if got := BiomeBits(1); got != 1 {
		t.Fatalf("BiomeBits(1) = %d, want 1", got)
	}
	if got := BiomeBits(2); got != 1 {
		t.Fatalf("BiomeBits(2) = %d, want 1", got)
	}
	if got := BiomeBits(3); got != 2 {
		t.Fatalf("BiomeBits(3) = %d, want 2", got)
	}
}

func TestUnpackGridEntriesNeverSpanLongBoundary(t *testing.T) {
	// bits=5: 12 entries per long (60 of 64 bits used, 4 padding bits).
	// Put a 13th entry in the second long and confirm it starts at bit 0
	// of that long, not packed across the boundary.
	longs := []int64{0, 0x15} // second long: entry 0 = 0x15 & 0x1f = 0x15
	got, err := UnpackGrid(5, 13, longs, 32)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 12; i++ {
		if got[i] != 0 {
			t.Fatalf("got[%d] = %d, want 0", i, got[i])
		}
	}
	if got[12] != 0x15 {
		t.Fatalf("got[12] = %d, want %d", got[12], 0x15)
	}
}
