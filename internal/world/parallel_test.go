package world

import (
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestWalkParallelDecodesEveryChunk(t *testing.T) {
	nbtBytes := buildMinimalChunkNBT(3000, 1, 0, 1, "full")
	regionFile, err := buildRegionFile(nbtBytes)
	if err != nil {
		t.Fatal(err)
	}

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/world/region", 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, fs, "/world/region/r.0.0.mca", regionFile)
	writeFile(t, fs, "/world/region/r.1.0.mca", regionFile)

	w, err := Open(fs, "/world", nil)
	if err != nil {
		t.Fatal(err)
	}

	chunks, regions, err := w.WalkParallel(4, nil)
	if err != nil {
		t.Fatal(err)
	}

	regionCount := 0
	projectedCount := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range regions {
			if res.Err != nil {
				t.Errorf("unexpected region error: %v", res.Err)
				continue
			}
			regionCount++
		}
	}()

	for res := range chunks {
		if res.State == StateProjected {
			projectedCount++
		}
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for region channel to close")
	}

	if regionCount != 2 {
		t.Fatalf("regionCount = %d, want 2", regionCount)
	}
	if projectedCount != 2 {
		t.Fatalf("projectedCount = %d, want 2 (one chunk per region)", projectedCount)
	}
}

func TestWalkParallelSequentialDefault(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/world/region", 0o755); err != nil {
		t.Fatal(err)
	}
	w, err := Open(fs, "/world", nil)
	if err != nil {
		t.Fatal(err)
	}
	chunks, regions, err := w.WalkParallel(0, nil)
	if err != nil {
		t.Fatal(err)
	}
	for range chunks {
		t.Fatal("expected no chunks for an empty world")
	}
	for range regions {
		t.Fatal("expected no regions for an empty world")
	}
}
