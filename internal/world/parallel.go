package world

import "sync"

// WalkParallel assigns whole region files to worker goroutines — the
// coarse-grained parallelism this package allows per spec.md §5 — and
// sends the result of every present chunk slot to the first returned
// channel and the outcome of opening each region to the second, as
// they become available. Ordering between chunks and between regions
// is not guaranteed; within one region, a chunk's pipeline still runs
// start to finish on a single goroutine. Both channels are closed once
// every region has been processed or canc is cancelled.
//
// workers <= 0 defaults to 1 (fully sequential, matching the
// single-threaded cooperative default).
func (w *World) WalkParallel(workers int, canc *Canceler) (<-chan ChunkResult, <-chan RegionResult, error) {
	if workers <= 0 {
		workers = 1
	}

	refs, err := w.Regions()
	if err != nil {
		return nil, nil, err
	}

	jobs := make(chan RegionRef)
	chunks := make(chan ChunkResult)
	regions := make(chan RegionResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range jobs {
				if canc.Cancelled() {
					continue
				}
				h, err := w.OpenRegion(ref)
				if err != nil {
					regions <- RegionResult{Ref: ref, Err: err}
					continue
				}
				regions <- RegionResult{Ref: ref, Handle: h}

				it := NewChunkIterator(h, canc)
				for {
					res, more := it.Next()
					if !more {
						break
					}
					if res.State == StateNotPresent {
						continue
					}
					chunks <- res
				}
				h.Close()
			}
		}()
	}

	go func() {
		for _, ref := range refs {
			if canc.Cancelled() {
				break
			}
			jobs <- ref
		}
		close(jobs)
		wg.Wait()
		close(chunks)
		close(regions)
	}()

	return chunks, regions, nil
}
