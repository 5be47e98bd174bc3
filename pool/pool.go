// Package pool implements the worker pool driver: it partitions a bundled
// voxel set across N workers by a deterministic stride and runs one pass
// (surface or clearing) per RunPass call. Flushing scratch allocations into
// the live grids is left to the caller (fusion.Integrator).
// Grounded on dvid's goroutine-per-chunk + sync.WaitGroup pattern
// (datatype/labelmap/write.go PutLabels/putChunk).
package pool

import (
	"sort"
	"sync"

	"github.com/wuxian01/voxblox-plusplus/geom"
	"github.com/wuxian01/voxblox-plusplus/integrate"
	"github.com/wuxian01/voxblox-plusplus/labelgrid"
	"github.com/wuxian01/voxblox-plusplus/tsdf"
)

// sortedKeys returns a bundle map's voxel indices in a fixed, deterministic
// order (ascending X, then Y, then Z), so the stride partition and the
// within-worker iteration order are reproducible across runs regardless of
// Go's randomized map iteration.
func sortedKeys(m tsdf.BundleMap) []geom.GlobalVoxelIndex {
	keys := make([]geom.GlobalVoxelIndex, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return keys
}

// RunPass integrates every bundle in m, partitioned across nWorkers by a
// fixed stride rule: worker w processes bundle i iff
// (i + w + 1) mod nWorkers == 0. With nWorkers == 1 it runs inline on the
// calling goroutine rather than spawning one.
func RunPass(p integrate.Params, m tsdf.BundleMap, clearing bool, nWorkers int) {
	keys := sortedKeys(m)

	if nWorkers <= 1 {
		var tsdfCursor tsdf.BlockCursor
		var labelCursor labelgrid.Cursor
		for _, k := range keys {
			integrate.IntegrateBundle(p, k, m[k], clearing, &tsdfCursor, &labelCursor)
		}
		return
	}

	var wg sync.WaitGroup
	var panicOnce sync.Once
	var workerPanic interface{}
	for w := 0; w < nWorkers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { workerPanic = r })
				}
			}()
			var tsdfCursor tsdf.BlockCursor
			var labelCursor labelgrid.Cursor
			for i, k := range keys {
				if (i+w+1)%nWorkers != 0 {
					continue
				}
				integrate.IntegrateBundle(p, k, m[k], clearing, &tsdfCursor, &labelCursor)
			}
		}()
	}
	wg.Wait()
	// A worker's panic cannot propagate across goroutines on its own; the
	// first one observed is re-raised here so the single-threaded caller
	// (fusion.Integrator.IntegratePointCloud) can recover it into an error
	// at the batch boundary instead of crashing the process.
	if workerPanic != nil {
		panic(workerPanic)
	}
}
