// Package merge implements the merge manager: SwapLabels performs a full
// label rewrite across the grid, and MergeLabels consults the pairwise
// co-occurrence table to decide which swaps to perform. Grounded on the
// teacher's dvid.Debugf-at-merge-time logging convention
// (datatype/labelvol/merge_split.go MergeLabels).
package merge

import (
	"github.com/wuxian01/voxblox-plusplus/flog"
	"github.com/wuxian01/voxblox-plusplus/label"
	"github.com/wuxian01/voxblox-plusplus/labelgrid"
	"github.com/wuxian01/voxblox-plusplus/metrics"
	"github.com/wuxian01/voxblox-plusplus/pairwise"
)

// SwapLabels scans every allocated label block and rewrites any voxel with
// label == old to label == new, marking its block dirty. Confidence is left
// untouched. Not safe to call while workers are integrating.
func SwapLabels(grid labelgrid.Grid, counts *label.CountMap, old, new_ label.Label) {
	if old == new_ {
		return
	}
	var swapped uint64
	for _, blk := range grid.AllAllocatedBlocks() {
		voxels := blk.Voxels()
		var touched bool
		for i := range voxels {
			if voxels[i].Label == old {
				voxels[i].Label = new_
				touched = true
				swapped++
			}
		}
		if touched {
			blk.MarkUpdated()
		}
	}
	counts.Sub(old, swapped)
	counts.Add(new_, swapped)
	metrics.LabelMerges.Inc()
	flog.Debugf("merge: swapped %d voxels from label %d to label %d", swapped, old, new_)
}

// MergeLabels consults the pairwise confidence table and performs a swap
// for every pair whose co-occurrence count exceeds threshold, logging each
// merge and removing its entry from the table. Multiple merges may chain
// within one invocation; no topological ordering across pairs is promised.
func MergeLabels(grid labelgrid.Grid, counts *label.CountMap, pw *pairwise.Map, enabled bool, threshold int) {
	if !enabled {
		return
	}
	for _, entry := range pw.Snapshot() {
		if entry.Total() <= threshold {
			continue
		}
		lo, hi := entry.Labels()
		SwapLabels(grid, counts, lo, hi)
		pw.Remove(lo, hi)
	}
}
