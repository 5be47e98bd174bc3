package fusion

import (
	"github.com/wuxian01/voxblox-plusplus/label"
	"github.com/wuxian01/voxblox-plusplus/merge"
)

// MergeLabels consults the pairwise co-occurrence table built up across
// prior batches and swaps every pair that crossed the configured threshold.
// Must only be called when no workers are active.
func (in *Integrator) MergeLabels() {
	merge.MergeLabels(in.grid, &in.counts, in.pairwise, in.cfg.EnablePairwiseConfidenceMerging, in.cfg.PairwiseConfidenceThreshold)
}

// SwapLabels rewrites every voxel bearing old to new across the whole grid.
// Must only be called when no workers are active.
func (in *Integrator) SwapLabels(old, new_ label.Label) {
	merge.SwapLabels(in.grid, &in.counts, old, new_)
}
