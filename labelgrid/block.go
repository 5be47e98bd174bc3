// Package labelgrid defines the small consumed interface to the external
// sparse volumetric grid and the scratch block map.
package labelgrid

import (
	"sync/atomic"

	"github.com/wuxian01/voxblox-plusplus/geom"
	"github.com/wuxian01/voxblox-plusplus/label"
)

// Block is a fixed-edge cube of label voxels, the unit of allocation in the
// sparse grid. Blocks are owned by the grid once inserted; scratch blocks
// are owned by the scratch block map until flushed.
type Block struct {
	Index         geom.BlockIndex
	Origin        geom.Point3d
	VoxelsPerSide int32

	voxels  []label.Voxel
	updated atomic.Bool
}

// NewBlock allocates a zero-initialized block with the given index, origin
// and edge length in voxels.
func NewBlock(idx geom.BlockIndex, origin geom.Point3d, voxelsPerSide int32) *Block {
	n := int(voxelsPerSide) * int(voxelsPerSide) * int(voxelsPerSide)
	return &Block{
		Index:         idx,
		Origin:        origin,
		VoxelsPerSide: voxelsPerSide,
		voxels:        make([]label.Voxel, n),
	}
}

func (b *Block) localOffset(l geom.LocalVoxelIndex) int {
	n := int(b.VoxelsPerSide)
	return int(l.Z)*n*n + int(l.Y)*n + int(l.X)
}

// VoxelAt returns a pointer to the voxel at the given local offset, letting
// callers perform the label voxel update rule's read-modify-write in place
// under the stripe lock.
func (b *Block) VoxelAt(l geom.LocalVoxelIndex) *label.Voxel {
	return &b.voxels[b.localOffset(l)]
}

// MarkUpdated sets the block's dirty flag; safe to call concurrently from
// any number of workers holding different stripe locks on this block.
func (b *Block) MarkUpdated() {
	b.updated.Store(true)
}

// Updated reports whether any voxel write has touched this block.
func (b *Block) Updated() bool {
	return b.updated.Load()
}

// Voxels exposes the flat backing array, e.g. for swapLabels and tests that
// need to scan every voxel in a block.
func (b *Block) Voxels() []label.Voxel {
	return b.voxels
}

// Grid is the small, read/write interface this core consumes from the
// external sparse volumetric grid. A production grid backs this with
// versioned, possibly persisted, block storage; tests back it with
// MemGrid.
type Grid interface {
	// BlockByIndex returns the block at idx, or nil if unallocated.
	BlockByIndex(idx geom.BlockIndex) *Block
	// BlockByCoords returns the block containing the world-frame point, or
	// nil if unallocated.
	BlockByCoords(p geom.Point3d) *Block
	// InsertBlock installs a block (e.g. one merged from the scratch block
	// map) under its index. Must not be called concurrently with readers of
	// the same index; this belongs in the single-threaded flush phase.
	InsertBlock(idx geom.BlockIndex, b *Block)
	// AllAllocatedBlocks returns every block currently live in the grid, for
	// swapLabels / getLabelsList style full scans.
	AllAllocatedBlocks() []*Block

	// VoxelsPerSide, VoxelSize and BlockSize are grid geometry constants.
	VoxelsPerSide() int32
	VoxelSize() float64
	BlockSize() float64
}

// GlobalVoxelIndexFromPoint is a convenience wrapper around
// geom.GlobalVoxelIndexFromPoint using a grid's own voxel size.
func GlobalVoxelIndexFromPoint(g Grid, p geom.Point3d) geom.GlobalVoxelIndex {
	return geom.GlobalVoxelIndexFromPoint(p, 1.0/g.VoxelSize())
}

// BlockIndexFromGlobalVoxelIndex is a convenience wrapper using a grid's
// voxels-per-side.
func BlockIndexFromGlobalVoxelIndex(g Grid, idx geom.GlobalVoxelIndex) geom.BlockIndex {
	return geom.BlockIndexFromGlobalVoxelIndex(idx, g.VoxelsPerSide())
}

// LocalFromGlobalVoxelIndex is a convenience wrapper using a grid's
// voxels-per-side.
func LocalFromGlobalVoxelIndex(g Grid, idx geom.GlobalVoxelIndex) geom.LocalVoxelIndex {
	return geom.LocalFromGlobalVoxelIndex(idx, g.VoxelsPerSide())
}
