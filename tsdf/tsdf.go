// Package tsdf declares the external base-integrator contract consumed by
// this core: ray bundling, TSDF voxel allocation/update, and ray casting.
// The distance-update rule itself is out of scope; this package only types
// the boundary so the core compiles and is testable against fakes.
package tsdf

import "github.com/wuxian01/voxblox-plusplus/geom"

// Color is a per-point RGB sample, blended alongside distance and label.
type Color struct {
	R, G, B uint8
}

// VoxelHandle is an opaque reference to one distance voxel, owned and
// interpreted entirely by the external base integrator; this core never
// reads or writes through it directly, only threads it through
// UpdateVoxel.
type VoxelHandle interface{}

// BlockCursor caches the last block visited during a ray so consecutive
// voxels falling in the same block skip a map lookup. It is opaque to this
// core; the base integrator defines and mutates its contents.
type BlockCursor interface{}

// BundleMap maps a voxel index to the ordered point indices that bundle
// bundled into it.
type BundleMap map[geom.GlobalVoxelIndex][]int

// RayCasterIter traverses voxels from a ray's origin to its end point.
type RayCasterIter interface {
	// Next returns the next visited voxel index, or ok=false when the ray
	// is exhausted.
	Next() (idx geom.GlobalVoxelIndex, ok bool)
}

// BaseIntegrator is the external TSDF collaborator's contract.
type BaseIntegrator interface {
	// BundleRays partitions a point cloud into surface and clearing voxel
	// bundles.
	BundleRays(tGC geom.Transform, pointsC []geom.Point3d, colors []Color, freespace bool) (surface, clear BundleMap)

	// AllocateVoxel returns a handle to the distance voxel at idx,
	// allocating it (falling back to a scratch area) if necessary. cursor
	// is threaded through consecutive calls within one ray to skip
	// redundant block lookups.
	AllocateVoxel(idx geom.GlobalVoxelIndex, cursor *BlockCursor) VoxelHandle

	// UpdateVoxel applies the (delegated) TSDF distance-update rule.
	UpdateVoxel(origin, pointG geom.Point3d, idx geom.GlobalVoxelIndex, color Color, weight float64, v VoxelHandle)

	// FlushScratch merges the distance scratch map into the live grid;
	// called once after all workers finish, before any subsequent batch.
	FlushScratch()

	// VoxelWeight returns the (monotonically depth-decreasing) weight of a
	// camera-frame point sample.
	VoxelWeight(pointC geom.Point3d) float64

	// RayCaster returns an iterator over voxels from origin to end.
	RayCaster(origin, end geom.Point3d, clearing, carving bool, maxLen, voxelSizeInv, truncationDistance float64) RayCasterIter
}
