package integrate

import (
	"github.com/wuxian01/voxblox-plusplus/geom"
	"github.com/wuxian01/voxblox-plusplus/label"
	"github.com/wuxian01/voxblox-plusplus/labelgrid"
	"github.com/wuxian01/voxblox-plusplus/metrics"
	"github.com/wuxian01/voxblox-plusplus/stripelock"
	"github.com/wuxian01/voxblox-plusplus/tsdf"
)

// Params bundles the read-only context shared by every bundled voxel the
// Ray Integrator visits within one call to integratePointCloud.
type Params struct {
	Origin geom.Point3d // sensor origin in world frame
	TGC    geom.Transform

	PointsC []geom.Point3d
	Colors  []tsdf.Color
	Labels  []label.Label // per-point labels, all equal within one segment

	Base    tsdf.BaseIntegrator
	Grid    labelgrid.Grid
	Scratch *labelgrid.ScratchMap
	Stripes *stripelock.Array
	Counter *label.Counter
	Counts  *label.CountMap

	UpdateCfg UpdateConfig

	AntiGrazing        bool
	Carving            bool
	MaxRayLength       float64
	VoxelSizeInv       float64
	TruncationDistance float64

	// SurfaceBundleKeys is the reference set anti-grazing skips against:
	// always the surface pass's bundle keys.
	SurfaceBundleKeys map[geom.GlobalVoxelIndex]struct{}
}

// mergeRepresentative condenses the points of one bundle into a single
// representative sample. On the clearing pass only the bundle's first point
// is used and the rest are ignored.
func mergeRepresentative(p Params, pointIdxs []int, clearing bool) (pointC geom.Point3d, color tsdf.Color, weight float64, mergedLabel label.Label) {
	mergedLabel = p.Labels[pointIdxs[len(pointIdxs)-1]]

	if clearing {
		i := pointIdxs[0]
		return p.PointsC[i], p.Colors[i], p.Base.VoxelWeight(p.PointsC[i]), p.Labels[i]
	}

	var sumW, sumX, sumY, sumZ float64
	var sumR, sumG, sumB float64
	for _, i := range pointIdxs {
		w := p.Base.VoxelWeight(p.PointsC[i])
		sumW += w
		sumX += w * p.PointsC[i].X
		sumY += w * p.PointsC[i].Y
		sumZ += w * p.PointsC[i].Z
		sumR += w * float64(p.Colors[i].R)
		sumG += w * float64(p.Colors[i].G)
		sumB += w * float64(p.Colors[i].B)
	}
	if sumW == 0 {
		i := pointIdxs[0]
		return p.PointsC[i], p.Colors[i], 0, mergedLabel
	}
	pointC = geom.Point3d{X: sumX / sumW, Y: sumY / sumW, Z: sumZ / sumW}
	color = tsdf.Color{R: uint8(sumR / sumW), G: uint8(sumG / sumW), B: uint8(sumB / sumW)}
	return pointC, color, sumW, mergedLabel
}

// resolveLabelBlock finds the label block owning idx, first checking the
// cursor, then the live grid, then falling back to the scratch block map.
func resolveLabelBlock(grid labelgrid.Grid, scratch *labelgrid.ScratchMap, cursor *labelgrid.Cursor, idx geom.GlobalVoxelIndex) *labelgrid.Block {
	blockIdx := labelgrid.BlockIndexFromGlobalVoxelIndex(grid, idx)
	if blk, ok := cursor.Block(blockIdx); ok {
		return blk
	}
	blk := grid.BlockByIndex(blockIdx)
	if blk == nil {
		blk = scratch.GetOrCreate(blockIdx)
	}
	cursor.Remember(blockIdx, blk)
	return blk
}

// IntegrateBundle runs the ray integrator for one bundled voxel: it merges
// the bundle's points into a representative sample, casts a ray from the
// sensor origin, updates the delegated distance voxel, and applies the
// label voxel update rule to every visited label voxel.
//
// tsdfCursor and labelCursor are threaded through consecutive calls within
// one worker's share of a pass so repeated lookups in the same block are
// skipped.
func IntegrateBundle(p Params, bundleIdx geom.GlobalVoxelIndex, pointIdxs []int, clearing bool, tsdfCursor *tsdf.BlockCursor, labelCursor *labelgrid.Cursor) {
	if len(pointIdxs) == 0 {
		return // empty ray bundle, nothing to integrate
	}

	mergedPointC, mergedColor, mergedWeight, mergedLabel := mergeRepresentative(p, pointIdxs, clearing)
	mergedPointG := p.TGC.Apply(mergedPointC)

	rc := p.Base.RayCaster(p.Origin, mergedPointG, clearing, p.Carving, p.MaxRayLength, p.VoxelSizeInv, p.TruncationDistance)
	for {
		idx, ok := rc.Next()
		if !ok {
			break
		}

		if p.AntiGrazing && !clearing && idx != bundleIdx {
			if _, covered := p.SurfaceBundleKeys[idx]; covered {
				continue
			}
		}

		dv := p.Base.AllocateVoxel(idx, tsdfCursor)
		p.Base.UpdateVoxel(p.Origin, mergedPointG, idx, mergedColor, mergedWeight, dv)

		blk := resolveLabelBlock(p.Grid, p.Scratch, labelCursor, idx)
		local := labelgrid.LocalFromGlobalVoxelIndex(p.Grid, idx)
		voxel := blk.VoxelAt(local)

		hash := idx.Hash()
		p.Stripes.WithLock(hash, func() {
			ApplyVoxelUpdate(voxel, label.Voxel{Label: mergedLabel, Confidence: 1}, p.UpdateCfg, p.Counter, p.Counts)
			blk.MarkUpdated()
		})
		metrics.VoxelsUpdated.Inc()
	}
}
