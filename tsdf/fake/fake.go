// Package fake provides a minimal, in-memory stand-in for the external base
// integrator (bundler, distance-voxel allocation, ray caster). It is not a
// TSDF implementation; the distance-update rule is an external collaborator
// concern. This is only a fixture realistic enough to exercise the ray
// integrator and worker pool driver in tests and in cmd/fusionctl without a
// real sensor fusion backend.
package fake

import (
	"math"
	"sync"

	"github.com/wuxian01/voxblox-plusplus/geom"
	"github.com/wuxian01/voxblox-plusplus/tsdf"
)

// DistanceVoxel is a toy TSDF voxel: distance is a weight-averaged running
// value, and color is overwritten by the latest sample (no blending).
type DistanceVoxel struct {
	Distance float64
	Weight   float64
	Color    tsdf.Color
}

// Integrator is the fake tsdf.BaseIntegrator.
type Integrator struct {
	VoxelSize float64

	mu      sync.Mutex
	live    map[geom.GlobalVoxelIndex]*DistanceVoxel
	scratch map[geom.GlobalVoxelIndex]*DistanceVoxel
}

// New constructs a fake integrator with the given voxel size.
func New(voxelSize float64) *Integrator {
	return &Integrator{
		VoxelSize: voxelSize,
		live:      make(map[geom.GlobalVoxelIndex]*DistanceVoxel),
		scratch:   make(map[geom.GlobalVoxelIndex]*DistanceVoxel),
	}
}

// BundleRays groups points by the global voxel index of their world-frame
// position: every point maps to exactly one bundle in the surface map
// (freespace clouds bundle the same way into the clear map instead).
func (f *Integrator) BundleRays(tGC geom.Transform, pointsC []geom.Point3d, colors []tsdf.Color, freespace bool) (surface, clear tsdf.BundleMap) {
	surface = make(tsdf.BundleMap)
	clear = make(tsdf.BundleMap)
	target := surface
	if freespace {
		target = clear
	}
	for i, p := range pointsC {
		pG := tGC.Apply(p)
		idx := geom.GlobalVoxelIndexFromPoint(pG, 1.0/f.VoxelSize)
		target[idx] = append(target[idx], i)
	}
	return surface, clear
}

func (f *Integrator) AllocateVoxel(idx geom.GlobalVoxelIndex, cursor *tsdf.BlockCursor) tsdf.VoxelHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.live[idx]; ok {
		return v
	}
	if v, ok := f.scratch[idx]; ok {
		return v
	}
	v := &DistanceVoxel{}
	f.scratch[idx] = v
	return v
}

func (f *Integrator) UpdateVoxel(origin, pointG geom.Point3d, idx geom.GlobalVoxelIndex, color tsdf.Color, weight float64, handle tsdf.VoxelHandle) {
	v := handle.(*DistanceVoxel)
	dist := math.Hypot(math.Hypot(pointG.X-origin.X, pointG.Y-origin.Y), pointG.Z-origin.Z)

	f.mu.Lock()
	defer f.mu.Unlock()
	newWeight := v.Weight + weight
	if newWeight > 0 {
		v.Distance = (v.Distance*v.Weight + dist*weight) / newWeight
	}
	v.Weight = newWeight
	v.Color = color
}

func (f *Integrator) FlushScratch() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for idx, v := range f.scratch {
		f.live[idx] = v
	}
	f.scratch = make(map[geom.GlobalVoxelIndex]*DistanceVoxel)
}

// VoxelWeight decreases monotonically with depth.
func (f *Integrator) VoxelWeight(pointC geom.Point3d) float64 {
	depth := math.Hypot(math.Hypot(pointC.X, pointC.Y), pointC.Z)
	if depth < 1e-6 {
		depth = 1e-6
	}
	return 1.0 / (depth * depth)
}

// RayCaster marches in fixed voxel-sized steps from origin to end, yielding
// each distinct global voxel index encountered in order (a simple, not
// performance-tuned, substitute for a 3D DDA / Amanatides-Woo walker).
func (f *Integrator) RayCaster(origin, end geom.Point3d, clearing, carving bool, maxLen, voxelSizeInv, trunc float64) tsdf.RayCasterIter {
	dir := end.Sub(origin)
	length := math.Hypot(math.Hypot(dir.X, dir.Y), dir.Z)
	if maxLen > 0 && length > maxLen {
		length = maxLen
	}
	step := 1.0 / voxelSizeInv
	if step <= 0 {
		step = f.VoxelSize
	}
	if length <= 0 {
		return &rayIter{indices: []geom.GlobalVoxelIndex{geom.GlobalVoxelIndexFromPoint(end, voxelSizeInv)}}
	}
	unit := dir.Scale(1.0 / length)

	var indices []geom.GlobalVoxelIndex
	seen := make(map[geom.GlobalVoxelIndex]bool)
	for d := 0.0; d <= length; d += step {
		p := origin.Add(unit.Scale(d))
		idx := geom.GlobalVoxelIndexFromPoint(p, voxelSizeInv)
		if !seen[idx] {
			seen[idx] = true
			indices = append(indices, idx)
		}
	}
	endIdx := geom.GlobalVoxelIndexFromPoint(end, voxelSizeInv)
	if !seen[endIdx] {
		indices = append(indices, endIdx)
	}
	return &rayIter{indices: indices}
}

type rayIter struct {
	indices []geom.GlobalVoxelIndex
	pos     int
}

func (r *rayIter) Next() (geom.GlobalVoxelIndex, bool) {
	if r.pos >= len(r.indices) {
		return geom.GlobalVoxelIndex{}, false
	}
	idx := r.indices[r.pos]
	r.pos++
	return idx, true
}
