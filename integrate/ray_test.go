package integrate

import (
	"testing"

	"github.com/wuxian01/voxblox-plusplus/geom"
	"github.com/wuxian01/voxblox-plusplus/label"
	"github.com/wuxian01/voxblox-plusplus/labelgrid"
	"github.com/wuxian01/voxblox-plusplus/stripelock"
	"github.com/wuxian01/voxblox-plusplus/tsdf"
	"github.com/wuxian01/voxblox-plusplus/tsdf/fake"
)

func newTestParams(grid labelgrid.Grid, base tsdf.BaseIntegrator, points []geom.Point3d, labels []label.Label) Params {
	colors := make([]tsdf.Color, len(points))
	return Params{
		Origin:       geom.Point3d{},
		TGC:          geom.Identity(),
		PointsC:      points,
		Colors:       colors,
		Labels:       labels,
		Base:         base,
		Grid:         grid,
		Scratch:      labelgrid.NewScratchMap(grid.VoxelsPerSide(), grid.BlockSize()),
		Stripes:      stripelock.New(4),
		Counter:      &label.Counter{},
		Counts:       &label.CountMap{},
		UpdateCfg:    UpdateConfig{},
		AntiGrazing:  true,
		Carving:      true,
		MaxRayLength: 10,
		VoxelSizeInv: 1.0 / grid.VoxelSize(),
	}
}

func TestIntegrateBundleSeatsLabelAndFlushesScratch(t *testing.T) {
	grid := labelgrid.NewMemGrid(8, 0.1)
	base := fake.New(0.1)
	points := []geom.Point3d{{X: 0.5, Y: 0.5, Z: 0.5}}
	p := newTestParams(grid, base, points, []label.Label{42})
	p.SurfaceBundleKeys = map[geom.GlobalVoxelIndex]struct{}{}

	bundleIdx := geom.GlobalVoxelIndexFromPoint(points[0], p.VoxelSizeInv)
	var tsdfCursor tsdf.BlockCursor
	var labelCursor labelgrid.Cursor
	IntegrateBundle(p, bundleIdx, []int{0}, false, &tsdfCursor, &labelCursor)

	p.Scratch.Flush(grid)

	blockIdx := labelgrid.BlockIndexFromGlobalVoxelIndex(grid, bundleIdx)
	blk := grid.BlockByIndex(blockIdx)
	if blk == nil {
		t.Fatalf("expected flushed scratch block to be present in grid")
	}
	local := labelgrid.LocalFromGlobalVoxelIndex(grid, bundleIdx)
	v := blk.VoxelAt(local)
	if v.Label != 42 {
		t.Fatalf("voxel label = %d, want 42", v.Label)
	}
	// The ray from the origin to (0.5, 0.5, 0.5) seats every voxel it visits:
	// (0,0,0) through (5,5,5) along the diagonal, six voxels in all.
	if p.Counts.Get(42) != 6 {
		t.Fatalf("counts.Get(42) = %d, want 6", p.Counts.Get(42))
	}
}

func TestIntegrateBundleEmptyBundleIsNoOp(t *testing.T) {
	grid := labelgrid.NewMemGrid(8, 0.1)
	base := fake.New(0.1)
	p := newTestParams(grid, base, nil, nil)

	var tsdfCursor tsdf.BlockCursor
	var labelCursor labelgrid.Cursor
	IntegrateBundle(p, geom.GlobalVoxelIndex{}, nil, false, &tsdfCursor, &labelCursor)

	if p.Scratch.Len() != 0 {
		t.Fatalf("empty bundle allocated a scratch block")
	}
}

func TestIntegrateBundleAntiGrazingSkipsCoveredSurfaceVoxel(t *testing.T) {
	grid := labelgrid.NewMemGrid(8, 0.1)
	base := fake.New(0.1)
	points := []geom.Point3d{{X: 1.0, Y: 0, Z: 0}}
	p := newTestParams(grid, base, points, []label.Label{7})

	bundleIdx := geom.GlobalVoxelIndexFromPoint(points[0], p.VoxelSizeInv)
	// Mark every voxel along the ray (except the bundle's own index) as
	// already covered by the surface pass, forcing the anti-grazing skip.
	p.SurfaceBundleKeys = map[geom.GlobalVoxelIndex]struct{}{
		{X: 0, Y: 0, Z: 0}: {},
		{X: 1, Y: 0, Z: 0}: {},
		{X: 2, Y: 0, Z: 0}: {},
		{X: 3, Y: 0, Z: 0}: {},
		{X: 4, Y: 0, Z: 0}: {},
		{X: 5, Y: 0, Z: 0}: {},
		{X: 6, Y: 0, Z: 0}: {},
		{X: 7, Y: 0, Z: 0}: {},
		{X: 8, Y: 0, Z: 0}: {},
		{X: 9, Y: 0, Z: 0}: {},
		{X: 10, Y: 0, Z: 0}: {},
	}
	delete(p.SurfaceBundleKeys, bundleIdx)

	var tsdfCursor tsdf.BlockCursor
	var labelCursor labelgrid.Cursor
	IntegrateBundle(p, bundleIdx, []int{0}, false, &tsdfCursor, &labelCursor)
	p.Scratch.Flush(grid)

	// The bundle's own voxel is never anti-grazed, so it must still seat.
	blockIdx := labelgrid.BlockIndexFromGlobalVoxelIndex(grid, bundleIdx)
	blk := grid.BlockByIndex(blockIdx)
	if blk == nil {
		t.Fatalf("bundle's own voxel must not be anti-grazed")
	}
	local := labelgrid.LocalFromGlobalVoxelIndex(grid, bundleIdx)
	if blk.VoxelAt(local).Label != 7 {
		t.Fatalf("bundle's own voxel label = %d, want 7", blk.VoxelAt(local).Label)
	}
}
