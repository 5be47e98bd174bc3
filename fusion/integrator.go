// Package fusion wires the label assigner, ray integrator, worker pool
// driver, and merge manager into the public core operations:
// IntegratePointCloud, ComputeSegmentLabelCandidates,
// DecideLabelPointClouds, MergeLabels, SwapLabels, GetLabelsList, and
// GetFreshLabel.
package fusion

import (
	"errors"
	"fmt"
	"time"

	"github.com/wuxian01/voxblox-plusplus/assign"
	"github.com/wuxian01/voxblox-plusplus/config"
	"github.com/wuxian01/voxblox-plusplus/flog"
	"github.com/wuxian01/voxblox-plusplus/geom"
	"github.com/wuxian01/voxblox-plusplus/integrate"
	"github.com/wuxian01/voxblox-plusplus/label"
	"github.com/wuxian01/voxblox-plusplus/labelgrid"
	"github.com/wuxian01/voxblox-plusplus/metrics"
	"github.com/wuxian01/voxblox-plusplus/pairwise"
	"github.com/wuxian01/voxblox-plusplus/pool"
	"github.com/wuxian01/voxblox-plusplus/stripelock"
	"github.com/wuxian01/voxblox-plusplus/tsdf"
)

// ErrNilCollaborator is the precondition violation raised when Integrator
// is constructed without a grid or base integrator handle.
var ErrNilCollaborator = errors.New("fusion: grid and base integrator handles must not be nil")

// Integrator is the labeled volumetric fusion core. It holds non-owning
// handles to the external TSDF base integrator and label grid; both are
// expected to outlive the Integrator and remain the caller's responsibility
// to construct and tear down.
type Integrator struct {
	cfg config.Config

	grid    labelgrid.Grid
	scratch *labelgrid.ScratchMap
	stripes *stripelock.Array
	base    tsdf.BaseIntegrator

	counter  label.Counter
	counts   label.CountMap
	pairwise *pairwise.Map
}

// New constructs an Integrator. grid and base must be non-nil (precondition
// violation otherwise); cfg is validated via cfg.Validate().
func New(cfg config.Config, grid labelgrid.Grid, base tsdf.BaseIntegrator) (*Integrator, error) {
	if grid == nil || base == nil {
		return nil, ErrNilCollaborator
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("fusion: invalid config: %w", err)
	}
	return &Integrator{
		cfg:      cfg,
		grid:     grid,
		scratch:  labelgrid.NewScratchMap(grid.VoxelsPerSide(), grid.BlockSize()),
		stripes:  stripelock.New(stripelock.DefaultBits),
		base:     base,
		pairwise: pairwise.New(),
	}, nil
}

// GetFreshLabel mints a new, never-before-returned label.
func (in *Integrator) GetFreshLabel() label.Label {
	return in.counter.Fresh()
}

// GetLabelsList returns every label with a positive voxel count.
func (in *Integrator) GetLabelsList() []label.Label {
	return in.counts.List()
}

// ComputeSegmentLabelCandidates runs stage A of the label assigner for one
// segment, accumulating into cand.
func (in *Integrator) ComputeSegmentLabelCandidates(s *assign.Segment, cand *assign.Candidates) {
	opt := assign.Options{
		EnablePairwiseConfidenceMerging: in.cfg.EnablePairwiseConfidenceMerging,
		RatioThreshold:                  in.cfg.PairwiseConfidenceRatioThreshold,
	}
	assign.ComputeSegmentCandidates(in.grid, s, cand, in.pairwise, opt, &in.counter)
}

// DecideLabelPointClouds runs stages B and C of the label assigner across a
// batch of segments, leaving every segment's Labels array fully populated.
func (in *Integrator) DecideLabelPointClouds(segments []*assign.Segment) {
	cand := assign.NewCandidates()
	for _, s := range segments {
		in.ComputeSegmentLabelCandidates(s, cand)
	}
	assign.DecideLabels(segments, cand, &in.counter)
}

// IntegratePointCloud runs the worker pool driver for one already-labeled
// segment: it bundles the cloud into surface and clearing ray sets,
// integrates both passes, and flushes scratch allocations into the live
// grids. labels must already be decided (e.g. via DecideLabelPointClouds)
// and all equal within the segment.
func (in *Integrator) IntegratePointCloud(tGC geom.Transform, pointsC []geom.Point3d, colors []tsdf.Color, labels []label.Label, freespacePoints bool) (err error) {
	if len(pointsC) != len(colors) || len(pointsC) != len(labels) {
		return fmt.Errorf("fusion: %w: points_C, colors, and labels must have equal length", errPrecondition)
	}
	start := time.Now()
	defer func() { metrics.BatchDuration.Observe(time.Since(start).Seconds()) }()

	// An internal invariant violation (e.g. a scratch-map insert collision)
	// panics rather than returning a recoverable error, since no caller in
	// this worker pool has a sensible way to continue. The public API
	// itself never panics across its boundary, so the batch is aborted here
	// and surfaced as a plain error instead.
	defer func() {
		if r := recover(); r != nil {
			flog.Errorf("fusion: aborting batch on internal invariant violation: %v", r)
			err = fmt.Errorf("fusion: internal invariant violation: %v", r)
		}
	}()

	surface, clear := in.base.BundleRays(tGC, pointsC, colors, freespacePoints)

	surfaceKeys := make(map[geom.GlobalVoxelIndex]struct{}, len(surface))
	for k := range surface {
		surfaceKeys[k] = struct{}{}
	}

	params := integrate.Params{
		Origin:             tGC.Translation,
		TGC:                tGC,
		PointsC:            pointsC,
		Colors:             colors,
		Labels:             labels,
		Base:               in.base,
		Grid:               in.grid,
		Scratch:            in.scratch,
		Stripes:            in.stripes,
		Counter:            &in.counter,
		Counts:             &in.counts,
		UpdateCfg:          integrate.UpdateConfig{CapConfidence: in.cfg.CapConfidence, CapValue: label.Confidence(in.cfg.ConfidenceCapValue)},
		AntiGrazing:        in.cfg.AntiGrazing,
		Carving:            in.cfg.Carving,
		MaxRayLength:       in.cfg.MaxRayLength,
		VoxelSizeInv:       1.0 / in.grid.VoxelSize(),
		TruncationDistance: in.cfg.TruncationDistance,
		SurfaceBundleKeys:  surfaceKeys,
	}

	pool.RunPass(params, surface, false, in.cfg.IntegratorThreads)
	pool.RunPass(params, clear, true, in.cfg.IntegratorThreads)

	in.scratch.Flush(in.grid)
	in.base.FlushScratch()
	return nil
}
