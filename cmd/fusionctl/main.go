// Command fusionctl is a thin driver for the fusion core: it loads a batch
// of segments from msgpack-encoded files, runs them through the label
// assigner and ray integrator, and reports the resulting label population.
// It exists to exercise fusion.Integrator end to end, not as a production
// sensor pipeline. Point-cloud acquisition and mesh/visualization remain
// external collaborators outside this module's scope.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/wuxian01/voxblox-plusplus/assign"
	"github.com/wuxian01/voxblox-plusplus/codec"
	"github.com/wuxian01/voxblox-plusplus/config"
	"github.com/wuxian01/voxblox-plusplus/flog"
	"github.com/wuxian01/voxblox-plusplus/fusion"
	"github.com/wuxian01/voxblox-plusplus/labelgrid"
	"github.com/wuxian01/voxblox-plusplus/metrics"
	"github.com/wuxian01/voxblox-plusplus/tsdf/fake"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		flog.Errorf("fusionctl: %v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg := config.Default()

	fs := pflag.NewFlagSet("fusionctl", pflag.ContinueOnError)
	cfg.RegisterFlags(fs)
	debug := fs.Bool("debug", false, "enable debug logging")
	metricsAddr := fs.String("metrics-addr", "", "address to serve /metrics on, empty disables")
	voxelsPerSide := fs.Int32("voxels-per-side", 16, "voxels along one edge of a label block")
	voxelSize := fs.Float64("voxel-size", 0.02, "edge length of one voxel, in meters")
	segmentFiles := fs.StringArray("segment", nil, "path to a msgpack-encoded segment, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *debug {
		flog.SetLevel(logrus.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)
	if *metricsAddr != "" {
		serveMetrics(*metricsAddr, reg)
	}

	grid := labelgrid.NewMemGrid(*voxelsPerSide, *voxelSize)
	base := fake.New(*voxelSize)

	in, err := fusion.New(cfg, grid, base)
	if err != nil {
		return fmt.Errorf("construct integrator: %w", err)
	}

	segments, err := loadSegments(*segmentFiles)
	if err != nil {
		return fmt.Errorf("load segments: %w", err)
	}
	if len(segments) == 0 {
		flog.Warnf("fusionctl: no --segment files given, nothing to fuse")
		return nil
	}

	in.DecideLabelPointClouds(segments)
	for i, s := range segments {
		freespace := false
		if err := in.IntegratePointCloud(s.TGC, s.PointsC, s.Colors, s.Labels, freespace); err != nil {
			return fmt.Errorf("integrate segment %d: %w", i, err)
		}
	}

	in.MergeLabels()

	flog.Infof("fusionctl: fused %d segment(s), %d label(s) present", len(segments), len(in.GetLabelsList()))
	for _, l := range in.GetLabelsList() {
		fmt.Printf("label %d\n", l)
	}
	return nil
}

func loadSegments(paths []string) ([]*assign.Segment, error) {
	segments := make([]*assign.Segment, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		wire, err := codec.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		s, err := wire.ToSegment()
		if err != nil {
			return nil, fmt.Errorf("build segment from %s: %w", p, err)
		}
		segments = append(segments, s)
	}
	return segments, nil
}

// serveMetrics mirrors moby-moby's daemon metrics bring-up: a dedicated
// registry rather than the global default one, served on its own HTTP
// endpoint when requested.
func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			flog.Errorf("fusionctl: metrics server: %v", err)
		}
	}()
}
