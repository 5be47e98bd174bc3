// Package metrics exposes Prometheus counters for the fusion core, following
// moby-moby's convention of a small package-level metrics surface backed by
// github.com/prometheus/client_golang.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SegmentsAssigned counts segments that reached a label assignment,
	// split by whether the label came from Stage B (carryover) or Stage C
	// (fresh).
	SegmentsAssigned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fusion",
		Subsystem: "assigner",
		Name:      "segments_assigned_total",
		Help:      "Segments that received a label, by assignment stage.",
	}, []string{"stage"})

	// VoxelsUpdated counts label-voxel writes performed by the Ray Integrator.
	VoxelsUpdated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fusion",
		Subsystem: "integrator",
		Name:      "label_voxels_updated_total",
		Help:      "Label voxel updates applied by the ray integrator.",
	})

	// LabelMerges counts SwapLabels invocations with distinct labels, whether
	// made by MergeLabels or called directly.
	LabelMerges = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fusion",
		Subsystem: "merge",
		Name:      "label_merges_total",
		Help:      "Label swaps performed by the merge manager.",
	})

	// BatchDuration observes wall-clock time for integratePointCloud.
	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fusion",
		Subsystem: "integrator",
		Name:      "batch_duration_seconds",
		Help:      "Time to fuse one point-cloud batch.",
		Buckets:   prometheus.DefBuckets,
	})
)

// MustRegister registers the fusion core's metrics with the given registerer,
// following moby-moby's pattern of a single explicit registration call at
// daemon startup rather than relying on the global default registry.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(SegmentsAssigned, VoxelsUpdated, LabelMerges, BatchDuration)
}
