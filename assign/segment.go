// Package assign implements the label assigner: per-segment candidate
// accumulation, global greedy assignment, and fresh-label fallback,
// grounded on dvid's equivalence/merge bookkeeping
// (datatype/labelmap/equiv.go, datatype/labelvol/merge_split.go).
package assign

import (
	"github.com/wuxian01/voxblox-plusplus/geom"
	"github.com/wuxian01/voxblox-plusplus/label"
	"github.com/wuxian01/voxblox-plusplus/tsdf"
)

// Segment is one ingestion-step bundle: points in camera frame, a
// sensor-to-world transform, per-point colors, and an output labels array
// filled by the assigner, one label per point, all equal.
type Segment struct {
	PointsC []geom.Point3d
	TGC     geom.Transform
	Colors  []tsdf.Color
	Labels  []label.Label
}

// NewSegment validates the precondition of matching lengths and allocates
// the output labels array.
func NewSegment(tGC geom.Transform, pointsC []geom.Point3d, colors []tsdf.Color) (*Segment, error) {
	if len(pointsC) != len(colors) {
		return nil, &PreconditionError{Msg: "points_C and colors length mismatch"}
	}
	return &Segment{
		PointsC: pointsC,
		TGC:     tGC,
		Colors:  colors,
		Labels:  make([]label.Label, len(pointsC)),
	}, nil
}

// N returns the segment's point count.
func (s *Segment) N() int { return len(s.PointsC) }

// AssignAll sets every point's label to l.
func (s *Segment) AssignAll(l label.Label) {
	for i := range s.Labels {
		s.Labels[i] = l
	}
}

// PreconditionError reports a fatal precondition violation.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return "precondition violation: " + e.Msg }
