// Package codec implements the wire format used to persist or transmit a
// single segment between process boundaries, e.g. reading a point cloud
// batch from disk for cmd/fusionctl. It only carries segment ingestion data,
// not the fused volume. Grounded on dvid's preference for compact
// binary marshaling over hand-rolled encodings
// (datatype/labelarray/labelidx.go's MarshalBinary), generalized here to a
// real msgpack codec since no msgpack dependency appears verbatim in the
// teacher slice.
package codec

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wuxian01/voxblox-plusplus/assign"
	"github.com/wuxian01/voxblox-plusplus/geom"
	"github.com/wuxian01/voxblox-plusplus/tsdf"
)

// WireTransform is the on-wire rigid transform: 3x3 rotation plus a
// translation vector.
type WireTransform struct {
	Rotation    [3][3]float64 `msgpack:"rotation"`
	Translation [3]float64    `msgpack:"translation"`
}

// WireSegment is the on-wire representation of one Segment, excluding its
// output labels (those are produced by the Label Assigner, not transmitted).
type WireSegment struct {
	TGC       WireTransform `msgpack:"t_g_c"`
	PointsC   [][3]float64  `msgpack:"points_c"`
	Colors    [][3]uint8    `msgpack:"colors"`
	Freespace bool          `msgpack:"freespace"`
}

// Encode serializes a WireSegment to msgpack bytes.
func Encode(w *WireSegment) ([]byte, error) {
	b, err := msgpack.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("codec: encode segment: %w", err)
	}
	return b, nil
}

// Decode parses msgpack bytes into a WireSegment.
func Decode(b []byte) (*WireSegment, error) {
	var w WireSegment
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return nil, fmt.Errorf("codec: decode segment: %w", err)
	}
	return &w, nil
}

// Transform converts the wire transform into geom.Transform.
func (w WireTransform) Transform() geom.Transform {
	return geom.Transform{
		Rotation:    w.Rotation,
		Translation: geom.Point3d{X: w.Translation[0], Y: w.Translation[1], Z: w.Translation[2]},
	}
}

// FromTransform converts a geom.Transform into its wire form.
func FromTransform(t geom.Transform) WireTransform {
	return WireTransform{
		Rotation:    t.Rotation,
		Translation: [3]float64{t.Translation.X, t.Translation.Y, t.Translation.Z},
	}
}

// ToSegment builds an assign.Segment (with a fresh, zeroed Labels array)
// from a decoded WireSegment.
func (w *WireSegment) ToSegment() (*assign.Segment, error) {
	pointsC := make([]geom.Point3d, len(w.PointsC))
	for i, p := range w.PointsC {
		pointsC[i] = geom.Point3d{X: p[0], Y: p[1], Z: p[2]}
	}
	colors := make([]tsdf.Color, len(w.Colors))
	for i, c := range w.Colors {
		colors[i] = tsdf.Color{R: c[0], G: c[1], B: c[2]}
	}
	return assign.NewSegment(w.TGC.Transform(), pointsC, colors)
}

// FromSegment builds a WireSegment from an in-memory Segment, discarding
// its (possibly not-yet-decided) Labels.
func FromSegment(s *assign.Segment, freespace bool) *WireSegment {
	pointsC := make([][3]float64, len(s.PointsC))
	for i, p := range s.PointsC {
		pointsC[i] = [3]float64{p.X, p.Y, p.Z}
	}
	colors := make([][3]uint8, len(s.Colors))
	for i, c := range s.Colors {
		colors[i] = [3]uint8{c.R, c.G, c.B}
	}
	return &WireSegment{
		TGC:       FromTransform(s.TGC),
		PointsC:   pointsC,
		Colors:    colors,
		Freespace: freespace,
	}
}
