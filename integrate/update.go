// Package integrate implements the ray integrator and the label voxel
// update rule: the competitive-accumulator rule that reconciles an incoming
// label observation with whatever a voxel already holds.
package integrate

import (
	"math"

	"github.com/wuxian01/voxblox-plusplus/label"
)

// UpdateConfig carries the two confidence-capping knobs consulted by
// ApplyVoxelUpdate.
type UpdateConfig struct {
	CapConfidence bool
	CapValue      label.Confidence
}

// ApplyVoxelUpdate performs the read-modify-write of the label voxel update
// rule. The caller must already hold the stripe lock guarding v for the
// entire call; this function does not lock anything itself.
func ApplyVoxelUpdate(v *label.Voxel, incoming label.Voxel, cfg UpdateConfig, counter *label.Counter, counts *label.CountMap) {
	switch {
	case v.Label == incoming.Label:
		// Matching reinforcement: disagreeing evidence never reaches this
		// branch, so confidence only grows here.
		sum := uint64(v.Confidence) + uint64(incoming.Confidence)
		if cfg.CapConfidence && sum > uint64(cfg.CapValue) {
			sum = uint64(cfg.CapValue)
		}
		v.Confidence = label.Confidence(capUint32(sum))

	case v.Confidence == 0:
		// Zero-confidence takeover: the sitting label (if any) had already
		// eroded to nothing, so the incoming label seats immediately.
		old := v.Label
		v.Label = incoming.Label
		v.Confidence = incoming.Confidence
		counter.Raise(incoming.Label)
		counts.Dec(old)
		counts.Inc(incoming.Label)

	default:
		// Disagreeing evidence erodes the sitting label, saturating at 0
		// rather than wrapping around.
		if uint64(incoming.Confidence) >= uint64(v.Confidence) {
			v.Confidence = 0
		} else {
			v.Confidence -= incoming.Confidence
		}
	}
}

func capUint32(v uint64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
