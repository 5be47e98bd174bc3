package integrate

import (
	"testing"

	"github.com/wuxian01/voxblox-plusplus/label"
)

func TestApplyVoxelUpdateSeatsFreshVoxel(t *testing.T) {
	var v label.Voxel // Unlabeled, confidence 0
	var counter label.Counter
	var counts label.CountMap

	ApplyVoxelUpdate(&v, label.Voxel{Label: 5, Confidence: 3}, UpdateConfig{}, &counter, &counts)

	if v.Label != 5 || v.Confidence != 3 {
		t.Fatalf("seat result = %+v", v)
	}
	if counts.Get(5) != 1 {
		t.Fatalf("counts.Get(5) = %d, want 1", counts.Get(5))
	}
	if counter.Highest() != 5 {
		t.Fatalf("counter.Highest() = %d, want 5", counter.Highest())
	}
}

func TestApplyVoxelUpdateMatchingReinforcement(t *testing.T) {
	v := label.Voxel{Label: 5, Confidence: 3}
	var counter label.Counter
	var counts label.CountMap

	ApplyVoxelUpdate(&v, label.Voxel{Label: 5, Confidence: 4}, UpdateConfig{}, &counter, &counts)

	if v.Label != 5 || v.Confidence != 7 {
		t.Fatalf("reinforcement result = %+v, want confidence 7", v)
	}
}

func TestApplyVoxelUpdateMatchingReinforcementCaps(t *testing.T) {
	v := label.Voxel{Label: 5, Confidence: 8}
	var counter label.Counter
	var counts label.CountMap
	cfg := UpdateConfig{CapConfidence: true, CapValue: 10}

	ApplyVoxelUpdate(&v, label.Voxel{Label: 5, Confidence: 8}, cfg, &counter, &counts)

	if v.Confidence != 10 {
		t.Fatalf("capped confidence = %d, want 10", v.Confidence)
	}
}

func TestApplyVoxelUpdateErodesCompetingLabel(t *testing.T) {
	v := label.Voxel{Label: 5, Confidence: 3}
	var counter label.Counter
	var counts label.CountMap

	ApplyVoxelUpdate(&v, label.Voxel{Label: 9, Confidence: 1}, UpdateConfig{}, &counter, &counts)

	if v.Label != 5 || v.Confidence != 2 {
		t.Fatalf("erosion result = %+v, want (5, 2)", v)
	}
}

func TestApplyVoxelUpdateErosionSaturatesAtZero(t *testing.T) {
	v := label.Voxel{Label: 5, Confidence: 2}
	var counter label.Counter
	var counts label.CountMap

	ApplyVoxelUpdate(&v, label.Voxel{Label: 9, Confidence: 10}, UpdateConfig{}, &counter, &counts)

	if v.Label != 5 || v.Confidence != 0 {
		t.Fatalf("erosion result = %+v, want (5, 0), not a wraparound", v)
	}
}

func TestApplyVoxelUpdateZeroConfidenceTakeoverAdjustsCounts(t *testing.T) {
	v := label.Voxel{Label: 5, Confidence: 0}
	var counter label.Counter
	var counts label.CountMap
	counts.Inc(5)

	ApplyVoxelUpdate(&v, label.Voxel{Label: 9, Confidence: 1}, UpdateConfig{}, &counter, &counts)

	if v.Label != 9 || v.Confidence != 1 {
		t.Fatalf("takeover result = %+v, want (9, 1)", v)
	}
	if counts.Get(5) != 0 {
		t.Fatalf("counts.Get(5) = %d, want 0 after takeover", counts.Get(5))
	}
	if counts.Get(9) != 1 {
		t.Fatalf("counts.Get(9) = %d, want 1 after takeover", counts.Get(9))
	}
}
