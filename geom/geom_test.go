package geom

import "testing"

func TestTransformIdentityApplyIsNoOp(t *testing.T) {
	p := Point3d{X: 1.5, Y: -2.5, Z: 3.0}
	got := Identity().Apply(p)
	if got != p {
		t.Fatalf("Identity().Apply(%v) = %v", p, got)
	}
}

func TestTransformApplyTranslation(t *testing.T) {
	tr := Identity()
	tr.Translation = Point3d{X: 1, Y: 2, Z: 3}
	got := tr.Apply(Point3d{X: 1, Y: 1, Z: 1})
	want := Point3d{X: 2, Y: 3, Z: 4}
	if got != want {
		t.Fatalf("Apply() = %v, want %v", got, want)
	}
}

func TestGlobalVoxelIndexFromPointNegativeCoordinates(t *testing.T) {
	// A point just below zero must floor into voxel -1, not 0: Go's
	// truncating int conversion alone would get this wrong.
	idx := GlobalVoxelIndexFromPoint(Point3d{X: -0.1, Y: -1.1, Z: 0.1}, 1.0)
	want := GlobalVoxelIndex{X: -1, Y: -2, Z: 0}
	if idx != want {
		t.Fatalf("GlobalVoxelIndexFromPoint() = %v, want %v", idx, want)
	}
}

func TestBlockIndexFromGlobalVoxelIndexNegative(t *testing.T) {
	// voxelsPerSide 8: global index -1 must land in block -1, local offset 7,
	// not block 0 / negative local offset.
	const n = 8
	g := GlobalVoxelIndex{X: -1, Y: 0, Z: 8}
	b := BlockIndexFromGlobalVoxelIndex(g, n)
	l := LocalFromGlobalVoxelIndex(g, n)

	if b != (BlockIndex{X: -1, Y: 0, Z: 1}) {
		t.Fatalf("BlockIndexFromGlobalVoxelIndex() = %v", b)
	}
	if l != (LocalVoxelIndex{X: 7, Y: 0, Z: 0}) {
		t.Fatalf("LocalFromGlobalVoxelIndex() = %v", l)
	}
}

func TestHashDeterministicAndSpreads(t *testing.T) {
	a := GlobalVoxelIndex{X: 1, Y: 2, Z: 3}
	b := GlobalVoxelIndex{X: 1, Y: 2, Z: 3}
	c := GlobalVoxelIndex{X: 1, Y: 2, Z: 4}

	if a.Hash() != b.Hash() {
		t.Fatalf("Hash() not deterministic for equal indices")
	}
	if a.Hash() == c.Hash() {
		t.Fatalf("Hash() collided for distinct indices %v and %v", a, c)
	}
}
