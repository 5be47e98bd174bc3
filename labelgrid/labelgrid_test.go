package labelgrid

import (
	"testing"

	"github.com/wuxian01/voxblox-plusplus/geom"
	"github.com/wuxian01/voxblox-plusplus/label"
)

func TestBlockVoxelAtRoundTrip(t *testing.T) {
	b := NewBlock(geom.BlockIndex{}, geom.Point3d{}, 4)
	local := geom.LocalVoxelIndex{X: 1, Y: 2, Z: 3}
	v := b.VoxelAt(local)
	v.Label = 9
	v.Confidence = 3

	again := b.VoxelAt(local)
	if again.Label != 9 || again.Confidence != 3 {
		t.Fatalf("VoxelAt() round trip = %+v", *again)
	}
}

func TestBlockMarkUpdated(t *testing.T) {
	b := NewBlock(geom.BlockIndex{}, geom.Point3d{}, 2)
	if b.Updated() {
		t.Fatalf("new block reports Updated() == true")
	}
	b.MarkUpdated()
	if !b.Updated() {
		t.Fatalf("MarkUpdated() did not stick")
	}
}

func TestMemGridInsertAndLookup(t *testing.T) {
	g := NewMemGrid(8, 0.1)
	idx := geom.BlockIndex{X: 1, Y: 2, Z: 3}
	origin := geom.OriginFromBlockIndex(idx, g.BlockSize())
	b := NewBlock(idx, origin, g.VoxelsPerSide())

	if g.BlockByIndex(idx) != nil {
		t.Fatalf("expected no block before insert")
	}
	g.InsertBlock(idx, b)
	if g.BlockByIndex(idx) != b {
		t.Fatalf("BlockByIndex did not return inserted block")
	}
	if len(g.AllAllocatedBlocks()) != 1 {
		t.Fatalf("AllAllocatedBlocks() len = %d, want 1", len(g.AllAllocatedBlocks()))
	}
}

func TestMemGridBlockByCoords(t *testing.T) {
	g := NewMemGrid(4, 1.0) // block size 4
	idx := geom.BlockIndex{X: 0, Y: 0, Z: 0}
	b := NewBlock(idx, geom.OriginFromBlockIndex(idx, g.BlockSize()), g.VoxelsPerSide())
	g.InsertBlock(idx, b)

	if got := g.BlockByCoords(geom.Point3d{X: 1.5, Y: 1.5, Z: 1.5}); got != b {
		t.Fatalf("BlockByCoords() = %v, want %v", got, b)
	}
	if got := g.BlockByCoords(geom.Point3d{X: 100, Y: 100, Z: 100}); got != nil {
		t.Fatalf("BlockByCoords() for unallocated region = %v, want nil", got)
	}
}

func TestScratchMapGetOrCreateThenFlush(t *testing.T) {
	s := NewScratchMap(4, 1.0)
	idx := geom.BlockIndex{X: 2, Y: 0, Z: 0}

	b1 := s.GetOrCreate(idx)
	b2 := s.GetOrCreate(idx)
	if b1 != b2 {
		t.Fatalf("GetOrCreate() allocated twice for the same index")
	}
	if s.Lookup(geom.BlockIndex{X: 9, Y: 9, Z: 9}) != nil {
		t.Fatalf("Lookup() found a block that was never created")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}

	g := NewMemGrid(4, 1.0)
	s.Flush(g)
	if s.Len() != 0 {
		t.Fatalf("Len() after Flush = %d, want 0", s.Len())
	}
	if g.BlockByIndex(idx) != b1 {
		t.Fatalf("Flush() did not install scratch block into grid")
	}
}

func TestCursorCachesLastBlock(t *testing.T) {
	var c Cursor
	idx := geom.BlockIndex{X: 1, Y: 1, Z: 1}
	if _, ok := c.Block(idx); ok {
		t.Fatalf("empty cursor reported a cache hit")
	}

	b := NewBlock(idx, geom.Point3d{}, 4)
	c.Remember(idx, b)
	got, ok := c.Block(idx)
	if !ok || got != b {
		t.Fatalf("Block() after Remember = (%v, %v), want (%v, true)", got, ok, b)
	}

	other := geom.BlockIndex{X: 2, Y: 2, Z: 2}
	if _, ok := c.Block(other); ok {
		t.Fatalf("cursor reported a hit for a different block index")
	}
}

func TestVoxelUnlabeledSentinel(t *testing.T) {
	b := NewBlock(geom.BlockIndex{}, geom.Point3d{}, 2)
	v := b.VoxelAt(geom.LocalVoxelIndex{})
	if v.Label != label.Unlabeled {
		t.Fatalf("fresh block voxel Label = %d, want Unlabeled", v.Label)
	}
}
