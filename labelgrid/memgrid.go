package labelgrid

import (
	"sync"

	"github.com/wuxian01/voxblox-plusplus/geom"
)

// MemGrid is a simple in-memory Grid, analogous to dvid's sparse block
// storage but backed by a plain Go map rather than a key-value engine; it
// does not persist across process runs. It is the reference Grid
// implementation used by tests and by cmd/fusionctl when no other grid is
// configured.
type MemGrid struct {
	voxelsPerSide int32
	voxelSize     float64

	mu     sync.RWMutex
	blocks map[geom.BlockIndex]*Block
}

// NewMemGrid constructs an empty grid with the given geometry.
func NewMemGrid(voxelsPerSide int32, voxelSize float64) *MemGrid {
	return &MemGrid{
		voxelsPerSide: voxelsPerSide,
		voxelSize:     voxelSize,
		blocks:        make(map[geom.BlockIndex]*Block),
	}
}

func (g *MemGrid) VoxelsPerSide() int32 { return g.voxelsPerSide }
func (g *MemGrid) VoxelSize() float64   { return g.voxelSize }
func (g *MemGrid) BlockSize() float64   { return g.voxelSize * float64(g.voxelsPerSide) }

func (g *MemGrid) BlockByIndex(idx geom.BlockIndex) *Block {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.blocks[idx]
}

func (g *MemGrid) BlockByCoords(p geom.Point3d) *Block {
	gi := GlobalVoxelIndexFromPoint(g, p)
	idx := BlockIndexFromGlobalVoxelIndex(g, gi)
	return g.BlockByIndex(idx)
}

func (g *MemGrid) InsertBlock(idx geom.BlockIndex, b *Block) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blocks[idx] = b
}

func (g *MemGrid) AllAllocatedBlocks() []*Block {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Block, 0, len(g.blocks))
	for _, b := range g.blocks {
		out = append(out, b)
	}
	return out
}
