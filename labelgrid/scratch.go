package labelgrid

import (
	"fmt"
	"sync"

	"github.com/wuxian01/voxblox-plusplus/flog"
	"github.com/wuxian01/voxblox-plusplus/geom"
)

// ScratchMap is the thread-safe block-index -> freshly-allocated-block map
// used when a ray update targets an unallocated region. A dedicated lock
// serializes growth of this map only; voxel mutation inside an
// already-created scratch block still goes through the caller's stripe
// lock, so the hot path never takes tempLock.
type ScratchMap struct {
	voxelsPerSide int32
	blockSize     float64

	tempLock sync.Mutex
	blocks   map[geom.BlockIndex]*Block
}

// NewScratchMap constructs an empty scratch map for a grid of the given
// geometry.
func NewScratchMap(voxelsPerSide int32, blockSize float64) *ScratchMap {
	return &ScratchMap{
		voxelsPerSide: voxelsPerSide,
		blockSize:     blockSize,
		blocks:        make(map[geom.BlockIndex]*Block),
	}
}

// GetOrCreate returns the existing scratch block for idx, or allocates and
// inserts a new zero-initialized one with the correct origin.
//
// An insert collision for a block index that was just checked absent while
// holding tempLock is an internal invariant violation: it cannot happen
// under this map's own locking discipline, so it panics rather than
// returning an error a caller could plausibly recover from.
func (s *ScratchMap) GetOrCreate(idx geom.BlockIndex) *Block {
	s.tempLock.Lock()
	defer s.tempLock.Unlock()

	if b, ok := s.blocks[idx]; ok {
		return b
	}
	origin := geom.OriginFromBlockIndex(idx, s.blockSize)
	b := NewBlock(idx, origin, s.voxelsPerSide)
	if _, collided := s.blocks[idx]; collided {
		panic(fmt.Sprintf("labelgrid: scratch map insert collision for block %s", idx))
	}
	s.blocks[idx] = b
	return b
}

// Lookup returns the scratch block for idx without creating one, or nil.
func (s *ScratchMap) Lookup(idx geom.BlockIndex) *Block {
	s.tempLock.Lock()
	defer s.tempLock.Unlock()
	return s.blocks[idx]
}

// Flush moves every scratch block into the live grid under its block index
// and clears the scratch map. Single-threaded: callers must ensure no
// workers are active and must not call Flush concurrently with itself.
func (s *ScratchMap) Flush(g Grid) {
	s.tempLock.Lock()
	defer s.tempLock.Unlock()

	for idx, b := range s.blocks {
		g.InsertBlock(idx, b)
	}
	flog.Debugf("labelgrid: flushed %d scratch blocks into grid", len(s.blocks))
	s.blocks = make(map[geom.BlockIndex]*Block)
}

// Len reports the number of scratch blocks currently held, mostly for tests.
func (s *ScratchMap) Len() int {
	s.tempLock.Lock()
	defer s.tempLock.Unlock()
	return len(s.blocks)
}
