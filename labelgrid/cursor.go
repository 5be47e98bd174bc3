package labelgrid

import "github.com/wuxian01/voxblox-plusplus/geom"

// Cursor caches the last block index/pointer visited during a ray so
// consecutive voxels falling in the same block skip a map lookup. It is
// threaded by mutable reference through the ray loop rather than kept as a
// struct field, since the ray integrator is invoked concurrently by many
// workers and each needs its own cursor.
type Cursor struct {
	haveBlock bool
	blockIdx  geom.BlockIndex
	block     *Block
}

// Block returns the cached block if idx matches the last one seen.
func (c *Cursor) Block(idx geom.BlockIndex) (*Block, bool) {
	if c.haveBlock && c.blockIdx == idx {
		return c.block, true
	}
	return nil, false
}

// Remember updates the cursor to point at b for idx.
func (c *Cursor) Remember(idx geom.BlockIndex, b *Block) {
	c.haveBlock = true
	c.blockIdx = idx
	c.block = b
}
