package label

import (
	"sort"
	"sync"
	"sync/atomic"
)

// CountMap tracks, per label, the number of voxels currently bearing it. It
// is maintained live inside the update rule rather than by a one-shot scan:
// each label gets its own atomic counter, created lazily, so concurrent
// workers touching different labels never contend on a single lock.
type CountMap struct {
	m sync.Map // Label -> *atomic.Int64
}

func (c *CountMap) counterFor(l Label) *atomic.Int64 {
	if v, ok := c.m.Load(l); ok {
		return v.(*atomic.Int64)
	}
	nv := new(atomic.Int64)
	actual, _ := c.m.LoadOrStore(l, nv)
	return actual.(*atomic.Int64)
}

// Inc bumps a label's voxel count by one. A no-op for Unlabeled.
func (c *CountMap) Inc(l Label) {
	if l == Unlabeled {
		return
	}
	c.counterFor(l).Add(1)
}

// Dec decrements a label's voxel count by one, saturating at 0. A no-op for
// Unlabeled.
func (c *CountMap) Dec(l Label) {
	if l == Unlabeled {
		return
	}
	v := c.counterFor(l)
	for {
		cur := v.Load()
		if cur <= 0 {
			return
		}
		if v.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// Set forces a label's count to an exact value, for bulk rewrites that know
// the true count directly. SwapLabels itself adjusts counts with Sub and Add.
func (c *CountMap) Set(l Label, v uint64) {
	c.counterFor(l).Store(int64(v))
}

// Add bumps a label's count by n in one step (n may be 0).
func (c *CountMap) Add(l Label, n uint64) {
	if l == Unlabeled || n == 0 {
		return
	}
	c.counterFor(l).Add(int64(n))
}

// Sub decrements a label's count by n in one step, saturating at 0.
func (c *CountMap) Sub(l Label, n uint64) {
	if l == Unlabeled || n == 0 {
		return
	}
	v := c.counterFor(l)
	for {
		cur := v.Load()
		next := cur - int64(n)
		if next < 0 {
			next = 0
		}
		if v.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Get returns a label's current count.
func (c *CountMap) Get(l Label) uint64 {
	v, ok := c.m.Load(l)
	if !ok {
		return 0
	}
	return uint64(v.(*atomic.Int64).Load())
}

// List returns every label with a positive count, sorted ascending.
func (c *CountMap) List() []Label {
	var out []Label
	c.m.Range(func(k, v interface{}) bool {
		if v.(*atomic.Int64).Load() > 0 {
			out = append(out, k.(Label))
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
