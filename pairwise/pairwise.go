// Package pairwise implements the symmetric co-occurrence counter: mapping
// (min(L1,L2)) -> (max(L1,L2)) -> count. It persists across batches, unlike
// the per-batch candidate map, so the label assigner (writer) and the
// merge manager (reader/eraser) share one instance.
package pairwise

import (
	"sort"
	"sync"

	"github.com/wuxian01/voxblox-plusplus/label"
)

// Map is the thread-safe pairwise confidence table. Construction of its
// contents happens single-threaded per batch, but it is guarded by a mutex
// anyway since mergeLabels may run between batches from a different
// goroutine than the one that built it.
type Map struct {
	mu sync.Mutex
	m  map[label.Label]map[label.Label]int
}

// New constructs an empty pairwise confidence table.
func New() *Map {
	return &Map{m: make(map[label.Label]map[label.Label]int)}
}

// canonical orders a pair (lo, hi) with lo <= hi.
func canonical(l1, l2 label.Label) (lo, hi label.Label) {
	if l1 <= l2 {
		return l1, l2
	}
	return l2, l1
}

// Increment bumps the co-occurrence count for an unordered pair by one.
// Self-pairs (l1 == l2) are excluded.
func (p *Map) Increment(l1, l2 label.Label) {
	if l1 == l2 {
		return
	}
	lo, hi := canonical(l1, l2)

	p.mu.Lock()
	defer p.mu.Unlock()
	row, ok := p.m[lo]
	if !ok {
		row = make(map[label.Label]int)
		p.m[lo] = row
	}
	row[hi]++
}

// Count returns the current co-occurrence count for a pair.
func (p *Map) Count(l1, l2 label.Label) int {
	lo, hi := canonical(l1, l2)
	p.mu.Lock()
	defer p.mu.Unlock()
	row, ok := p.m[lo]
	if !ok {
		return 0
	}
	return row[hi]
}

// pair is one entry of an erase-aware snapshot.
type pair struct {
	Lo, Hi label.Label
	Count  int
}

// Snapshot returns a deterministic, sorted copy of every entry, used by
// mergeLabels so in-loop chained merges (a swap can change what a later
// pair's labels mean) never need to erase while ranging the live map
// directly. It collects first, the same style as dvid's
// blocksChanged-before-mutate pattern in merge_split.go.
func (p *Map) Snapshot() []pair {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]pair, 0, len(p.m))
	for lo, row := range p.m {
		for hi, count := range row {
			out = append(out, pair{lo, hi, count})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lo != out[j].Lo {
			return out[i].Lo < out[j].Lo
		}
		return out[i].Hi < out[j].Hi
	})
	return out
}

// Remove erases one pair entry, e.g. once mergeLabels has acted on it.
func (p *Map) Remove(l1, l2 label.Label) {
	lo, hi := canonical(l1, l2)
	p.mu.Lock()
	defer p.mu.Unlock()
	row, ok := p.m[lo]
	if !ok {
		return
	}
	delete(row, hi)
	if len(row) == 0 {
		delete(p.m, lo)
	}
}

// Pair is the exported alias callers use when ranging over Snapshot.
type Pair = pair

func (pr Pair) Labels() (label.Label, label.Label) { return pr.Lo, pr.Hi }
func (pr Pair) Total() int                         { return pr.Count }
