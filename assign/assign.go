package assign

import (
	"sort"

	"github.com/wuxian01/voxblox-plusplus/label"
	"github.com/wuxian01/voxblox-plusplus/labelgrid"
	"github.com/wuxian01/voxblox-plusplus/metrics"
	"github.com/wuxian01/voxblox-plusplus/pairwise"
)

// Candidates is the per-batch Label -> Segment -> count map, built fresh for
// each call to DecideLabels and discarded afterwards.
type Candidates struct {
	bySegment map[label.Label]map[*Segment]int
}

// NewCandidates allocates an empty per-batch candidate map.
func NewCandidates() *Candidates {
	return &Candidates{bySegment: make(map[label.Label]map[*Segment]int)}
}

func (c *Candidates) bump(l label.Label, s *Segment) int {
	row, ok := c.bySegment[l]
	if !ok {
		row = make(map[*Segment]int)
		c.bySegment[l] = row
	}
	row[s]++
	return row[s]
}

func (c *Candidates) set(l label.Label, s *Segment, count int) {
	row, ok := c.bySegment[l]
	if !ok {
		row = make(map[*Segment]int)
		c.bySegment[l] = row
	}
	row[s] = count
}

// Options configures the two optional pairwise-merging behaviors of
// candidate accumulation.
type Options struct {
	EnablePairwiseConfidenceMerging bool
	RatioThreshold                  float32
}

// ComputeSegmentCandidates runs stage A of the label assigner for one
// segment against a read-only view of the label layer, accumulating into
// cand and (when enabled) pairwise. It is exposed separately from
// DecideLabels so candidates can be accumulated across a whole batch before
// any assignment decision is made.
func ComputeSegmentCandidates(g labelgrid.Grid, s *Segment, cand *Candidates, pw *pairwise.Map, opt Options, counter *label.Counter) {
	n := s.N()
	mergeCandidates := make(map[label.Label]struct{})
	var sawLabel bool

	for _, pC := range s.PointsC {
		pG := s.TGC.Apply(pC)
		gi := labelgrid.GlobalVoxelIndexFromPoint(g, pG)
		bIdx := labelgrid.BlockIndexFromGlobalVoxelIndex(g, gi)
		blk := g.BlockByIndex(bIdx)
		if blk == nil {
			continue // benign skip: unallocated block
		}
		local := labelgrid.LocalFromGlobalVoxelIndex(g, gi)
		v := blk.VoxelAt(local)
		if v.Label == label.Unlabeled {
			continue // benign skip: allocated but unobserved
		}
		sawLabel = true
		count := cand.bump(v.Label, s)

		if opt.EnablePairwiseConfidenceMerging {
			ratio := float32(count) / float32(n)
			if ratio > opt.RatioThreshold {
				mergeCandidates[v.Label] = struct{}{}
			}
		}
	}

	if opt.EnablePairwiseConfidenceMerging {
		labels := make([]label.Label, 0, len(mergeCandidates))
		for l := range mergeCandidates {
			labels = append(labels, l)
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
		for i := 0; i < len(labels); i++ {
			for j := i + 1; j < len(labels); j++ {
				pw.Increment(labels[i], labels[j])
			}
		}
	}

	if !sawLabel {
		fresh := counter.Fresh()
		cand.set(fresh, s, n)
	}
}

// candidateEntry is one (label, segment, count) triple considered during
// Stage B's global greedy assignment.
type candidateEntry struct {
	l     label.Label
	seg   *Segment
	segIx int
	count int
}

// DecideLabels runs stages B and C of the label assigner across a batch of
// segments: global greedy assignment by peak overlap, then fresh-label
// fallback for anything left unassigned.
func DecideLabels(segments []*Segment, cand *Candidates, counter *label.Counter) {
	segIndex := make(map[*Segment]int, len(segments))
	for i, s := range segments {
		segIndex[s] = i
	}

	entries := make([]candidateEntry, 0)
	for l, row := range cand.bySegment {
		for s, count := range row {
			if count <= 0 {
				continue
			}
			entries = append(entries, candidateEntry{l: l, seg: s, segIx: segIndex[s], count: count})
		}
	}

	// Deterministic tie-break: highest count first, then lower label value,
	// then earlier segment in the input order.
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.count != b.count {
			return a.count > b.count
		}
		if a.l != b.l {
			return a.l < b.l
		}
		return a.segIx < b.segIx
	})

	assigned := make([]bool, len(segments))
	labelTaken := make(map[label.Label]bool)

	for _, e := range entries {
		if assigned[e.segIx] || labelTaken[e.l] {
			continue
		}
		e.seg.AssignAll(e.l)
		assigned[e.segIx] = true
		labelTaken[e.l] = true
		metrics.SegmentsAssigned.WithLabelValues("carryover").Inc()
	}

	// Stage C: fallback for anything still unassigned.
	for i, s := range segments {
		if assigned[i] {
			continue
		}
		s.AssignAll(counter.Fresh())
		metrics.SegmentsAssigned.WithLabelValues("fresh").Inc()
	}
}
