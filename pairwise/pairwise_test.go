package pairwise

import "testing"

func TestIncrementIsSymmetric(t *testing.T) {
	m := New()
	m.Increment(3, 7)
	m.Increment(7, 3)
	if got := m.Count(3, 7); got != 2 {
		t.Fatalf("Count(3,7) = %d, want 2", got)
	}
	if got := m.Count(7, 3); got != 2 {
		t.Fatalf("Count(7,3) = %d, want 2", got)
	}
}

func TestIncrementSelfPairIsNoOp(t *testing.T) {
	m := New()
	m.Increment(5, 5)
	if got := m.Count(5, 5); got != 0 {
		t.Fatalf("Count(5,5) = %d, want 0", got)
	}
}

func TestSnapshotSortedDeterministic(t *testing.T) {
	m := New()
	m.Increment(2, 9)
	m.Increment(1, 4)
	m.Increment(1, 4)

	got := m.Snapshot()
	if len(got) != 2 {
		t.Fatalf("Snapshot() len = %d, want 2", len(got))
	}
	if got[0].Lo != 1 || got[0].Hi != 4 || got[0].Total() != 2 {
		t.Fatalf("Snapshot()[0] = %+v", got[0])
	}
	if got[1].Lo != 2 || got[1].Hi != 9 || got[1].Total() != 1 {
		t.Fatalf("Snapshot()[1] = %+v", got[1])
	}
}

func TestRemoveDropsEmptyRow(t *testing.T) {
	m := New()
	m.Increment(1, 2)
	m.Remove(2, 1) // unordered args must still resolve to the canonical pair
	if got := m.Count(1, 2); got != 0 {
		t.Fatalf("Count() after Remove = %d, want 0", got)
	}
	if len(m.Snapshot()) != 0 {
		t.Fatalf("Snapshot() after Remove not empty: %+v", m.Snapshot())
	}
}
