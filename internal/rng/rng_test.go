package rng

import (
	"errors"
	"math/rand/v2"
	"testing"
	"testing/quick"
)

func TestIndependentSourcesAgree(t *testing.T) {
	a := New()
	b := New()
	for i := 0; i < 1000; i++ {
		if i%3 == 0 {
			if x, y := a.NextByte(), b.NextByte(); x != y {
				t.Fatalf("byte %d: %d != %d", i, x, y)
			}
			continue
		}
		if x, y := a.Next(), b.Next(); x != y {
			t.Fatalf("float %d: %v != %v", i, x, y)
		}
	}
	if a.Index() != b.Index() {
		t.Fatalf("cursor mismatch: %d != %d", a.Index(), b.Index())
	}
}

// Any call sequence, replayed on two fresh sources, yields the same outputs.
func TestDeterminismProperty(t *testing.T) {
	table := NewTable(7, 1<<12)
	prop := func(ops []uint8) bool {
		a := NewFromTable(table, 0)
		b := NewFromTable(table, 0)
		for _, op := range ops {
			switch op % 3 {
			case 0:
				if a.NextByte() != b.NextByte() {
					return false
				}
			case 1:
				if a.Next() != b.Next() {
					return false
				}
			default:
				x, _ := Pick(a, []int{1, 2, 3, 4, 5})
				y, _ := Pick(b, []int{1, 2, 3, 4, 5})
				if x != y {
					return false
				}
			}
		}
		return a.Index() == b.Index()
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 200}); err != nil {
		t.Fatal(err)
	}
}

func TestCursorsAreIndependent(t *testing.T) {
	a := New()
	b := New()
	for i := 0; i < 50; i++ {
		a.Next()
	}
	if b.Index() != 0 {
		t.Fatalf("advancing a moved b to %d", b.Index())
	}
	if got := b.Next(); got != New().Next() {
		t.Fatalf("b diverged from a fresh source: %v", got)
	}
}

func TestRanges(t *testing.T) {
	s := New()
	for i := 0; i < 100_000; i++ {
		f := s.Next()
		if f < 0 || f >= 1 {
			t.Fatalf("draw %d out of [0,1): %v", i, f)
		}
	}
	seen := map[byte]bool{}
	for i := 0; i < 100_000; i++ {
		seen[s.NextByte()] = true
	}
	if len(seen) != 256 {
		t.Errorf("saw %d distinct bytes, want 256", len(seen))
	}
}

func TestCursorWraps(t *testing.T) {
	table := NewTable(3, 64)
	s := NewFromTable(table, 60)
	first := NewFromTable(table, 0).NextByte()
	for i := 0; i < 4; i++ {
		s.NextByte()
	}
	if s.Index() != 0 {
		t.Fatalf("index after wrap = %d, want 0", s.Index())
	}
	if got := s.NextByte(); got != first {
		t.Fatalf("wrapped byte = %d, want %d", got, first)
	}
}

func TestPickEmpty(t *testing.T) {
	s := New()
	_, err := Pick(s, []string{})
	var empty *EmptyInputError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyInputError, got %v", err)
	}
	if s.Index() != 0 {
		t.Errorf("failed pick advanced the cursor to %d", s.Index())
	}
}

func TestPickCoversAllItems(t *testing.T) {
	s := NewAt(rand.IntN(1000))
	items := []string{"a", "b", "c"}
	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		v, err := Pick(s, items)
		if err != nil {
			t.Fatal(err)
		}
		counts[v]++
	}
	for _, it := range items {
		if counts[it] < 800 {
			t.Errorf("item %s picked %d times, want roughly 1000", it, counts[it])
		}
	}
}

func TestPartitionOffsets(t *testing.T) {
	table := NewTable(11, 1000)
	parts := NewFromTable(table, 0).Partition(4)
	if len(parts) != 4 {
		t.Fatalf("got %d partitions", len(parts))
	}
	for i, p := range parts {
		if p.Index() != i*250 {
			t.Errorf("partition %d starts at %d, want %d", i, p.Index(), i*250)
		}
	}
}

func TestSeekReplays(t *testing.T) {
	s := NewFromTable(NewTable(5, 64), 60)
	start := s.Index()
	first := []float64{s.Next(), s.Next(), s.Next()}
	s.Seek(start)
	for i, want := range first {
		if got := s.Next(); got != want {
			t.Errorf("draw %d after seek = %v, want %v", i, got, want)
		}
	}
	s.Seek(-1)
	if s.Index() != 63 {
		t.Errorf("Seek(-1) index = %d, want 63", s.Index())
	}
}
