package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newWatches(n int) *Watches {
	w := NewWatches()
	for i := 0; i < n*2; i++ {
		w.Grow()
	}
	return w
}

func TestWatches_WatchBinaryAndUnwatch(t *testing.T) {
	w := newWatches(3)
	a, b := PositiveLiteral(0), NegativeLiteral(1)

	w.WatchBinary(a, b)
	if diff := cmp.Diff([]Literal{b}, w.Binary(a)); diff != "" {
		t.Errorf("Binary(a) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Literal{a}, w.Binary(b)); diff != "" {
		t.Errorf("Binary(b) mismatch (-want +got):\n%s", diff)
	}

	w.UnwatchBinary(a, b)
	if diff := cmp.Diff([]Literal{}, w.Binary(a), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Binary(a) after unwatch mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Literal{}, w.Binary(b), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Binary(b) after unwatch mismatch (-want +got):\n%s", diff)
	}
}

func TestWatches_WatchLargeAndUnwatch(t *testing.T) {
	w := newWatches(3)
	a, b := PositiveLiteral(0), NegativeLiteral(1)
	ref := ClauseRef(42)

	w.WatchLarge(ref, a, b, b, a)
	if got, want := len(w.Large(a)), 1; got != want {
		t.Fatalf("len(Large(a)) = %d, want %d", got, want)
	}
	if got, want := w.Large(a)[0].blocking, b; got != want {
		t.Errorf("Large(a)[0].blocking = %v, want %v", got, want)
	}
	if got, want := w.Large(b)[0].blocking, a; got != want {
		t.Errorf("Large(b)[0].blocking = %v, want %v", got, want)
	}

	w.UnwatchLarge(ref, a, b)
	if got, want := len(w.Large(a)), 0; got != want {
		t.Errorf("len(Large(a)) after unwatch = %d, want %d", got, want)
	}
	if got, want := len(w.Large(b)), 0; got != want {
		t.Errorf("len(Large(b)) after unwatch = %d, want %d", got, want)
	}
}

func TestWatches_RelocateDropsAndRewrites(t *testing.T) {
	w := newWatches(3)
	a := PositiveLiteral(0)
	keep, drop := ClauseRef(10), ClauseRef(20)

	w.WatchLarge(keep, a, NegativeLiteral(1), NegativeLiteral(1), a)
	w.WatchLarge(drop, a, NegativeLiteral(2), NegativeLiteral(2), a)

	relocation := map[ClauseRef]ClauseRef{keep: 100}
	w.Relocate(relocation)

	got := w.Large(a)
	if len(got) != 1 {
		t.Fatalf("len(Large(a)) after Relocate = %d, want 1", len(got))
	}
	if got[0].ref != 100 {
		t.Errorf("surviving entry ref = %d, want 100", got[0].ref)
	}
}
