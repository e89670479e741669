package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func lits(xs ...int32) []Literal {
	out := make([]Literal, len(xs))
	for i, x := range xs {
		out[i] = LiteralFromDIMACS(x)
	}
	return out
}

func TestArena_AllocateAndView(t *testing.T) {
	a := NewArena()
	ref := a.Allocate(lits(1, -2, 3), true, 4)

	view := a.View(ref)
	if got, want := view.Size(), 3; got != want {
		t.Errorf("Size() = %d, want %d", got, want)
	}
	if got, want := view.Glue(), 4; got != want {
		t.Errorf("Glue() = %d, want %d", got, want)
	}
	if !view.Redundant() {
		t.Errorf("Redundant() = false, want true")
	}
	if view.Garbage() {
		t.Errorf("Garbage() = true, want false")
	}
	if diff := cmp.Diff(lits(1, -2, 3), view.Literals()); diff != "" {
		t.Errorf("Literals() mismatch (-want +got):\n%s", diff)
	}
}

func TestArena_AllocatePanicsOnShortClause(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Allocate did not panic on a 2-literal clause")
		}
	}()
	NewArena().Allocate(lits(1, 2), false, 0)
}

func TestClauseView_SetGlueClampsToFieldWidth(t *testing.T) {
	a := NewArena()
	ref := a.Allocate(lits(1, 2, 3), true, 0)
	view := a.View(ref)

	view.SetGlue(maxGlue + 1000)
	if got := view.Glue(); got != maxGlue {
		t.Errorf("Glue() = %d, want clamped %d", got, maxGlue)
	}
}

func TestClauseView_SetUsedClampsToFieldWidth(t *testing.T) {
	a := NewArena()
	ref := a.Allocate(lits(1, 2, 3), true, 0)
	view := a.View(ref)

	if got, want := view.Used(), 0; got != want {
		t.Errorf("Used() on a freshly allocated clause = %d, want %d", got, want)
	}

	view.SetUsed(3)
	if got, want := view.Used(), 3; got != want {
		t.Errorf("Used() = %d, want %d", got, want)
	}

	view.SetUsed(maxUsed + 1000)
	if got := view.Used(); got != maxUsed {
		t.Errorf("Used() = %d, want clamped %d", got, maxUsed)
	}

	// Glue and used live in adjacent header fields; setting one must not
	// disturb the other.
	view.SetGlue(5)
	if got, want := view.Used(), maxUsed; got != want {
		t.Errorf("Used() after SetGlue = %d, want unchanged %d", got, want)
	}
}

func TestClauseView_SwapAndSetLit(t *testing.T) {
	a := NewArena()
	ref := a.Allocate(lits(1, 2, 3), false, 0)
	view := a.View(ref)

	view.Swap(0, 2)
	if diff := cmp.Diff(lits(3, 2, 1), view.Literals()); diff != "" {
		t.Errorf("Literals() after Swap mismatch (-want +got):\n%s", diff)
	}

	view.SetLit(1, LiteralFromDIMACS(-9))
	if got, want := view.Lit(1), LiteralFromDIMACS(-9); got != want {
		t.Errorf("Lit(1) = %v, want %v", got, want)
	}
}

func TestClauseView_GarbageAndReasonFlags(t *testing.T) {
	a := NewArena()
	ref := a.Allocate(lits(1, 2, 3), true, 0)
	view := a.View(ref)

	view.SetReason(true)
	if !view.IsReason() {
		t.Errorf("IsReason() = false after SetReason(true)")
	}
	view.SetReason(false)
	if view.IsReason() {
		t.Errorf("IsReason() = true after SetReason(false)")
	}

	view.MarkGarbage()
	if !view.Garbage() {
		t.Errorf("Garbage() = false after MarkGarbage")
	}
}

func TestArena_WalkVisitsEveryClauseInOrder(t *testing.T) {
	a := NewArena()
	r1 := a.Allocate(lits(1, 2, 3), false, 0)
	r2 := a.Allocate(lits(4, 5, 6, 7), true, 2)

	var refs []ClauseRef
	var sizes []int
	a.Walk(func(ref ClauseRef, view ClauseView) {
		refs = append(refs, ref)
		sizes = append(sizes, view.Size())
	})

	if diff := cmp.Diff([]ClauseRef{r1, r2}, refs); diff != "" {
		t.Errorf("Walk refs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 4}, sizes); diff != "" {
		t.Errorf("Walk sizes mismatch (-want +got):\n%s", diff)
	}
}

func TestArena_CompactReclaimsGarbageAndRelocates(t *testing.T) {
	a := NewArena()
	r1 := a.Allocate(lits(1, 2, 3), false, 0)
	r2 := a.Allocate(lits(4, 5, 6), true, 0)
	r3 := a.Allocate(lits(7, 8, 9), true, 0)

	a.View(r2).MarkGarbage()

	out, relocation := a.Compact()

	want := map[ClauseRef]ClauseRef{
		r1: 0,
		r3: ClauseRef(arenaHeaderWords + 3),
	}
	if diff := cmp.Diff(want, relocation, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("relocation mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(lits(1, 2, 3), out.View(relocation[r1]).Literals()); diff != "" {
		t.Errorf("relocated r1 literals mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(lits(7, 8, 9), out.View(relocation[r3]).Literals()); diff != "" {
		t.Errorf("relocated r3 literals mismatch (-want +got):\n%s", diff)
	}
	if _, ok := relocation[r2]; ok {
		t.Errorf("garbage clause r2 survived compaction")
	}
}
