package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestBinaryIndex_AddGoesToOverlay(t *testing.T) {
	bi := NewBinaryIndex()
	a, b := PositiveLiteral(0), NegativeLiteral(1)
	bi.Grow()
	bi.Grow()
	bi.Grow()
	bi.Grow()

	bi.Add(a, b)

	flat, overlay := bi.Implied(a)
	if diff := cmp.Diff([]Literal{}, flat, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("flat mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Literal{b}, overlay); diff != "" {
		t.Errorf("overlay mismatch (-want +got):\n%s", diff)
	}
}

func TestBinaryIndex_RebuildFoldsWatchesIntoFlatCSR(t *testing.T) {
	w := newWatches(2)
	a, b := PositiveLiteral(0), NegativeLiteral(1)
	w.WatchBinary(a, b)

	bi := NewBinaryIndex()
	bi.Rebuild(w)

	flat, overlay := bi.Implied(a)
	if diff := cmp.Diff([]Literal{b}, flat); diff != "" {
		t.Errorf("flat mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Literal{}, overlay, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("overlay mismatch (-want +got):\n%s", diff)
	}
}

func TestBinaryIndex_RemoveTombstonesFlatEntry(t *testing.T) {
	w := newWatches(2)
	a, b := PositiveLiteral(0), NegativeLiteral(1)
	w.WatchBinary(a, b)

	bi := NewBinaryIndex()
	bi.Rebuild(w)
	bi.Remove(a, b)

	flat, _ := bi.Implied(a)
	if len(flat) != 1 || flat[0] != tombstoneLiteral {
		t.Errorf("flat after Remove = %v, want a single tombstone", flat)
	}
}

func TestBinaryIndex_ImpliedBeyondOffsetsReturnsOverlayOnly(t *testing.T) {
	bi := NewBinaryIndex()
	bi.Grow()
	bi.Grow()

	l := PositiveLiteral(0)
	bi.Add(l, NegativeLiteral(0))

	flat, overlay := bi.Implied(l)
	if flat != nil {
		t.Errorf("flat = %v, want nil before any Rebuild", flat)
	}
	if diff := cmp.Diff([]Literal{NegativeLiteral(0)}, overlay); diff != "" {
		t.Errorf("overlay mismatch (-want +got):\n%s", diff)
	}
}
