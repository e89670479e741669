package sat

// BinaryIndex is the optional binary-implication acceleration layer from
// spec.md §3: "a denormalized read-only view of all Binary watches ...
// equivalent to the binary watch slice but contiguous." spec.md's Open
// Questions note that in the original source this layer is "partially
// wired (init, add, remove, rebuild hooks exist; the propagation-time
// consumer is conditional on a non-null pointer)" and explicitly says
// implementations may omit it — here it is implemented but kept switchable
// via Solver.useBinaryIndex, exactly mirroring that conditional-pointer
// shape.
//
// The index is a CSR-style (offsets + flat data) structure rebuilt in bulk
// on "major changes" (arena compaction, a full reduce pass), with an
// overlay list absorbing incremental Add/Remove calls in between so that
// readers never observe a stale view.
type BinaryIndex struct {
	offsets []int32 // len == numLiterals+1 after a Rebuild; empty before the first Rebuild
	flat    []Literal

	overlay [][]Literal // per-literal additions since the last Rebuild
}

// NewBinaryIndex returns an empty, not-yet-built binary implication index.
func NewBinaryIndex() *BinaryIndex {
	return &BinaryIndex{}
}

// Grow reserves a slot for one more literal. Call once per polarity, like
// Watches.Grow.
func (bi *BinaryIndex) Grow() {
	bi.overlay = append(bi.overlay, nil)
}

// Add records the binary clause (a ∨ b) that was just added: b is listed
// under a (forced once a is false) and a under b, mirroring
// Watches.WatchBinary.
func (bi *BinaryIndex) Add(a, b Literal) {
	bi.overlay[a] = append(bi.overlay[a], b)
	bi.overlay[b] = append(bi.overlay[b], a)
}

// Remove drops the implication between a and b. Overlay entries are removed
// outright; entries already folded into the flat CSR are replaced in place by
// tombstones rather than triggering a Rebuild, since binaries are rarely
// deleted outside of reduce/compaction.
func (bi *BinaryIndex) Remove(a, b Literal) {
	bi.overlay[a] = removeLiteral(bi.overlay[a], b)
	bi.overlay[b] = removeLiteral(bi.overlay[b], a)
	bi.tombstone(a, b)
	bi.tombstone(b, a)
}

// tombstones records a pending removal from the flat CSR by shadowing it
// with a sentinel; Implied returns sentinels as they are and its readers
// (forEachBinaryNeighbor) skip them. This keeps Remove O(1) amortized
// without requiring an immediate Rebuild.
func (bi *BinaryIndex) tombstone(from, removed Literal) {
	if int(from) >= len(bi.offsets)-1 {
		return
	}
	start, end := bi.offsets[from], bi.offsets[from+1]
	for i := start; i < end; i++ {
		if bi.flat[i] == removed {
			bi.flat[i] = tombstoneLiteral
			return
		}
	}
}

// tombstoneLiteral is never a valid literal (negative VarID) and so is safe
// to use as a "removed" marker in the flat CSR.
const tombstoneLiteral Literal = -1

// Rebuild reconstructs the flat CSR view from the given watch lists,
// discarding the overlay and any tombstones. Called after arena compaction
// and after a full reduce pass (spec.md §3's "major changes").
func (bi *BinaryIndex) Rebuild(w *Watches) {
	n := len(w.binary)
	bi.offsets = make([]int32, n+1)
	total := 0
	for i, list := range w.binary {
		bi.offsets[i] = int32(total)
		total += len(list)
	}
	bi.offsets[n] = int32(total)

	bi.flat = make([]Literal, 0, total)
	for _, list := range w.binary {
		bi.flat = append(bi.flat, list...)
	}
	bi.overlay = make([][]Literal, n)
}

// Implied returns the other literal of every binary clause containing l, i.e.
// every literal a binary clause forces once l is false. The result may be
// split across the flat CSR and the overlay, and the flat part may contain
// tombstoneLiteral entries; callers (the optional fast path in propagate.go)
// must scan both and skip tombstones.
func (bi *BinaryIndex) Implied(l Literal) (flat []Literal, overlay []Literal) {
	if int(l) >= len(bi.offsets)-1 {
		return nil, bi.overlay[l]
	}
	start, end := bi.offsets[l], bi.offsets[l+1]
	return bi.flat[start:end], bi.overlay[l]
}
