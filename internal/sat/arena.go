package sat

// Arena is the append-only region holding every non-binary clause (spec.md
// §3, §4.2, §9 "Arena + offset references"). Clauses are addressed by a
// 32-bit word offset into data rather than by pointer, which is what makes
// compaction (relocating every live clause and rewriting all references to
// it) a plain value copy instead of a pointer-graph rewrite.
//
// Layout per clause, in 32-bit words:
//
//	word 0:        size (literal count)
//	word 1:        packed header — glue:19 | used:5 | flags:8
//	word 2:        searched (resume-scan cursor, invariant: in [2, size))
//	word 3..3+size-1: literals, each a Literal stored as its int32 bit pattern
//
// size is always >= 3; binaries never occupy the arena (spec.md §3).
type Arena struct {
	data []uint32
}

// ClauseRef is an opaque offset into an Arena. The zero value refers to a
// valid clause (the first one ever allocated) — callers that need a "no
// clause" sentinel use Reason.Kind instead of a sentinel ref (see reason.go).
type ClauseRef uint32

const arenaHeaderWords = 3

type clauseFlag uint32

const (
	flagGarbage clauseFlag = 1 << iota
	flagRedundant
	flagReason
	flagShrunken
	flagSubsume
	flagSwept
	flagVivify
	flagQuotient
)

const (
	headerGlueBits  = 19
	headerUsedBits  = 5
	headerFlagBits  = 8
	headerUsedShift = headerFlagBits
	headerGlueShift = headerFlagBits + headerUsedBits

	headerFlagMask = uint32(1)<<headerFlagBits - 1
	headerUsedMask = uint32(1)<<headerUsedBits - 1
	headerGlueMask = uint32(1)<<headerGlueBits - 1

	maxGlue = headerGlueMask
	maxUsed = headerUsedMask

	// tierUsedLifetime is the tier-age counter value a newly learned clause
	// starts with (spec.md §4.5 step 6, "set used to the tier lifetime"),
	// decremented once per reduce round (spec.md §4.8) until it reaches zero
	// and the clause loses its tier2 protection.
	tierUsedLifetime = 8
)

// NewArena returns an empty clause arena.
func NewArena() *Arena {
	return &Arena{data: make([]uint32, 0, 4096)}
}

func packHeader(glue, used uint32, flags clauseFlag) uint32 {
	if glue > maxGlue {
		glue = maxGlue
	}
	if used > maxUsed {
		used = maxUsed
	}
	return (glue&headerGlueMask)<<headerGlueShift | (used&headerUsedMask)<<headerUsedShift | uint32(flags)&headerFlagMask
}

// Allocate appends a new clause with the given literals and returns its
// reference. lits must have length >= 3; smaller clauses (units, binaries)
// never live in the arena (spec.md §3).
func (a *Arena) Allocate(lits []Literal, redundant bool, glue int) ClauseRef {
	if len(lits) < 3 {
		panic("sat: arena clause must have at least 3 literals")
	}
	ref := ClauseRef(len(a.data))

	var flags clauseFlag
	if redundant {
		flags |= flagRedundant
	}

	a.data = append(a.data, uint32(len(lits)))
	a.data = append(a.data, packHeader(uint32(glue), 0, flags))
	a.data = append(a.data, 2) // searched starts right after the two watches.
	for _, l := range lits {
		a.data = append(a.data, uint32(uint32(int32(l))))
	}
	return ref
}

// View returns a handle onto the clause at ref. The handle is only valid
// until the next call to Compact.
func (a *Arena) View(ref ClauseRef) ClauseView {
	return ClauseView{arena: a, off: uint32(ref)}
}

// ClauseView is a lightweight, non-owning handle onto a clause stored in an
// Arena.
type ClauseView struct {
	arena *Arena
	off   uint32
}

// Size returns the number of literals in the clause.
func (v ClauseView) Size() int {
	return int(v.arena.data[v.off])
}

func (v ClauseView) header() uint32 {
	return v.arena.data[v.off+1]
}

func (v ClauseView) setHeader(h uint32) {
	v.arena.data[v.off+1] = h
}

// Glue returns the clause's literal block distance.
func (v ClauseView) Glue() int {
	return int((v.header() >> headerGlueShift) & headerGlueMask)
}

// SetGlue updates the clause's glue, clamped to the field width.
func (v ClauseView) SetGlue(glue int) {
	h := v.header() &^ (headerGlueMask << headerGlueShift)
	g := uint32(glue)
	if g > maxGlue {
		g = maxGlue
	}
	v.setHeader(h | g<<headerGlueShift)
}

// Used returns the tier-age counter, decremented once per reduce round while
// positive (spec.md §4.8).
func (v ClauseView) Used() int {
	return int((v.header() >> headerUsedShift) & headerUsedMask)
}

// SetUsed sets the tier-age counter, clamped to the field width.
func (v ClauseView) SetUsed(used int) {
	h := v.header() &^ (headerUsedMask << headerUsedShift)
	u := uint32(used)
	if u > maxUsed {
		u = maxUsed
	}
	v.setHeader(h | u<<headerUsedShift)
}

func (v ClauseView) hasFlag(f clauseFlag) bool {
	return clauseFlag(v.header())&f != 0
}

func (v ClauseView) setFlag(f clauseFlag) {
	v.setHeader(v.header() | uint32(f))
}

func (v ClauseView) clearFlag(f clauseFlag) {
	v.setHeader(v.header() &^ uint32(f))
}

// Garbage reports whether the clause has been marked for deletion but not
// yet reclaimed by Compact.
func (v ClauseView) Garbage() bool { return v.hasFlag(flagGarbage) }

// MarkGarbage marks the clause as deleted. Its storage is reclaimed on the
// next Compact.
func (v ClauseView) MarkGarbage() { v.setFlag(flagGarbage) }

// Redundant reports whether the clause is a learned (as opposed to an
// original problem) clause.
func (v ClauseView) Redundant() bool { return v.hasFlag(flagRedundant) }

// IsReason reports whether the clause currently serves as some variable's
// assignment reason, which makes it ineligible for garbage collection even
// if it would otherwise be a reduce candidate (spec.md §4.2).
func (v ClauseView) IsReason() bool { return v.hasFlag(flagReason) }

// SetReason marks/unmarks the clause as currently locking a variable.
func (v ClauseView) SetReason(locked bool) {
	if locked {
		v.setFlag(flagReason)
	} else {
		v.clearFlag(flagReason)
	}
}

// Searched returns the resume-scan cursor used by propagation to avoid
// rescanning from literals[2] every time (spec.md §4.4).
func (v ClauseView) Searched() int {
	return int(v.arena.data[v.off+2])
}

// SetSearched updates the resume-scan cursor.
func (v ClauseView) SetSearched(i int) {
	v.arena.data[v.off+2] = uint32(i)
}

// Lit returns the i-th literal of the clause.
func (v ClauseView) Lit(i int) Literal {
	return Literal(int32(v.arena.data[v.off+uint32(arenaHeaderWords)+uint32(i)]))
}

// SetLit overwrites the i-th literal of the clause.
func (v ClauseView) SetLit(i int, l Literal) {
	v.arena.data[v.off+uint32(arenaHeaderWords)+uint32(i)] = uint32(int32(l))
}

// Swap exchanges the literals at positions i and j.
func (v ClauseView) Swap(i, j int) {
	if i == j {
		return
	}
	li, lj := v.Lit(i), v.Lit(j)
	v.SetLit(i, lj)
	v.SetLit(j, li)
}

// Literals returns a freshly allocated copy of the clause's literals. Used
// by conflict analysis and by reduce/compaction bookkeeping where holding a
// live view across mutation would be unsafe.
func (v ClauseView) Literals() []Literal {
	out := make([]Literal, v.Size())
	for i := range out {
		out[i] = v.Lit(i)
	}
	return out
}

// Walk visits every clause in the arena in storage order, including garbage
// ones (callers check View.Garbage themselves). Used by the reduce path to
// rank clauses and by the inprocessing iteration hook (spec.md §6).
func (a *Arena) Walk(visit func(ref ClauseRef, view ClauseView)) {
	off := uint32(0)
	for off < uint32(len(a.data)) {
		ref := ClauseRef(off)
		view := a.View(ref)
		visit(ref, view)
		off += uint32(arenaHeaderWords + view.Size())
	}
}

// Compact walks the arena in order, copies every non-garbage clause to a new
// low-address region, and returns both the rebuilt arena and the relocation
// table mapping every surviving old ref to its new ref. Callers must rewrite
// watch lists, reasons, and the binary index using the returned map before
// discarding the old arena (spec.md §4.2, §9 "scoped resource release").
func (a *Arena) Compact() (*Arena, map[ClauseRef]ClauseRef) {
	out := &Arena{data: make([]uint32, 0, len(a.data))}
	relocation := make(map[ClauseRef]ClauseRef)

	off := uint32(0)
	for off < uint32(len(a.data)) {
		old := ClauseRef(off)
		view := a.View(old)
		size := view.Size()
		total := uint32(arenaHeaderWords + size)

		if !view.Garbage() {
			newRef := ClauseRef(len(out.data))
			out.data = append(out.data, a.data[off:off+total]...)
			relocation[old] = newRef
		}
		off += total
	}

	return out, relocation
}
