package sat

// largeWatch is one entry of a literal's large-clause watch list: the
// clause's arena reference plus a blocking literal that, if currently true,
// lets propagation skip dereferencing the clause entirely (spec.md §4.4).
type largeWatch struct {
	ref      ClauseRef
	blocking Literal
}

// Watches holds the per-literal watch lists (C3). Binary and large entries
// are kept in separate per-literal vectors rather than a single tagged
// union — spec.md §9 calls this "a valid and often faster realization"
// because it removes a kind check from the hottest loop in the solver,
// grounded on the teacher's single watcher{clause,guard} list generalized
// to the arena's offset-based clauses plus a dedicated binary fast path.
type Watches struct {
	binary [][]Literal  // per literal: other literal of each binary clause
	large  [][]largeWatch
}

// NewWatches returns an empty watch-list store.
func NewWatches() *Watches {
	return &Watches{}
}

// Grow reserves watch lists for one more literal. Callers must call this
// twice per new variable (once for each polarity), mirroring Store.AddVar.
func (w *Watches) Grow() {
	w.binary = append(w.binary, nil)
	w.large = append(w.large, nil)
}

// Binary returns the binary watch list for literal l: literal not(l)
// is the trigger, and every entry is the clause's other literal.
func (w *Watches) Binary(l Literal) []Literal {
	return w.binary[l]
}

// Large returns the large-clause watch list for literal l.
func (w *Watches) Large(l Literal) []largeWatch {
	return w.large[l]
}

// SetLarge overwrites the large-clause watch list for literal l. Used by
// the propagation rewrite loop (two-cursor in-place compaction) and by
// relocation after arena compaction.
func (w *Watches) SetLarge(l Literal, entries []largeWatch) {
	w.large[l] = entries
}

// WatchBinary registers a binary clause (a, b): watches[a] gets Binary{b}
// and watches[b] gets Binary{a} (spec.md §4.3).
func (w *Watches) WatchBinary(a, b Literal) {
	w.binary[a] = append(w.binary[a], b)
	w.binary[b] = append(w.binary[b], a)
}

// UnwatchBinary removes a binary clause's watches. Binary watch lists are
// typically short, so a linear scan (as spec.md §4.3 prescribes) is fine.
func (w *Watches) UnwatchBinary(a, b Literal) {
	w.binary[a] = removeLiteral(w.binary[a], b)
	w.binary[b] = removeLiteral(w.binary[b], a)
}

func removeLiteral(list []Literal, x Literal) []Literal {
	for i, l := range list {
		if l == x {
			last := len(list) - 1
			list[i] = list[last]
			return list[:last]
		}
	}
	return list
}

// WatchLarge registers a clause whose first two (watched) literals are a
// and b, with blockingForA/blockingForB the blocking literal recorded on
// each side (spec.md §4.3).
func (w *Watches) WatchLarge(ref ClauseRef, a, b, blockingForA, blockingForB Literal) {
	w.large[a] = append(w.large[a], largeWatch{ref: ref, blocking: blockingForA})
	w.large[b] = append(w.large[b], largeWatch{ref: ref, blocking: blockingForB})
}

// unwatchLargeRef removes every entry referencing ref from literal l's
// large watch list. Used when a clause is deleted outright (as opposed to
// merely marked garbage and swept on the next compaction).
func (w *Watches) unwatchLargeRef(l Literal, ref ClauseRef) {
	list := w.large[l]
	j := 0
	for i := range list {
		if list[i].ref != ref {
			list[j] = list[i]
			j++
		}
	}
	w.large[l] = list[:j]
}

// UnwatchLarge removes the watch entries for a clause's two currently
// watched literals a and b.
func (w *Watches) UnwatchLarge(ref ClauseRef, a, b Literal) {
	w.unwatchLargeRef(a, ref)
	w.unwatchLargeRef(b, ref)
}

// Relocate rewrites every large-watch ref using the relocation table
// produced by Arena.Compact, dropping entries for clauses that did not
// survive (i.e. were garbage). This must run immediately after Compact,
// before any propagation or analysis observes the watch lists again
// (spec.md §9 "scoped resource release").
func (w *Watches) Relocate(relocation map[ClauseRef]ClauseRef) {
	for l, list := range w.large {
		j := 0
		for _, entry := range list {
			if newRef, ok := relocation[entry.ref]; ok {
				entry.ref = newRef
				list[j] = entry
				j++
			}
		}
		w.large[l] = list[:j]
	}
}
