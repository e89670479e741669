package sat

// Conflict describes the clause that BCP found falsified, in whichever of
// the two representations produced it (spec.md §4.4): a synthesized binary
// conflict (¬lit, other) or an arena clause reference.
type Conflict struct {
	Binary bool
	A, B   Literal   // valid iff Binary
	Ref    ClauseRef // valid iff !Binary
}

// watchInstall is a deferred "start watching ref at lit" write, flushed once
// the current literal's large-watch list has finished its p/q rewrite pass
// (spec.md §4.4: "deferred write; flushed to watches[r] ... to avoid
// mutating the currently-iterated list").
type watchInstall struct {
	lit   Literal
	entry largeWatch
}

// propagate is the Propagation Engine (C4): it drains the trail's
// unprocessed suffix, and for each literal rewrites the watch list of its
// negation in place using a read/write cursor pair, either discovering a
// conflict or exhausting the trail. Grounded on the teacher's
// Clause.Propagate "swap watch into literals[1], scan from literals[2]"
// idiom, generalized across the binary/large split and the arena.
func (s *Solver) propagate() (Conflict, bool) {
	for s.store.Pending() {
		lit := s.store.NextPending()
		notLit := lit.Opposite()
		s.stats.Ticks++

		if conflict, ok := s.propagateBinary(notLit); ok {
			return conflict, true
		}
		if conflict, ok := s.propagateLarge(notLit); ok {
			return conflict, true
		}
	}
	return Conflict{}, false
}

// propagateBinary scans the binary watch list (or the binary implication
// index, if enabled) of notLit.
func (s *Solver) propagateBinary(notLit Literal) (Conflict, bool) {
	var conflictOther Literal
	found := s.forEachBinaryNeighbor(notLit, func(other Literal) bool {
		switch s.store.Value(other) {
		case True:
			return false
		case False:
			conflictOther = other
			return true
		default:
			s.assignLit(other, binaryReason(notLit))
			return false
		}
	})
	if found {
		return Conflict{Binary: true, A: notLit, B: conflictOther}, true
	}
	return Conflict{}, false
}

// forEachBinaryNeighbor visits every literal implied by a binary clause
// watching l, stopping early if visit returns true.
func (s *Solver) forEachBinaryNeighbor(l Literal, visit func(other Literal) bool) bool {
	if s.useBinaryIndex && s.binIndex != nil {
		flat, overlay := s.binIndex.Implied(l)
		for _, other := range flat {
			if other == tombstoneLiteral {
				continue
			}
			if visit(other) {
				return true
			}
		}
		for _, other := range overlay {
			if visit(other) {
				return true
			}
		}
		return false
	}
	for _, other := range s.watches.Binary(l) {
		if visit(other) {
			return true
		}
	}
	return false
}

// propagateLarge performs the two-cursor rewrite of notLit's large-clause
// watch list (spec.md §4.4's case table). p reads, q writes; entries that
// survive (still watching notLit) are copied down to q, entries that move
// to a new watched literal are dropped here and queued in pending for the
// new literal's list.
func (s *Solver) propagateLarge(notLit Literal) (Conflict, bool) {
	list := s.watches.Large(notLit)
	if len(list) == 0 {
		return Conflict{}, false
	}

	var pending []watchInstall
	q := 0

	for p := 0; p < len(list); p++ {
		entry := list[p]

		if s.store.Value(entry.blocking) == True {
			list[q] = entry
			q++
			continue
		}

		view := s.arena.View(entry.ref)
		if view.Garbage() {
			continue // dropped: advance p, not q.
		}

		other := view.Lit(0) ^ view.Lit(1) ^ notLit
		if s.store.Value(other) == True {
			entry.blocking = other
			list[q] = entry
			q++
			continue
		}

		replaceIdx := s.findReplacement(view, notLit)
		if replaceIdx >= 0 {
			r := view.Lit(replaceIdx)
			selfIdx := 0
			if view.Lit(0) != notLit {
				selfIdx = 1
			}
			view.SetLit(selfIdx, r)
			view.SetLit(replaceIdx, notLit)
			view.SetSearched(replaceIdx)
			pending = append(pending, watchInstall{lit: r, entry: largeWatch{ref: entry.ref, blocking: other}})
			continue
		}

		// No non-false replacement: the clause is unit, or conflicting.
		list[q] = entry
		q++

		if s.store.Value(other) == False {
			// Conflict: leave the remaining (untraversed) tail verbatim, as
			// spec.md §4.4 requires, then stop.
			copy(list[q:], list[p+1:])
			q += len(list) - p - 1
			s.watches.SetLarge(notLit, list[:q])
			s.flushPending(pending)
			return Conflict{Ref: entry.ref}, true
		}

		s.assignLit(other, largeReason(entry.ref))
	}

	s.watches.SetLarge(notLit, list[:q])
	s.flushPending(pending)
	return Conflict{}, false
}

func (s *Solver) flushPending(pending []watchInstall) {
	for _, wi := range pending {
		s.watches.large[wi.lit] = append(s.watches.large[wi.lit], wi.entry)
	}
}

// findReplacement looks for a non-false literal in view.lits[2:], starting
// at the resume cursor and wrapping back to index 2, per spec.md §4.4's
// "choose the first non-false literal in the cyclic order starting at
// searched" tie-break. Dispatch by size is behaviorally a no-op in Go (no
// SIMD path is worth the complexity here) except for the very common
// ternary-clause case, which spec.md calls out explicitly as reducing to a
// single direct check of lits[2].
func (s *Solver) findReplacement(view ClauseView, notLit Literal) int {
	size := view.Size()
	if size == 3 {
		if s.store.Value(view.Lit(2)) != False {
			return 2
		}
		return -1
	}

	searched := view.Searched()
	if searched < 2 || searched >= size {
		searched = 2
	}
	for i := searched; i < size; i++ {
		if s.store.Value(view.Lit(i)) != False {
			return i
		}
	}
	for i := 2; i < searched; i++ {
		if s.store.Value(view.Lit(i)) != False {
			return i
		}
	}
	return -1
}
