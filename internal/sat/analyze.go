package sat

// shrinkMaxDepth bounds the secondary binary-resolution minimization pass
// (spec.md §9 Open Questions: "bounded by a small constant depth").
const shrinkMaxDepth = 4

// explainConflict returns the negation of every literal in the falsified
// clause that produced conflict: each such literal is false, so its
// negation is the "cause" literal that conflict analysis resolves on
// (grounded on the teacher's Clause.ExplainFailure).
func (s *Solver) explainConflict(conflict Conflict) []Literal {
	if conflict.Binary {
		return []Literal{conflict.A.Opposite(), conflict.B.Opposite()}
	}
	view := s.arena.View(conflict.Ref)
	out := make([]Literal, view.Size())
	for i := range out {
		out[i] = view.Lit(i).Opposite()
	}
	return out
}

// explainReason returns the cause literals for why assigned was forced,
// i.e. every other literal of its reason clause, negated (grounded on the
// teacher's Clause.ExplainAssign).
func (s *Solver) explainReason(reason Reason, assigned Literal) []Literal {
	switch reason.Kind {
	case ReasonBinary:
		return []Literal{reason.Other.Opposite()}
	case ReasonLarge:
		view := s.arena.View(reason.Ref)
		size := view.Size()
		out := make([]Literal, 0, size-1)
		for i := 0; i < size; i++ {
			if l := view.Lit(i); l != assigned {
				out = append(out, l.Opposite())
			}
		}
		return out
	default:
		return nil
	}
}

// analyze is the Conflict Analyzer (C5): it resolves the conflicting clause
// against reasons walking the trail backward until the 1-UIP is found,
// optionally minimizes and shrinks the result, and reports the clause's
// LBD/glue and backjump level (spec.md §4.5). Grounded on the teacher's
// analyze() (seenVar + nImplicationPoints + backward trail walk), extended
// with minimization, shrink, and LBD per spec.md's steps 3-5.
func (s *Solver) analyze(conflict Conflict) (learned []Literal, backjumpLevel int, glue int) {
	s.seenVar.Clear()
	s.tmpLearned = s.tmpLearned[:0]
	s.tmpLearned = append(s.tmpLearned, Literal(-1)) // slot 0: the UIP, set below.

	curLevel := s.store.DecisionLevel()
	pending := 0

	resolve := func(lits []Literal) {
		for _, q := range lits {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)
			s.bumpVarActivity(v)

			if s.store.VarLevel(v) == curLevel {
				pending++
				continue
			}
			s.tmpLearned = append(s.tmpLearned, q.Opposite())
		}
	}

	resolve(s.explainConflict(conflict))

	trail := s.store.Trail()
	idx := len(trail) - 1
	var uip Literal
	for {
		var l Literal
		for {
			l = trail[idx]
			idx--
			if s.seenVar.Contains(l.VarID()) {
				break
			}
		}
		pending--
		if pending <= 0 {
			uip = l
			break
		}
		resolve(s.explainReason(s.store.VarReason(l.VarID()), l))
	}
	s.tmpLearned[0] = uip.Opposite()

	learnedOut := s.tmpLearned
	if s.Options.Minimize {
		learnedOut = s.minimize(learnedOut)
	}
	if s.Options.Shrink && len(learnedOut) > 1 {
		learnedOut = s.shrink(learnedOut)
	}

	backjumpLevel = 0
	for _, lit := range learnedOut[1:] {
		if lvl := s.store.VarLevel(lit.VarID()); lvl > backjumpLevel {
			backjumpLevel = lvl
		}
	}

	glue = s.computeGlue(learnedOut, curLevel)

	out := make([]Literal, len(learnedOut))
	copy(out, learnedOut)
	s.decayVarActivity()
	return out, backjumpLevel, glue
}

// computeGlue returns the number of distinct decision levels represented in
// the learned clause, i.e. its LBD (spec.md §4.5 step 1, GLOSSARY).
func (s *Solver) computeGlue(learned []Literal, curLevel int) int {
	if len(learned) <= 1 {
		return 1
	}
	seenLevels := map[int]struct{}{curLevel: {}}
	for _, lit := range learned[1:] {
		seenLevels[s.store.VarLevel(lit.VarID())] = struct{}{}
	}
	return len(seenLevels)
}

// minimize removes every non-UIP literal whose reason chain leads only to
// already-analyzed literals or level-0 facts (spec.md §4.5 step 3, "all-chain"
// minimization). s.poisoned/s.removable memoize the outcome for literals
// probed earlier in the same pass.
func (s *Solver) minimize(learned []Literal) []Literal {
	s.poisoned.Clear()
	s.removable.Clear()

	out := learned[:1]
	for _, lit := range learned[1:] {
		if s.isRedundant(lit) {
			s.removable.Add(lit.VarID())
		} else {
			s.poisoned.Add(lit.VarID())
			out = append(out, lit)
		}
	}
	return out
}

// isRedundant reports whether start's reason chain bottoms out entirely in
// literals already marked analyzed (or level-0 facts), using an explicit
// stack (not recursion) so depth is bounded only by available memory, with
// a pooled scratch buffer per call (scratch.go).
func (s *Solver) isRedundant(start Literal) bool {
	stackPtr := allocScratch(8)
	stack := append((*stackPtr)[:0], start)
	visited := map[int]bool{start.VarID(): true}

	redundant := true
loop:
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		reason := s.store.VarReason(cur.VarID())
		if reason.Kind == ReasonDecision || reason.Kind == ReasonNone {
			redundant = false
			break loop
		}

		for _, p := range s.explainReason(reason, cur) {
			pv := p.VarID()
			if visited[pv] || s.seenVar.Contains(pv) {
				continue
			}
			if s.store.VarLevel(pv) == 0 {
				continue // level-0 facts are permanent, never poisoned.
			}
			if s.poisoned.Contains(pv) {
				redundant = false
				break loop
			}
			if s.removable.Contains(pv) {
				continue
			}
			visited[pv] = true
			stack = append(stack, p)
		}
	}

	*stackPtr = stack[:0]
	freeScratch(stackPtr)
	return redundant
}

// shrink is the secondary, binary-resolution-only minimization pass
// (spec.md §4.5 step 4, §9 Open Questions): a literal is dropped if its
// negation is 1-hop implied, via a binary clause, by a literal that is
// already accounted for in the resolution (seenVar) — or transitively so,
// up to shrinkMaxDepth.
func (s *Solver) shrink(learned []Literal) []Literal {
	out := learned[:1]
	for _, lit := range learned[1:] {
		if s.shrinkRedundant(lit, shrinkMaxDepth) {
			continue
		}
		out = append(out, lit)
	}
	return out
}

func (s *Solver) shrinkRedundant(lit Literal, depth int) bool {
	if depth == 0 {
		return false
	}
	found := false
	s.forEachBinaryNeighbor(lit.Opposite(), func(r Literal) bool {
		if r == lit {
			return false
		}
		if s.seenVar.Contains(r.VarID()) {
			found = true
			return true
		}
		if s.store.Value(r) == False && s.shrinkRedundant(r.Opposite(), depth-1) {
			found = true
			return true
		}
		return false
	})
	return found
}
