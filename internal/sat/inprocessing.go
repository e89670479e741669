package sat

import "github.com/pkg/errors"

// This file exposes the structural hooks spec.md §6's "Inprocessing
// callbacks" describe: thin, behavior-preserving entry points over the
// arena and trail that let an external inprocessing stack observe and
// rewrite the clause database between search phases. They implement no
// elimination/subsumption/vivification/probing/sweep/factoring logic
// themselves — those remain out of scope (spec.md §1's Non-goals) — they
// only provide the plumbing such a stack would need.

// IterateClauses visits every live (non-garbage) clause currently in the
// database, both original and learned, calling visit with its literals and
// whether it is a learned clause. Binary and unit clauses are not stored in
// the arena (spec.md §3), so IterateClauses also walks the binary watch
// lists once, deduplicating each pair by only reporting it from its lower
// literal. Binary clauses carry no learned flag, so every binary pair,
// learned or original, is reported with redundant set to false.
func (s *Solver) IterateClauses(visit func(lits []Literal, redundant bool)) {
	for l := Literal(0); int(l) < len(s.watches.binary); l++ {
		for _, other := range s.watches.Binary(l) {
			if other <= l {
				continue // report each binary pair once, from its lower literal.
			}
			visit([]Literal{l, other}, false)
		}
	}
	s.arena.Walk(func(_ ClauseRef, view ClauseView) {
		if view.Garbage() {
			return
		}
		visit(view.Literals(), view.Redundant())
	})
}

// IsPropagated reports whether variable v is currently assigned as a
// consequence of propagation (as opposed to a decision or being free).
func (s *Solver) IsPropagated(v int) bool {
	if s.store.VarLevel(v) < 0 {
		return false
	}
	return !s.store.VarReason(v).IsDecision()
}

// InstallClause adds a clause discovered by an external inprocessing pass
// (e.g. a subsumption or vivification result) directly into the database,
// bypassing the incremental AddLiteral builder. It is only valid at the
// root decision level, exactly like AddClause.
func (s *Solver) InstallClause(lits []Literal, redundant bool) error {
	if s.store.DecisionLevel() != 0 {
		return errors.New("sat: clauses can only be installed at the root level")
	}
	for _, l := range lits {
		s.ensureVar(l.VarID())
	}

	switch len(lits) {
	case 0, 1:
		return s.addClause(lits)
	case 2:
		a, b := lits[0], lits[1]
		s.watches.WatchBinary(a, b)
		s.binIndex.Add(a, b)
	default:
		ref := s.arena.Allocate(lits, redundant, 0)
		s.watches.WatchLarge(ref, lits[0], lits[1], lits[1], lits[0])
	}
	return nil
}

// Eliminate disables variable v for future decisions and propagation
// bookkeeping (the heuristic hook), the structural minimum an external
// bounded-variable-elimination pass needs; it does not itself resolve away
// v's clauses.
func (s *Solver) Eliminate(v int) {
	s.heuristic.SetActive(v, false)
}
