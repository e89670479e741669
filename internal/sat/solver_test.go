package sat

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// addClauseFromDIMACS is a small test helper that feeds one clause through
// the incremental AddLiteral surface, mirroring how parsers.LoadDIMACS talks
// to a Solver.
func addClauseFromDIMACS(t *testing.T, s *Solver, lits ...int32) {
	t.Helper()
	for _, l := range lits {
		if err := s.AddLiteral(l); err != nil {
			t.Fatalf("AddLiteral(%d) error = %v", l, err)
		}
	}
	if err := s.AddLiteral(0); err != nil {
		t.Fatalf("AddLiteral(0) error = %v", err)
	}
}

func toString(model []bool) string {
	b := make([]byte, len(model))
	for i, v := range model {
		if v {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
	}
	return string(b)
}

func toSet(models [][]bool) map[string]struct{} {
	set := make(map[string]struct{}, len(models))
	for _, m := range models {
		set[toString(m)] = struct{}{}
	}
	return set
}

// solveAllModels mirrors cmd/watchsat's solveAll for testing: it repeatedly
// solves and blocks out each model until the instance is exhausted.
func solveAllModels(t *testing.T, s *Solver) [][]bool {
	t.Helper()
	for s.Solve() == StatusSatisfiable {
		model := s.Models[len(s.Models)-1]
		blocking := make([]Literal, len(model))
		for i, b := range model {
			if b {
				blocking[i] = NegativeLiteral(i)
			} else {
				blocking[i] = PositiveLiteral(i)
			}
		}
		if err := s.AddClause(blocking); err != nil {
			t.Fatalf("AddClause(blocking) error = %v", err)
		}
	}
	return s.Models
}

func newRandomizedSolver(t *testing.T) *Solver {
	t.Helper()
	opts := DefaultOptions()
	s, err := NewSolver(opts)
	if err != nil {
		t.Fatalf("NewSolver() error = %v", err)
	}
	return s
}

func TestSolver_UnitPropagationToSatisfiable(t *testing.T) {
	s := newRandomizedSolver(t)
	for i := 0; i < 2; i++ {
		s.AddVariable()
	}
	addClauseFromDIMACS(t, s, 1)
	addClauseFromDIMACS(t, s, -2)

	if got := s.Solve(); got != StatusSatisfiable {
		t.Fatalf("Solve() = %v, want SATISFIABLE", got)
	}
	if got := s.Value(0); got != True {
		t.Errorf("Value(0) = %v, want True", got)
	}
	if got := s.Value(1); got != False {
		t.Errorf("Value(1) = %v, want False", got)
	}
}

func TestSolver_EmptyClauseIsUnsatisfiable(t *testing.T) {
	s := newRandomizedSolver(t)
	if err := s.AddClause(nil); err != nil {
		t.Fatalf("AddClause(nil) error = %v", err)
	}
	if got := s.Solve(); got != StatusUnsatisfiable {
		t.Fatalf("Solve() = %v, want UNSATISFIABLE", got)
	}
}

func TestSolver_ConflictingUnitsAreUnsatisfiable(t *testing.T) {
	s := newRandomizedSolver(t)
	s.AddVariable()
	addClauseFromDIMACS(t, s, 1)
	addClauseFromDIMACS(t, s, -1)

	if got := s.Solve(); got != StatusUnsatisfiable {
		t.Fatalf("Solve() = %v, want UNSATISFIABLE", got)
	}
}

// TestSolver_PigeonholeIsUnsatisfiable solves the smallest nontrivial
// pigeonhole instance (2 pigeons, 1 hole). Both placements are unit clauses
// assigned at the root, so the "not both" clause is falsified as it is added
// and the instance is UNSATISFIABLE before any search.
func TestSolver_PigeonholeIsUnsatisfiable(t *testing.T) {
	s := newRandomizedSolver(t)
	// Variables: x0 = pigeon 0 in hole 0, x1 = pigeon 1 in hole 0.
	for i := 0; i < 2; i++ {
		s.AddVariable()
	}
	addClauseFromDIMACS(t, s, 1) // pigeon 0 must be in hole 0
	addClauseFromDIMACS(t, s, 2) // pigeon 1 must be in hole 0
	addClauseFromDIMACS(t, s, -1, -2) // not both in hole 0

	if got := s.Solve(); got != StatusUnsatisfiable {
		t.Fatalf("Solve() = %v, want UNSATISFIABLE", got)
	}
}

// TestSolver_SolveAllFindsExactModelSet solves (x0 v x1) over two variables
// and checks that every one of its three models is found exactly once.
func TestSolver_SolveAllFindsExactModelSet(t *testing.T) {
	s := newRandomizedSolver(t)
	for i := 0; i < 2; i++ {
		s.AddVariable()
	}
	addClauseFromDIMACS(t, s, 1, 2)

	got := solveAllModels(t, s)
	want := [][]bool{
		{true, false},
		{false, true},
		{true, true},
	}

	if len(got) != len(want) {
		t.Fatalf("found %d models, want %d", len(got), len(want))
	}
	if diff := cmp.Diff(toSet(want), toSet(got)); diff != "" {
		t.Errorf("model set mismatch (-want +got):\n%s", diff)
	}
}

func TestSolver_TerminateStopsSearch(t *testing.T) {
	s := newRandomizedSolver(t)
	s.Terminate()
	s.AddVariable()
	addClauseFromDIMACS(t, s, 1)

	if got := s.Solve(); got != StatusUnknown {
		t.Fatalf("Solve() after Terminate() = %v, want UNKNOWN", got)
	}
}

func TestSolver_SetLimitRejectsUnknownKind(t *testing.T) {
	s := newRandomizedSolver(t)
	if err := s.SetLimit("bogus", 1); err == nil {
		t.Errorf("SetLimit(\"bogus\", ...) error = nil, want an error")
	}
}

func TestSolver_SetLimitConflictsStopsEarly(t *testing.T) {
	s := newRandomizedSolver(t)
	if err := s.SetLimit("conflicts", 0); err != nil {
		t.Fatalf("SetLimit() error = %v", err)
	}
	// Two contradictory unit clauses: addClause already detects the
	// contradiction at the root, so Solve may report UNSATISFIABLE without
	// consulting the conflict limit.
	s.AddVariable()
	addClauseFromDIMACS(t, s, 1)
	addClauseFromDIMACS(t, s, -1)

	got := s.Solve()
	if got != StatusUnknown && got != StatusUnsatisfiable {
		t.Fatalf("Solve() with MaxConflicts=0 = %v, want UNKNOWN or UNSATISFIABLE", got)
	}
}

func TestSolver_AddClauseRejectsNonRootLevel(t *testing.T) {
	s := newRandomizedSolver(t)
	s.AddVariable()
	s.store.NewDecisionLevel()

	if err := s.AddClause([]Literal{PositiveLiteral(0)}); err == nil {
		t.Errorf("AddClause() at a non-root level returned nil error")
	}
}

// TestSolver_ReduceProtectsTier1AndUsedTier2Clauses hand-builds four
// redundant arena clauses spanning both retention tiers and checks that
// reduce() protects tier1 unconditionally, protects tier2 only while its
// used counter is still positive (decrementing it by one in the process),
// and deletes everything else (spec.md §4.8).
func TestSolver_ReduceProtectsTier1AndUsedTier2Clauses(t *testing.T) {
	s := newTestSolver(t, 6)
	s.Options.Tier1 = 2
	s.Options.Tier2 = 6

	register := func(clauseLits []Literal, glue, used int) {
		ref := s.arena.Allocate(clauseLits, true, glue)
		view := s.arena.View(ref)
		view.SetUsed(used)
		s.watches.WatchLarge(ref, clauseLits[0], clauseLits[1], clauseLits[1], clauseLits[0])
	}

	register(lits(1, 2, 3), 1, 0)                 // tier1: always protected.
	register(lits(1, 4, 5), 4, tierUsedLifetime)  // tier2, used > 0: protected this round.
	register(lits(2, 4, 6), 5, 0)                 // tier2, used == 0: deletable.
	register(lits(3, 5, 6), 10, 0)                // above tier2: deletable.

	s.reduce()

	type survivor struct {
		Glue, Used int
	}
	var survivors []survivor
	s.arena.Walk(func(_ ClauseRef, view ClauseView) {
		if view.Garbage() {
			return
		}
		survivors = append(survivors, survivor{view.Glue(), view.Used()})
	})

	want := []survivor{{1, 0}, {4, tierUsedLifetime - 1}}
	if diff := cmp.Diff(want, survivors, cmpopts.SortSlices(func(a, b survivor) bool { return a.Glue < b.Glue })); diff != "" {
		t.Errorf("surviving clauses mismatch (-want +got):\n%s", diff)
	}
}

func TestSolver_AddClauseDropsTautology(t *testing.T) {
	s := newRandomizedSolver(t)
	s.AddVariable()
	if err := s.AddClause([]Literal{PositiveLiteral(0), NegativeLiteral(0)}); err != nil {
		t.Fatalf("AddClause(tautology) error = %v", err)
	}
	if got := s.Solve(); got != StatusSatisfiable {
		t.Errorf("Solve() after a dropped tautology = %v, want SATISFIABLE", got)
	}
}
