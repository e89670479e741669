package sat

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Status is the three-valued outcome of a search (spec.md §6's
// new_solver/solve() contract). Its constants are spelled out instead of
// reusing LBool's Unknown/True/False so that a verdict can never be
// mistaken for a literal's truth value.
type Status int

const (
	StatusUnknown Status = iota
	StatusSatisfiable
	StatusUnsatisfiable
)

func (st Status) String() string {
	switch st {
	case StatusSatisfiable:
		return "SATISFIABLE"
	case StatusUnsatisfiable:
		return "UNSATISFIABLE"
	default:
		return "UNKNOWN"
	}
}

// Solver ties together the Value/Trail store (C1), watch lists (C3),
// propagation engine (C4), conflict analyzer (C5), backtracker (C6),
// decision heuristic (C7), and the restart/reduce schedulers (C8) into the
// CDCL search driver described by spec.md §4.9. Grounded on the teacher's
// Solver, generalized from its single clause-pointer database into the
// arena + watch-list + optional binary-index representation spec.md §3 and
// §9 call for.
type Solver struct {
	store          *Store
	watches        *Watches
	arena          *Arena
	binIndex       *BinaryIndex
	useBinaryIndex bool

	heuristic *Heuristic
	restarts  *RestartScheduler
	reduces   *ReduceScheduler

	Options Options
	Debug   bool
	Logger  *logrus.Logger

	seenVar   *ResetSet
	poisoned  *ResetSet
	removable *ResetSet

	tmpLearned    []Literal
	pendingClause []Literal

	unsat         bool
	stableMode    bool
	modeConflicts int
	bestTrailLen  int

	stats struct {
		Iterations int64
		Conflicts  int64
		Decisions  int64
		Restarts   int64
		Reduces    int64
		Ticks      int64
	}
	numLearnts int

	startTime   time.Time
	terminated  atomic.Bool

	// Models accumulates every satisfying assignment found, one per
	// satisfiable Solve call; cmd/watchsat's solveAll blocking-clause loop
	// reads it across repeated Solve calls.
	Models [][]bool

	// OnLearnedClause and OnDeletedClause are the proof-trace hooks spec.md's
	// DOMAIN Supplemented features call for. Both are nil by default.
	OnLearnedClause func(lits []Literal, isUnit bool)
	OnDeletedClause func(lits []Literal)
}

// NewSolver returns a Solver configured per opts, or an error if opts fails
// validation (spec.md §6).
func NewSolver(opts Options) (*Solver, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "sat: invalid options")
	}

	s := &Solver{
		store:          NewStore(),
		watches:        NewWatches(),
		arena:          NewArena(),
		binIndex:       NewBinaryIndex(),
		useBinaryIndex: opts.UseBinaryIndex,
		Options:        opts,
		Debug:          opts.Debug,
		Logger:         logrus.New(),
		seenVar:        &ResetSet{},
		poisoned:       &ResetSet{},
		removable:      &ResetSet{},
		stableMode:     opts.Stable,
	}

	s.heuristic = NewHeuristic(HeuristicConfig{
		Decay:       float64(opts.Decay) / 100,
		PhaseSaving: opts.PhaseSaving,
		ForcePhase:  opts.ForcePhase,
		Phase:       Lift(opts.Phase),
		RandecEvery: opts.RandecEvery,
		RandecLen:   opts.RandecLen,
		Seed:        opts.Seed,
	})
	s.heuristic.SwitchMode(opts.Stable)

	s.restarts = NewRestartScheduler(RestartConfig{
		Enabled:    opts.Restart,
		Interval:   opts.RestartInterval,
		MarginPct:  opts.RestartMargin,
		ReuseTrail: opts.RestartReuseTrail,
		Adaptive:   opts.RestartAdaptive,
	})
	s.reduces = NewReduceScheduler(ReduceConfig{
		Enabled:    opts.Reduce,
		Interval:   opts.ReduceInterval,
		HighTenths: opts.ReduceHigh,
		LowTenths:  opts.ReduceLow,
		Adaptive:   opts.ReduceAdaptive,
		FactorPct:  opts.ReduceFactor,
		Tier1:      opts.Tier1,
		Tier2:      opts.Tier2,
	})

	return s, nil
}

// NumVariables returns the number of variables known to the solver.
func (s *Solver) NumVariables() int {
	return s.store.NumVars()
}

// AddVariable registers a new variable with every component that keeps
// per-variable or per-literal state, and returns its ID.
func (s *Solver) AddVariable() int {
	v := s.store.AddVar()
	s.watches.Grow()
	s.watches.Grow()
	s.binIndex.Grow()
	s.binIndex.Grow()
	s.heuristic.AddVar()
	s.seenVar.Expand()
	s.poisoned.Expand()
	s.removable.Expand()
	return v
}

func (s *Solver) ensureVar(v int) {
	for v >= s.store.NumVars() {
		s.AddVariable()
	}
}

// AddLiteral feeds one DIMACS-convention literal of an incrementally built
// clause into the solver; a 0 closes the clause and submits it (spec.md §6's
// external interface contract, grounded on the IPASIR-style add() the
// teacher's parsers package front-ends with dimacs.ReadBuilder).
func (s *Solver) AddLiteral(lit int32) error {
	if lit == 0 {
		err := s.addClause(s.pendingClause)
		s.pendingClause = s.pendingClause[:0]
		return err
	}
	l := LiteralFromDIMACS(lit)
	s.ensureVar(l.VarID())
	s.pendingClause = append(s.pendingClause, l)
	return nil
}

// AddClause submits a complete clause, growing the variable space as needed.
// It is the non-incremental convenience form of AddLiteral, grounded on the
// teacher's Solver.AddClause.
func (s *Solver) AddClause(lits []Literal) error {
	for _, l := range lits {
		s.ensureVar(l.VarID())
	}
	return s.addClause(lits)
}

// addClause normalizes lits (dropping duplicates and root-falsified
// literals, recognizing tautologies) and installs the result as a unit
// assignment, a binary clause, or an arena clause (spec.md §4.2, §4.3).
// Grounded on the teacher's NewClause, generalized across the binary/large
// split.
func (s *Solver) addClause(lits []Literal) error {
	if s.store.DecisionLevel() != 0 {
		return errors.New("sat: clauses can only be added at the root level")
	}
	if s.unsat {
		return nil
	}

	seen := make(map[Literal]struct{}, len(lits))
	out := lits[:0]
	for _, l := range lits {
		if _, ok := seen[l.Opposite()]; ok {
			return nil // tautology: clause is trivially satisfied.
		}
		if _, ok := seen[l]; ok {
			continue // duplicate literal.
		}
		seen[l] = struct{}{}

		switch s.store.Value(l) {
		case True:
			return nil // clause already satisfied at the root.
		case False:
			continue // root-falsified literal: drop it.
		}
		out = append(out, l)
	}

	switch len(out) {
	case 0:
		s.unsat = true
	case 1:
		if s.store.Value(out[0]) == Unknown {
			s.assignLit(out[0], noReason)
		}
	case 2:
		a, b := out[0], out[1]
		s.watches.WatchBinary(a, b)
		s.binIndex.Add(a, b)
	default:
		ref := s.arena.Allocate(out, false, 0)
		s.watches.WatchLarge(ref, out[0], out[1], out[1], out[0])
	}
	return nil
}

// Value returns the truth value of variable v, meaningful once Solve has
// returned StatusSatisfiable (spec.md §6). Solve backtracks to the root before
// returning, so Value reads the most recently saved model when there is one
// covering v, and the current root-level value otherwise.
func (s *Solver) Value(v int) LBool {
	if n := len(s.Models); n > 0 && v < len(s.Models[n-1]) {
		return Lift(s.Models[n-1][v])
	}
	return s.store.Value(PositiveLiteral(v))
}

// SetLimit configures one of the stop conditions spec.md §6 names. Unknown
// kinds return an error; a negative bound means unbounded.
func (s *Solver) SetLimit(kind string, bound int64) error {
	switch kind {
	case "conflicts":
		s.Options.MaxConflicts = bound
	case "decisions":
		s.Options.MaxDecisions = bound
	case "time":
		s.Options.Timeout = time.Duration(bound) * time.Second
	default:
		return errors.Errorf("sat: unknown limit kind %q", kind)
	}
	return nil
}

// Terminate requests that the search stop at its next safe checkpoint. It
// only flips an atomic flag, so it is safe to call from a signal handler
// (spec.md §6).
func (s *Solver) Terminate() {
	s.terminated.Store(true)
}

func (s *Solver) shouldStop() bool {
	if s.terminated.Load() {
		return true
	}
	if s.Options.MaxConflicts >= 0 && s.stats.Conflicts >= s.Options.MaxConflicts {
		return true
	}
	if s.Options.MaxDecisions >= 0 && s.stats.Decisions >= s.Options.MaxDecisions {
		return true
	}
	if s.Options.Timeout >= 0 && time.Since(s.startTime) >= s.Options.Timeout {
		return true
	}
	return false
}

// Solve runs the CDCL search loop (C9/§4.9) to completion or to a stop
// condition, and returns the resulting status.
func (s *Solver) Solve() Status {
	if s.unsat {
		return StatusUnsatisfiable
	}

	s.startTime = time.Now()
	s.logSearchHeader()

	status := s.search()

	s.logVerdict(status)
	s.backtrackTo(0)
	return status
}

// search is the unified CDCL loop: propagate, and on conflict analyze and
// backjump, or on exhaustion decide. Restart/reduce/mode-switch triggers are
// checked once per conflict, which spec.md §4.9 treats as equivalent to
// checking them at the top of the loop since none of them can fire between
// consecutive propagate calls with no intervening conflict.
func (s *Solver) search() Status {
	for {
		if s.stats.Iterations%10000 == 0 {
			s.logSearchStats()
		}
		s.stats.Iterations++

		if conflict, found := s.propagate(); found {
			s.stats.Conflicts++

			if s.store.DecisionLevel() == 0 {
				s.unsat = true
				return StatusUnsatisfiable
			}

			learned, backjumpLevel, glue := s.analyze(conflict)
			s.backtrackTo(backjumpLevel)
			s.install(learned, glue)

			s.heuristic.NotifyConflict()
			s.restarts.NotifyConflict(glue)
			s.reduces.NotifyConflict()
			s.modeConflicts++

			if s.Options.Stable && s.Options.ModeInterval > 0 && s.modeConflicts >= s.Options.ModeInterval {
				s.switchMode()
			}
			if s.restarts.ShouldRestart(s.stableMode) {
				s.restart()
			}
			if s.reduces.ShouldReduce() {
				s.reduce()
			}
			if s.shouldStop() {
				return StatusUnknown
			}
			continue
		}

		if s.shouldStop() {
			return StatusUnknown
		}
		if s.store.TrailLen() == s.store.NumVars() {
			s.saveModel()
			return StatusSatisfiable
		}
		s.maybeUpdateTargetPhases()

		lit := s.heuristic.Next(s.store)
		s.store.NewDecisionLevel()
		s.assignLit(lit, decisionReason)
		s.stats.Decisions++
	}
}

// install records a just-learned clause as a unit fact, a binary clause, or
// an arena clause, and asserts its first (UIP) literal (spec.md §4.5 step 6
// and §4.2/§4.3's respective install paths). An arena clause starts its
// used tier-age counter at tierUsedLifetime, giving it a grace period
// against reduce before glue alone governs its retention.
func (s *Solver) install(learned []Literal, glue int) {
	s.numLearnts++

	switch len(learned) {
	case 1:
		s.assignLit(learned[0], noReason)
	case 2:
		a, b := learned[0], learned[1]
		s.watches.WatchBinary(a, b)
		s.binIndex.Add(a, b)
		s.assignLit(a, binaryReason(b))
	default:
		maxLevel, wl := -1, 1
		for i := 1; i < len(learned); i++ {
			if lvl := s.store.VarLevel(learned[i].VarID()); lvl > maxLevel {
				maxLevel = lvl
				wl = i
			}
		}
		learned[1], learned[wl] = learned[wl], learned[1]

		ref := s.arena.Allocate(learned, true, glue)
		s.arena.View(ref).SetUsed(tierUsedLifetime)
		s.watches.WatchLarge(ref, learned[0], learned[1], learned[1], learned[0])
		s.assignLit(learned[0], largeReason(ref))
	}

	if s.OnLearnedClause != nil {
		s.OnLearnedClause(learned, len(learned) == 1)
	}
}

// backtrackTo undoes every assignment above level, restoring each unassigned
// variable to the decision heuristic with its saved phase and releasing any
// arena clause it had locked as a reason (spec.md §4.6).
func (s *Solver) backtrackTo(level int) {
	s.store.BacktrackTo(level, func(lit Literal) {
		v := lit.VarID()
		if reason := s.store.VarReason(v); reason.Kind == ReasonLarge {
			s.arena.View(reason.Ref).SetReason(false)
		}

		val := False
		if lit.IsPositive() {
			val = True
		}
		s.heuristic.Undo(v, val)
	})
}

// restart backjumps to the root, or to a partially-reused trail prefix when
// RestartReuseTrail is enabled, and folds a fresh efficacy sample into the
// scheduler's adaptive interval scale (spec.md §4.8).
func (s *Solver) restart() {
	target := 0
	if s.Options.RestartReuseTrail {
		target = s.reusedTrailLevel()
	}
	s.backtrackTo(target)

	if s.stats.Iterations > 0 {
		s.restarts.AdjustScale(float64(s.stats.Conflicts) / float64(s.stats.Iterations))
	}
	s.restarts.OnRestart()
	s.stats.Restarts++
}

// reusedTrailLevel returns the last level of the longest run of decision
// levels, starting at level 1, in which each level's decision variable has a
// VSIDS score at least that of the next level's decision; the current (top)
// level is never kept. That run is the prefix of the trail the heuristic
// would likely re-derive immediately if it were thrown away (spec.md §4.8's
// "reused trail level"), so a restart backtracks only down to it.
func (s *Solver) reusedTrailLevel() int {
	top := s.store.DecisionLevel()
	level := 0
	for lvl := 1; lvl < top; lvl++ {
		cur := s.store.Trail()[s.store.LevelStart(lvl)]
		next := s.store.Trail()[s.store.LevelStart(lvl+1)]
		if s.heuristic.scores[cur.VarID()] < s.heuristic.scores[next.VarID()] {
			break
		}
		level = lvl
	}
	return level
}

// switchMode toggles between focused and stable decision-making, resetting
// the EMA/Luby state that is meaningful only within a single mode (spec.md
// §4.8's periodic mode switch).
func (s *Solver) switchMode() {
	s.stableMode = !s.stableMode
	s.heuristic.SwitchMode(s.stableMode)
	s.restarts.shortGlue.Reset()
	s.restarts.longGlue.Reset()
	s.modeConflicts = 0
	s.bestTrailLen = 0
}

// maybeUpdateTargetPhases records the current assignment's polarities as the
// decision heuristic's target phase once the trail grows past the best
// prefix seen so far in the current stable run (spec.md §4.7's "best phase
// seen so far"). Options.Target selects whether this runs at all; the
// original's finer 1-vs-2 distinction between how the policy carries across
// restarts is not specified precisely enough to reproduce, so both
// non-zero values share this single mechanism, reset only on a focused/stable
// mode switch (spec.md's Open Questions permit behavioral, not exact,
// equivalence for heuristic components).
func (s *Solver) maybeUpdateTargetPhases() {
	if s.Options.Target == 0 || !s.stableMode {
		return
	}
	n := s.store.TrailLen()
	if n <= s.bestTrailLen {
		return
	}
	s.bestTrailLen = n
	for v := 0; v < s.store.NumVars(); v++ {
		if s.store.VarLevel(v) < 0 {
			continue
		}
		val := False
		if s.store.Value(PositiveLiteral(v)) == True {
			val = True
		}
		s.heuristic.SetTargetPhase(v, val)
	}
}

// reduce ranks every non-reason redundant clause by (glue, size), decrements
// each one's used tier-age counter, deletes the scheduler's current
// worst-fraction (protecting tier1 clauses permanently and tier2 clauses
// while their used counter is still positive), and compacts the arena to
// reclaim the freed space (spec.md §4.2, §4.8).
func (s *Solver) reduce() {
	start := time.Now()

	type candidate struct {
		ref  ClauseRef
		view ClauseView
	}
	var candidates []candidate
	s.arena.Walk(func(ref ClauseRef, view ClauseView) {
		if view.Garbage() || !view.Redundant() || view.IsReason() {
			return
		}
		if u := view.Used(); u > 0 {
			view.SetUsed(u - 1) // used is decremented once per reduce round (spec.md §4.8).
		}
		candidates = append(candidates, candidate{ref, view})
	})

	sort.Slice(candidates, func(i, j int) bool {
		gi, gj := candidates[i].view.Glue(), candidates[j].view.Glue()
		if gi != gj {
			return gi < gj
		}
		return candidates[i].view.Size() < candidates[j].view.Size()
	})

	deleteCount := int(float64(len(candidates)) * s.reduces.deletionPercent())
	deleted := 0
	for i := len(candidates) - 1; i >= 0 && deleted < deleteCount; i-- {
		view := candidates[i].view
		if view.Glue() <= s.Options.Tier1 {
			continue // tier1 clauses are permanently protected from rank deletion.
		}
		if view.Glue() <= s.Options.Tier2 && view.Used() > 0 {
			continue // tier2 clauses stay protected until their used lifetime expires.
		}
		if s.OnDeletedClause != nil {
			s.OnDeletedClause(view.Literals())
		}
		s.watches.UnwatchLarge(candidates[i].ref, view.Lit(0), view.Lit(1))
		view.MarkGarbage()
		deleted++
	}

	newArena, relocation := s.arena.Compact()
	s.arena = newArena
	s.watches.Relocate(relocation)
	s.store.RelocateReasons(relocation)
	if s.useBinaryIndex {
		s.binIndex.Rebuild(s.watches)
	}

	s.numLearnts = 0
	s.arena.Walk(func(_ ClauseRef, view ClauseView) {
		if view.Redundant() {
			s.numLearnts++
		}
	})

	s.reduces.OnReduce(time.Since(start).Seconds(), time.Since(s.startTime).Seconds())
	s.stats.Reduces++
}

// saveModel snapshots the current (complete) assignment as a model.
func (s *Solver) saveModel() {
	model := make([]bool, s.store.NumVars())
	for v := range model {
		model[v] = s.store.Value(PositiveLiteral(v)) == True
	}
	s.Models = append(s.Models, model)
}

// assignLit records lit as true with the given reason at the current
// decision level, and locks the reason clause (if any) against reduction.
func (s *Solver) assignLit(lit Literal, reason Reason) {
	s.store.Assign(s.Debug, lit, reason)
	if reason.Kind == ReasonLarge {
		s.arena.View(reason.Ref).SetReason(true)
	}
}

// bumpVarActivity and decayVarActivity are analyze's hooks into the decision
// heuristic's VSIDS bookkeeping (spec.md §4.5 "Bumping"); decay runs once per
// conflict, inside analyze, rather than in the outer search loop.
func (s *Solver) bumpVarActivity(v int) {
	s.heuristic.Bump(v)
}

func (s *Solver) decayVarActivity() {
	s.heuristic.Decay()
}
