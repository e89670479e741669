package sat

import (
	"time"

	"github.com/pkg/errors"
)

// Options configures a Solver. Every field corresponds to one row of
// spec.md §6's configuration table; defaults are chosen to match the
// behavior described there. Grounded on the teacher's Options/DefaultOptions
// (internal/sat/solver.go), widened to cover the full option surface.
type Options struct {
	// Clause learning.
	Minimize bool
	Shrink   bool

	// VSIDS.
	Decay int // 30-70, %/100
	Seed  int64

	// Reduce.
	Reduce         bool
	ReduceInterval int
	ReduceHigh     int // tenths of a percent
	ReduceLow      int
	ReduceAdaptive bool
	ReduceFactor   int // 50-200, %
	Tier1          int
	Tier2          int

	// Restart.
	Restart           bool
	RestartInterval   int
	RestartMargin     int // %
	RestartReuseTrail bool
	RestartAdaptive   bool

	// Mode switch.
	Stable         bool
	ModeInterval   int
	Target         int // 0, 1, or 2

	// Phase.
	PhaseSaving bool
	ForcePhase  bool
	Phase       bool

	// Random decisions.
	RandecEvery int
	RandecLen   int

	// Binary implication index (spec.md §3 optional acceleration layer).
	UseBinaryIndex bool

	// Limits (spec.md §6 set_limit kinds); a negative value means unbounded,
	// and zero stops the search at its first check.
	MaxConflicts int64
	MaxDecisions int64
	Timeout      time.Duration

	// Debug gates invariant assertions (spec.md §7); off by default since
	// they have no place in the hot propagation loop of a release build.
	Debug bool
}

// DefaultOptions returns the solver's default configuration.
func DefaultOptions() Options {
	return Options{
		Minimize: true,
		Shrink:   true,

		Decay: 50,
		Seed:  1,

		Reduce:         true,
		ReduceInterval: 2000,
		ReduceHigh:     750,
		ReduceLow:      250,
		ReduceAdaptive: true,
		ReduceFactor:   100,
		Tier1:          2,
		Tier2:          6,

		Restart:           true,
		RestartInterval:   100,
		RestartMargin:     20,
		RestartReuseTrail: true,
		RestartAdaptive:   true,

		Stable:       true,
		ModeInterval: 1000,
		Target:       1,

		PhaseSaving: true,
		ForcePhase:  false,
		Phase:       false,

		RandecEvery: 0,
		RandecLen:   0,

		UseBinaryIndex: true,

		MaxConflicts: -1,
		MaxDecisions: -1,
		Timeout:      -1,

		Debug: false,
	}
}

// Validate checks the numeric ranges spec.md §6 documents, wrapping the
// first violation found.
func (o Options) Validate() error {
	if o.Decay < 30 || o.Decay > 70 {
		return errors.Errorf("decay must be in [30,70], got %d", o.Decay)
	}
	if o.Reduce && o.ReduceInterval < 100 {
		return errors.Errorf("reduceint must be >= 100, got %d", o.ReduceInterval)
	}
	if o.ReduceFactor < 50 || o.ReduceFactor > 200 {
		return errors.Errorf("reducefactor must be in [50,200], got %d", o.ReduceFactor)
	}
	if o.ReduceHigh < o.ReduceLow {
		return errors.Errorf("reducehigh (%d) must be >= reducelow (%d)", o.ReduceHigh, o.ReduceLow)
	}
	if o.Target < 0 || o.Target > 2 {
		return errors.Errorf("target must be 0, 1, or 2, got %d", o.Target)
	}
	if o.RandecEvery < 0 || o.RandecLen < 0 {
		return errors.Errorf("randec settings must be non-negative")
	}
	return nil
}
