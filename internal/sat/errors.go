package sat

import "fmt"

// debugAssert checks an internal invariant (spec.md §7/§8). Violations are
// fail-stop: in a correct solver they are unreachable, so panicking with a
// precise message is preferable to propagating corrupted state. The check
// itself only runs when Solver.Debug is set, which keeps it out of the hot
// propagation loop in the default (release) configuration.
func debugAssert(enabled bool, cond bool, format string, args ...any) {
	if !enabled || cond {
		return
	}
	panic(fmt.Sprintf("sat: invariant violation: "+format, args...))
}
