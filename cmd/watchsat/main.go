// Command watchsat is the CLI front end for the watchsat CDCL solver. It
// reads a DIMACS CNF instance, runs the search, and reports the result using
// the SAT-competition exit-code convention (10 SAT, 20 UNSAT, 0 otherwise).
// Grounded on the teacher's root main.go (flag parsing, pprof hooks, a
// single run() entry point), generalized from the stdlib flag package to
// cobra/pflag/viper so every sat.Options field is independently tunable.
package main

import (
	"fmt"
	"os"
)

func main() {
	code, err := Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "c error:", err)
	}
	os.Exit(code)
}
