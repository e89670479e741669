package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rhartert/watchsat/internal/sat"
	"github.com/rhartert/watchsat/parsers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// SAT-competition exit-code convention (spec.md §6's external contract).
// exitError is not part of that convention; it only distinguishes a genuine
// failure (bad instance, bad flags) from a solver that legitimately
// terminated without a verdict.
const (
	exitSAT     = 10
	exitUNSAT   = 20
	exitUnknown = 0
	exitError   = 1
)

// Execute parses the command line, runs the solver, and returns the process
// exit code alongside any error that should be reported on stderr.
func Execute() (int, error) {
	var exitCode int
	var runErr error

	cmd := &cobra.Command{
		Use:           "watchsat [flags] instance.cnf",
		Short:         "watchsat is a CDCL SAT solver",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Flags(), args)
			if err != nil {
				return err
			}
			exitCode, runErr = run(cfg)
			return nil
		},
	}
	bindFlags(cmd.Flags())

	if err := cmd.Execute(); err != nil {
		return exitError, err
	}
	return exitCode, runErr
}

func run(cfg *config) (int, error) {
	if cfg.cpuProfile != "" {
		f, err := os.Create(cfg.cpuProfile)
		if err != nil {
			return exitError, errors.Wrap(err, "could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return exitError, errors.Wrap(err, "could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	s, err := sat.NewSolver(cfg.options)
	if err != nil {
		return exitError, err
	}
	if cfg.verbose {
		s.Logger.SetLevel(logrus.DebugLevel)
	}

	if err := parsers.LoadDIMACS(cfg.instanceFile, cfg.gzipped, s); err != nil {
		return exitError, errors.Wrap(err, "could not parse instance")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCh:
			s.Terminate()
		case <-done:
		}
	}()

	fmt.Printf("c variables: %d\n", s.NumVariables())

	start := time.Now()
	var status sat.Status
	if cfg.solveAll {
		status = solveAll(s)
	} else {
		status = s.Solve()
	}
	elapsed := time.Since(start)

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c status: %s\n", status)
	if cfg.solveAll {
		fmt.Printf("c models: %d\n", len(s.Models))
	}

	if cfg.memProfile != "" {
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			return exitError, errors.Wrap(err, "could not create memory profile")
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return exitError, errors.Wrap(err, "could not write memory profile")
		}
	}

	switch status {
	case sat.StatusSatisfiable:
		return exitSAT, nil
	case sat.StatusUnsatisfiable:
		return exitUNSAT, nil
	default:
		return exitUnknown, nil
	}
}

// solveAll repeatedly solves s, blocking out each model found with a
// negated clause, until the instance becomes unsatisfiable (spec.md's
// DOMAIN-supplemented model-enumeration feature; grounded on the teacher's
// yass_test.go TestSolveAll pattern, promoted from a test helper into a CLI
// mode). It returns the status of the final (blocking) solve.
func solveAll(s *sat.Solver) sat.Status {
	var status sat.Status
	for {
		status = s.Solve()
		if status != sat.StatusSatisfiable {
			return status
		}

		model := s.Models[len(s.Models)-1]
		blocking := make([]sat.Literal, len(model))
		for i, b := range model {
			if b {
				blocking[i] = sat.NegativeLiteral(i)
			} else {
				blocking[i] = sat.PositiveLiteral(i)
			}
		}
		if err := s.AddClause(blocking); err != nil {
			return status
		}
	}
}
