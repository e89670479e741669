// Package parsers is the production-facing DIMACS front end: a gzip-aware
// CNF loader built on the external github.com/rhartert/dimacs builder, and a
// model-file reader for regression-testing against known results. Grounded
// on the teacher's parsers package, retargeted from the solver's old
// AddClause([]sat.Literal) surface to the IPASIR-style AddLiteral(int32)
// surface spec.md §6 specifies.
package parsers

import (
	"compress/gzip"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rhartert/dimacs"
)

// SATSolver is the subset of sat.Solver's incremental-add surface this
// package needs.
type SATSolver interface {
	AddVariable() int
	AddLiteral(lit int32) error
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses the DIMACS CNF file and loads its CNF formula into the
// given SAT solver.
func LoadDIMACS(filename string, gzipped bool, solver SATSolver) error {
	r, err := reader(filename, gzipped)
	if err != nil {
		return errors.Wrapf(err, "error reading file %q", filename)
	}
	defer r.Close()

	b := &builder{solver}
	return dimacs.ReadBuilder(r, b)
}

// builder wraps the solver to implement dimacs.Builder.
type builder struct {
	solver SATSolver
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return errors.Errorf("not a CNF problem: %q", problem)
	}
	for i := 0; i < nVars; i++ {
		b.solver.AddVariable()
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	for _, l := range tmpClause {
		if err := b.solver.AddLiteral(int32(l)); err != nil {
			return err
		}
	}
	return b.solver.AddLiteral(0)
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}

// ReadModels returns the list of models (if any) contained in the given
// file, as written by the teacher's model-dump format (one model per line,
// DIMACS-convention literals terminated by 0).
func ReadModels(filename string) ([][]bool, error) {
	r, err := reader(filename, false)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading file %q", filename)
	}
	defer r.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return nil, err
	}
	return b.models, nil
}

// modelBuilder implements dimacs.Builder to collect model lines.
type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return errors.New("model files should not have problem lines")
}

func (b *modelBuilder) Comment(_ string) error {
	return nil // ignore comments
}

func (b *modelBuilder) Clause(tmpClause []int) error {
	model := make([]bool, len(tmpClause))
	for i, l := range tmpClause {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}
