// Package dimacs is a small, dependency-free DIMACS CNF reader, grounded on
// the teacher's internal/dimacs loader. It is kept separate from the
// production-facing parsers package (which wraps the external
// github.com/rhartert/dimacs builder) so that it pulls in no third-party
// parser. No other package of this module imports it; internal/sat's tests
// build their instances inline.
package dimacs

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// dimacsWritter is the subset of sat.Solver's incremental-add surface
// (spec.md §6) this reader needs: AddLiteral(0) closes a clause, exactly
// like the IPASIR add() convention.
type dimacsWritter interface {
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

// LoadDIMACS parses the DIMACS CNF file at filename and feeds it into dw one
// literal at a time.
func LoadDIMACS(filename string, gzipped bool, dw dimacsWritter) error {
	reader, err := reader(filename, gzipped)
	if err != nil {
		return fmt.Errorf("error reading file %q: %s", filename, err)
	}
	defer reader.Close()

	scanner := bufio.NewScanner(reader)

	// Parse header and variables
	// --------------------------

	nVars := 0
	nClauses := 0

	for {
		if !scanner.Scan() {
			return fmt.Errorf("header line not found")
		}
		line := scanner.Text()
		if line == "" || line[0] == 'c' {
			continue
		}
		parts := strings.Fields(line)
		if parts[1] != "cnf" {
			return fmt.Errorf("instance of type %q are not supported", parts[1])
		}
		nVars, err = strconv.Atoi(parts[2])
		if err != nil {
			return fmt.Errorf("could not parse header: %w", err)
		}
		nClauses, err = strconv.Atoi(parts[3])
		if err != nil {
			return fmt.Errorf("could not parse header: %w", err)
		}

		break
	}

	for range nVars {
		dw.AddVariable()
	}

	// Parse clauses
	// -------------

	for nClauses > 0 && scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == 'c' {
			continue
		}

		for _, p := range strings.Fields(line) {
			l, err := strconv.Atoi(p)
			if err != nil {
				return err
			}
			if err := dw.AddLiteral(int32(l)); err != nil {
				return err
			}
		}
		nClauses--
	}

	return nil
}
