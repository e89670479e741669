package sat

import "fmt"

// Literal represents a boolean literal: either a variable or its negation.
// Polarity is packed into the low bit so that negation is a single XOR, and
// the type is sized to fit directly into arena words (see arena.go).
type Literal int32

// PositiveLiteral returns the positive literal of variable v.
func PositiveLiteral(v int) Literal {
	return Literal(v * 2)
}

// NegativeLiteral returns the negative literal of variable v.
func NegativeLiteral(v int) Literal {
	return Literal(v*2 + 1)
}

// VarID returns the ID of the literal's variable.
func (l Literal) VarID() int {
	return int(l) / 2
}

// IsPositive returns true if and only if the literal represents the value of
// its boolean variable (i.e. not its negation).
func (l Literal) IsPositive() bool {
	return l&1 == 0
}

// Opposite returns the negation of l.
func (l Literal) Opposite() Literal {
	return l ^ 1
}

func (l Literal) String() string {
	if l.IsPositive() {
		return fmt.Sprintf("%d", l.VarID())
	}
	return fmt.Sprintf("!%d", l.VarID())
}

// LiteralFromDIMACS converts a signed, 1-based DIMACS literal (as accepted by
// Solver.AddLiteral) into the internal encoding. x must not be 0.
func LiteralFromDIMACS(x int32) Literal {
	if x < 0 {
		return NegativeLiteral(int(-x - 1))
	}
	return PositiveLiteral(int(x - 1))
}

// ToDIMACS converts a Literal back to the signed, 1-based DIMACS convention.
func (l Literal) ToDIMACS() int32 {
	if l.IsPositive() {
		return int32(l.VarID() + 1)
	}
	return -int32(l.VarID() + 1)
}
