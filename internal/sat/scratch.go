package sat

import (
	"math/bits"
	"sync"
)

// Pooled []Literal buffers used as scratch space during conflict analysis
// (the explicit minimization stack of isRedundant in analyze.go). Analysis
// runs on every conflict, so avoiding an allocation per call matters; the
// bucketing scheme mirrors the clause-literal slice pool the teacher used
// before clauses moved into the arena.

// Number of slice pools.
const nScratchPools = 4

// Capacities at or above this value are always served by the last pool.
const lastScratchCapa = 1 << nScratchPools

// Pools of slices with different capacities. A capacity c below
// lastScratchCapa maps to pool floor(log2(c)) and any larger capacity to the
// last pool (see scratchPoolID); a fresh slice created by pool i has a
// capacity of 2^(i+1).
var scratchPools = [nScratchPools]sync.Pool{}

func init() {
	for i := 0; i < nScratchPools; i++ {
		capa := 1 << (i + 1)
		scratchPools[i].New = func() any {
			s := make([]Literal, 0, capa)
			return &s
		}
	}
}

// scratchPoolID returns the ID of the pool responsible for a slice of the
// given capacity.
func scratchPoolID(capa int) int {
	if capa >= lastScratchCapa {
		return nScratchPools - 1
	}
	id := bits.Len(uint(capa)) - 1
	if capa < (1 << id) {
		id--
	}
	return id
}

// allocScratch returns an empty slice that has at least the requested
// capacity.
func allocScratch(capa int) *[]Literal {
	ref := scratchPools[scratchPoolID(capa)].Get().(*[]Literal)
	if capa < lastScratchCapa {
		return ref
	}

	// If the slice comes from the last pool, ensure it actually has enough
	// capacity; if not, drop it and allocate a fresh one of the right size.
	if cap(*ref) < capa {
		s := make([]Literal, 0, capa)
		ref = &s
	}

	return ref
}

// freeScratch returns the slice to its pool so it can be reused by a later
// call to allocScratch.
func freeScratch(s *[]Literal) {
	*s = (*s)[:0]
	scratchPools[scratchPoolID(cap(*s))].Put(s)
}
