package gaba

import (
	"fmt"

	"golang.org/x/sys/cpu"
)

// Engine is the read-only, once-built scoring context shared by every DP
// context created from it (§3 "Lifecycle", §5 "Engine context is read-only
// post-init"). It is safe to share across goroutines as long as callers
// only read it; NewEngine is the only place its fields are written.
type Engine struct {
	params Params
	bw     int

	// scoreVec holds the substitution table indexed by a&b over 4-bit IUPAC
	// symbols: index 0 (no shared bit => mismatch) holds -Mismatch, indices
	// 1..15 (shared bit => match) hold +Match. The spec's literal formula
	// folds a -2(gi+ge) shift into every entry as an optimization for the
	// differential (dh/dv) recurrence the C original uses; we compute
	// absolute cell scores directly instead (see DESIGN.md "Known
	// simplifications"), so that fold is not reproduced here.
	scoreVec [16]int16

	// gapLinear is the flat per-residue cost charged by the Linear model.
	gapLinear int64
	// gapOpen/gapExtend are the Affine model's event costs.
	gapOpen    int64
	gapExtend  int64

	// middleDelta is the fixed, read-only-after-init per-lane reference
	// profile described in §3. We choose the zero profile (coef = 0): the
	// offset/middle/small decomposition invariant
	// (score = offset + middle[k] + small[k]) holds for any profile,
	// including the trivial one, and the coefficient's only purpose in the
	// original is to cancel the near-linear diagonal score growth so the
	// residual fits in an 8-bit small delta. We widened small delta to
	// int64 (see block.go) specifically so that cancellation is not load
	// bearing for correctness, which lets us keep this profile trivial
	// without reproducing the original's delta-recurrence arithmetic.
	middleDelta []int16

	// relaxRow is the dispatched per-row relaxation kernel, selected once
	// at construction time the way the teacher's initSIMDSelection
	// dispatches packLanes/unpackLanes from a CPU feature probe.
	relaxRow relaxFunc

	root *rootTemplate
}

// rootTemplate is copied into the head of every DP context's journal
// (§4.2's "these are copied into a root block at the head of every DP
// context's journal").
type rootTemplate struct {
	h      []int64 // phantom row-0 boundary H values, length bw
	e, f   []int64 // phantom E/F boundary values (affine only)
	dir    uint32  // initial direction accumulator state (always 0)
}

// NewEngine validates params and builds the score vector, gap costs, and
// root block template once. It returns (nil, ErrInvalidScore) if the
// scoring parameters violate §7's constraints.
func NewEngine(p Params) (*Engine, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		params:      p,
		bw:          int(p.BW),
		middleDelta: make([]int16, int(p.BW)),
	}

	for k := 0; k < 16; k++ {
		if k == 0 {
			e.scoreVec[k] = -int16(p.Mismatch)
		} else {
			e.scoreVec[k] = int16(p.Match)
		}
	}

	e.gapLinear = int64(p.GapOpen) + int64(p.GapExtend)
	e.gapOpen = int64(p.GapOpen) + int64(p.GapExtend)
	e.gapExtend = int64(p.GapExtend)

	e.relaxRow = selectRelaxKernel()

	e.root = e.buildRootTemplate()
	return e, nil
}

// Close releases engine-owned resources. The root template is plain Go
// memory reclaimed by the GC; Close exists for API symmetry with DP.Close
// and to give callers one lifecycle idiom across both types, matching the
// teacher's NewReader()/reset-for-reuse pairing rather than introducing a
// finalizer nobody asked for.
func (e *Engine) Close() {}

// ScoreOf returns the substitution score the engine would apply to a
// diagonal step pairing 4-bit symbols a and b: +Match if they share a set
// bit (a match under the IUPAC encoding), -Mismatch otherwise.
func (e *Engine) ScoreOf(a, b byte) int16 {
	return e.scoreVec[a&b&0xF]
}

func (e *Engine) String() string {
	return fmt.Sprintf("gaba.Engine{model=%s, bw=%d}", e.params.Model, e.bw)
}

func (e *Engine) buildRootTemplate() *rootTemplate {
	bw := e.bw
	rt := &rootTemplate{
		h: make([]int64, bw),
		e: make([]int64, bw),
		f: make([]int64, bw),
	}
	// Phantom boundary above row 0 / left of column 0: semi-global gap
	// costs accrue from the origin, so lane k (representing the boundary
	// cell k residues away from the origin along the band) starts at minus
	// the cost of a k-residue gap under the active model: gapLinear*k for
	// Linear, gapOpen + gapExtend*(k-1) for Affine (0 at k = 0).
	for k := 0; k < bw; k++ {
		var cost int64
		switch e.params.Model {
		case Linear:
			cost = e.gapLinear * int64(k)
		case Affine:
			if k == 0 {
				cost = 0
			} else {
				cost = e.gapOpen + e.gapExtend*int64(k-1)
			}
		}
		rt.h[k] = -cost
		// Row 0 has no vertical gaps (F) at any column, and no horizontal
		// gap of length 0 (E) at the origin; every other column's E equals
		// H since row 0's only path to it is a pure horizontal gap chain.
		rt.f[k] = negInf
		if k == 0 {
			rt.e[k] = negInf
		} else {
			rt.e[k] = rt.h[k]
		}
	}
	return rt
}

// selectRelaxKernel picks the wide or scalar relax kernel based on a CPU
// feature probe, mirroring simdpack.go's initSIMDSelection. Both kernels are
// portable Go and produce bit-identical results (they implement the same
// recurrence), but relaxRowWide genuinely batches its previous-row reads
// into 4-lane groups rather than simply looping with a different stride —
// see block.go. See DESIGN.md for why this module does not also carry
// avo-generated assembly.
func selectRelaxKernel() relaxFunc {
	if cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD {
		return relaxRowWide
	}
	return relaxRowScalar
}

