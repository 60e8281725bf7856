package gaba

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

// randNibbleSeq fills n symbols drawn from {A,C,G,T} using r, the randomised
// cross-check's sequence generator (§8).
func randNibbleSeq(r *rand.Rand, n int) []byte {
	alphabet := []byte{nA, nC, nG, nT}
	out := make([]byte, n)
	for i := range out {
		out[i] = alphabet[r.Intn(len(alphabet))]
	}
	return out
}

// gapDominantParams makes any gap, of any length, strictly unprofitable for
// sequences up to maxFuzzLen long: opening one costs GapOpen+GapExtend=60,
// more than the 5*maxFuzzLen=40 a mismatch-to-match swing could possibly be
// worth summed over every remaining column, and each further residue of an
// open gap costs GapExtend=10, more than the single-column swing (5) it
// could possibly buy. No combination of gaps can ever out-score the pure
// diagonal walk under these costs, which is what lets
// naiveMaxPrefixScore below stand in for a full Needleman-Wunsch matrix.
func gapDominantParams() Params {
	return Params{
		Match: 2, Mismatch: 3,
		GapOpen: 50, GapExtend: 10,
		Xdrop: 1000,
		BW:    BW16,
		Model: Affine,
	}
}

const maxFuzzLen = 8

// naiveMaxPrefixScore is the randomised cross-check's reference (§8): under
// gapDominantParams, inserting a gap anywhere in an equal-length pair can
// never recover its own cost, so the optimal semi-global alignment never
// uses one — every reachable cell's score reduces to a plain column-by-
// column substitution sum. SearchMax reports the single highest-scoring
// cell anywhere in the matrix, which for a pure diagonal walk is exactly
// the best prefix sum (including the empty, score-0 prefix at the origin).
// This computes that independently of the engine, without needing a full
// O(nm) Needleman-Wunsch matrix to establish it.
func naiveMaxPrefixScore(eng *Engine, aSeq, bSeq []byte) int64 {
	var running, best int64
	for i := range aSeq {
		running += int64(eng.ScoreOf(aSeq[i], bSeq[i]))
		if running > best {
			best = running
		}
	}
	return best
}

// TestFuzzSubstitutionOnlyScoreMatchesNaiveReference is the randomised
// cross-check (§8): for many random equal-length sequence pairs, the
// engine's fill score must agree with the naive max-prefix-sum reference,
// under scoring parameters where gaps are provably never advantageous.
func TestFuzzSubstitutionOnlyScoreMatchesNaiveReference(t *testing.T) {
	assert := assert.New(t)

	eng, err := NewEngine(gapDominantParams())
	assert.NoError(err)

	r := rand.New(rand.NewSource(1))
	const iterations = 1000

	for iter := 0; iter < iterations; iter++ {
		n := 4 + r.Intn(maxFuzzLen-3) // length in [4, maxFuzzLen], well inside BW16's band
		aSeq := randNibbleSeq(r, n)
		bSeq := randNibbleSeq(r, n)

		dp := newTestDP(t, eng)
		aSec := Section{ID: 0, Len: uint32(n), Base: Pointer{Base: aSeq}}
		bSec := Section{ID: 2, Len: uint32(n), Base: Pointer{Base: bSeq}}

		tail, err := dp.FillRoot(aSec, 0, bSec, 0)
		assert.NoError(err)

		want := naiveMaxPrefixScore(eng, aSeq, bSeq)
		assert.Equal(want, tail.max, "iteration %d: aSeq=%v bSeq=%v", iter, aSeq, bSeq)

		dp.Close()
	}
}

// TestFuzzIdenticalRandomSequencesScoreFullLength strengthens the
// substitution-only reference to a fixed point: when every column matches,
// the running score strictly increases every step (Match > 0), so the best
// prefix is unambiguously the full-length one, for any random sequence.
func TestFuzzIdenticalRandomSequencesScoreFullLength(t *testing.T) {
	assert := assert.New(t)

	eng, err := NewEngine(validAffineParams())
	assert.NoError(err)

	r := rand.New(rand.NewSource(7))
	const iterations = 500

	for iter := 0; iter < iterations; iter++ {
		n := 1 + r.Intn(10)
		seq := randNibbleSeq(r, n)

		dp := newTestDP(t, eng)
		aSec := Section{ID: 0, Len: uint32(n), Base: Pointer{Base: seq}}
		bSec := Section{ID: 2, Len: uint32(n), Base: Pointer{Base: seq}}

		tail, err := dp.FillRoot(aSec, 0, bSec, 0)
		assert.NoError(err)
		assert.Equal(int64(n)*int64(eng.params.Match), tail.max, "iteration %d: seq=%v", iter, seq)

		dp.Close()
	}
}

// TestFuzzReverseStrandSelfAlignmentIsFullLength exercises the
// reverse-complement Pointer path (§9): complementing a symbol is a bijection
// on the four single-bit IUPAC codes, so a sequence read via Strand=Reverse
// still matches itself at every column exactly as its forward reading does —
// the reverse-symmetry invariant that Trace's dual-tail join (§4.5) depends
// on elsewhere, exercised here on Fill in isolation.
func TestFuzzReverseStrandSelfAlignmentIsFullLength(t *testing.T) {
	assert := assert.New(t)

	eng, err := NewEngine(validAffineParams())
	assert.NoError(err)

	r := rand.New(rand.NewSource(11))
	const iterations = 500

	for iter := 0; iter < iterations; iter++ {
		n := 1 + r.Intn(10)
		seq := randNibbleSeq(r, n)

		dp := newTestDP(t, eng)
		aSec := Section{ID: 0, Len: uint32(n), Base: Pointer{Base: seq, Strand: Reverse}}
		bSec := Section{ID: 2, Len: uint32(n), Base: Pointer{Base: seq, Strand: Reverse}}

		tail, err := dp.FillRoot(aSec, 0, bSec, 0)
		assert.NoError(err)
		assert.Equal(int64(n)*int64(eng.params.Match), tail.max, "iteration %d: seq=%v", iter, seq)

		dp.Close()
	}
}

// TestFuzzFillTraceScoreIsDeterministic re-fills and re-traces the same
// random inputs twice and checks for bit-identical results, guarding against
// any accidental dependence on map iteration order or other non-determinism
// creeping into the fill/trace path.
func TestFuzzFillTraceScoreIsDeterministic(t *testing.T) {
	assert := assert.New(t)

	eng, err := NewEngine(validAffineParams())
	assert.NoError(err)

	r := rand.New(rand.NewSource(3))
	const iterations = 200

	for iter := 0; iter < iterations; iter++ {
		n := 5 + r.Intn(6)
		aSeq := randNibbleSeq(r, n)
		bSeq := randNibbleSeq(r, n)
		aSec := Section{ID: 0, Len: uint32(n), Base: Pointer{Base: aSeq}}
		bSec := Section{ID: 2, Len: uint32(n), Base: Pointer{Base: bSeq}}

		var scores []int64
		var cigars []string
		for run := 0; run < 2; run++ {
			dp := newTestDP(t, eng)
			tail, err := dp.FillRoot(aSec, 0, bSec, 0)
			assert.NoError(err)
			al, err := dp.Trace(tail, nil, nil)
			assert.NoError(err)
			scores = append(scores, al.Score)
			buf := make([]byte, 64)
			nb := DumpCigarForward(buf, al.Path, 0, uint64(len(al.Path.Dirs)))
			cigars = append(cigars, string(buf[:nb]))
			dp.Close()
		}
		assert.Equal(scores[0], scores[1], "iteration %d", iter)
		assert.Equal(cigars[0], cigars[1], "iteration %d", iter)
	}
}
