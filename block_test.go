package gaba

import (
	"reflect"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func funcName(fn relaxFunc) string {
	return runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
}

// constBAt returns a bAt closure that always reads b from a fixed symbol,
// for relax-kernel unit tests that only care about per-lane mechanics.
func constBAt(sym byte) func(int) byte {
	return func(int) byte { return sym }
}

func TestRelaxRowScalarAndWideAgree(t *testing.T) {
	assert := assert.New(t)

	for _, p := range []Params{validAffineParams(), validLinearParams()} {
		eng, err := NewEngine(p)
		assert.NoError(err)

		frScalar := newFrontierFromRoot(eng)
		frWide := newFrontierFromRoot(eng)

		bAt := constBAt(nA)
		for row := 0; row < 5; row++ {
			maskScalar := relaxRowScalar(eng, frScalar, nA, bAt)
			maskWide := relaxRowWide(eng, frWide, nA, bAt)
			assert.Equal(maskScalar, maskWide, "row %d masks should agree", row)
			assert.Equal(frScalar.h, frWide.h, "row %d H rows should agree", row)
			assert.Equal(frScalar.e, frWide.e, "row %d E rows should agree", row)
			assert.Equal(frScalar.f, frWide.f, "row %d F rows should agree", row)
			assert.Equal(frScalar.acc, frWide.acc)
		}
	}
}

func TestRelaxRowWideAndScalarAreDistinctFunctions(t *testing.T) {
	assert := assert.New(t)
	// Regression guard for the decorative-dispatch defect: the two kernels
	// must be distinct function values, not the same implementation bound
	// under two names.
	assert.NotEqual(funcName(relaxRowScalar), funcName(relaxRowWide))
}

func TestCaptureCharVecEncodesBothSymbols(t *testing.T) {
	assert := assert.New(t)

	eng, err := NewEngine(validAffineParams())
	assert.NoError(err)
	fr := newFrontierFromRoot(eng)

	bAt := func(col int) byte { return nC }
	relaxRowScalar(eng, fr, nA, bAt)

	for k := 0; k < fr.bw; k++ {
		assert.Equal(byte(nA), fr.charVec[k]&0xF)
		assert.Equal(byte(nC), fr.charVec[k]>>4)
	}
}

func TestGapCostsPerModel(t *testing.T) {
	assert := assert.New(t)

	affine, err := NewEngine(validAffineParams())
	assert.NoError(err)
	gi, ge := affine.gapCosts()
	assert.NotEqual(gi, int64(0))
	assert.Equal(affine.gapExtend, ge)

	linear, err := NewEngine(validLinearParams())
	assert.NoError(err)
	gi, ge = linear.gapCosts()
	assert.Equal(gi, ge, "linear model charges the same cost for open and extend")
}

func TestPackUnpackDHDERoundTrip(t *testing.T) {
	assert := assert.New(t)

	for dh := uint8(0); dh < 32; dh++ {
		for de := uint8(0); de < 8; de++ {
			b := packDHDE(dh, de)
			gotDH, gotDE := unpackDHDE(b)
			assert.Equal(dh, gotDH)
			assert.Equal(de, gotDE)
		}
	}
}

func TestBiasDeltaClamps(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint8(0), biasDelta(-1000))
	assert.Equal(uint8(31), biasDelta(1000))
	assert.Equal(uint8(16), biasDelta(0))
}

func TestAtReadsOutOfWindowAsNegInf(t *testing.T) {
	assert := assert.New(t)
	vals := []int64{1, 2, 3}
	assert.Equal(int64(1), at(vals, 10, 3, 10))
	assert.Equal(negInf, at(vals, 10, 3, 9))
	assert.Equal(negInf, at(vals, 10, 3, 13))
}
