package gaba

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceOneTailNilOrPhantomIsEmpty(t *testing.T) {
	assert := assert.New(t)

	eng, err := NewEngine(validAffineParams())
	assert.NoError(err)
	dp := newTestDP(t, eng)
	defer dp.Close()

	dirs, aids, bids, score, err := dp.traceOneTail(nil)
	assert.NoError(err)
	assert.Nil(dirs)
	assert.Nil(aids)
	assert.Nil(bids)
	assert.Equal(int64(0), score)

	dirs, aids, bids, score, err = dp.traceOneTail(dp.Root())
	assert.NoError(err)
	assert.Nil(dirs)
	assert.Nil(aids)
	assert.Nil(bids)
	assert.Equal(int64(0), score)
}

func TestTraceOneTailSingleDeletion(t *testing.T) {
	assert := assert.New(t)

	eng, err := NewEngine(validAffineParams())
	assert.NoError(err)
	dp := newTestDP(t, eng)
	defer dp.Close()

	// B is missing the middle residue relative to A: a single deletion
	// (gap in B, a pathLeft-free / pathTop run under this engine's step
	// naming) should appear exactly once in the reconstructed path.
	aSeq := encodeSeq("ACGTACGT")
	bSeq := encodeSeq("ACGACGT")

	aSec := Section{ID: 0, Len: uint32(len(aSeq)), Base: Pointer{Base: aSeq}}
	bSec := Section{ID: 2, Len: uint32(len(bSeq)), Base: Pointer{Base: bSeq}}

	tail, err := dp.FillRoot(aSec, 0, bSec, 0)
	assert.NoError(err)

	dirs, aids, bids, _, err := dp.traceOneTail(tail)
	assert.NoError(err)
	assert.NotEmpty(dirs)
	assert.Len(aids, len(dirs))
	assert.Len(bids, len(dirs))

	var gapSteps int
	for _, d := range dirs {
		if d != pathDiag {
			gapSteps++
		}
	}
	assert.Equal(1, gapSteps, "exactly one gap step should account for the missing residue")
}

func TestReversePathSlicesReversesInLockstep(t *testing.T) {
	assert := assert.New(t)

	dirs := []pathDir{pathDiag, pathLeft, pathTop}
	aids := []uint32{1, 2, 3}
	bids := []uint32{10, 20, 30}

	reversePathSlices(dirs, aids, bids)

	assert.Equal([]pathDir{pathTop, pathLeft, pathDiag}, dirs)
	assert.Equal([]uint32{3, 2, 1}, aids)
	assert.Equal([]uint32{30, 20, 10}, bids)
}

func TestGroupSectionsSplitsOnSectionChange(t *testing.T) {
	assert := assert.New(t)

	dirs := []pathDir{pathDiag, pathDiag, pathDiag}
	aids := []uint32{0, 0, 4}
	bids := []uint32{2, 2, 2}

	sections := groupSections(dirs, aids, bids)
	assert.Len(sections, 2)
	assert.Equal(uint32(0), sections[0].PPos)
	assert.Equal(uint32(2), sections[1].PPos)
	assert.Equal(uint32(2), sections[0].ALen)
	assert.Equal(uint32(1), sections[1].ALen)
}

func TestGroupSectionsTracksPerSectionOffsets(t *testing.T) {
	assert := assert.New(t)

	// Two separate runs of the same (aid, bid) pair — as a seed splice can
	// produce — should report contiguous, non-overlapping APos/BPos.
	dirs := []pathDir{pathDiag, pathDiag, pathLeft, pathDiag, pathDiag}
	aids := []uint32{0, 0, 1, 0, 0}
	bids := []uint32{2, 2, 3, 2, 2}

	sections := groupSections(dirs, aids, bids)
	assert.Len(sections, 3)
	assert.Equal(uint32(0), sections[0].APos)
	assert.Equal(uint32(2), sections[0].ALen)
	assert.Equal(uint32(2), sections[2].APos)
	assert.Equal(uint32(2), sections[2].ALen)
}

func TestRowJ0sMatchesBlockJ0AtLastRow(t *testing.T) {
	assert := assert.New(t)

	eng, err := NewEngine(validAffineParams())
	assert.NoError(err)
	dp := newTestDP(t, eng)
	defer dp.Close()

	seq := encodeSeq("ACGTACGT")
	aSec := Section{ID: 0, Len: uint32(len(seq)), Base: Pointer{Base: seq}}
	bSec := Section{ID: 2, Len: uint32(len(seq)), Base: Pointer{Base: seq}}

	tail, err := dp.FillRoot(aSec, 0, bSec, 0)
	assert.NoError(err)

	js := rowJ0s(tail.block)
	assert.Equal(tail.block.j0, js[tail.block.rows-1])
}
