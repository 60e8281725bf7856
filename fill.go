package gaba

// smallOf projects an absolute score against a block's offset, preserving
// the negInf sentinel rather than letting the subtraction produce a large
// but finite, incorrectly-reachable value.
func smallOf(v, offset int64) int64 {
	if v < negInf/2 {
		return negInf
	}
	return v - offset
}

// ungappedFilterPasses scans fr's BW-wide char vector for a run of at least
// tf lanes whose A symbol (low nibble, shared across the row) matches that
// lane's B symbol (high nibble): a candidate ungapped anchor at the current
// row. It is the veto gate for the phantom-block/init-fetch path (§4.3):
// when the section is too short to fill a whole block yet, the fill is
// immediately terminated unless this scan finds a run of matches.
func ungappedFilterPasses(fr *frontier, tf int) bool {
	run := 0
	for k := 0; k < fr.bw; k++ {
		a := fr.charVec[k] & 0xF
		b := fr.charVec[k] >> 4
		if a != 0 && a == b {
			run++
			if run >= tf {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// FillRoot is the entry point for the first section pair of a new
// alignment: it extends from dp's phantom root tail (§4.3). aPos/bPos let a
// caller resume a root fill partway into secA/secB, e.g. when stitching
// several seeds from the same underlying sequence without re-slicing the
// Section on every call.
func (dp *DP) FillRoot(secA Section, aPos uint32, secB Section, bPos uint32) (*FillHandle, error) {
	return dp.fillAt(dp.Root(), secA, aPos, secB, bPos)
}

// Fill extends the alignment recorded by tail across aSec/bSec, appending
// as many Blocks as needed to dp's journal, and returns the new tail (§4.3,
// §6). Fill never mutates tail or any earlier tail; every FillHandle it
// returns remains valid (and reproducible by Trace) until the arena
// checkpoint covering it is restored or flushed.
//
// One "row" of the band consumes exactly one A residue and relaxes every
// tracked B column in the current window (see block.go's frontier for why
// this implementation tracks the band row-wise rather than by literal
// antidiagonal). Fill stops when aSec or bSec is exhausted, or when the
// X-drop condition trips.
func (dp *DP) Fill(tail *FillHandle, aSec, bSec Section) (*FillHandle, error) {
	return dp.fillAt(tail, aSec, 0, bSec, 0)
}

// fillAt is the shared body behind Fill/FillRoot. aPos/bPos are how many
// residues of aSec/bSec are considered already consumed before this call —
// always 0 from Fill, caller-supplied from FillRoot.
func (dp *DP) fillAt(tail *FillHandle, aSec Section, aPos uint32, bSec Section, bPos uint32) (*FillHandle, error) {
	if tail == nil {
		return nil, ErrNoTail
	}
	if aPos > aSec.Len || bPos > bSec.Len {
		return nil, ErrSectionOutOfLimit
	}
	if !withinLimit(aSec, aPos, dp.aLim) || !withinLimit(bSec, bPos, dp.bLim) {
		return nil, ErrSectionOutOfLimit
	}

	eng := dp.eng
	fr := tail.fr.clone()

	aRemain := aSec.Len - aPos
	bRemain := bSec.Len - bPos

	colBase := fr.j0 // column origin: column colBase+1+k maps to bSec residue bPos+k
	rowBase := fr.i0 // row origin: row rowBase+1+r maps to aSec residue aPos+r

	bAt := func(col int) byte {
		idx := col - colBase - 1
		if idx < 0 || idx >= int(bRemain) {
			return 0
		}
		return bSec.Base.at(int(bPos) + idx)
	}

	status := StatusCont
	var p int32
	prevBlock := tail.block
	maxAtStart := tail.max

	// phantom marks the init-fetch regime of §4.3: the very first fill on
	// a fresh chain, with too little of either section left to guarantee a
	// full block. The ungapped filter gets exactly one chance to veto it,
	// right after the first row gives the char vector real data.
	phantom := tail.block == nil && (aRemain < uint32(fr.bw) || bRemain < uint32(fr.bw))

	var rowsInBlock int
	var blockMasks [BLK]rowMask
	var blockDir uint32
	var blockSmallMax []int64

	flushBlock := func() *Block {
		if rowsInBlock == 0 {
			return prevBlock
		}
		offset := fr.globalMax
		smallH := make([]int64, fr.bw)
		smallE := make([]int64, fr.bw)
		smallF := make([]int64, fr.bw)
		for k := 0; k < fr.bw; k++ {
			smallH[k] = smallOf(fr.h[k], offset)
			smallE[k] = smallOf(fr.e[k], offset)
			smallF[k] = smallOf(fr.f[k], offset)
		}
		for k := range blockSmallMax {
			blockSmallMax[k] = smallOf(blockSmallMax[k], offset)
		}

		packed, err := dp.ar.alloc(fr.bw)
		if err == nil {
			for k := 0; k < fr.bw; k++ {
				var prevSmall int64
				if prevBlock != nil && k < len(prevBlock.smallH) {
					prevSmall = prevBlock.smallH[k]
				}
				dh := biasDelta(smallH[k] - prevSmall)
				de := biasDelta(smallE[k] - smallH[k])
				packed[k] = packDHDE(dh, de)
			}
		}

		b := &Block{
			prev:        prevBlock,
			offset:      offset,
			middleDelta: eng.middleDelta,
			smallH:      smallH,
			smallE:      smallE,
			smallF:      smallF,
			smallMax:    blockSmallMax,
			dir:         blockDir,
			rows:        rowsInBlock,
			acc:         fr.acc,
			masks:       blockMasks,
			aridx:       remaining(aRemain, fr.i0-rowBase),
			bridx:       remaining(bRemain, fr.j0-colBase),
			j0:          fr.j0,
			i0:          fr.i0,
			charVec:     fr.charVec,
			packedDH:    packed,
			aSec:        aSec,
			bSec:        bSec,
			colBase:     colBase,
			rowBase:     rowBase,
		}
		prevBlock = b
		rowsInBlock = 0
		blockDir = 0
		blockSmallMax = nil
		return b
	}

	aridxNow := func() int { return int(remaining(aRemain, fr.i0-rowBase)) }
	bridxNow := func() int { return int(remaining(bRemain, fr.j0-colBase)) }

	// relaxOneRow is the per-step primitive every fill variant below is
	// built from: it is the only place that actually advances fr, so the
	// bounds/X-drop checks here can never be skipped regardless of which
	// variant called it — "bulk" only means fewer of these checks are
	// consulted by the *driver* before deciding to call it again.
	relaxOneRow := func() Status {
		rowIdx := fr.i0 - rowBase
		if rowIdx >= int(aRemain) {
			return StatusUpdateA
		}
		aSym := aSec.Base.at(int(aPos) + rowIdx)

		prevJ0 := fr.j0
		mask := eng.relaxRow(eng, fr, aSym, bAt)
		p++

		var st Status
		if fr.j0-colBase >= int(bRemain) {
			st |= StatusUpdateB
		}
		if phantom && p == 1 && eng.params.UngappedFilter > 0 {
			if !ungappedFilterPasses(fr, eng.params.UngappedFilter) {
				st |= StatusTerm
			}
		}

		if windowShifted(prevJ0, fr.j0) {
			blockDir |= 1 << uint(rowsInBlock)
		}
		blockMasks[rowsInBlock] = mask
		if blockSmallMax == nil {
			blockSmallMax = make([]int64, fr.bw)
			for k := range blockSmallMax {
				blockSmallMax[k] = negInf
			}
		}
		for k := 0; k < fr.bw; k++ {
			if fr.h[k] > blockSmallMax[k] {
				blockSmallMax[k] = fr.h[k]
			}
		}
		rowsInBlock++

		rowMax := fr.h[0]
		for _, v := range fr.h {
			if v > rowMax {
				rowMax = v
			}
		}
		if eng.params.Xdrop > 0 && fr.globalMax-rowMax > eng.params.Xdrop {
			st |= StatusTerm
		}

		if rowsInBlock == BLK || st&(StatusUpdateA|StatusUpdateB|StatusTerm) != 0 {
			flushBlock()
		}
		return st
	}

	// fillBulkPredetermined relaxes whole BLK-row blocks with no per-block
	// rechecking at all: it estimates up front, from the arena's remaining
	// headroom and the remaining sequence lengths, how many full blocks
	// are safe, then fills exactly that many (§4.3 "bulk path"). It falls
	// through (returning StatusCont) the moment that estimate drops below
	// one whole block.
	fillBulkPredetermined := func() Status {
		var st Status
		for {
			stats := dp.ar.stats()
			memBudget := stats.BytesCapacity - stats.BytesAllocated
			memBlocks := memBudget / (fr.bw + 1)

			seqBlocks := aridxNow() / BLK
			if bSlack := bridxNow() - fr.bw; bSlack/BLK < seqBlocks {
				if bSlack < 0 {
					seqBlocks = 0
				} else {
					seqBlocks = bSlack / BLK
				}
			}

			safe := seqBlocks
			if memBlocks < safe {
				safe = memBlocks
			}
			if safe < 1 {
				return st
			}

			for i := 0; i < BLK; i++ {
				st = relaxOneRow()
				if st&(StatusUpdateA|StatusUpdateB|StatusTerm) != 0 {
					return st
				}
			}
		}
	}

	// fillBulkSeqBounded tests once per block — aridx>=BW && bridx>=BW —
	// rather than once per row whether a full block can still be fetched
	// safely; X-drop is still checked every row (§4.3 "bulk seq-bounded").
	fillBulkSeqBounded := func() Status {
		var st Status
		for aridxNow() >= fr.bw && bridxNow() >= fr.bw {
			for rowsInBlock < BLK {
				st = relaxOneRow()
				if st&(StatusUpdateA|StatusUpdateB|StatusTerm) != 0 {
					return st
				}
			}
		}
		return st
	}

	// fillCapSeqBounded is the always-safe fallback: one row at a time with
	// full per-step exhaustion and X-drop testing, used once neither bulk
	// variant's precondition holds (§4.3 "cap seq-bounded").
	fillCapSeqBounded := func() Status {
		for {
			st := relaxOneRow()
			if st&(StatusUpdateA|StatusUpdateB|StatusTerm) != 0 {
				return st
			}
		}
	}

	for status&(StatusUpdateA|StatusUpdateB|StatusTerm) == 0 {
		if st := fillBulkPredetermined(); st != StatusCont {
			status |= st
			break
		}
		if aridxNow() >= fr.bw && bridxNow() >= fr.bw {
			if st := fillBulkSeqBounded(); st != StatusCont {
				status |= st
				break
			}
			continue
		}
		status |= fillCapSeqBounded()
		break
	}

	finalBlock := prevBlock
	if rowsInBlock > 0 {
		finalBlock = flushBlock()
	}

	newMax := maxAtStart
	if fr.globalMax > newMax {
		newMax = fr.globalMax
	}
	if status == StatusCont {
		status = StatusUpdate
	} else {
		status |= StatusUpdate
	}

	nt := &FillHandle{
		psum:     tail.psum + int64(p),
		p:        p,
		ssum:     tail.ssum + 1,
		max:      newMax,
		status:   status,
		block:    finalBlock,
		prevTail: tail,
		aSec:     aSec,
		bSec:     bSec,
		apos:     uint32(fr.i0 - rowBase),
		bpos:     uint32(clampNonNeg(fr.j0 - colBase)),
		fr:       fr,
	}
	return nt, nil
}

func clampNonNeg(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// remaining computes how many of a length-total sequence's residues are
// still unconsumed after consumed residues, clamped to [0, total].
func remaining(total uint32, consumed int) uint32 {
	if consumed < 0 {
		return total
	}
	if uint32(consumed) >= total {
		return 0
	}
	return total - uint32(consumed)
}
