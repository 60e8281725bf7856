package gaba

// frontierAfter reconstructs the live frontier state as it stood
// immediately after b finished relaxing, from b's own compressed fields.
// This is the "expand one block back to cell state" half of the locator's
// single-block refill.
func frontierAfter(eng *Engine, b *Block) *frontier {
	bw := eng.bw
	fr := &frontier{
		bw:      bw,
		model:   eng.params.Model,
		h:       make([]int64, bw),
		e:       make([]int64, bw),
		f:       make([]int64, bw),
		j0:      b.j0,
		i0:      b.i0,
		acc:     b.acc,
		charVec: b.charVec,
	}
	for k := 0; k < bw; k++ {
		fr.h[k] = expand(b.smallH[k], b.offset)
		fr.e[k] = expand(b.smallE[k], b.offset)
		fr.f[k] = expand(b.smallF[k], b.offset)
	}
	fr.globalMax = b.offset
	for _, v := range b.smallMax {
		if cand := b.offset + v; cand > fr.globalMax {
			fr.globalMax = cand
		}
	}
	return fr
}

func expand(small int64, offset int64) int64 {
	if small <= negInf/2 {
		return negInf
	}
	return small + offset
}

// frontierBefore reconstructs the frontier as it stood entering block b,
// i.e. the state produced by b.prev (or the DP's root, if b is the first
// block of its chain).
func (dp *DP) frontierBefore(b *Block) *frontier {
	if b.prev == nil {
		return newFrontierFromRoot(dp.eng)
	}
	return frontierAfter(dp.eng, b.prev)
}

// SearchMax finds the highest-scoring cell reachable from tail, by
// scanning the block journal backward from tail.block to the block whose
// recorded offset+smallMax matches tail's running max (§4.4 "backward
// block scan"), then replaying just that one block's rows from its
// predecessor's final state to pin down the exact row/lane (§4.4
// "single-block refill") — the masks/smallMax summaries alone identify
// which block, not which row inside it. It reports the cell's position,
// not its score — callers already have the score from tail.Max() (§6).
func (dp *DP) SearchMax(tail *FillHandle) (apos, bpos uint64, err error) {
	cur, err := dp.locateCell(tail)
	if err != nil {
		return 0, 0, err
	}
	apos = uint64(cur.rowIdx)
	bpos = uint64(clampNonNeg(cur.j0 + cur.lane - cur.block.colBase))
	return apos, bpos, nil
}

// cellCursor pins down one cell of the DP matrix precisely enough to
// resume either locating (find a better cell in the same block) or
// tracing (walk backward from here) without rescanning earlier blocks.
type cellCursor struct {
	block   *Block
	row     int // 0-indexed row within block (0 = block's first row)
	rowIdx  int // residues of block.aSec consumed through this row
	lane    int // column offset within this row's window
	j0      int // this row's absolute window start
	score   int64
}

// locateCell finds tail's best-scoring cell via the backward block scan
// plus single-block refill described on SearchMax, returning enough state
// to resume a walk from it.
func (dp *DP) locateCell(tail *FillHandle) (cellCursor, error) {
	if tail == nil || tail.block == nil {
		return cellCursor{}, ErrNoTail
	}

	var target *Block
	for b := tail.block; b != nil; b = b.prev {
		cand := negInf
		for _, v := range b.smallMax {
			if c := b.offset + v; c > cand {
				cand = c
			}
		}
		if cand >= tail.max {
			target = b
			break
		}
	}
	if target == nil {
		target = tail.block
	}

	fr := dp.frontierBefore(target)
	eng := dp.eng

	colBase, rowBase := target.colBase, target.rowBase
	bAt := func(col int) byte {
		idx := col - colBase - 1
		if idx < 0 || idx >= int(target.bSec.Len) {
			return 0
		}
		return target.bSec.Base.at(idx)
	}

	best := cellCursor{block: target, score: fr.globalMax}
	for r := 0; r < target.rows; r++ {
		rowIdx := fr.i0 - rowBase
		if rowIdx < 0 || rowIdx >= int(target.aSec.Len) {
			break
		}
		aSym := target.aSec.Base.at(rowIdx)
		eng.relaxRow(eng, fr, aSym, bAt)

		for k := 0; k < fr.bw; k++ {
			if fr.h[k] > best.score {
				best.score = fr.h[k]
				best.row = r
				best.rowIdx = fr.i0 - rowBase
				best.lane = k
				best.j0 = fr.j0
			}
		}
	}
	return best, nil
}
