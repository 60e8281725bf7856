package gaba

// rowJ0s reconstructs the absolute window-start column for every row of b,
// from the single final j0 plus the per-row shift bits in b.dir (§3's
// direction determiner). js[r] is the window start in effect once row r
// has been relaxed; js[b.rows-1] always equals b.j0.
func rowJ0s(b *Block) []int {
	j0 := 0
	if b.prev != nil {
		j0 = b.prev.j0
	}
	js := make([]int, b.rows)
	for r := 0; r < b.rows; r++ {
		if b.dir&(1<<uint(r)) != 0 {
			j0++
		}
		js[r] = j0
	}
	return js
}

func bitset(mask uint32, lane int) bool { return mask&(1<<uint(lane)) != 0 }

// stepBack moves the cursor to the row immediately above (row, block),
// crossing into block.prev when row is already the first row of block. It
// reports ok=false once it steps off the start of the journal.
func stepBack(block *Block, row int, js []int) (nb *Block, nr int, njs []int, nj0 int, ok bool) {
	if row > 0 {
		return block, row - 1, js, js[row-1], true
	}
	if block.prev == nil {
		return nil, 0, nil, 0, false
	}
	p := block.prev
	pjs := rowJ0s(p)
	return p, p.rows - 1, pjs, pjs[p.rows-1], true
}

// traceOneTail walks one tail's journal backward from its best-scoring cell
// (found the same way SearchMax finds it) and reconstructs, in alignment
// order (earliest step first), the path segment that reaches it, plus the
// per-step section IDs it passes through, and the tail's score contribution
// (§4.5). A nil tail, or one with no block yet (the phantom root), is not
// an error: it simply contributes nothing, matching the boundary behaviour
// that a trace with no fill at all reports len=0/slen=0.
func (dp *DP) traceOneTail(tail *FillHandle) (dirs []pathDir, aids, bids []uint32, score int64, err error) {
	if tail == nil || tail.block == nil {
		return nil, nil, nil, 0, nil
	}

	start, err := dp.locateCell(tail)
	if err != nil {
		return nil, nil, nil, 0, err
	}

	var revDirs []pathDir
	var revAID, revBID []uint32

	block, row, lane := start.block, start.row, start.lane
	js := rowJ0s(block)
	bw := dp.eng.bw
	depth := 0 // blocks stepped back from start.block

	emit := func(d pathDir) {
		revDirs = append(revDirs, d)
		revAID = append(revAID, block.aSec.ID)
		revBID = append(revBID, block.bSec.ID)
	}

	for block != nil {
		if lane < 0 || lane >= bw {
			return nil, nil, nil, 0, &ErrBandDrift{Block: depth, Lane: lane}
		}
		m := block.masks[row]
		j0 := js[row]

		switch {
		case bitset(m.fromLeft, lane):
			for {
				opened := bitset(m.eOpened, lane)
				emit(pathLeft)
				lane--
				if opened || lane < 0 {
					break
				}
			}

		case bitset(m.fromTop, lane):
			for {
				opened := bitset(m.fOpened, lane)
				emit(pathTop)
				abscol := j0 + lane
				nb, nr, njs, nj0, ok := stepBack(block, row, js)
				if !ok {
					block = nil
					break
				}
				if nb != block {
					depth++
				}
				block, row, js = nb, nr, njs
				lane = abscol - nj0
				if lane < 0 || lane >= bw {
					return nil, nil, nil, 0, &ErrBandDrift{Block: depth, Lane: lane}
				}
				if opened {
					break
				}
				m = block.masks[row]
				j0 = js[row]
			}

		default:
			emit(pathDiag)
			abscol := j0 + lane - 1
			nb, nr, njs, nj0, ok := stepBack(block, row, js)
			if !ok {
				block = nil
				break
			}
			if nb != block {
				depth++
			}
			block, row, js = nb, nr, njs
			lane = abscol - nj0
		}
	}

	dirs = make([]pathDir, len(revDirs))
	aids = make([]uint32, len(revDirs))
	bids = make([]uint32, len(revDirs))
	for i, d := range revDirs {
		j := len(revDirs) - 1 - i
		dirs[j] = d
		aids[j] = revAID[i]
		bids[j] = revBID[i]
	}

	return dirs, aids, bids, tail.max, nil
}

// reversePathSlices reverses dirs/aids/bids in place, in lockstep. Trace
// uses it to turn a reverse tail's own root-to-tail walk (which reads away
// from the join point) into tail-to-root order, so it reads correctly as
// the segment immediately preceding the seed/join point (§4.5).
func reversePathSlices(dirs []pathDir, aids, bids []uint32) {
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
		aids[i], aids[j] = aids[j], aids[i]
		bids[i], bids[j] = bids[j], bids[i]
	}
}

// groupSections folds a flat (dir, sectionID) stream into PathSection
// records, one per maximal run sharing the same (aid, bid) pair. APos/BPos
// count residues consumed by earlier runs of the same section ID, so a
// section split across non-adjacent runs (possible when a seed splices two
// half-alignments of the same section back together) still reports
// contiguous offsets. PPos records the step index into the concatenated
// dirs stream where each section's run begins.
func groupSections(dirs []pathDir, aids, bids []uint32) []PathSection {
	var sections []PathSection
	consumedA := map[uint32]uint32{}
	consumedB := map[uint32]uint32{}

	i := 0
	for i < len(dirs) {
		aid, bid := aids[i], bids[i]
		j := i
		var aLen, bLen uint32
		for j < len(dirs) && aids[j] == aid && bids[j] == bid {
			switch dirs[j] {
			case pathDiag:
				aLen++
				bLen++
			case pathLeft:
				bLen++
			case pathTop:
				aLen++
			}
			j++
		}
		sections = append(sections, PathSection{
			AID:  aid,
			BID:  bid,
			APos: consumedA[aid],
			BPos: consumedB[bid],
			ALen: aLen,
			BLen: bLen,
			PPos: uint32(i),
		})
		consumedA[aid] += aLen
		consumedB[bid] += bLen
		i = j
	}
	return sections
}
