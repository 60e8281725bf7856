package gaba

// Alignment is Trace's result: the alignment's score and its gap/mismatch
// decomposition (§4.5/§6), the path it produced, and where within that path
// the reverse-tail and forward-tail walks (or the seed, when one was given)
// join.
type Alignment struct {
	Score int64

	// Xcnt/Gicnt/Gecnt are the mismatch, gap-open, and gap-extend counts
	// derived from the path (§4.5): Gicnt/Gecnt come from counting runs of
	// gap steps, Xcnt is solved for from the score equation.
	Xcnt, Gicnt, Gecnt uint64

	// Slen is the number of path sections the alignment spans.
	Slen uint32

	// Rsidx is the index into Path.Sections of the section containing the
	// join point between the reverse-tail and forward-tail walks (or the
	// seed, when one was supplied). Rppos/Rapos/Rbpos are that section's
	// own recorded path/A/B offsets.
	Rsidx               uint32
	Rppos, Rapos, Rbpos uint32

	Path *Path
}

// deriveCounts computes Xcnt/Gicnt/Gecnt from a path's direction stream and
// the engine's scoring parameters, per §4.5. Mismatch and the gap costs are
// positive penalties (score = m*matches - x*mismatches - gi*gicnt -
// ge*gecnt, with matches = diag - xcnt), so:
//
//	gap_cells = #horizontal steps + #vertical steps
//	gicnt     = number of maximal gap runs (one "open" per run)
//	gecnt     = gap_cells - gicnt (every step past a run's first)
//	xcnt      = (m*diag - gi*gicnt - ge*gecnt - score) / (m + x)
func deriveCounts(eng *Engine, dirs []pathDir, score int64) (xcnt, gicnt, gecnt uint64) {
	var diag, hCells, vCells, hRuns, vRuns uint64
	var prev pathDir
	havePrev := false
	for _, d := range dirs {
		switch d {
		case pathDiag:
			diag++
			havePrev = false
		case pathLeft:
			hCells++
			if !havePrev || prev != pathLeft {
				hRuns++
			}
			prev, havePrev = pathLeft, true
		case pathTop:
			vCells++
			if !havePrev || prev != pathTop {
				vRuns++
			}
			prev, havePrev = pathTop, true
		}
	}
	gicnt = hRuns + vRuns
	gecnt = (hCells + vCells) - gicnt

	m := int64(eng.params.Match)
	x := int64(eng.params.Mismatch)
	gi, ge := eng.gapCosts()

	denom := m + x
	if denom == 0 {
		return 0, gicnt, gecnt
	}
	num := m*int64(diag) - gi*int64(gicnt) - ge*int64(gecnt) - score
	x64 := num / denom
	if x64 < 0 {
		x64 = 0
	}
	return uint64(x64), gicnt, gecnt
}

// Trace reconstructs the alignment that joins fw's and rv's best-scoring
// cells, with seed spliced between them (§4.5). Either tail may be nil; if
// both are nil, the DP's root tail is used (an empty alignment). Internally
// two path segments are built independently — the reverse tail's walk
// first, then the forward tail's — and concatenated with the seed's
// diagonal run between them, matching the order in which the original
// two-sided extension produces them.
func (dp *DP) Trace(fw, rv *FillHandle, seed *Seed) (*Alignment, error) {
	if fw == nil && rv == nil {
		fw = dp.Root()
	}

	rvDirs, rvAIDs, rvBIDs, rvScore, err := dp.traceOneTail(rv)
	if err != nil {
		return nil, err
	}
	fwDirs, fwAIDs, fwBIDs, fwScore, err := dp.traceOneTail(fw)
	if err != nil {
		return nil, err
	}

	// traceOneTail always returns its own chain's walk in root-to-tail
	// order. For the reverse tail that reads away from the join point;
	// reversing it here makes it read tail-to-root, i.e. toward the join,
	// so it can be placed immediately before the seed/forward segment.
	reversePathSlices(rvDirs, rvAIDs, rvBIDs)

	var seedDirs []pathDir
	var seedAIDs, seedBIDs []uint32
	var seedScore int64
	if seed != nil && seed.ALen > 0 {
		n := int(seed.ALen)
		seedDirs = make([]pathDir, n)
		seedAIDs = make([]uint32, n)
		seedBIDs = make([]uint32, n)

		var lastA, lastB uint32
		switch {
		case len(rvAIDs) > 0:
			lastA, lastB = rvAIDs[len(rvAIDs)-1], rvBIDs[len(rvBIDs)-1]
		case len(fwAIDs) > 0:
			lastA, lastB = fwAIDs[0], fwBIDs[0]
		}
		for i := range seedDirs {
			seedDirs[i] = pathDiag
			seedAIDs[i] = lastA
			seedBIDs[i] = lastB
		}
		seedScore = int64(seed.ALen) * int64(dp.eng.params.Match)
	}

	splitPoint := len(rvDirs) + len(seedDirs)
	score := rvScore + seedScore + fwScore

	total := splitPoint + len(fwDirs)
	if total == 0 {
		// Boundary behaviour (§8): an alignment with no path at all (both
		// tails empty, no seed) reports len=0, slen=0.
		return &Alignment{Score: score, Path: &Path{}}, nil
	}

	dirs := make([]pathDir, 0, total)
	dirs = append(dirs, rvDirs...)
	dirs = append(dirs, seedDirs...)
	dirs = append(dirs, fwDirs...)

	aids := make([]uint32, 0, total)
	aids = append(aids, rvAIDs...)
	aids = append(aids, seedAIDs...)
	aids = append(aids, fwAIDs...)

	bids := make([]uint32, 0, total)
	bids = append(bids, rvBIDs...)
	bids = append(bids, seedBIDs...)
	bids = append(bids, fwBIDs...)

	sections := groupSections(dirs, aids, bids)

	rsidx := 0
	for idx, s := range sections {
		if uint32(splitPoint) >= s.PPos {
			rsidx = idx
		} else {
			break
		}
	}

	xcnt, gicnt, gecnt := deriveCounts(dp.eng, dirs, score)

	return &Alignment{
		Score: score,
		Xcnt:  xcnt,
		Gicnt: gicnt,
		Gecnt: gecnt,
		Slen:  uint32(len(sections)),
		Rsidx: uint32(rsidx),
		Rppos: sections[rsidx].PPos,
		Rapos: sections[rsidx].APos,
		Rbpos: sections[rsidx].BPos,
		Path:  &Path{Dirs: dirs, Sections: sections},
	}, nil
}
