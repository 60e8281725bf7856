package gaba

// BLK is the number of antidiagonal steps captured per journal block (§3,
// §4.3). In this implementation one "antidiagonal step" is realized as one
// row of the band window (see DESIGN.md "Known simplifications" for why we
// chose a row-wise adaptive band over the original's literal per-cell
// antidiagonal wavefront); BLK therefore also bounds how many rows a single
// Block covers.
const BLK = 32

// maxBW bounds the fixed-size char vector and direction register, both of
// which are sized to the larger of the two supported bandwidths.
const maxBW = 32

// negInf is the sentinel for "cell not reachable" (true matrix boundary or
// outside the tracked band window). It leaves enough headroom that a
// handful of further gap-cost subtractions cannot wrap around.
const negInf = int64(-1) << 56

// rowMask records, for one relaxed row, which predecessor achieved each
// lane's H, plus (affine only) whether each lane's E/F came from opening a
// fresh gap or extending an existing one. Bit k corresponds to lane k; at
// most maxBW (32) lanes exist, so a uint32 holds one bit per lane exactly
// as the direction register does.
type rowMask struct {
	fromLeft uint32 // H(i,j) came from E(i,j) (gap in A / left neighbour)
	fromTop  uint32 // H(i,j) came from F(i,j) (gap in B / top neighbour)
	eOpened  uint32 // E(i,j) came from opening rather than extending
	fOpened  uint32 // F(i,j) came from opening rather than extending
}

// Block is one append-only journal entry: BLK rows' worth of masks plus the
// score state needed to resume relaxation and, independently, to replay
// traceback through this block without needing any earlier block except to
// walk further back. Blocks chain backward only (§9 "no cycles").
type Block struct {
	prev *Block

	// offset/smallH/smallE/smallF/middleDelta implement §3's three-tier
	// decomposition: score(i,j) = offset + middleDelta[k] + small*[k].
	// middleDelta is shared (same slice) across every block of a DP
	// context; only offset and the small* vectors vary per block.
	offset      int64
	middleDelta []int16
	smallH      []int64
	smallE      []int64
	smallF      []int64

	// smallMax is the running elementwise max of smallH observed across
	// every row of this block, used by the locator to avoid rescanning
	// individual rows when searching for the global maximum.
	smallMax []int64

	// dir is the direction determiner: bit r set means row r of this block
	// advanced the band window by one column (see windowShifted below).
	dir  uint32
	rows int // number of rows actually relaxed in this block, <= BLK

	// acc is the skew accumulator's value at the end of this block, needed
	// to resume relaxation (or replay the block during locate) exactly.
	acc int32

	masks [BLK]rowMask

	// aridx/bridx are the remaining (unconsumed) residue counts of the
	// current A/B section as of this block's last row.
	aridx uint32
	bridx uint32

	// j0/i0 locate this block's ending window: lane k holds column j0+k at
	// the end of the block's last row, which is the i0'th row of A.
	j0 int
	i0 int

	// aSec/bSec/colBase/rowBase identify which Fill call produced this
	// block and how its rows map onto that call's sections, so the
	// locator's single-block refill (locate.go) can replay exactly this
	// block's rows from its predecessor's final state without needing to
	// store every intermediate row's H/E/F.
	aSec, bSec     Section
	colBase, rowBase int

	// charVec captures, per lane, the frontier row's A symbol (low nibble,
	// the same in every lane) and that lane's B symbol (high nibble), as
	// written by captureCharVec.
	charVec [maxBW]byte

	// packedDH stores the §9 packed-differential byte (dh<<3 | de) for
	// each lane at block end, with dh taken from smallH's change since the
	// previous block and de from smallE - smallH, purely so the packing
	// invariant the design notes
	// call out is exercised and tested; traceback itself walks masks, not
	// this field (see trace.go).
	packedDH []byte
}

// packDHDE packs a 5-bit dh and 3-bit de into one byte exactly as §9
// specifies: byte = (dh << 3) | de. Callers must ensure dh in [0,31] and de
// in [0,7]; values outside that range are masked, matching the original's
// shift-and-mask load/store.
func packDHDE(dh, de uint8) byte {
	return (dh&0x1F)<<3 | (de & 0x7)
}

func unpackDHDE(b byte) (dh, de uint8) {
	return b >> 3, b & 0x7
}

// biasDelta maps a signed row-to-row delta into the unsigned 5-bit range
// the packed representation uses, clamping rather than overflowing when a
// caller's scoring parameters produce a larger swing than the 5-bit budget
// affords (see DESIGN.md: we do not depend on this field for correctness,
// so clamping here only affects the diagnostic packing, not the score).
func biasDelta(d int64) uint8 {
	const bias = 16
	v := d + bias
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return uint8(v)
}

// frontier is the live, mutable relaxation state threaded through the fill
// loop. A Block is a snapshot taken every BLK rows (or fewer, at a section
// boundary); frontier itself is never stored in the journal.
type frontier struct {
	bw    int
	model Model

	h, e, f []int64 // current row, length bw
	j0      int     // current row's window start column (absolute)
	i0      int     // current row index (absolute, 0 = no A consumed yet)

	acc int32 // direction (skew) accumulator, §3

	charVec [maxBW]byte

	globalMax int64
}

func newFrontierFromRoot(eng *Engine) *frontier {
	bw := eng.bw
	fr := &frontier{
		bw:    bw,
		model: eng.params.Model,
		h:     append([]int64(nil), eng.root.h...),
		e:     append([]int64(nil), eng.root.e...),
		f:     append([]int64(nil), eng.root.f...),
	}
	fr.globalMax = fr.h[0]
	for _, v := range fr.h {
		if v > fr.globalMax {
			fr.globalMax = v
		}
	}
	return fr
}

func (fr *frontier) clone() *frontier {
	cp := *fr
	cp.h = append([]int64(nil), fr.h...)
	cp.e = append([]int64(nil), fr.e...)
	cp.f = append([]int64(nil), fr.f...)
	return &cp
}

// at reads a lane from a previous row's window by absolute column, applying
// the banded-approximation rule: any column not tracked by that row's
// window (including true matrix boundaries at column < 0) reads as negInf.
func at(vals []int64, j0, bw, col int) int64 {
	idx := col - j0
	if idx < 0 || idx >= bw {
		return negInf
	}
	return vals[idx]
}

// relaxFunc relaxes one row of the band given the previous row's state and
// the symbols needed for this row's substitution scores. It mutates fr in
// place (producing the new current row) and returns the row's traceback
// mask. relaxRowWide and relaxRowScalar are independent implementations of
// the same Gotoh recurrence: relaxRowWide batches its previous-row reads
// into 4-lane groups the way a real SIMD kernel loads one vector register
// per group, where relaxRowScalar issues one bounds-checked read per lane.
// Both are pure Go (no actual vector instructions — see DESIGN.md for why
// no avo-generated assembly backs this) but are structurally distinct
// kernels, not one kernel called twice with a cosmetic stride parameter.
type relaxFunc func(eng *Engine, fr *frontier, aSym byte, bAt func(col int) byte) rowMask

// gapCosts returns the per-event gap-open and gap-extend costs for eng's
// model: Affine tracks them independently, Linear charges the same flat
// cost for both so no separate recurrence branch is needed.
func (eng *Engine) gapCosts() (gapOpen, gapExt int64) {
	if eng.params.Model == Affine {
		return eng.gapOpen, eng.gapExtend
	}
	return eng.gapLinear, eng.gapLinear
}

// captureCharVec records this row's (A symbol, B symbol) pair per lane into
// fr.charVec: low nibble is the row's single A symbol (shared by every
// lane), high nibble is that lane's B symbol. The ungapped filter (fill.go)
// scans this BW-wide window for a run of matching nibble pairs (§4.3).
func captureCharVec(fr *frontier, aSym byte, bAt func(col int) byte, newJ0 int) {
	for k := 0; k < fr.bw; k++ {
		b := bAt(newJ0 + k)
		fr.charVec[k] = (aSym & 0xF) | (b&0xF)<<4
	}
}

// relaxRowScalar advances fr by exactly one row: aSym is the A symbol
// consumed by this row, bAt(col) returns the B symbol at absolute column
// col (1-based: column j holds B[j-1]). Each lane is relaxed independently
// via bounds-checked reads of the previous row (at()).
func relaxRowScalar(eng *Engine, fr *frontier, aSym byte, bAt func(col int) byte) rowMask {
	bw := fr.bw
	prevJ0 := fr.j0
	prevH, prevF := fr.h, fr.f

	newI0 := fr.i0 + 1
	newJ0 := fr.nextWindowStart()

	newH := make([]int64, bw)
	newE := make([]int64, bw)
	newF := make([]int64, bw)

	var mask rowMask
	gapOpen, gapExt := eng.gapCosts()

	for k := 0; k < bw; k++ {
		j := newJ0 + k

		// Diagonal: H(i-1,j-1) + sub(a,b). j-1 < 0 (the true left-of-origin
		// boundary) reads as negInf via at(), exactly like an out-of-window
		// read; the one true base case, H(0,0) = 0, belongs to the root
		// frontier and is never recomputed here (relaxRowScalar always
		// starts at newI0 >= 1).
		diag := negInf
		if j >= 1 {
			if d := at(prevH, prevJ0, bw, j-1); d > negInf {
				diag = d + int64(eng.ScoreOf(aSym, bAt(j)))
			}
		}

		// E(i,j): gap in A, extends leftward within this row.
		e := negInf
		opened := false
		if k > 0 {
			if newH[k-1] > negInf {
				if v := newH[k-1] - gapOpen; v > e {
					e, opened = v, true
				}
			}
			if newE[k-1] > negInf {
				if v := newE[k-1] - gapExt; v > e {
					e, opened = v, false
				}
			}
		}

		// F(i,j): gap in B, extends upward from the previous row.
		f := negInf
		fOpened := false
		if top := at(prevH, prevJ0, bw, j); top > negInf {
			if v := top - gapOpen; v > f {
				f, fOpened = v, true
			}
		}
		if topF := at(prevF, prevJ0, bw, j); topF > negInf {
			if v := topF - gapExt; v > f {
				f, fOpened = v, false
			}
		}

		best, fromLeft, fromTop := diag, false, false
		if e > best {
			best, fromLeft, fromTop = e, true, false
		}
		if f > best {
			best, fromLeft, fromTop = f, false, true
		}

		newH[k], newE[k], newF[k] = best, e, f
		if fromLeft {
			mask.fromLeft |= 1 << uint(k)
		}
		if fromTop {
			mask.fromTop |= 1 << uint(k)
		}
		if opened {
			mask.eOpened |= 1 << uint(k)
		}
		if fOpened {
			mask.fOpened |= 1 << uint(k)
		}
	}

	captureCharVec(fr, aSym, bAt, newJ0)
	fr.h, fr.e, fr.f = newH, newE, newF
	fr.j0, fr.i0 = newJ0, newI0

	switch {
	case fr.h[bw-1] > fr.h[0]:
		fr.acc++
	case fr.h[bw-1] < fr.h[0]:
		fr.acc--
	}

	rowMax := fr.h[0]
	for _, v := range fr.h {
		if v > rowMax {
			rowMax = v
		}
	}
	if rowMax > fr.globalMax {
		fr.globalMax = rowMax
	}

	return mask
}

// relaxRowWide is the 4-wide counterpart of relaxRowScalar. Instead of
// issuing four independent at() reads per group of lanes, it prefetches
// each group's window of previous-row H/F values once into local arrays and
// relaxes all four lanes from that prefetched window — a genuinely
// different memory-access shape from the scalar kernel's per-lane reads,
// mirroring how a real SIMD kernel loads one vector register per group
// rather than one scalar at a time (§4.3 step 2).
func relaxRowWide(eng *Engine, fr *frontier, aSym byte, bAt func(col int) byte) rowMask {
	bw := fr.bw
	prevJ0 := fr.j0
	prevH, prevF := fr.h, fr.f

	newI0 := fr.i0 + 1
	newJ0 := fr.nextWindowStart()

	newH := make([]int64, bw)
	newE := make([]int64, bw)
	newF := make([]int64, bw)

	var mask rowMask
	gapOpen, gapExt := eng.gapCosts()

	for base := 0; base < bw; base += 4 {
		var topH, topF [4]int64
		var bSym [4]byte
		for i := 0; i < 4; i++ {
			j := newJ0 + base + i
			topH[i] = at(prevH, prevJ0, bw, j)
			topF[i] = at(prevF, prevJ0, bw, j)
			bSym[i] = bAt(j)
		}

		for i := 0; i < 4; i++ {
			k := base + i
			j := newJ0 + k

			diag := negInf
			if j >= 1 {
				var d int64
				if i > 0 {
					d = topH[i-1]
				} else {
					d = at(prevH, prevJ0, bw, j-1)
				}
				if d > negInf {
					diag = d + int64(eng.ScoreOf(aSym, bSym[i]))
				}
			}

			e := negInf
			opened := false
			if k > 0 {
				if newH[k-1] > negInf {
					if v := newH[k-1] - gapOpen; v > e {
						e, opened = v, true
					}
				}
				if newE[k-1] > negInf {
					if v := newE[k-1] - gapExt; v > e {
						e, opened = v, false
					}
				}
			}

			f := negInf
			fOpened := false
			if topH[i] > negInf {
				if v := topH[i] - gapOpen; v > f {
					f, fOpened = v, true
				}
			}
			if topF[i] > negInf {
				if v := topF[i] - gapExt; v > f {
					f, fOpened = v, false
				}
			}

			best, fromLeft, fromTop := diag, false, false
			if e > best {
				best, fromLeft, fromTop = e, true, false
			}
			if f > best {
				best, fromLeft, fromTop = f, false, true
			}

			newH[k], newE[k], newF[k] = best, e, f
			if fromLeft {
				mask.fromLeft |= 1 << uint(k)
			}
			if fromTop {
				mask.fromTop |= 1 << uint(k)
			}
			if opened {
				mask.eOpened |= 1 << uint(k)
			}
			if fOpened {
				mask.fOpened |= 1 << uint(k)
			}
		}
	}

	captureCharVec(fr, aSym, bAt, newJ0)
	fr.h, fr.e, fr.f = newH, newE, newF
	fr.j0, fr.i0 = newJ0, newI0

	switch {
	case fr.h[bw-1] > fr.h[0]:
		fr.acc++
	case fr.h[bw-1] < fr.h[0]:
		fr.acc--
	}

	rowMax := fr.h[0]
	for _, v := range fr.h {
		if v > rowMax {
			rowMax = v
		}
	}
	if rowMax > fr.globalMax {
		fr.globalMax = rowMax
	}

	return mask
}

// nextWindowStart decides whether the band window advances by one column
// before the next row is relaxed. This is the direction determiner of §3:
// when the accumulated skew is negative the window shifts to keep the
// high-scoring frontier centred in the band.
func (fr *frontier) nextWindowStart() int {
	if fr.acc < 0 {
		return fr.j0 + 1
	}
	return fr.j0
}

// windowShifted reports whether the most recent relax call advanced j0
// relative to the row before it; the direction register stores one such
// bit per row.
func windowShifted(prevJ0, curJ0 int) bool { return curJ0 > prevJ0 }
