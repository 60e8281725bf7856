package gaba

// DP is one alignment context: an arena-backed, append-only block journal
// plus the engine it was built from (§3 "DP context lifecycle"). A DP is not
// safe for concurrent use; callers wanting parallel extension create one DP
// per goroutine from the same (shared, read-only) *Engine.
type DP struct {
	eng  *Engine
	ar   *arena
	root *FillHandle

	// aLim/bLim are the caller-registered extents of the two underlying
	// sequences (§3's "limit pointer"), not of any one Section. Every
	// Section passed to Fill/FillRoot must fit within them; this is the Go
	// rendering of the original's pointer-comparison bounds check, done
	// once per call instead of once per byte read.
	aLim, bLim Pointer
}

// NewDP opens a fresh alignment context seeded from eng's root template.
// aLim/bLim register the full extent of the two sequences this context will
// align against; every Section later passed to Fill/FillRoot must fit
// within them (§3, §6). The returned DP owns one arena region (§4.2); Close
// releases it. NewDP returns (nil, ErrInvalidScore) if eng is nil.
func NewDP(eng *Engine, aLim, bLim Pointer) (*DP, error) {
	if eng == nil {
		return nil, ErrInvalidScore
	}
	ar := newArena(initialRegionBytes)
	fr := newFrontierFromRoot(eng)
	root := &FillHandle{
		max:    fr.globalMax,
		status: StatusCont,
		fr:     fr,
	}
	return &DP{eng: eng, ar: ar, root: root, aLim: aLim, bLim: bLim}, nil
}

// Root returns the phantom tail every alignment starts from: psum=0, p=0,
// ssum=0, status=Cont.
func (dp *DP) Root() *FillHandle { return dp.root }

// Close releases every region owned by this DP's arena. The DP and any
// FillHandle/Block obtained from it must not be used afterward.
func (dp *DP) Close() { dp.ar.clean() }

// Flush discards every arena allocation (the region chain is kept for
// reuse, not released) while keeping the DP itself usable, mirroring the teacher's buffer-reuse-without-
// reallocation idiom (reader_slim.go's Reset). aLim/bLim replace the
// context's registered sequence extents, matching the original's
// dp_flush(dp, alim, blim) re-registering the limit pointers for whatever
// sequences the caller reuses this context for next. Blocks already built
// remain valid only if callers have not retained pointers into freed
// regions — in practice Flush should only be called once no live
// FillHandle/Block from this DP is still reachable.
func (dp *DP) Flush(aLim, bLim Pointer) {
	dp.ar.flush()
	dp.aLim, dp.bLim = aLim, bLim
}

// SaveStack checkpoints the arena's current allocation point so a later
// FlushStack can discard everything allocated since, matching §4.4's
// save/restore pair used by a caller doing speculative extension (e.g. a
// seed-and-extend aligner trying several seeds before committing to one).
func (dp *DP) SaveStack() stackHandle { return dp.ar.save() }

// FlushStack discards every arena allocation made since h was captured.
// Any FillHandle/Block built after h was saved is invalidated; using one
// afterward is a caller bug (see ErrStaleHandle).
func (dp *DP) FlushStack(h stackHandle) { dp.ar.restore(h) }

// Stats reports the DP's current arena footprint, a supplemented
// diagnostic accessor recovered from the original's debug dump (§9).
func (dp *DP) Stats() ArenaStats { return dp.ar.stats() }

// withinLimit reports whether sec's backing bytes fit inside lim, when lim
// carries a non-nil Base. A zero-value Pointer (the common case for callers
// who never registered a limit) always passes — limit checking is opt-in,
// matching the original's single-sequence contexts that never call
// dp_init with a meaningful alim/blim.
func withinLimit(sec Section, pos uint32, lim Pointer) bool {
	if pos > sec.Len {
		return false
	}
	if lim.Base == nil {
		return true
	}
	return len(sec.Base.Base) <= len(lim.Base)
}
