package gaba

// Status is the bitwise-or of termination/consumption flags returned by
// Fill/FillRoot, matching §6's wire layout exactly so callers that persist
// the raw value stay compatible with the spec's bit positions.
type Status uint32

const (
	StatusCont    Status = 0
	StatusUpdateA Status = 0x01
	StatusUpdateB Status = 0x02
	StatusUpdate  Status = 0x0100
	StatusTerm    Status = 0x0200
)

// FillHandle is the opaque view over the last tail of a fill chain (§4.3,
// §6). It is immutable once returned: Trace consumes a FillHandle as a
// snapshot, and (per §5) will reproduce the same alignment regardless of
// later fills, provided the arena checkpoint covering it hasn't been
// restored or flushed.
type FillHandle struct {
	psum   int64
	p      int32
	ssum   uint32
	max    int64
	status Status

	block    *Block
	prevTail *FillHandle

	aSec Section
	bSec Section
	// apos/bpos are how far into aSec/bSec this tail's fill consumed.
	apos uint32
	bpos uint32

	fr *frontier // frontier state at tail creation, used to resume fill
}

// Psum returns the cumulative antidiagonal-step count across every fill on
// this chain.
func (h *FillHandle) Psum() int64 { return h.psum }

// P returns the local antidiagonal-step count consumed by the fill call
// that produced this tail.
func (h *FillHandle) P() int32 { return h.p }

// Ssum returns how many sections have been consumed so far on this chain.
func (h *FillHandle) Ssum() uint32 { return h.ssum }

// Max returns the running maximum score observed anywhere on this chain.
// It is monotone non-decreasing along the chain (§8).
func (h *FillHandle) Max() int64 { return h.max }

// StatusBits returns the bitwise-or of UpdateA/UpdateB/Term for the fill
// call that produced this tail. Fill and FillRoot also set StatusUpdate on
// every tail they return; the root tail carries StatusCont.
func (h *FillHandle) StatusBits() Status { return h.status }
