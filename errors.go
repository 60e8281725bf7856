package gaba

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the public entry points. Configuration and
// resource failures are reported as (nil, err) rather than panics; structural
// failures during trace are reported the same way. Trace does not allocate
// from the arena, so a failed trace leaves the arena untouched.
var (
	// ErrOutOfMemory is returned when the arena's backing allocator refuses
	// to grow a region.
	ErrOutOfMemory = errors.New("gaba: out of memory")

	// ErrInvalidScore is returned by NewEngine when the scoring parameters
	// violate the constraints in the linear or affine gap model.
	ErrInvalidScore = errors.New("gaba: invalid score parameters")

	// ErrPathLostOutOfBand is returned by Trace when the reconstructed
	// column drifts outside [0, BW) during the backward walk (wrapped in an
	// *ErrBandDrift carrying where it happened). This always
	// indicates a bug in the fill/trace pairing or a pathological input;
	// it is never triggered by benign termination.
	ErrPathLostOutOfBand = errors.New("gaba: traceback lane escaped band")

	// ErrNoTail is returned by Fill when given a nil tail, and by SearchMax
	// when the tail is nil or has no block yet (such as the root tail).
	// Trace does not return it: with both tails nil it uses the root tail.
	ErrNoTail = errors.New("gaba: trace requires at least one tail")

	// ErrStaleHandle names the misuse of a FillHandle or StackHandle after
	// the arena region it points into has been restored or flushed. No
	// function in this package returns it: handles are not checked for
	// staleness.
	ErrStaleHandle = errors.New("gaba: handle invalidated by restore or flush")

	// ErrSectionOutOfLimit is returned by Fill/FillRoot when a Section's
	// backing Pointer extends past the aLim/bLim registered with NewDP (or
	// when aPos/bPos exceeds the Section's own Len), the Go rendering of
	// the original's limit-pointer bounds check (§3, §6).
	ErrSectionOutOfLimit = errors.New("gaba: section exceeds registered limit")
)

// ErrBandDrift wraps ErrPathLostOutOfBand with the block/lane coordinates at
// which the drift was detected, mirroring the teacher's ErrOverflow pattern
// of a typed error that still satisfies errors.Is against a sentinel. Block
// counts the journal blocks the trace walk had stepped back from the block
// holding its starting cell; Lane is the out-of-range lane it computed.
type ErrBandDrift struct {
	Block int
	Lane  int
}

func (e *ErrBandDrift) Error() string {
	return fmt.Sprintf("gaba: band drift at block %d, lane %d", e.Block, e.Lane)
}

func (e *ErrBandDrift) Unwrap() error { return ErrPathLostOutOfBand }
