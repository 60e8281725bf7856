package gaba

import (
	"fmt"
	"io"
	"strings"
)

func cigarOp(d pathDir) byte {
	switch d {
	case pathDiag:
		return 'M'
	case pathTop:
		return 'D' // consumes A (reference) only
	case pathLeft:
		return 'I' // consumes B (query) only
	default:
		return 'M'
	}
}

// runLengthCigar run-length-encodes dirs into a CIGAR string. Matches and
// mismatches are both reported as 'M', matching the original's ungapped-run
// filter rather than emitting an extended '='/'X' CIGAR — see DESIGN.md.
func runLengthCigar(dirs []pathDir, reverse bool) string {
	if len(dirs) == 0 {
		return ""
	}
	seq := dirs
	if reverse {
		seq = make([]pathDir, len(dirs))
		for i, d := range dirs {
			seq[len(dirs)-1-i] = d
		}
	}

	var sb strings.Builder
	run := 1
	op := cigarOp(seq[0])
	for i := 1; i < len(seq); i++ {
		o := cigarOp(seq[i])
		if o == op {
			run++
			continue
		}
		fmt.Fprintf(&sb, "%d%c", run, op)
		op, run = o, 1
	}
	fmt.Fprintf(&sb, "%d%c", run, op)
	return sb.String()
}

// cigarRange slices path.Dirs down to [offset, offset+length), clamped to
// the path's actual length, the sub-range the formatter variants below
// operate on (§4.6). This implementation walks the already-decoded
// direction slice directly rather than the packed bitstream's word-at-a-time
// bulk-match/gap scan the original uses — Go's slice indexing already gives
// O(1) random access and sequential scan without the manual bit tricks a C
// byte buffer needs (see DESIGN.md).
func cigarRange(path *Path, offset, length uint64) []pathDir {
	n := uint64(len(path.Dirs))
	if offset > n {
		offset = n
	}
	end := offset + length
	if end > n {
		end = n
	}
	if end < offset {
		end = offset
	}
	return path.Dirs[offset:end]
}

// DumpCigarForward renders the [offset, offset+length) sub-range of path in
// alignment order into buf, returning how many bytes were written (copy
// truncates at len(buf), matching the original's caller-owned-buffer
// convention) (§4.5/§4.6/§6).
func DumpCigarForward(buf []byte, path *Path, offset, length uint64) int {
	return copy(buf, runLengthCigar(cigarRange(path, offset, length), false))
}

// DumpCigarReverse is DumpCigarForward's reverse-oriented counterpart: the
// orientation a reverse-tail caller (extending from a seed back toward the
// sequence starts) expects without needing to reverse the result itself.
func DumpCigarReverse(buf []byte, path *Path, offset, length uint64) int {
	return copy(buf, runLengthCigar(cigarRange(path, offset, length), true))
}

// PrintCigarForward writes the forward-oriented CIGAR for the
// [offset, offset+length) sub-range of path to w. This is the idiomatic
// substitute for the original's function-pointer-driven printer callback
// (§9): Go callers pass any io.Writer (a bytes.Buffer, os.Stdout, a
// bufio.Writer over a socket) rather than a C-style print callback.
func PrintCigarForward(w io.Writer, path *Path, offset, length uint64) (int, error) {
	return io.WriteString(w, runLengthCigar(cigarRange(path, offset, length), false))
}

// PrintCigarReverse is PrintCigarForward's reverse-oriented counterpart.
func PrintCigarReverse(w io.Writer, path *Path, offset, length uint64) (int, error) {
	return io.WriteString(w, runLengthCigar(cigarRange(path, offset, length), true))
}
