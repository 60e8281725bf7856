package gaba

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathPackUnpackRoundTrip(t *testing.T) {
	assert := assert.New(t)

	dirs := []pathDir{pathDiag, pathLeft, pathTop, pathDiag, pathDiag, pathLeft, pathTop}
	p := &Path{Dirs: dirs}
	buf := p.Pack()

	got := UnpackPath(buf, len(dirs))
	assert.Equal(dirs, got)
}

func TestPathPackPadsWithSentinel(t *testing.T) {
	assert := assert.New(t)

	p := &Path{Dirs: []pathDir{pathDiag}}
	buf := p.Pack()
	assert.Len(buf, 1)
	// Only the low 2 bits are meaningful; the rest of the byte should carry
	// the 0x55 pad pattern.
	assert.Equal(byte(pathPadByte&^0x3), buf[0]&0xFC)
}

func TestCigarOpMapping(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(byte('M'), cigarOp(pathDiag))
	assert.Equal(byte('D'), cigarOp(pathTop))
	assert.Equal(byte('I'), cigarOp(pathLeft))
}

func TestDumpCigarForwardRunLength(t *testing.T) {
	assert := assert.New(t)
	p := &Path{Dirs: []pathDir{pathDiag, pathDiag, pathDiag, pathLeft, pathTop, pathTop}}
	buf := make([]byte, 32)
	n := DumpCigarForward(buf, p, 0, uint64(len(p.Dirs)))
	assert.Equal("3M1I2D", string(buf[:n]))
}

func TestDumpCigarReverseIsReversedOrder(t *testing.T) {
	assert := assert.New(t)
	p := &Path{Dirs: []pathDir{pathTop, pathTop, pathDiag, pathDiag, pathDiag}}
	buf := make([]byte, 32)
	n := DumpCigarReverse(buf, p, 0, uint64(len(p.Dirs)))
	assert.Equal("3M2D", string(buf[:n]))
}

func TestDumpCigarForwardSubRange(t *testing.T) {
	assert := assert.New(t)
	p := &Path{Dirs: []pathDir{pathDiag, pathDiag, pathLeft, pathLeft, pathTop}}
	buf := make([]byte, 32)
	n := DumpCigarForward(buf, p, 2, 2)
	assert.Equal("2I", string(buf[:n]))
}

func TestDumpCigarForwardClampsOutOfRangeOffset(t *testing.T) {
	assert := assert.New(t)
	p := &Path{Dirs: []pathDir{pathDiag, pathDiag}}
	buf := make([]byte, 32)
	n := DumpCigarForward(buf, p, 10, 5)
	assert.Equal(0, n)
}
