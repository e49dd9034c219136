package txn

import (
	"encoding/binary"
	"fmt"
)

// maxCompactU16 is the largest length the compact encoding can carry.
const maxCompactU16 = 0xffff

// encoder appends the node's binary layout to a growing buffer.
type encoder struct {
	buf []byte
}

func newEncoder(capacity int) *encoder {
	return &encoder{buf: make([]byte, 0, capacity)}
}

// pos returns the offset of the next byte to be written.
func (e *encoder) pos() int { return len(e.buf) }

// compactLen writes n in the compact-u16 form: 7 bits per byte, low bits
// first, high bit set on every byte but the last.
func (e *encoder) compactLen(n int) {
	e.buf = AppendCompactU16(e.buf, n)
}

func (e *encoder) u8(v uint8) { e.buf = append(e.buf, v) }

func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }

func (e *encoder) u64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }

func (e *encoder) raw(b []byte) { e.buf = append(e.buf, b...) }

// reserve appends n zero bytes and returns their offset.
func (e *encoder) reserve(n int) int {
	at := len(e.buf)
	e.buf = append(e.buf, make([]byte, n)...)
	return at
}

// AppendCompactU16 appends the compact-u16 encoding of n to dst.
// It panics if n is outside [0, 0xffff]; lengths in this package are fixed
// and small, so an out-of-range value is a programming error.
func AppendCompactU16(dst []byte, n int) []byte {
	if n < 0 || n > maxCompactU16 {
		panic(fmt.Sprintf("compact-u16 length out of range: %d", n))
	}
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}
