package binstream

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TruncatedStreamError is returned when a read needs more bytes than the buffer has left.
type TruncatedStreamError struct {
	Offset int // cursor position at the failed read
	Want   int
	Have   int
}

func (e *TruncatedStreamError) Error() string {
	return fmt.Sprintf("truncated stream at 0x%x: want %d bytes, have %d", e.Offset, e.Want, e.Have)
}

// Reader is a forward-only little-endian reader over a fixed buffer.
// The first failed read is sticky: every following read returns a zero value
// and Err reports the original failure.
type Reader struct {
	buf    []byte
	offset int
	err    error
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) Err() error { return r.err }
func (r *Reader) Offset() int { return r.offset }
func (r *Reader) Remaining() int { return len(r.buf) - r.offset }
func (r *Reader) Len() int { return len(r.buf) }
func (r *Reader) Exhausted() bool { return r.Remaining() == 0 }

// Require fails the reader unless n more bytes are available, without consuming them.
// Decoders call it before allocating count-driven arrays.
func (r *Reader) Require(n int) error {
	if r.err != nil {
		return r.err
	}
	if n < 0 || n > r.Remaining() {
		r.err = &TruncatedStreamError{Offset: r.offset, Want: n, Have: r.Remaining()}
	}
	return r.err
}

func (r *Reader) next(n int) []byte {
	if r.Require(n) != nil {
		return nil
	}
	b := r.buf[r.offset : r.offset+n]
	r.offset += n
	return b
}

func (r *Reader) U8() uint8 {
	if b := r.next(1); b != nil {
		return b[0]
	}
	return 0
}
func (r *Reader) I8() int8 { return int8(r.U8()) }

func (r *Reader) U16() uint16 {
	if b := r.next(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}
func (r *Reader) I16() int16 { return int16(r.U16()) }

func (r *Reader) U32() uint32 {
	if b := r.next(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}
func (r *Reader) I32() int32 { return int32(r.U32()) }

// Int reads an int32 widened to int, the width every count and index in these formats uses.
func (r *Reader) Int() int { return int(r.I32()) }

func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }

func (r *Reader) Vec2() mgl32.Vec2 {
	x := r.F32()
	y := r.F32()
	return mgl32.Vec2{x, y}
}

func (r *Reader) Vec3() mgl32.Vec3 {
	x := r.F32()
	y := r.F32()
	z := r.F32()
	return mgl32.Vec3{x, y, z}
}

// Quat reads four floats stored in x, y, z, w order.
func (r *Reader) Quat() mgl32.Quat {
	x := r.F32()
	y := r.F32()
	z := r.F32()
	w := r.F32()
	return mgl32.Quat{W: w, V: mgl32.Vec3{x, y, z}}
}

// Mat4 reads sixteen floats in stored order; mgl32 keeps them column-major.
func (r *Reader) Mat4() (m mgl32.Mat4) {
	for i := range m {
		m[i] = r.F32()
	}
	return m
}

// Chars reads a fixed-length character run as-is, NUL bytes included.
func (r *Reader) Chars(n int) string {
	if b := r.next(n); b != nil {
		return string(b)
	}
	return ""
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) []byte {
	b := r.next(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}
