// Package binstreamtest assembles little-endian fixtures for decoder tests.
package binstreamtest

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Builder struct {
	buf bytes.Buffer
}

func (b *Builder) Data() []byte { return b.buf.Bytes() }
func (b *Builder) Len() int { return b.buf.Len() }

func (b *Builder) U8(v uint8) *Builder {
	b.buf.WriteByte(v)
	return b
}

func (b *Builder) U16(v uint16) *Builder {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *Builder) U32(v uint32) *Builder {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *Builder) I32(v int) *Builder { return b.U32(uint32(int32(v))) }

func (b *Builder) F32(vs ...float32) *Builder {
	for _, v := range vs {
		b.U32(math.Float32bits(v))
	}
	return b
}

func (b *Builder) Vec3(v mgl32.Vec3) *Builder { return b.F32(v[0], v[1], v[2]) }

func (b *Builder) Quat(q mgl32.Quat) *Builder { return b.F32(q.V[0], q.V[1], q.V[2], q.W) }

func (b *Builder) Chars(s string) *Builder {
	b.buf.WriteString(s)
	return b
}

func (b *Builder) Raw(data []byte) *Builder {
	b.buf.Write(data)
	return b
}

// PackStrings lays strings out NUL-terminated and returns the blob with each string's start offset.
func PackStrings(strs ...string) (blob []byte, offsets []int) {
	var out bytes.Buffer
	offsets = make([]int, len(strs))
	for i, s := range strs {
		offsets[i] = out.Len()
		out.WriteString(s)
		out.WriteByte(0)
	}
	return out.Bytes(), offsets
}
