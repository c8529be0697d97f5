package gm

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/aop_browser/binstream"
)

const (
	VertexFlagUV2      = 1 << 0
	VertexFlagAnimated = 1 << 2

	vertexBaseStride = 36
)

type VertexBuffer struct {
	Flags      int
	ByteLength int
}

func (vb VertexBuffer) HasUV2() bool {
	return vb.Flags&VertexFlagUV2 != 0
}

func (vb VertexBuffer) IsAnimated() bool {
	return vb.Flags&VertexFlagAnimated != 0
}

// Stride is the size of one vertex record, derived from the flags alone.
func (vb VertexBuffer) Stride() int {
	stride := vertexBaseStride
	if vb.IsAnimated() {
		stride += 8
	}
	if vb.HasUV2() {
		stride += 8
	}
	return stride
}

// VertexCount rounds down; trailing bytes that do not form a whole vertex are not part of the buffer.
func (vb VertexBuffer) VertexCount() int {
	if vb.ByteLength <= 0 {
		return 0
	}
	return vb.ByteLength / vb.Stride()
}

// Skin binds an animated vertex to two bones.
type Skin struct {
	Weight1 float32
	Weight2 float32
	Bone1   int
	Bone2   int
}

type Vertex struct {
	Position mgl32.Vec3
	Skin     *Skin `json:",omitempty"`
	Normal   mgl32.Vec3
	Color    [4]uint8
	UV       mgl32.Vec2
	UV2      *mgl32.Vec2 `json:",omitempty"`
}

// unpackSkin splits the packed bone pair: first bone in the low byte, second in the next one.
func unpackSkin(weight1 float32, bones uint32) *Skin {
	return &Skin{
		Weight1: weight1,
		Weight2: 1.0 - weight1,
		Bone1:   int(bones & 0xff),
		Bone2:   int((bones >> 8) & 0xff),
	}
}

func readVertex(r *binstream.Reader, vb VertexBuffer) Vertex {
	var v Vertex
	v.Position = r.Vec3()
	if vb.IsAnimated() {
		weight1 := r.F32()
		v.Skin = unpackSkin(weight1, r.U32())
	}
	v.Normal = r.Vec3()
	for i := range v.Color {
		v.Color[i] = r.U8()
	}
	v.UV = r.Vec2()
	if vb.HasUV2() {
		uv2 := r.Vec2()
		v.UV2 = &uv2
	}
	return v
}
