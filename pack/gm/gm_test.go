package gm

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/mogaika/aop_browser/binstream"
	"github.com/mogaika/aop_browser/pack/gm/gmtest"
	"github.com/mogaika/aop_browser/pack/strtable"
)

func decodeFixture(t *testing.T, f gmtest.Scene) *Scene {
	s, err := DecodeWithCharmap(f.Build(), charmap.Windows1252)
	require.NoError(t, err)
	return s
}

func TestDecodeCurrent(t *testing.T) {
	s := decodeFixture(t, gmtest.Scene{})

	assert.Equal(t, VersionCurrent, s.Version)
	assert.Equal(t, "current", s.Layout.Name)
	assert.Equal(t, []int{7, 8, 9}, s.Extra)
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, s.BoundsSize)
	assert.Equal(t, float32(3.5), s.Radius)

	require.Len(t, s.Textures, 1)
	assert.Equal(t, "tex_a.tga", s.Textures[0].Name)

	require.Len(t, s.Materials, 1)
	m := s.Materials[0]
	assert.Equal(t, "root", m.Group)
	assert.Equal(t, "mat0", m.Name)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, m.Extra)
	assert.Equal(t, float32(0.5), m.Diffuse)
	assert.Equal(t, float32(8), m.Gloss)
	assert.Equal(t, TextureSlot{Type: TextureBump, Index: 0}, m.Slots[1])
	assert.Equal(t, TextureSlot{Type: TextureMain, Index: 5}, m.Slots[3])

	require.Len(t, s.Locators, 1)
	l := s.Locators[0]
	assert.Equal(t, "loc0", l.Name)
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, l.Matrix.Col(3))
	assert.Equal(t, [LocatorBoneCount]int{1, 0, 0, 0}, l.BoneIndices)

	require.Len(t, s.MeshObjects, 2)
	mo := s.MeshObjects[1]
	assert.Equal(t, "body", mo.Name)
	assert.Equal(t, 1, mo.VertexBuffer)
	assert.Equal(t, 1, mo.TriangleOffset)
	assert.Equal(t, 3, mo.VertexCount)
	assert.Equal(t, 11, mo.Data[11])
	assert.Zero(t, mo.TriangleCountSum)

	assert.Equal(t, []Triangle{{0, 1, 2}, {2, 1, 0}}, s.Triangles)

	require.Len(t, s.VertexBuffers, 2)
	assert.Equal(t, 36, s.VertexBuffers[0].Stride())
	assert.Equal(t, 3, s.VertexBuffers[0].VertexCount())
	assert.Equal(t, 52, s.VertexBuffers[1].Stride())

	require.Len(t, s.Vertices[0], 3)
	v := s.Vertices[0][2]
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, v.Position)
	assert.Nil(t, v.Skin)
	assert.Nil(t, v.UV2)
	assert.Equal(t, [4]uint8{1, 2, 3, 4}, v.Color)
	assert.Equal(t, mgl32.Vec2{0.5, 0.75}, v.UV)

	require.Len(t, s.Vertices[1], 3)
	v = s.Vertices[1][1]
	assert.Equal(t, mgl32.Vec3{1, 1, 0}, v.Position)
	require.NotNil(t, v.Skin)
	assert.Equal(t, Skin{Weight1: 0.25, Weight2: 0.75, Bone1: 1, Bone2: 2}, *v.Skin)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, v.Normal)
	require.NotNil(t, v.UV2)
	assert.Equal(t, mgl32.Vec2{0.3, 0.4}, *v.UV2)
}

func TestDecodeLegacyStopsAtHeader(t *testing.T) {
	// nothing but the header: a decoder reading any section would report truncation instead
	data := gmtest.Scene{Version: VersionLegacy}.Build()[:4+10*4+7*4]

	_, err := DecodeWithCharmap(data, charmap.Windows1252)
	var unsupported *UnsupportedFormatVersionError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, VersionLegacy, unsupported.Version)
}

func TestDecodeUnknownVersion(t *testing.T) {
	_, err := DecodeWithCharmap(gmtest.Scene{Version: "30.0"}.Build(), charmap.Windows1252)
	var unsupported *UnsupportedFormatVersionError
	assert.ErrorAs(t, err, &unsupported)
}

func TestDecodeUnknownStringOffset(t *testing.T) {
	bad := 999
	_, err := DecodeWithCharmap(gmtest.Scene{TextureOffset: &bad}.Build(), charmap.Windows1252)
	var unknown *strtable.UnknownOffsetError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 999, unknown.Offset)
}

func TestDecodeTruncated(t *testing.T) {
	data := gmtest.Scene{}.Build()
	for _, cut := range []int{2, 30, 90, 130, 200, 300, 400, len(data) - 1} {
		_, err := DecodeWithCharmap(data[:cut], charmap.Windows1252)
		var truncated *binstream.TruncatedStreamError
		assert.ErrorAs(t, err, &truncated, "cut at %d", cut)
	}
}

func TestLayoutFor(t *testing.T) {
	l, err := LayoutFor(VersionCurrent)
	require.NoError(t, err)
	assert.Equal(t, 3, l.HeaderExtraInts)
	assert.Equal(t, 4, l.MaterialExtraFloats)
	assert.False(t, l.MeshTriangleCountSum)
	assert.Equal(t, 100, l.meshObjectSize())

	_, err = LayoutFor(VersionLegacy)
	assert.Error(t, err)
	assert.Equal(t, 104, layouts[VersionLegacy].meshObjectSize())
}

func TestVertexBufferStride(t *testing.T) {
	for flags := 0; flags < 8; flags++ {
		vb := VertexBuffer{Flags: flags, ByteLength: 1000}
		expected := 36
		if flags&VertexFlagAnimated != 0 {
			expected += 8
		}
		if flags&VertexFlagUV2 != 0 {
			expected += 8
		}
		assert.Equal(t, expected, vb.Stride(), "flags %b", flags)
		assert.LessOrEqual(t, vb.VertexCount()*vb.Stride(), vb.ByteLength, "flags %b", flags)
		assert.Greater(t, (vb.VertexCount()+1)*vb.Stride(), vb.ByteLength, "flags %b", flags)
	}
	assert.Zero(t, VertexBuffer{ByteLength: -4}.VertexCount())
}

func TestUnpackSkin(t *testing.T) {
	for _, tc := range []struct {
		weight float32
		bones  uint32
		bone1  int
		bone2  int
	}{
		{0, 0, 0, 0},
		{1, 0x0a05, 5, 10},
		{0.3, 0xffff1234, 0x34, 0x12},
		{0.75, 0xff, 0xff, 0},
	} {
		skin := unpackSkin(tc.weight, tc.bones)
		assert.Equal(t, 1.0-tc.weight, skin.Weight2)
		assert.Equal(t, tc.bone1, skin.Bone1)
		assert.Equal(t, tc.bone2, skin.Bone2)
	}
}
