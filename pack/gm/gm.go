// Package gm decodes scene files: materials, locators and mesh objects over shared
// triangle and vertex buffer pools, with names kept in a string table.
package gm

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"

	"github.com/mogaika/aop_browser/binstream"
	"github.com/mogaika/aop_browser/config"
	"github.com/mogaika/aop_browser/pack"
	"github.com/mogaika/aop_browser/pack/strtable"
	"github.com/mogaika/aop_browser/utils"
)

const (
	TextureSlotCount = 4
	LocatorBoneCount = 4
	MeshDataLength   = 12
)

type Header struct {
	Version string
	Flags   int

	StringsByteLen    int
	StringsCount      int
	TextureCount      int
	MaterialCount     int
	LightCount        int
	LocatorCount      int
	MeshObjectCount   int
	TriangleCount     int
	VertexBufferCount int

	BoundsSize   mgl32.Vec3
	BoundsCenter mgl32.Vec3
	Radius       float32

	Extra []int `json:",omitempty"`
}

type Texture struct {
	Offset int
	Name   string
}

type TextureType int

const (
	TextureNone TextureType = iota
	TextureMain
	TextureBump
)

func (t TextureType) String() string {
	switch t {
	case TextureNone:
		return "none"
	case TextureMain:
		return "main"
	case TextureBump:
		return "bump"
	default:
		return "unknown"
	}
}

type TextureSlot struct {
	Type  TextureType
	Index int
}

type Material struct {
	GroupOffset int
	NameOffset  int
	Group       string
	Name        string

	Extra []float32 `json:",omitempty"`

	Diffuse   float32
	Specular  float32
	Gloss     float32
	SelfIllum float32

	Slots [TextureSlotCount]TextureSlot
}

// Locator is an attachment point, rigid or skinned to up to four bones.
type Locator struct {
	GroupOffset int
	NameOffset  int
	Group       string
	Name        string
	Flags       int

	Matrix      mgl32.Mat4
	BoneIndices [LocatorBoneCount]int
	BoneWeights [LocatorBoneCount]float32
}

type MeshObject struct {
	GroupOffset int
	NameOffset  int
	Group       string
	Name        string
	Flags       int

	Center mgl32.Vec3
	Radius float32

	VertexBuffer   int
	TriangleCount  int
	TriangleOffset int
	VertexCount    int
	VertexOffset   int
	Material       int

	Data [MeshDataLength]int
	// TriangleCountSum is only stored by layouts with MeshTriangleCountSum.
	TriangleCountSum int `json:",omitempty"`
}

type Triangle [3]uint16

type Scene struct {
	Name string `json:",omitempty"`

	Header
	Layout Layout

	Strings       *strtable.Table `json:"-"`
	Textures      []Texture
	Materials     []Material
	Locators      []Locator
	MeshObjects   []MeshObject
	Triangles     []Triangle
	VertexBuffers []VertexBuffer
	// Vertices holds one array per vertex buffer.
	Vertices [][]Vertex
}

// Decode reads a scene using the configured string encoding.
func Decode(data []byte) (*Scene, error) {
	return DecodeWithCharmap(data, config.GetEncoding())
}

func DecodeWithCharmap(data []byte, cm *charmap.Charmap) (*Scene, error) {
	r := binstream.NewReader(data)
	s := &Scene{}

	if err := s.readHeader(r); err != nil {
		return nil, err
	}

	var err error
	if s.Strings, err = strtable.Decode(r, s.StringsByteLen, s.StringsCount, cm); err != nil {
		return nil, errors.Wrapf(err, "Failed to read strings")
	}

	for _, section := range []struct {
		name string
		read func(r *binstream.Reader) error
	}{
		{"textures", s.readTextures},
		{"materials", s.readMaterials},
		{"locators", s.readLocators},
		{"mesh objects", s.readMeshObjects},
		{"triangles", s.readTriangles},
		{"vertex buffers", s.readVertexBuffers},
		{"vertices", s.readVertices},
	} {
		if err := section.read(r); err != nil {
			return nil, errors.Wrapf(err, "Failed to read %s", section.name)
		}
	}

	return s, nil
}

func (s *Scene) readHeader(r *binstream.Reader) error {
	h := &s.Header
	h.Version = r.Chars(4)
	h.Flags = r.Int()
	h.StringsByteLen = r.Int()
	h.StringsCount = r.Int()
	h.TextureCount = r.Int()
	h.MaterialCount = r.Int()
	h.LightCount = r.Int()
	h.LocatorCount = r.Int()
	h.MeshObjectCount = r.Int()
	h.TriangleCount = r.Int()
	h.VertexBufferCount = r.Int()
	h.BoundsSize = r.Vec3()
	h.BoundsCenter = r.Vec3()
	h.Radius = r.F32()
	if err := r.Err(); err != nil {
		return errors.Wrapf(err, "Failed to read header")
	}

	layout, err := LayoutFor(h.Version)
	if err != nil {
		return err
	}
	s.Layout = layout

	if layout.HeaderExtraInts != 0 {
		h.Extra = make([]int, layout.HeaderExtraInts)
		for i := range h.Extra {
			h.Extra[i] = r.Int()
		}
	}
	if err := r.Err(); err != nil {
		return errors.Wrapf(err, "Failed to read header")
	}

	for _, count := range []int{h.TextureCount, h.MaterialCount, h.LocatorCount,
		h.MeshObjectCount, h.TriangleCount, h.VertexBufferCount} {
		if count < 0 {
			return errors.Errorf("Invalid header: negative section count %d", count)
		}
	}
	return nil
}

// lookup resolves a string offset once the record that carries it was read in full.
func (s *Scene) lookup(r *binstream.Reader, offset int) (string, error) {
	if err := r.Err(); err != nil {
		return "", err
	}
	return s.Strings.Lookup(offset)
}

func (s *Scene) lookupPair(r *binstream.Reader, groupOffset, nameOffset int) (group, name string, err error) {
	if group, err = s.lookup(r, groupOffset); err != nil {
		return "", "", errors.Wrapf(err, "group name")
	}
	if name, err = s.lookup(r, nameOffset); err != nil {
		return "", "", errors.Wrapf(err, "name")
	}
	return group, name, nil
}

func (s *Scene) readTextures(r *binstream.Reader) error {
	if err := r.Require(s.TextureCount * 4); err != nil {
		return err
	}
	s.Textures = make([]Texture, s.TextureCount)
	for i := range s.Textures {
		t := &s.Textures[i]
		t.Offset = r.Int()
		name, err := s.lookup(r, t.Offset)
		if err != nil {
			return errors.Wrapf(err, "texture %d", i)
		}
		t.Name = name
	}
	return nil
}

func (s *Scene) readMaterials(r *binstream.Reader) error {
	if err := r.Require(s.MaterialCount * s.Layout.materialSize()); err != nil {
		return err
	}
	s.Materials = make([]Material, s.MaterialCount)
	for i := range s.Materials {
		m := &s.Materials[i]
		m.GroupOffset = r.Int()
		m.NameOffset = r.Int()
		if s.Layout.MaterialExtraFloats != 0 {
			m.Extra = make([]float32, s.Layout.MaterialExtraFloats)
			for j := range m.Extra {
				m.Extra[j] = r.F32()
			}
		}
		m.Diffuse = r.F32()
		m.Specular = r.F32()
		m.Gloss = r.F32()
		m.SelfIllum = r.F32()
		for j := range m.Slots {
			m.Slots[j].Type = TextureType(r.I32())
		}
		for j := range m.Slots {
			m.Slots[j].Index = r.Int()
		}

		var err error
		if m.Group, m.Name, err = s.lookupPair(r, m.GroupOffset, m.NameOffset); err != nil {
			return errors.Wrapf(err, "material %d", i)
		}
	}
	return nil
}

func (s *Scene) readLocators(r *binstream.Reader) error {
	if err := r.Require(s.LocatorCount * locatorSize); err != nil {
		return err
	}
	s.Locators = make([]Locator, s.LocatorCount)
	for i := range s.Locators {
		l := &s.Locators[i]
		l.GroupOffset = r.Int()
		l.NameOffset = r.Int()
		l.Flags = r.Int()
		l.Matrix = r.Mat4()
		for j := range l.BoneIndices {
			l.BoneIndices[j] = r.Int()
		}
		for j := range l.BoneWeights {
			l.BoneWeights[j] = r.F32()
		}

		var err error
		if l.Group, l.Name, err = s.lookupPair(r, l.GroupOffset, l.NameOffset); err != nil {
			return errors.Wrapf(err, "locator %d", i)
		}
	}
	return nil
}

func (s *Scene) readMeshObjects(r *binstream.Reader) error {
	if err := r.Require(s.MeshObjectCount * s.Layout.meshObjectSize()); err != nil {
		return err
	}
	s.MeshObjects = make([]MeshObject, s.MeshObjectCount)
	for i := range s.MeshObjects {
		mo := &s.MeshObjects[i]
		mo.GroupOffset = r.Int()
		mo.NameOffset = r.Int()
		mo.Flags = r.Int()
		mo.Center = r.Vec3()
		mo.Radius = r.F32()
		mo.VertexBuffer = r.Int()
		mo.TriangleCount = r.Int()
		mo.TriangleOffset = r.Int()
		mo.VertexCount = r.Int()
		mo.VertexOffset = r.Int()
		mo.Material = r.Int()
		for j := range mo.Data {
			mo.Data[j] = r.Int()
		}
		if s.Layout.MeshTriangleCountSum {
			mo.TriangleCountSum = r.Int()
		}

		var err error
		if mo.Group, mo.Name, err = s.lookupPair(r, mo.GroupOffset, mo.NameOffset); err != nil {
			return errors.Wrapf(err, "mesh object %d", i)
		}
	}
	return nil
}

func (s *Scene) readTriangles(r *binstream.Reader) error {
	if err := r.Require(s.TriangleCount * 6); err != nil {
		return err
	}
	s.Triangles = make([]Triangle, s.TriangleCount)
	for i := range s.Triangles {
		for j := range s.Triangles[i] {
			s.Triangles[i][j] = r.U16()
		}
	}
	return r.Err()
}

func (s *Scene) readVertexBuffers(r *binstream.Reader) error {
	if err := r.Require(s.VertexBufferCount * 8); err != nil {
		return err
	}
	s.VertexBuffers = make([]VertexBuffer, s.VertexBufferCount)
	for i := range s.VertexBuffers {
		s.VertexBuffers[i].Flags = r.Int()
		s.VertexBuffers[i].ByteLength = r.Int()
	}
	return r.Err()
}

// readVertices decodes buffers back to back. Each buffer holds VertexCount whole records,
// so any remainder of ByteLength is not skipped.
func (s *Scene) readVertices(r *binstream.Reader) error {
	s.Vertices = make([][]Vertex, len(s.VertexBuffers))
	for i, vb := range s.VertexBuffers {
		count := vb.VertexCount()
		if err := r.Require(count * vb.Stride()); err != nil {
			return errors.Wrapf(err, "buffer %d", i)
		}
		vertices := make([]Vertex, count)
		for j := range vertices {
			vertices[j] = readVertex(r, vb)
		}
		s.Vertices[i] = vertices
	}
	return r.Err()
}

func init() {
	pack.SetHandler(".GM", func(p utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
		data, err := pack.ReadAll(r)
		if err != nil {
			return nil, err
		}
		s, err := Decode(data)
		if err != nil {
			return nil, err
		}
		s.Name = pack.BaseName(p.Name())
		return s, nil
	})
}
