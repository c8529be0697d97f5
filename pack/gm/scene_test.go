package gm

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/aop_browser/pack/an"
	"github.com/mogaika/aop_browser/pack/gm/gmtest"
	"github.com/mogaika/aop_browser/utils/gltfutils"
)

func TestMeshHelpers(t *testing.T) {
	s := decodeFixture(t, gmtest.Scene{})

	assert.Equal(t, []string{"body", "body_02"}, s.MeshNames())
	assert.Equal(t, []string{"root"}, s.MeshGroups())
	assert.Equal(t, []string{"root"}, s.LocatorGroups())

	assert.False(t, s.IsAnimatedMesh(0))
	assert.True(t, s.IsAnimatedMesh(1))
	assert.True(t, s.HasAnimatedMesh())

	vertices, err := s.MeshVertices(1)
	require.NoError(t, err)
	assert.Len(t, vertices, 3)
	assert.NotNil(t, vertices[0].Skin)

	triangles, err := s.MeshTriangles(1)
	require.NoError(t, err)
	assert.Equal(t, []Triangle{{2, 1, 0}}, triangles)

	// slot 3 points past the texture list
	assert.Equal(t, MaterialTextures{Main: "tex_a.tga", Bump: "tex_a.tga"}, s.MaterialTextures(0))

	s.MeshObjects[0].VertexOffset = 2
	_, err = s.MeshVertices(0)
	assert.Error(t, err)
	s.MeshObjects[0].VertexBuffer = 7
	_, err = s.MeshVertices(0)
	assert.Error(t, err)
	assert.False(t, s.IsAnimatedMesh(0))
	s.MeshObjects[1].TriangleOffset = 2
	_, err = s.MeshTriangles(1)
	assert.Error(t, err)
}

func TestMeshNamesCounter(t *testing.T) {
	s := &Scene{MeshObjects: []MeshObject{{Name: "a"}, {Name: "b"}, {Name: "a"}, {Name: "a"}}}
	assert.Equal(t, []string{"a", "b", "a_02", "a_03"}, s.MeshNames())
}

func TestExportGLTFStatic(t *testing.T) {
	s := decodeFixture(t, gmtest.Scene{})
	s.Name = "house"

	doc, err := s.ExportGLTFDefault()
	require.NoError(t, err)

	require.Len(t, doc.Meshes, 2)
	assert.Equal(t, "body_02", doc.Meshes[1].Name)
	require.Len(t, doc.Materials, 1)
	assert.Equal(t, "mat0", doc.Materials[0].Name)
	assert.Nil(t, doc.Materials[0].PBRMetallicRoughness.BaseColorTexture)

	primitive := doc.Meshes[1].Primitives[0]
	assert.Contains(t, primitive.Attributes, "TEXCOORD_1")
	assert.NotContains(t, primitive.Attributes, "JOINTS_0")
	assert.NotContains(t, doc.Meshes[0].Primitives[0].Attributes, "TEXCOORD_1")

	assert.Equal(t, "house", doc.Nodes[0].Name)
	assert.Equal(t, []uint32{0}, doc.Scenes[0].Nodes)
}

func TestExportGLTFSkinned(t *testing.T) {
	s := decodeFixture(t, gmtest.Scene{})

	a := &an.Animation{
		Header:        an.Header{BoneCount: 3, FrameCount: 1, FPS: 30},
		Parents:       []int{-1, 0, 0},
		RestPositions: []mgl32.Vec3{{0, 0, 0}, {-1, 0, 0}, {0, 1, 0}},
		Rotations:     [][]mgl32.Quat{{{W: -1}}, {{W: -1}}, {{W: -1}}},
	}

	gltfCacher := gltfutils.NewCacher()
	skeleton, err := a.ExportGLTF(gltfCacher)
	require.NoError(t, err)

	gse, err := s.ExportGLTF(gltfCacher, GLTFExportOptions{
		FlipUVVertical: true,
		Textures:       map[string]uint32{"tex_a.tga": 0},
		Skeleton:       &SkeletonBinding{Animation: a, Exported: skeleton},
	})
	require.NoError(t, err)
	doc := gltfCacher.Doc

	assert.Contains(t, doc.Nodes[gse.RootNode].Children, skeleton.RootNode)
	require.NotNil(t, doc.Materials[0].PBRMetallicRoughness.BaseColorTexture)

	static := doc.Nodes[gse.MeshNodes[0]]
	skinned := doc.Nodes[gse.MeshNodes[1]]
	assert.Nil(t, static.Skin)
	require.NotNil(t, skinned.Skin)
	assert.Equal(t, skeleton.SkinIndex, *skinned.Skin)
	assert.Contains(t, doc.Meshes[*skinned.Mesh].Primitives[0].Attributes, "JOINTS_0")

	// the scene is skinned, so the locator follows bone 1 and is stored relative to it
	locatorNode := gse.LocatorNodes[0]
	assert.Contains(t, doc.Nodes[skeleton.JointNodes[1]].Children, locatorNode)
	translation := doc.Nodes[locatorNode].Translation
	assert.InDelta(t, -2, translation[0], 1e-5)
	assert.InDelta(t, 2, translation[1], 1e-5)
	assert.InDelta(t, 3, translation[2], 1e-5)
}

func TestExportGLTFBoneOutOfRange(t *testing.T) {
	s := decodeFixture(t, gmtest.Scene{})

	a := &an.Animation{
		Header:        an.Header{BoneCount: 2, FrameCount: 1, FPS: 30},
		Parents:       []int{-1, 0},
		RestPositions: []mgl32.Vec3{{}, {}},
		Rotations:     [][]mgl32.Quat{{{W: 1}}, {{W: 1}}},
	}
	gltfCacher := gltfutils.NewCacher()
	skeleton, err := a.ExportGLTF(gltfCacher)
	require.NoError(t, err)

	_, err = s.ExportGLTF(gltfCacher, GLTFExportOptions{
		Skeleton: &SkeletonBinding{Animation: a, Exported: skeleton},
	})
	assert.Error(t, err)
}
