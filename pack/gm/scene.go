package gm

import (
	"fmt"

	"github.com/pkg/errors"
)

func (s *Scene) VertexBufferOf(iMeshObject int) (VertexBuffer, error) {
	mo := &s.MeshObjects[iMeshObject]
	if mo.VertexBuffer < 0 || mo.VertexBuffer >= len(s.VertexBuffers) {
		return VertexBuffer{}, errors.Errorf("Mesh object %q refers to vertex buffer %d of %d",
			mo.Name, mo.VertexBuffer, len(s.VertexBuffers))
	}
	return s.VertexBuffers[mo.VertexBuffer], nil
}

// MeshVertices is the vertex range of a mesh object inside its own vertex buffer.
// Ranges of different mesh objects may overlap.
func (s *Scene) MeshVertices(iMeshObject int) ([]Vertex, error) {
	mo := &s.MeshObjects[iMeshObject]
	if _, err := s.VertexBufferOf(iMeshObject); err != nil {
		return nil, err
	}
	vertices := s.Vertices[mo.VertexBuffer]
	if mo.VertexOffset < 0 || mo.VertexCount < 0 || mo.VertexOffset+mo.VertexCount > len(vertices) {
		return nil, errors.Errorf("Mesh object %q vertex range [%d:+%d] is out of buffer %d with %d vertices",
			mo.Name, mo.VertexOffset, mo.VertexCount, mo.VertexBuffer, len(vertices))
	}
	return vertices[mo.VertexOffset : mo.VertexOffset+mo.VertexCount], nil
}

// MeshTriangles is the triangle range of a mesh object. Indices are local to MeshVertices.
func (s *Scene) MeshTriangles(iMeshObject int) ([]Triangle, error) {
	mo := &s.MeshObjects[iMeshObject]
	if mo.TriangleOffset < 0 || mo.TriangleCount < 0 || mo.TriangleOffset+mo.TriangleCount > len(s.Triangles) {
		return nil, errors.Errorf("Mesh object %q triangle range [%d:+%d] is out of %d triangles",
			mo.Name, mo.TriangleOffset, mo.TriangleCount, len(s.Triangles))
	}
	return s.Triangles[mo.TriangleOffset : mo.TriangleOffset+mo.TriangleCount], nil
}

func (s *Scene) IsAnimatedMesh(iMeshObject int) bool {
	vb, err := s.VertexBufferOf(iMeshObject)
	return err == nil && vb.IsAnimated()
}

// HasAnimatedMesh reports whether any mesh object draws from an animated buffer.
// Locators of such scenes are stored in the skinned convention.
func (s *Scene) HasAnimatedMesh() bool {
	for i := range s.MeshObjects {
		if s.IsAnimatedMesh(i) {
			return true
		}
	}
	return false
}

type MaterialTextures struct {
	Main string
	Bump string
}

// MaterialTextures resolves texture slots to texture names.
// Slots pointing outside the texture list are ignored; later slots override earlier ones.
func (s *Scene) MaterialTextures(iMaterial int) MaterialTextures {
	var mt MaterialTextures
	for _, slot := range s.Materials[iMaterial].Slots {
		if slot.Index < 0 || slot.Index >= len(s.Textures) {
			continue
		}
		switch slot.Type {
		case TextureMain:
			mt.Main = s.Textures[slot.Index].Name
		case TextureBump:
			mt.Bump = s.Textures[slot.Index].Name
		}
	}
	return mt
}

// MeshNames gives each mesh object a unique display name: repeats get a two digit counter
// starting from _02.
func (s *Scene) MeshNames() []string {
	names := make([]string, len(s.MeshObjects))
	seen := make(map[string]int)
	for i := range s.MeshObjects {
		name := s.MeshObjects[i].Name
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s_%02d", name, n)
		}
		names[i] = name
	}
	return names
}

// Groups lists group names in order of first appearance.
func Groups(groups ...string) []string {
	result := make([]string, 0)
	seen := make(map[string]bool)
	for _, g := range groups {
		if !seen[g] {
			seen[g] = true
			result = append(result, g)
		}
	}
	return result
}

func (s *Scene) MeshGroups() []string {
	groups := make([]string, len(s.MeshObjects))
	for i := range s.MeshObjects {
		groups[i] = s.MeshObjects[i].Group
	}
	return Groups(groups...)
}

func (s *Scene) LocatorGroups() []string {
	groups := make([]string, len(s.Locators))
	for i := range s.Locators {
		groups[i] = s.Locators[i].Group
	}
	return Groups(groups...)
}
