package gm

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/aop_browser/convention"
	"github.com/mogaika/aop_browser/pack/an"
	"github.com/mogaika/aop_browser/utils/gltfutils"
)

// SkeletonBinding is a skeleton already placed into the document.
type SkeletonBinding struct {
	Animation *an.Animation
	Exported  *an.GLTFSkeletonExported
}

type GLTFExportOptions struct {
	FlipUVVertical bool
	// Textures maps texture names to texture indices of the document.
	Textures map[string]uint32
	Skeleton *SkeletonBinding
}

type GLTFSceneExported struct {
	RootNode     uint32
	Materials    []uint32
	MeshNodes    []uint32
	LocatorNodes []uint32
}

func (s *Scene) ExportGLTF(gltfCacher *gltfutils.GLTFCacher, opts GLTFExportOptions) (*GLTFSceneExported, error) {
	doc := gltfCacher.Doc
	gse := &GLTFSceneExported{}

	name := s.Name
	if name == "" {
		name = "scene"
	}
	gse.RootNode = gltfutils.AddNode(doc, newNode(name))

	gse.Materials = make([]uint32, len(s.Materials))
	for i := range s.Materials {
		gse.Materials[i] = s.exportMaterial(doc, i, opts)
	}

	if opts.Skeleton != nil {
		addChild(doc, gse.RootNode, opts.Skeleton.Exported.RootNode)
	}

	if len(s.MeshObjects) != 0 {
		meshesNode := gltfutils.AddNode(doc, newNode("meshes"))
		addChild(doc, gse.RootNode, meshesNode)
		groups := s.groupNodes(doc, meshesNode, s.MeshGroups())

		names := s.MeshNames()
		gse.MeshNodes = make([]uint32, len(s.MeshObjects))
		for i := range s.MeshObjects {
			node, err := s.exportMeshObject(doc, i, names[i], gse.Materials, opts)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to export mesh object %q", names[i])
			}
			gse.MeshNodes[i] = node
			addChild(doc, groups[s.MeshObjects[i].Group], node)
		}
	}

	if len(s.Locators) != 0 {
		locatorsNode := gltfutils.AddNode(doc, newNode("locators"))
		addChild(doc, gse.RootNode, locatorsNode)
		groups := s.groupNodes(doc, locatorsNode, s.LocatorGroups())

		gse.LocatorNodes = make([]uint32, len(s.Locators))
		for i := range s.Locators {
			node, parent := s.exportLocator(doc, i, opts)
			if parent < 0 {
				addChild(doc, groups[s.Locators[i].Group], node)
			} else {
				addChild(doc, uint32(parent), node)
			}
			gse.LocatorNodes[i] = node
		}
	}

	return gse, nil
}

func newNode(name string) *gltf.Node {
	return &gltf.Node{
		Name:     name,
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
}

func addChild(doc *gltf.Document, parent, child uint32) {
	doc.Nodes[parent].Children = append(doc.Nodes[parent].Children, child)
}

func (s *Scene) groupNodes(doc *gltf.Document, parent uint32, groups []string) map[string]uint32 {
	result := make(map[string]uint32, len(groups))
	for _, g := range groups {
		result[g] = gltfutils.AddNode(doc, newNode(g))
		addChild(doc, parent, result[g])
	}
	return result
}

func (s *Scene) exportMaterial(doc *gltf.Document, iMaterial int, opts GLTFExportOptions) uint32 {
	m := &s.Materials[iMaterial]
	textures := s.MaterialTextures(iMaterial)

	extras := map[string]interface{}{
		"group":      m.Group,
		"diffuse":    m.Diffuse,
		"specular":   m.Specular,
		"gloss":      m.Gloss,
		"self_illum": m.SelfIllum,
	}
	if textures.Bump != "" {
		extras["bump_texture"] = textures.Bump
	}

	gltfMaterial := &gltf.Material{
		Name:                 m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{},
		Extras:               extras,
	}
	if textures.Main != "" {
		extras["main_texture"] = textures.Main
		if index, ok := opts.Textures[textures.Main]; ok {
			gltfMaterial.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{
				Index: index,
			}
		}
	}

	doc.Materials = append(doc.Materials, gltfMaterial)
	return uint32(len(doc.Materials) - 1)
}

func (s *Scene) exportMeshObject(doc *gltf.Document, i int, name string, materials []uint32, opts GLTFExportOptions) (uint32, error) {
	mo := &s.MeshObjects[i]
	node := newNode(name)
	nodeIndex := gltfutils.AddNode(doc, node)

	vertices, err := s.MeshVertices(i)
	if err != nil {
		return 0, err
	}
	triangles, err := s.MeshTriangles(i)
	if err != nil {
		return 0, err
	}
	if len(vertices) == 0 || len(triangles) == 0 {
		return nodeIndex, nil
	}

	vb := s.VertexBuffers[mo.VertexBuffer]
	mapper := convention.For(vb.IsAnimated())

	positions := make([][3]float32, len(vertices))
	normals := make([][3]float32, len(vertices))
	colors := make([][4]uint8, len(vertices))
	uvs := make([][2]float32, len(vertices))
	var uvs2 [][2]float32
	if vb.HasUV2() {
		uvs2 = make([][2]float32, len(vertices))
	}

	for iVertex := range vertices {
		v := &vertices[iVertex]
		positions[iVertex] = mapper.Position(v.Position)

		normal := mapper.Direction(v.Normal)
		if normal.Len() > 0.5 {
			normal = normal.Normalize()
		}
		normals[iVertex] = normal
		colors[iVertex] = v.Color
		uvs[iVertex] = flipUV(v.UV, opts.FlipUVVertical)
		if uvs2 != nil && v.UV2 != nil {
			uvs2[iVertex] = flipUV(*v.UV2, opts.FlipUVVertical)
		}
	}

	indices := make([]uint32, 0, len(triangles)*3)
	for _, t := range triangles {
		for _, index := range t {
			if int(index) >= len(vertices) {
				return 0, errors.Errorf("Triangle refers to vertex %d of %d", index, len(vertices))
			}
			indices = append(indices, uint32(index))
		}
	}

	attributes := map[string]uint32{
		"POSITION":   modeler.WritePosition(doc, positions),
		"NORMAL":     modeler.WriteNormal(doc, normals),
		"TEXCOORD_0": modeler.WriteTextureCoord(doc, uvs),
		"COLOR_0":    modeler.WriteColor(doc, colors),
	}
	if uvs2 != nil {
		attributes["TEXCOORD_1"] = modeler.WriteTextureCoord(doc, uvs2)
	}

	if vb.IsAnimated() && opts.Skeleton != nil {
		boneCount := opts.Skeleton.Animation.BoneCount
		joints := make([][4]uint16, len(vertices))
		weights := make([][4]float32, len(vertices))
		for iVertex := range vertices {
			skin := vertices[iVertex].Skin
			if skin.Bone1 >= boneCount || skin.Bone2 >= boneCount {
				return 0, errors.Errorf("Vertex %d is bound to bones %d and %d of %d",
					iVertex, skin.Bone1, skin.Bone2, boneCount)
			}
			weights[iVertex] = [4]float32{skin.Weight1, skin.Weight2, 0, 0}
			joints[iVertex] = [4]uint16{uint16(skin.Bone1), uint16(skin.Bone2), 0, 0}
			for iWeight, weight := range weights[iVertex] {
				if weight == 0 {
					joints[iVertex][iWeight] = 0
				}
			}
		}
		attributes["JOINTS_0"] = modeler.WriteJoints(doc, joints)
		attributes["WEIGHTS_0"] = modeler.WriteWeights(doc, weights)
		node.Skin = gltf.Index(opts.Skeleton.Exported.SkinIndex)
	}

	primitive := &gltf.Primitive{
		Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
		Attributes: attributes,
	}
	if mo.Material >= 0 && mo.Material < len(materials) {
		primitive.Material = gltf.Index(materials[mo.Material])
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       name,
		Primitives: []*gltf.Primitive{primitive},
	})
	node.Mesh = gltf.Index(uint32(len(doc.Meshes) - 1))

	return nodeIndex, nil
}

func flipUV(uv mgl32.Vec2, flip bool) [2]float32 {
	if flip {
		uv[1] = -uv[1]
	}
	return uv
}

// exportLocator returns the locator node and the joint node it hangs from, or -1 for its group.
func (s *Scene) exportLocator(doc *gltf.Document, i int, opts GLTFExportOptions) (uint32, int) {
	l := &s.Locators[i]
	mirror := s.HasAnimatedMesh()
	position, rotation := convention.For(mirror).Transform(l.Matrix)

	parent := -1
	if mirror && opts.Skeleton != nil {
		if bone := l.BoneIndices[0]; bone >= 0 && bone < opts.Skeleton.Animation.BoneCount {
			world := mgl32.Translate3D(position[0], position[1], position[2]).Mul4(rotation.Mat4())
			local := opts.Skeleton.Animation.WorldRestMatrix(bone).Inv().Mul4(world)
			position, rotation = convention.Static.Transform(local)
			parent = int(opts.Skeleton.Exported.JointNodes[bone])
		}
	}

	node := newNode(l.Name)
	node.Translation = position
	node.Rotation = rotation.V.Vec4(rotation.W)
	return gltfutils.AddNode(doc, node), parent
}

func (s *Scene) ExportGLTFDefault() (*gltf.Document, error) {
	gltfCacher := gltfutils.NewCacher()
	gse, err := s.ExportGLTF(gltfCacher, GLTFExportOptions{})
	if err != nil {
		return nil, err
	}
	gltfutils.AddToScene(gltfCacher.Doc, gse.RootNode)
	return gltfCacher.Doc, nil
}
