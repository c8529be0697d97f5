package an

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/aop_browser/utils/gltfutils"
)

type GLTFSkeletonExported struct {
	RootNode   uint32
	JointNodes []uint32
	// InverseBindMatrices accessor of the skin built over JointNodes.
	InverseBindMatrices uint32
	SkinIndex           uint32
}

// GLTFCacheKey identifies an exported skeleton inside a cacher. Unnamed animations are not cached.
func (a *Animation) GLTFCacheKey() string {
	return a.Name + ".an"
}

// ExportGLTF adds the bone hierarchy under a root node and a skin over it.
func (a *Animation) ExportGLTF(gltfCacher *gltfutils.GLTFCacher) (*GLTFSkeletonExported, error) {
	doc := gltfCacher.Doc
	gse := &GLTFSkeletonExported{
		JointNodes: make([]uint32, a.BoneCount),
	}
	if a.Name != "" {
		defer gltfCacher.AddCache(a.GLTFCacheKey(), gse)
	}

	root := &gltf.Node{
		Name:     RootName,
		Rotation: [4]float32{0, 0, 0, 1},
		Scale:    [3]float32{1, 1, 1},
	}
	gse.RootNode = gltfutils.AddNode(doc, root)

	for iBone := 0; iBone < a.BoneCount; iBone++ {
		rotation := a.RestRotation(iBone)
		gse.JointNodes[iBone] = gltfutils.AddNode(doc, &gltf.Node{
			Name:        BoneName(iBone),
			Translation: a.RestPosition(iBone),
			Rotation:    rotation.V.Vec4(rotation.W),
			Scale:       [3]float32{1, 1, 1},
		})
	}

	for iBone := 0; iBone < a.BoneCount; iBone++ {
		parent := root
		if p := a.RootedParent(iBone); p >= 0 {
			parent = doc.Nodes[gse.JointNodes[p]]
		}
		parent.Children = append(parent.Children, gse.JointNodes[iBone])
	}

	inverseBinds := make([][4][4]float32, a.BoneCount)
	for iBone := range inverseBinds {
		inverseBinds[iBone] = mat4ToArray(a.WorldRestMatrix(iBone).Inv())
	}
	if a.BoneCount != 0 {
		gse.InverseBindMatrices = modeler.WriteAccessor(doc, gltf.TargetNone, inverseBinds)
	}

	gse.SkinIndex = uint32(len(doc.Skins))
	skin := &gltf.Skin{
		Name:     a.Name,
		Skeleton: gltf.Index(gse.RootNode),
		Joints:   gse.JointNodes,
	}
	if a.BoneCount != 0 {
		skin.InverseBindMatrices = gltf.Index(gse.InverseBindMatrices)
	}
	doc.Skins = append(doc.Skins, skin)

	return gse, nil
}

func mat4ToArray(m mgl32.Mat4) (result [4][4]float32) {
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col][row] = m.At(row, col)
		}
	}
	return result
}

func (a *Animation) ExportGLTFDefault() (*gltf.Document, error) {
	gltfCacher := gltfutils.NewCacher()
	gse, err := a.ExportGLTF(gltfCacher)
	if err != nil {
		return nil, err
	}
	gltfutils.AddToScene(gltfCacher.Doc, gse.RootNode)
	return gltfCacher.Doc, nil
}
