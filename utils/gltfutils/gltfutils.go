package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
)

// GLTFCacher keeps a document under construction together with
// already exported parts, so a texture shared by several materials lands in it once.
type GLTFCacher struct {
	Doc   *gltf.Document
	cache map[string]interface{}
}

func NewCacher() *GLTFCacher {
	return &GLTFCacher{
		Doc:   gltf.NewDocument(),
		cache: make(map[string]interface{}),
	}
}

func (gc *GLTFCacher) AddCache(key string, v interface{}) {
	gc.cache[key] = v
}

func (gc *GLTFCacher) GetCached(key string) (interface{}, bool) {
	v, ok := gc.cache[key]
	return v, ok
}

// AddToScene places a node into the default scene.
func AddToScene(doc *gltf.Document, node uint32) {
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, node)
}

func AddNode(doc *gltf.Document, node *gltf.Node) uint32 {
	doc.Nodes = append(doc.Nodes, node)
	return uint32(len(doc.Nodes) - 1)
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
