package tx

import (
	"bytes"
	"image"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/aop_browser/textureformats"
	"github.com/mogaika/aop_browser/utils/gltfutils"
)

type GLTFTextureExported struct {
	TextureIndex uint32
	ImageIndex   uint32
	SamplerIndex uint32
}

// ExportImageGLTF embeds an image as png together with a repeating linear sampler,
// which is what the tools set up for every texture.
func ExportImageGLTF(gltfCacher *gltfutils.GLTFCacher, name string, img image.Image) (*GLTFTextureExported, error) {
	doc := gltfCacher.Doc
	gte := &GLTFTextureExported{}
	defer gltfCacher.AddCache(name, gte)

	gte.SamplerIndex = uint32(len(doc.Samplers))
	doc.Samplers = append(doc.Samplers, &gltf.Sampler{
		Name:      name + "_sampler",
		MinFilter: gltf.MinLinearMipMapLinear,
		MagFilter: gltf.MagLinear,
		WrapS:     gltf.WrapRepeat,
		WrapT:     gltf.WrapRepeat,
	})

	var buf bytes.Buffer
	if err := textureformats.Encode(&buf, img, textureformats.FormatPNG); err != nil {
		return nil, errors.Wrapf(err, "Unable to encode image %q", name)
	}

	var err error
	gte.ImageIndex, err = modeler.WriteImage(doc, name+"_image", "image/png", &buf)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to write gltf image")
	}

	gte.TextureIndex = uint32(len(doc.Textures))
	doc.Textures = append(doc.Textures, &gltf.Texture{
		Name:    name,
		Sampler: gltf.Index(gte.SamplerIndex),
		Source:  gltf.Index(gte.ImageIndex),
	})

	return gte, nil
}

// ExportGLTF embeds the base mip level.
func (t *Texture) ExportGLTF(gltfCacher *gltfutils.GLTFCacher, name string, flipVertical bool) (*GLTFTextureExported, error) {
	img, err := t.Image(0)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode %q", name)
	}
	if flipVertical {
		textureformats.FlipVertical(img)
	}
	return ExportImageGLTF(gltfCacher, name, img)
}
