// Package importer pairs scenes with their skeletons and clip descriptions, resolves
// material textures and assembles everything into a single glTF document.
package importer

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/aop_browser/anim"
	"github.com/mogaika/aop_browser/config"
	"github.com/mogaika/aop_browser/pack"
	"github.com/mogaika/aop_browser/pack/an"
	"github.com/mogaika/aop_browser/pack/ani"
	"github.com/mogaika/aop_browser/pack/gm"
	"github.com/mogaika/aop_browser/pack/tx"
	"github.com/mogaika/aop_browser/textureformats"
	"github.com/mogaika/aop_browser/utils/gltfutils"
	"github.com/mogaika/aop_browser/vfs"
)

type Importer struct {
	dir      vfs.Directory
	settings *config.Settings
}

func New(dir vfs.Directory, settings *config.Settings) *Importer {
	if settings == nil {
		settings = config.Default()
	}
	return &Importer{dir: dir, settings: settings}
}

func (imp *Importer) Directory() vfs.Directory {
	return imp.dir
}

func (imp *Importer) Settings() *config.Settings {
	return imp.settings
}

type Scene struct {
	Scene *gm.Scene
	// Animation is the skeleton paired with the scene, nil for static scenes.
	Animation   *Animation
	Diagnostics []error
}

type Animation struct {
	Animation *an.Animation
	// ClipsFile is empty when the skeleton has no clip description.
	ClipsFile   string
	Description *ani.Description
	Clips       []*anim.Clip
	Diagnostics []error
}

type Texture struct {
	Name string
	// File the image was read from.
	File    string
	Image   *image.NRGBA
	Texture *tx.Texture `json:",omitempty"`
}

func (imp *Importer) load(name string) (interface{}, error) {
	return pack.GetInstanceHandler(imp.dir, name)
}

// sibling returns the file named like name but with another extension, if there is one.
func (imp *Importer) sibling(name, ext string) (string, bool) {
	found, ok, err := vfs.FindFile(imp.dir, pack.BaseName(name)+ext)
	if err != nil {
		return "", false
	}
	return found, ok
}

// SceneAnimation is the .an file paired with a scene: the configured one, or
// the one sharing the scene's base name.
func (imp *Importer) SceneAnimation(sceneName string) (string, bool) {
	if ss, ok := imp.settings.Scenes[sceneName]; ok && ss.Animation != "" {
		return ss.Animation, true
	}
	return imp.sibling(sceneName, ".an")
}

// AnimationClips is the .ani file paired with a skeleton.
func (imp *Importer) AnimationClips(animationName string) (string, bool) {
	if as, ok := imp.settings.Animations[animationName]; ok && as.Clips != "" {
		return as.Clips, true
	}
	return imp.sibling(animationName, ".ani")
}

func (imp *Importer) LoadScene(name string) (*Scene, error) {
	inst, err := imp.load(name)
	if err != nil {
		return nil, err
	}
	s, ok := inst.(*gm.Scene)
	if !ok {
		return nil, errors.Errorf("'%s' is not a scene", name)
	}

	result := &Scene{Scene: s, Diagnostics: make([]error, 0)}
	if animationName, ok := imp.SceneAnimation(name); ok {
		result.Animation, err = imp.LoadAnimation(animationName)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to load skeleton of '%s'", name)
		}
		result.Diagnostics = append(result.Diagnostics, result.Animation.Diagnostics...)
	} else if s.HasAnimatedMesh() {
		result.Diagnostics = append(result.Diagnostics,
			errors.Errorf("Scene '%s' has skinned meshes but no skeleton", name))
	}
	return result, nil
}

func (imp *Importer) LoadAnimation(name string) (*Animation, error) {
	inst, err := imp.load(name)
	if err != nil {
		return nil, err
	}
	a, ok := inst.(*an.Animation)
	if !ok {
		return nil, errors.Errorf("'%s' is not a skeleton animation", name)
	}

	result := &Animation{
		Animation:   a,
		Clips:       make([]*anim.Clip, 0),
		Diagnostics: make([]error, 0),
	}

	clipsName, ok := imp.AnimationClips(name)
	if !ok {
		return result, nil
	}
	inst, err = imp.load(clipsName)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to load clips of '%s'", name)
	}
	if result.Description, ok = inst.(*ani.Description); !ok {
		return nil, errors.Errorf("'%s' is not a clip description", clipsName)
	}
	result.ClipsFile = clipsName

	opts := anim.Options{EventFunction: imp.settings.EventFunction}
	if as, ok := imp.settings.Animations[name]; ok {
		opts.Prefix = as.ClipPrefix
	}
	res, err := anim.Reconstruct(a, result.Description, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to cut '%s' into clips", name)
	}
	result.Clips = res.Clips
	for _, diag := range res.Diagnostics {
		result.Diagnostics = append(result.Diagnostics, errors.Wrapf(diag, "%s", clipsName))
	}
	return result, nil
}

// textureCandidates lists files that may hold a texture referenced by a material.
// Compressed exports are preferred over plain images.
func textureCandidates(name string) []string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidates := []string{name + ".tx"}
	if !strings.EqualFold(ext, ".tga") {
		candidates = append(candidates, base+".tga.tx")
	}
	candidates = append(candidates, name)
	for _, plainExt := range []string{".tga", ".png"} {
		if !strings.EqualFold(ext, plainExt) {
			candidates = append(candidates, base+plainExt)
		}
	}
	return candidates
}

// LoadTexture decodes the base level of a texture referenced by name.
func (imp *Importer) LoadTexture(name string) (*Texture, []error, error) {
	diagnostics := make([]error, 0)
	for _, candidate := range textureCandidates(name) {
		file, ok, err := vfs.FindFile(imp.dir, candidate)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}

		t := &Texture{Name: name, File: file}
		switch pack.Extension(file) {
		case ".TX":
			inst, err := imp.load(file)
			if err != nil {
				return nil, nil, err
			}
			t.Texture = inst.(*tx.Texture)
			if err := t.Texture.CheckDimensions(); err != nil {
				diagnostics = append(diagnostics, errors.Wrapf(err, "%s", file))
			}
			if t.Image, err = t.Texture.Image(0); err != nil {
				return nil, nil, errors.Wrapf(err, "Failed to decode '%s'", file)
			}
		case ".TGA", ".PNG":
			if t.Image, err = imp.decodeImage(file); err != nil {
				return nil, nil, err
			}
		default:
			continue
		}
		return t, diagnostics, nil
	}
	return nil, nil, errors.Errorf("Texture '%s' not found", name)
}

func (imp *Importer) decodeImage(file string) (*image.NRGBA, error) {
	data, err := pack.ReadFile(imp.dir, file)
	if err != nil {
		return nil, err
	}
	if pack.Extension(file) == ".TGA" {
		img, err := textureformats.DecodeTGA(bytes.NewReader(data))
		return img, errors.Wrapf(err, "'%s'", file)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to decode png '%s'", file)
	}
	return textureformats.ToNRGBA(img), nil
}

func (imp *Importer) exportTexture(gltfCacher *gltfutils.GLTFCacher, name string) (uint32, []error, error) {
	if cached, ok := gltfCacher.GetCached(name); ok {
		return cached.(*tx.GLTFTextureExported).TextureIndex, nil, nil
	}
	t, diagnostics, err := imp.LoadTexture(name)
	if err != nil {
		return 0, nil, err
	}
	if imp.settings.FlipTextureVertical {
		textureformats.FlipVertical(t.Image)
	}
	gte, err := tx.ExportImageGLTF(gltfCacher, name, t.Image)
	if err != nil {
		return 0, nil, err
	}
	gltfCacher.Doc.Textures[gte.TextureIndex].Extras = map[string]interface{}{
		"file": t.File,
		"srgb": imp.settings.SRGBTextures,
	}
	return gte.TextureIndex, diagnostics, nil
}

// exportAnimation writes the skeleton and its clips once per document.
func (imp *Importer) exportAnimation(gltfCacher *gltfutils.GLTFCacher, a *Animation) (*an.GLTFSkeletonExported, error) {
	if a.Animation.Name != "" {
		if cached, ok := gltfCacher.GetCached(a.Animation.GLTFCacheKey()); ok {
			return cached.(*an.GLTFSkeletonExported), nil
		}
	}
	skeleton, err := a.Animation.ExportGLTF(gltfCacher)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to export skeleton")
	}
	if len(skeleton.JointNodes) == 0 {
		return skeleton, nil
	}
	for _, clip := range a.Clips {
		if _, err := clip.ExportGLTF(gltfCacher, skeleton); err != nil {
			return nil, errors.Wrapf(err, "Failed to export clip")
		}
	}
	return skeleton, nil
}

// BuildGLTF assembles a document for a scene or a skeleton animation.
// Problems that leave the document usable are returned as diagnostics.
func (imp *Importer) BuildGLTF(name string) (*gltf.Document, []error, error) {
	gltfCacher := gltfutils.NewCacher()
	doc := gltfCacher.Doc
	diagnostics := make([]error, 0)

	switch pack.Extension(name) {
	case ".GM":
		s, err := imp.LoadScene(name)
		if err != nil {
			return nil, nil, err
		}
		diagnostics = append(diagnostics, s.Diagnostics...)

		opts := gm.GLTFExportOptions{
			FlipUVVertical: imp.settings.FlipUVVertical,
			Textures:       make(map[string]uint32),
		}
		if s.Animation != nil {
			skeleton, err := imp.exportAnimation(gltfCacher, s.Animation)
			if err != nil {
				return nil, nil, err
			}
			opts.Skeleton = &gm.SkeletonBinding{Animation: s.Animation.Animation, Exported: skeleton}
		}

		for _, texture := range s.Scene.Textures {
			if _, done := opts.Textures[texture.Name]; done || texture.Name == "" {
				continue
			}
			index, texDiagnostics, err := imp.exportTexture(gltfCacher, texture.Name)
			if err != nil {
				diagnostics = append(diagnostics, err)
				continue
			}
			diagnostics = append(diagnostics, texDiagnostics...)
			opts.Textures[texture.Name] = index
		}

		exported, err := s.Scene.ExportGLTF(gltfCacher, opts)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "Failed to export '%s'", name)
		}
		gltfutils.AddToScene(doc, exported.RootNode)
	case ".AN":
		a, err := imp.LoadAnimation(name)
		if err != nil {
			return nil, nil, err
		}
		diagnostics = append(diagnostics, a.Diagnostics...)
		skeleton, err := imp.exportAnimation(gltfCacher, a)
		if err != nil {
			return nil, nil, err
		}
		gltfutils.AddToScene(doc, skeleton.RootNode)
	default:
		return nil, nil, errors.Errorf("Cannot build gltf from '%s'", name)
	}

	return doc, diagnostics, nil
}

func (imp *Importer) ExportGLTF(name string, w io.Writer) ([]error, error) {
	doc, diagnostics, err := imp.BuildGLTF(name)
	if err != nil {
		return nil, err
	}
	if err := gltfutils.ExportBinary(w, doc); err != nil {
		return nil, errors.Wrapf(err, "Failed to write gltf")
	}
	return diagnostics, nil
}
