package importer

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/aop_browser/binstream/binstreamtest"
	"github.com/mogaika/aop_browser/config"
	"github.com/mogaika/aop_browser/pack/gm/gmtest"
	"github.com/mogaika/aop_browser/textureformats"
	"github.com/mogaika/aop_browser/utils/gltfutils"
	"github.com/mogaika/aop_browser/vfs"
)

const knightClips = `[idle]
start_time = 0
end_time = 3
loop = true
event = "step", 2

[unfinished]
start_time = 1
`

func knightAnimation() []byte {
	const frames = 4
	parents := []int{-1, 0, 0}

	b := &binstreamtest.Builder{}
	b.I32(frames).I32(len(parents)).F32(30)
	for _, p := range parents {
		b.I32(p)
	}
	for i := range parents {
		b.Vec3(mgl32.Vec3{0, float32(i), 0})
	}
	for f := 0; f < frames; f++ {
		b.Vec3(mgl32.Vec3{float32(f), 0, 0})
	}
	for range parents {
		for f := 0; f < frames; f++ {
			b.Quat(mgl32.QuatIdent())
		}
	}
	return b.Data()
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0666))
}

func knightDirectory(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "knight.gm", gmtest.Scene{}.Build())
	writeFile(t, dir, "knight.an", knightAnimation())
	writeFile(t, dir, "knight.ani", []byte(knightClips))

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	require.NoError(t, textureformats.Encode(&buf, img, textureformats.FormatTGA))
	writeFile(t, dir, "tex_a.tga", buf.Bytes())
	return dir
}

func TestLoadScene(t *testing.T) {
	imp := New(vfs.NewDirectoryDriver(knightDirectory(t)), nil)

	s, err := imp.LoadScene("knight.gm")
	require.NoError(t, err)
	assert.Equal(t, "knight", s.Scene.Name)
	require.NotNil(t, s.Animation)
	assert.Equal(t, "knight.ani", s.Animation.ClipsFile)

	require.Len(t, s.Animation.Clips, 1)
	clip := s.Animation.Clips[0]
	assert.Equal(t, "knight_idle", clip.Name)
	assert.True(t, clip.Loop)
	require.Len(t, clip.Events, 1)
	assert.Equal(t, config.DefaultEventFunction, clip.Events[0].FunctionName)

	require.Len(t, s.Diagnostics, 1)
	assert.Contains(t, s.Diagnostics[0].Error(), "unfinished")
}

func TestLoadSceneWithoutSkeleton(t *testing.T) {
	dir := knightDirectory(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "knight.an")))

	s, err := New(vfs.NewDirectoryDriver(dir), nil).LoadScene("knight.gm")
	require.NoError(t, err)
	assert.Nil(t, s.Animation)
	require.Len(t, s.Diagnostics, 1)
	assert.Contains(t, s.Diagnostics[0].Error(), "no skeleton")
}

func TestSettingsPairing(t *testing.T) {
	dir := knightDirectory(t)
	writeFile(t, dir, "castle.gm", gmtest.Scene{}.Build())
	writeFile(t, dir, "moves.ani", []byte("[run]\nstart_time = 0\nend_time = 1\n"))

	settings := config.Default()
	prefix := "Knight@"
	settings.EventFunction = "OnStep"
	settings.Scenes["castle.gm"] = config.SceneSettings{Animation: "knight.an"}
	settings.Animations["knight.an"] = config.AnimationSettings{Clips: "moves.ani", ClipPrefix: &prefix}
	imp := New(vfs.NewDirectoryDriver(dir), settings)

	name, ok := imp.SceneAnimation("castle.gm")
	assert.True(t, ok)
	assert.Equal(t, "knight.an", name)
	_, ok = imp.SceneAnimation("tower.gm")
	assert.False(t, ok)

	s, err := imp.LoadScene("castle.gm")
	require.NoError(t, err)
	require.Len(t, s.Animation.Clips, 1)
	assert.Equal(t, "Knight@run", s.Animation.Clips[0].Name)
	assert.Empty(t, s.Diagnostics)
}

func TestLoadTexture(t *testing.T) {
	imp := New(vfs.NewDirectoryDriver(knightDirectory(t)), nil)

	tex, diagnostics, err := imp.LoadTexture("tex_a.tga")
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Equal(t, "tex_a.tga", tex.File)
	assert.Nil(t, tex.Texture)
	assert.Equal(t, image.Rect(0, 0, 2, 2), tex.Image.Bounds())
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0xff}, tex.Image.NRGBAAt(0, 0))

	// referenced as png, found as tga
	tex, _, err = imp.LoadTexture("tex_a.png")
	require.NoError(t, err)
	assert.Equal(t, "tex_a.tga", tex.File)

	_, _, err = imp.LoadTexture("missing.tga")
	assert.Error(t, err)
}

func TestLoadTextureCompressed(t *testing.T) {
	dir := knightDirectory(t)
	// 4x4 DXT1 declaring a wrong base size
	b := &binstreamtest.Builder{}
	b.I32(0).I32(4).I32(4).I32(1).Chars("DXT1").I32(4).Raw([]byte{0x1f, 0, 0, 0})
	writeFile(t, dir, "tex_b.tga.tx", b.Data())

	_, _, err := New(vfs.NewDirectoryDriver(dir), nil).LoadTexture("tex_b.tga")
	assert.Error(t, err)

	b = &binstreamtest.Builder{}
	b.I32(0).I32(4).I32(4).I32(1).Chars("DXT1").I32(8).Raw([]byte{0x1f, 0, 0, 0, 0, 0, 0, 0})
	writeFile(t, dir, "tex_b.tga.tx", b.Data())

	tex, diagnostics, err := New(vfs.NewDirectoryDriver(dir), nil).LoadTexture("tex_b.tga")
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Equal(t, "tex_b.tga.tx", tex.File)
	require.NotNil(t, tex.Texture)
	assert.Equal(t, 4, tex.Image.Bounds().Dx())
}

func TestBuildGLTF(t *testing.T) {
	imp := New(vfs.NewDirectoryDriver(knightDirectory(t)), nil)

	doc, diagnostics, err := imp.BuildGLTF("knight.gm")
	require.NoError(t, err)
	assert.Len(t, diagnostics, 1)

	require.Len(t, doc.Skins, 1)
	require.Len(t, doc.Animations, 1)
	assert.Equal(t, "knight_idle", doc.Animations[0].Name)
	require.Len(t, doc.Textures, 1)
	assert.Equal(t, "tex_a.tga", doc.Textures[0].Name)
	require.NotNil(t, doc.Materials[0].PBRMetallicRoughness.BaseColorTexture)
	assert.Len(t, doc.Scenes[0].Nodes, 1)

	doc, _, err = imp.BuildGLTF("knight.an")
	require.NoError(t, err)
	assert.Len(t, doc.Animations, 1)
	assert.Empty(t, doc.Meshes)

	_, _, err = imp.BuildGLTF("knight.ani")
	assert.Error(t, err)
}

func TestSkeletonExportedOnce(t *testing.T) {
	imp := New(vfs.NewDirectoryDriver(knightDirectory(t)), nil)
	a, err := imp.LoadAnimation("knight.an")
	require.NoError(t, err)

	gltfCacher := gltfutils.NewCacher()
	first, err := imp.exportAnimation(gltfCacher, a)
	require.NoError(t, err)
	second, err := imp.exportAnimation(gltfCacher, a)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, gltfCacher.Doc.Skins, 1)
	assert.Len(t, gltfCacher.Doc.Animations, 1)
}

func TestBuildGLTFMissingTexture(t *testing.T) {
	dir := knightDirectory(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "tex_a.tga")))

	doc, diagnostics, err := New(vfs.NewDirectoryDriver(dir), nil).BuildGLTF("knight.gm")
	require.NoError(t, err)
	assert.Empty(t, doc.Textures)
	assert.Nil(t, doc.Materials[0].PBRMetallicRoughness.BaseColorTexture)
	require.Len(t, diagnostics, 2)
	assert.Contains(t, diagnostics[1].Error(), "tex_a.tga")
}

func TestExportGLTF(t *testing.T) {
	imp := New(vfs.NewDirectoryDriver(knightDirectory(t)), nil)

	var buf bytes.Buffer
	_, err := imp.ExportGLTF("knight.gm", &buf)
	require.NoError(t, err)
	assert.Equal(t, "glTF", buf.String()[:4])
}
