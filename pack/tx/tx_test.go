package tx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/aop_browser/binstream"
	"github.com/mogaika/aop_browser/binstream/binstreamtest"
	"github.com/mogaika/aop_browser/utils/gltfutils"
)

func buildTexture(w, h, mips int, fourCC string, base int) *binstreamtest.Builder {
	b := &binstreamtest.Builder{}
	b.I32(0).I32(w).I32(h).I32(mips).Chars(fourCC).I32(base)
	return b
}

func TestMipChainSize(t *testing.T) {
	for _, tc := range []struct {
		base, count, size int
	}{
		{1024, 1, 1024},
		{1024, 2, 1280},
		{1024, 3, 1344},
		{512, 4, 680},
		{32768, 8, 43690},
		{100, 0, 0},
		{0, 5, 0},
	} {
		assert.Equal(t, tc.size, MipChainSize(tc.base, tc.count), "%d/%d", tc.base, tc.count)
	}
}

func TestDecode(t *testing.T) {
	// 8x8 DXT1: 32, 8 and 2 bytes
	b := buildTexture(8, 8, 3, FourCCDXT1, 32)
	payload := bytes.Repeat([]byte{0x00, 0xf8, 0, 0, 0, 0, 0, 0}, 6)[:42]
	b.Raw(payload).Raw([]byte{0xaa, 0xbb})

	tex, err := Decode(b.Data())
	require.NoError(t, err)
	assert.Equal(t, Header{Width: 8, Height: 8, MipCount: 3, FourCC: FourCCDXT1, BaseByteSize: 32}, tex.Header)
	assert.Equal(t, payload, tex.Data)

	mip1, err := tex.Mip(1)
	require.NoError(t, err)
	assert.Len(t, mip1, 8)
	_, err = tex.Mip(3)
	assert.Error(t, err)

	w, h := tex.MipSize(1)
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
	w, h = tex.MipSize(5)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)

	img, err := tex.Image(0)
	require.NoError(t, err)
	assert.Equal(t, uint8(0xff), img.NRGBAAt(7, 7).R)

	img, err = tex.Image(1)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	// a 2x2 level made of 2 bytes cannot hold a whole block
	_, err = tex.Image(2)
	assert.Error(t, err)

	assert.NoError(t, tex.CheckDimensions())
}

func TestDecodeTruncatedPayload(t *testing.T) {
	b := buildTexture(8, 8, 2, FourCCDXT5, 64).Raw(make([]byte, 70))
	_, err := Decode(b.Data())
	var truncated *binstream.TruncatedStreamError
	assert.ErrorAs(t, err, &truncated)
}

func TestDecodeInvalidFourCC(t *testing.T) {
	for _, tag := range []string{"DX\x001", "DX 1", "\xffXT1"} {
		_, err := Decode(buildTexture(4, 4, 1, tag, 8).Raw(make([]byte, 8)).Data())
		var invalid *InvalidFourCCError
		assert.ErrorAs(t, err, &invalid, "%q", tag)
	}
}

func TestUnknownFourCCIsDeferred(t *testing.T) {
	tex, err := Decode(buildTexture(4, 4, 1, "ATI2", 16).Raw(make([]byte, 16)).Data())
	require.NoError(t, err)

	_, err = tex.Image(0)
	var unknown *UnknownFourCCError
	assert.ErrorAs(t, err, &unknown)
	assert.ErrorAs(t, tex.CheckDimensions(), &unknown)
}

func TestCheckDimensionsMismatch(t *testing.T) {
	tex, err := Decode(buildTexture(16, 16, 1, FourCCDXT5, 64).Raw(make([]byte, 64)).Data())
	require.NoError(t, err)
	assert.Error(t, tex.CheckDimensions())
}

func TestExportGLTF(t *testing.T) {
	tex, err := Decode(buildTexture(4, 4, 1, FourCCDXT1, 8).Raw([]byte{0x1f, 0, 0, 0, 0, 0, 0, 0}).Data())
	require.NoError(t, err)

	gltfCacher := gltfutils.NewCacher()
	gte, err := tex.ExportGLTF(gltfCacher, "wall.tga", true)
	require.NoError(t, err)

	doc := gltfCacher.Doc
	require.Len(t, doc.Textures, 1)
	assert.Equal(t, "wall.tga", doc.Textures[0].Name)
	assert.Equal(t, uint32(0), gte.TextureIndex)
	require.Len(t, doc.Images, 1)
	assert.Equal(t, "image/png", doc.Images[0].MimeType)

	cached, ok := gltfCacher.GetCached("wall.tga")
	assert.True(t, ok)
	assert.Same(t, gte, cached)
}
