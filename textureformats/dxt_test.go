package textureformats

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 0xff, A: 0xff}
	blue = color.NRGBA{B: 0xff, A: 0xff}
)

// solid DXT1 blocks: color0 is used for every pixel
var (
	blockRed  = []byte{0x00, 0xf8, 0, 0, 0, 0, 0, 0}
	blockBlue = []byte{0x1f, 0x00, 0, 0, 0, 0, 0, 0}
)

func TestDXT1BlockOrder(t *testing.T) {
	data := append(append([]byte{}, blockRed...), blockBlue...)

	img, err := DecompressImageDXT1(data, 8, 4)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	assert.Equal(t, red, img.NRGBAAt(0, 0))
	assert.Equal(t, red, img.NRGBAAt(3, 3))
	assert.Equal(t, blue, img.NRGBAAt(4, 0))
	assert.Equal(t, blue, img.NRGBAAt(7, 3))

	img, err = DecompressImageDXT1(data, 4, 8)
	require.NoError(t, err)
	assert.Equal(t, red, img.NRGBAAt(2, 2))
	assert.Equal(t, blue, img.NRGBAAt(2, 6))
}

func TestDXT1Transparent(t *testing.T) {
	// color0 <= color1 selects three color mode, index 3 is transparent
	block := []byte{0x00, 0x00, 0x00, 0xf8, 0xff, 0xff, 0xff, 0xff}
	img, err := DecompressImageDXT1(block, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(1, 1))
}

func TestDXT1Crop(t *testing.T) {
	img, err := DecompressImageDXT1(blockRed, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())
	assert.Equal(t, red, img.NRGBAAt(1, 0))
}

func TestDXTShortData(t *testing.T) {
	_, err := DecompressImageDXT1(blockRed, 8, 8)
	assert.Error(t, err)
	_, err = DecompressImageDXT5(make([]byte, 15), 4, 4)
	assert.Error(t, err)
	_, err = DecompressImageDXT3(make([]byte, 16), 0, 4)
	assert.Error(t, err)
}

func TestDXT3Alpha(t *testing.T) {
	block := make([]byte, 16)
	// pixel 0 alpha 0x3, pixel 1 alpha 0xc
	block[0] = 0xc3
	copy(block[8:], blockRed)

	img, err := DecompressImageDXT3(block, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x33), img.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(0xcc), img.NRGBAAt(1, 0).A)
	assert.Equal(t, uint8(0), img.NRGBAAt(2, 0).A)
	assert.Equal(t, uint8(0xff), img.NRGBAAt(0, 0).R)
}

func TestDXT5Alpha(t *testing.T) {
	block := make([]byte, 16)
	block[0] = 200
	block[1] = 100
	// pixel 0 takes alpha1, every other pixel alpha0
	block[2] = 0x01
	copy(block[8:], blockBlue)

	img, err := DecompressImageDXT5(block, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, uint8(100), img.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(200), img.NRGBAAt(1, 0).A)
	assert.Equal(t, uint8(200), img.NRGBAAt(3, 3).A)
	assert.Equal(t, uint8(0xff), img.NRGBAAt(3, 3).B)
}

func TestBlocksSize(t *testing.T) {
	assert.Equal(t, 8, BlocksSize(1, 1, BlockSizeDXT1))
	assert.Equal(t, 32, BlocksSize(8, 8, BlockSizeDXT1))
	assert.Equal(t, 64, BlocksSize(5, 8, BlockSizeDXT5))
}

func TestFlipVertical(t *testing.T) {
	data := append(append([]byte{}, blockRed...), blockBlue...)
	img, err := DecompressImageDXT1(data, 4, 8)
	require.NoError(t, err)

	FlipVertical(img)
	assert.Equal(t, blue, img.NRGBAAt(0, 0))
	assert.Equal(t, red, img.NRGBAAt(0, 7))
}
