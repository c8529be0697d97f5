package textureformats

import (
	"image"
	"image/color"
)

const BlockSizeDXT1 = 8

func decompressBlockDXT1(blockData []byte, outColors []color.NRGBA) {
	decodeColorBlock(blockData, false, outColors)
}

func DecompressImageDXT1(data []byte, w, h int) (*image.NRGBA, error) {
	return decompressImageDX(data, w, h, BlockSizeDXT1, decompressBlockDXT1)
}
