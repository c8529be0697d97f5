package textureformats

import (
	"image"
	"image/color"
)

const BlockSizeDXT3 = 16

// decompressBlockDXT3 reads 16 explicit 4 bit alphas followed by a color block.
func decompressBlockDXT3(blockData []byte, outColors []color.NRGBA) {
	decodeColorBlock(blockData[8:], true, outColors)

	for i := 0; i < blockPixels; i++ {
		alpha := (blockData[i/2] >> (4 * uint(i%2))) & 0xf
		outColors[i].A = alpha<<4 | alpha
	}
}

func DecompressImageDXT3(data []byte, w, h int) (*image.NRGBA, error) {
	return decompressImageDX(data, w, h, BlockSizeDXT3, decompressBlockDXT3)
}
