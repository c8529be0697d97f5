package textureformats

import (
	"encoding/binary"
	"image"
	"image/color"
)

const BlockSizeDXT5 = 16

func decompressBlockDXT5(blockData []byte, outColors []color.NRGBA) {
	alpha0 := uint32(blockData[0])
	alpha1 := uint32(blockData[1])

	// uint48 splitted to uint32 + uint16
	alphaCode1 := binary.LittleEndian.Uint32(blockData[4:])
	alphaCode2 := uint32(binary.LittleEndian.Uint16(blockData[2:]))

	decodeColorBlock(blockData[8:], true, outColors)

	for i := uint32(0); i < blockPixels; i++ {
		alphaCodeIndex := 3 * i
		var alphaCode uint32

		if alphaCodeIndex <= 12 {
			alphaCode = (alphaCode2 >> alphaCodeIndex) & 7
		} else if alphaCodeIndex == 15 {
			alphaCode = (alphaCode2 >> 15) | ((alphaCode1 << 1) & 6)
		} else {
			alphaCode = (alphaCode1 >> (alphaCodeIndex - 16)) & 7
		}

		var finalAlpha byte
		if alphaCode == 0 {
			finalAlpha = byte(alpha0)
		} else if alphaCode == 1 {
			finalAlpha = byte(alpha1)
		} else {
			if alpha0 > alpha1 {
				finalAlpha = byte(((8-alphaCode)*alpha0 + (alphaCode-1)*alpha1) / 7)
			} else {
				if alphaCode == 6 {
					finalAlpha = 0
				} else if alphaCode == 7 {
					finalAlpha = 0xff
				} else {
					finalAlpha = byte(((6-alphaCode)*alpha0 + (alphaCode-1)*alpha1) / 5)
				}
			}
		}

		outColors[i].A = finalAlpha
	}
}

func DecompressImageDXT5(data []byte, w, h int) (*image.NRGBA, error) {
	return decompressImageDX(data, w, h, BlockSizeDXT5, decompressBlockDXT5)
}
