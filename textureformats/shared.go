package textureformats

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Based on github.com/xdanieldzd/GXTConvert

const blockPixels = 4 * 4

func rgb565fromUint16(v uint16) (r, g, b uint16) {
	r = (v >> 11) & 0x1f
	g = (v >> 5) & 0x3f
	b = (v >> 0) & 0x1f

	r = (r << 3) | (r >> 2)
	g = (g << 2) | (g >> 4)
	b = (b << 3) | (b >> 2)

	return
}

// dxColorFromPosition resolves a 2 bit color index. Three color mode (color0 <= color1)
// only exists for DXT1 blocks; its index 3 is transparent black.
func dxColorFromPosition(positionCode uint32, color0, color1 uint16, fourColorsOnly bool,
	r0, g0, b0 uint16, r1, g1, b1 uint16) (r, g, b, a byte) {
	a = 0xff
	fourColors := fourColorsOnly || color0 > color1

	switch positionCode {
	case 0:
		r, g, b = byte(r0), byte(g0), byte(b0)
	case 1:
		r, g, b = byte(r1), byte(g1), byte(b1)
	case 2:
		if fourColors {
			r, g, b = byte((2*r0+r1)/3), byte((2*g0+g1)/3), byte((2*b0+b1)/3)
		} else {
			r, g, b = byte((r0+r1)/2), byte((g0+g1)/2), byte((b0+b1)/2)
		}
	case 3:
		if fourColors {
			r, g, b = byte((r0+2*r1)/3), byte((g0+2*g1)/3), byte((b0+2*b1)/3)
		} else {
			r, g, b, a = 0, 0, 0, 0
		}
	}
	return
}

func decodeColorBlock(blockData []byte, fourColorsOnly bool, outColors []color.NRGBA) {
	color0 := binary.LittleEndian.Uint16(blockData[0:])
	color1 := binary.LittleEndian.Uint16(blockData[2:])
	code := binary.LittleEndian.Uint32(blockData[4:])

	r0, g0, b0 := rgb565fromUint16(color0)
	r1, g1, b1 := rgb565fromUint16(color1)

	for i := uint32(0); i < blockPixels; i++ {
		positionCode := (code >> (2 * i)) & 3
		r, g, b, a := dxColorFromPosition(positionCode, color0, color1, fourColorsOnly,
			r0, g0, b0, r1, g1, b1)
		outColors[i] = color.NRGBA{R: r, G: g, B: b, A: a}
	}
}

// BlocksSize is the byte size of a w x h image made of 4x4 blocks of blockSize bytes.
func BlocksSize(w, h, blockSize int) int {
	return ((w + 3) / 4) * ((h + 3) / 4) * blockSize
}

// decompressImageDX walks blocks in row order; the image is cropped to w x h
// when the dimensions are not multiples of 4.
func decompressImageDX(data []byte, w, h, blockSize int,
	blockmethod func(blockData []byte, colors []color.NRGBA)) (*image.NRGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.Errorf("Invalid image size %dx%d", w, h)
	}
	if need := BlocksSize(w, h, blockSize); len(data) < need {
		return nil, errors.Errorf("Image %dx%d needs %d bytes, have %d", w, h, need, len(data))
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	colors := make([]color.NRGBA, blockPixels)
	blocksW := (w + 3) / 4

	for iBlock := 0; iBlock < blocksW*((h+3)/4); iBlock++ {
		blockmethod(data[iBlock*blockSize:(iBlock+1)*blockSize], colors)

		bx, by := (iBlock%blocksW)*4, (iBlock/blocksW)*4
		for iColor, c := range colors {
			x, y := bx+iColor%4, by+iColor/4
			if x < w && y < h {
				img.SetNRGBA(x, y, c)
			}
		}
	}

	return img, nil
}

// FlipVertical mirrors an image top to bottom in place.
func FlipVertical(img *image.NRGBA) {
	rowLen := img.Rect.Dx() * 4
	row := make([]byte, rowLen)
	for top, bottom := 0, img.Rect.Dy()-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.Pix[top*img.Stride : top*img.Stride+rowLen]
		b := img.Pix[bottom*img.Stride : bottom*img.Stride+rowLen]
		copy(row, t)
		copy(t, b)
		copy(b, row)
	}
}
