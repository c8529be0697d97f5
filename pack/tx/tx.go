// Package tx decodes compressed texture containers (*.tga.tx): a small header followed by
// the whole mip chain, each level a quarter of the previous one in bytes.
package tx

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/mogaika/aop_browser/binstream"
	"github.com/mogaika/aop_browser/pack"
	"github.com/mogaika/aop_browser/textureformats"
	"github.com/mogaika/aop_browser/utils"
)

const (
	FourCCDXT1 = "DXT1"
	FourCCDXT3 = "DXT3"
	FourCCDXT5 = "DXT5"

	mipRatio = 0.25
)

type InvalidFourCCError struct {
	Tag string
}

func (e *InvalidFourCCError) Error() string {
	return fmt.Sprintf("invalid compression tag %q", e.Tag)
}

// UnknownFourCCError is returned when a well formed tag has no decoder.
type UnknownFourCCError struct {
	Tag string
}

func (e *UnknownFourCCError) Error() string {
	return fmt.Sprintf("unknown compression tag %q", e.Tag)
}

type Header struct {
	Flags        int
	Width        int
	Height       int
	MipCount     int
	FourCC       string
	BaseByteSize int
}

type Texture struct {
	Name string `json:",omitempty"`
	Header
	Data []byte `json:"-"`
}

// MipChainSize sums the geometric series of mip byte sizes, rounded to whole bytes.
func MipChainSize(base, count int) int {
	if count <= 0 || base <= 0 {
		return 0
	}
	return int(math.Round(float64(base) * (1 - math.Pow(mipRatio, float64(count))) / (1 - mipRatio)))
}

func validFourCC(tag string) bool {
	if len(tag) != 4 {
		return false
	}
	for i := 0; i < len(tag); i++ {
		if tag[i] < 0x21 || tag[i] > 0x7e {
			return false
		}
	}
	return true
}

func Decode(data []byte) (*Texture, error) {
	r := binstream.NewReader(data)
	t := &Texture{}

	t.Flags = r.Int()
	t.Width = r.Int()
	t.Height = r.Int()
	t.MipCount = r.Int()
	t.FourCC = r.Chars(4)
	t.BaseByteSize = r.Int()
	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read header")
	}
	if !validFourCC(t.FourCC) {
		return nil, &InvalidFourCCError{Tag: t.FourCC}
	}

	t.Data = r.Bytes(MipChainSize(t.BaseByteSize, t.MipCount))
	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read %d mips of %s", t.MipCount, t.FourCC)
	}
	return t, nil
}

// MipSize gives the dimensions of a mip level, never below one pixel.
func (t *Texture) MipSize(level int) (int, int) {
	w, h := t.Width>>uint(level), t.Height>>uint(level)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Mip returns the bytes of one level as laid out by the series.
func (t *Texture) Mip(level int) ([]byte, error) {
	if level < 0 || level >= t.MipCount {
		return nil, errors.Errorf("Mip level %d out of %d", level, t.MipCount)
	}
	start := MipChainSize(t.BaseByteSize, level)
	end := MipChainSize(t.BaseByteSize, level+1)
	return t.Data[start:end], nil
}

func BlockSize(fourCC string) (int, error) {
	switch fourCC {
	case FourCCDXT1:
		return textureformats.BlockSizeDXT1, nil
	case FourCCDXT3:
		return textureformats.BlockSizeDXT3, nil
	case FourCCDXT5:
		return textureformats.BlockSizeDXT5, nil
	default:
		return 0, &UnknownFourCCError{Tag: fourCC}
	}
}

// Image decodes one mip level.
func (t *Texture) Image(level int) (*image.NRGBA, error) {
	data, err := t.Mip(level)
	if err != nil {
		return nil, err
	}
	w, h := t.MipSize(level)

	switch t.FourCC {
	case FourCCDXT1:
		return textureformats.DecompressImageDXT1(data, w, h)
	case FourCCDXT3:
		return textureformats.DecompressImageDXT3(data, w, h)
	case FourCCDXT5:
		return textureformats.DecompressImageDXT5(data, w, h)
	default:
		return nil, &UnknownFourCCError{Tag: t.FourCC}
	}
}

// CheckDimensions compares the base mip size with what the dimensions and tag imply.
// A mismatch does not stop decoding; callers report it.
func (t *Texture) CheckDimensions() error {
	blockSize, err := BlockSize(t.FourCC)
	if err != nil {
		return err
	}
	if expected := textureformats.BlocksSize(t.Width, t.Height, blockSize); expected != t.BaseByteSize {
		return errors.Errorf("Texture %dx%d %s should have a %d bytes base mip, header says %d",
			t.Width, t.Height, t.FourCC, expected, t.BaseByteSize)
	}
	return nil
}

func init() {
	pack.SetHandler(".TX", func(p utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
		data, err := pack.ReadAll(r)
		if err != nil {
			return nil, err
		}
		t, err := Decode(data)
		if err != nil {
			return nil, err
		}
		t.Name = p.Name()
		return t, nil
	})
}
