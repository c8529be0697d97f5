// Package gmtest writes .gm scenes for tests.
package gmtest

import (
	"github.com/mogaika/aop_browser/binstream/binstreamtest"
)

const (
	versionCurrent = "20.1"

	textureNone = 0
	textureMain = 1
	textureBump = 2

	meshDataLength = 12

	vertexFlagUV2      = 1
	vertexFlagAnimated = 4
)

const (
	strRoot = iota
	strBody
	strMat
	strTex
	strLoc
)

// Scene describes a small .gm file.
type Scene struct {
	// Version defaults to the current layout.
	Version string
	// TextureOffset overrides the string offset of the texture name.
	TextureOffset *int
}

// Build writes a scene with one texture, one material, one locator and two mesh objects
// named alike. The first buffer is static and declares 5 spare bytes it does not store,
// the second one is animated with a second uv set.
func (f Scene) Build() []byte {
	blob, offsets := binstreamtest.PackStrings("root", "body", "mat0", "tex_a.tga", "loc0")

	b := &binstreamtest.Builder{}
	version := f.Version
	if version == "" {
		version = versionCurrent
	}
	b.Chars(version).I32(0x10)
	b.I32(len(blob)).I32(len(offsets))
	b.I32(1).I32(1).I32(0).I32(1).I32(2).I32(2).I32(2)
	b.F32(4, 5, 6).F32(0, 1, 0).F32(3.5)
	if version == versionCurrent {
		b.I32(7).I32(8).I32(9)
	}

	b.Raw(blob)
	for _, off := range offsets {
		b.I32(off)
	}

	// texture
	if f.TextureOffset != nil {
		b.I32(*f.TextureOffset)
	} else {
		b.I32(offsets[strTex])
	}

	// material
	b.I32(offsets[strRoot]).I32(offsets[strMat])
	b.F32(0.1, 0.2, 0.3, 0.4)
	b.F32(0.5, 0.25, 8, 0)
	b.I32(textureMain).I32(textureBump).I32(textureNone).I32(textureMain)
	b.I32(0).I32(0).I32(-1).I32(5)

	// locator
	b.I32(offsets[strRoot]).I32(offsets[strLoc]).I32(0)
	b.F32(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 1, 2, 3, 1)
	b.I32(1).I32(0).I32(0).I32(0)
	b.F32(1, 0, 0, 0)

	// mesh objects
	for iMesh := 0; iMesh < 2; iMesh++ {
		b.I32(offsets[strRoot]).I32(offsets[strBody]).I32(0)
		b.F32(0, 0, 0).F32(1)
		b.I32(iMesh).I32(1).I32(iMesh).I32(3).I32(0).I32(0)
		for i := 0; i < meshDataLength; i++ {
			b.I32(i)
		}
	}

	// triangles
	b.U16(0).U16(1).U16(2)
	b.U16(2).U16(1).U16(0)

	// vertex buffers
	b.I32(0).I32(3*36 + 5)
	b.I32(vertexFlagUV2 | vertexFlagAnimated).I32(3 * 52)

	for i := 0; i < 3; i++ {
		b.F32(float32(i), 0, 0)
		b.F32(0, 0, 2)
		b.Raw([]byte{1, 2, 3, 4})
		b.F32(0.5, 0.75)
	}
	for i := 0; i < 3; i++ {
		b.F32(float32(i), 1, 0)
		b.F32(0.25).I32(0x0201)
		b.F32(0, 1, 0)
		b.Raw([]byte{5, 6, 7, 8})
		b.F32(0.1, 0.2)
		b.F32(0.3, 0.4)
	}
	return b.Data()
}
