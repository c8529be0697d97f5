package an

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/aop_browser/binstream"
	"github.com/mogaika/aop_browser/binstream/binstreamtest"
)

// buildAnimation writes a file with bones chained as parents, root first.
func buildAnimation(parents []int, frames int, fps float32) *binstreamtest.Builder {
	b := &binstreamtest.Builder{}
	b.I32(frames).I32(len(parents)).F32(fps)
	for _, p := range parents {
		b.I32(p)
	}
	for i := range parents {
		b.Vec3(mgl32.Vec3{float32(i), 1, 2})
	}
	for f := 0; f < frames; f++ {
		b.Vec3(mgl32.Vec3{float32(f), 0, -float32(f)})
	}
	for i := range parents {
		for f := 0; f < frames; f++ {
			b.Quat(mgl32.Quat{W: float32(f + 1), V: mgl32.Vec3{float32(i), 0.5, 0.25}})
		}
	}
	return b
}

func TestDecode(t *testing.T) {
	a, err := Decode(buildAnimation([]int{-1, 0, 1}, 4, 30).Data())
	require.NoError(t, err)

	assert.Equal(t, Header{FrameCount: 4, BoneCount: 3, FPS: 30}, a.Header)
	assert.Equal(t, []int{-1, 0, 1}, a.Parents)
	assert.Equal(t, mgl32.Vec3{2, 1, 2}, a.RestPositions[2])
	assert.Equal(t, mgl32.Vec3{3, 0, -3}, a.RootPositions[3])
	require.Len(t, a.Rotations, 3)
	require.Len(t, a.Rotations[1], 4)
	assert.Equal(t, mgl32.Quat{W: 3, V: mgl32.Vec3{1, 0.5, 0.25}}, a.Rotation(1, 2))
	assert.InDelta(t, 1.0/30, a.FrameDuration(), 1e-7)
}

func TestDecodeEmpty(t *testing.T) {
	a, err := Decode(buildAnimation(nil, 0, 25).Data())
	require.NoError(t, err)
	assert.Empty(t, a.Parents)
	assert.Empty(t, a.Rotations)
}

func TestDecodeTruncated(t *testing.T) {
	data := buildAnimation([]int{-1, 0}, 3, 30).Data()

	for _, cut := range []int{0, 6, 12, 20, len(data) - 1} {
		_, err := Decode(data[:cut])
		var truncated *binstream.TruncatedStreamError
		assert.ErrorAs(t, err, &truncated, "cut at %d", cut)
	}
}

func TestDecodeHugeCounts(t *testing.T) {
	b := &binstreamtest.Builder{}
	b.I32(0x7fffffff).I32(0x7fffffff).F32(30)
	_, err := Decode(b.Data())
	var truncated *binstream.TruncatedStreamError
	assert.ErrorAs(t, err, &truncated)
}

func TestDecodeNegativeCounts(t *testing.T) {
	b := &binstreamtest.Builder{}
	b.I32(-1).I32(2).F32(30)
	_, err := Decode(b.Data())
	assert.Error(t, err)
}
