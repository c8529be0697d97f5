// Package an decodes skeleton animation files: a bone hierarchy with rest positions,
// per-frame root positions and a bone-major grid of per-frame rotations.
package an

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/aop_browser/binstream"
	"github.com/mogaika/aop_browser/pack"
	"github.com/mogaika/aop_browser/utils"
)

type Header struct {
	FrameCount int
	BoneCount  int
	FPS        float32
}

type Animation struct {
	// Name is the file base name without extension, when known.
	Name string `json:",omitempty"`

	Header
	Parents       []int
	RestPositions []mgl32.Vec3
	RootPositions []mgl32.Vec3
	// Rotations is indexed [bone][frame].
	Rotations [][]mgl32.Quat
}

// FrameDuration is the length of one frame in seconds.
func (a *Animation) FrameDuration() float32 {
	return 1.0 / a.FPS
}

func (a *Animation) Rotation(bone, frame int) mgl32.Quat {
	return a.Rotations[bone][frame]
}

func Decode(data []byte) (*Animation, error) {
	r := binstream.NewReader(data)
	a := &Animation{}

	a.FrameCount = r.Int()
	a.BoneCount = r.Int()
	a.FPS = r.F32()
	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read header")
	}
	if a.FrameCount < 0 || a.BoneCount < 0 {
		return nil, errors.Errorf("Invalid header: %d frames, %d bones", a.FrameCount, a.BoneCount)
	}

	// parents, rest positions and root positions, then the rotation grid
	fixed := a.BoneCount*16 + a.FrameCount*12
	if r.Require(fixed) == nil && a.BoneCount != 0 && a.FrameCount > (r.Remaining()-fixed)/16/a.BoneCount {
		r.Require(r.Remaining() + 1)
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(err, "Declared %d bones over %d frames", a.BoneCount, a.FrameCount)
	}

	a.Parents = make([]int, a.BoneCount)
	for i := range a.Parents {
		a.Parents[i] = r.Int()
	}

	a.RestPositions = make([]mgl32.Vec3, a.BoneCount)
	for i := range a.RestPositions {
		a.RestPositions[i] = r.Vec3()
	}

	a.RootPositions = make([]mgl32.Vec3, a.FrameCount)
	for i := range a.RootPositions {
		a.RootPositions[i] = r.Vec3()
	}

	a.Rotations = make([][]mgl32.Quat, a.BoneCount)
	for iBone := range a.Rotations {
		frames := make([]mgl32.Quat, a.FrameCount)
		for iFrame := range frames {
			frames[iFrame] = r.Quat()
		}
		a.Rotations[iBone] = frames
	}

	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(err, "Failed to read frames")
	}
	return a, nil
}

func init() {
	pack.SetHandler(".AN", func(p utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
		data, err := pack.ReadAll(r)
		if err != nil {
			return nil, err
		}
		a, err := Decode(data)
		if err != nil {
			return nil, err
		}
		a.Name = pack.BaseName(p.Name())
		return a, nil
	})
}
