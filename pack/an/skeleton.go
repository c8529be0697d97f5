package an

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/aop_browser/convention"
)

// RootName is the node every parentless bone hangs from.
const RootName = "bones"

func BoneName(i int) string {
	return fmt.Sprintf("bone_%02d", i)
}

// Parent returns the parent bone index or -1 when the bone is attached to the root.
// Out of range and self references count as the root.
func (a *Animation) Parent(i int) int {
	p := a.Parents[i]
	if p < 0 || p >= a.BoneCount || p == i {
		return -1
	}
	return p
}

// RootedParent is Parent with cycles broken: a bone whose ancestors lead back to itself
// hangs from the root.
func (a *Animation) RootedParent(i int) int {
	visited := make(map[int]bool)
	for p := a.Parent(i); p >= 0 && !visited[p]; p = a.Parent(p) {
		if p == i {
			return -1
		}
		visited[p] = true
	}
	return a.Parent(i)
}

// BonePath joins bone names from the root down to the bone with "/".
func (a *Animation) BonePath(i int) string {
	names := []string{BoneName(i)}
	for p := a.RootedParent(i); p >= 0; p = a.RootedParent(p) {
		names = append(names, BoneName(p))
	}
	for l, r := 0, len(names)-1; l < r; l, r = l+1, r-1 {
		names[l], names[r] = names[r], names[l]
	}
	return strings.Join(names, "/")
}

func (a *Animation) RestPosition(i int) mgl32.Vec3 {
	return convention.Skinned.Position(a.RestPositions[i])
}

// RestRotation is the mapped first frame rotation of the bone.
func (a *Animation) RestRotation(i int) mgl32.Quat {
	if a.FrameCount == 0 {
		return mgl32.QuatIdent()
	}
	return convention.Skinned.Rotation(a.Rotations[i][0])
}

// RestMatrix is the local rest transform of the bone.
func (a *Animation) RestMatrix(i int) mgl32.Mat4 {
	p := a.RestPosition(i)
	return mgl32.Translate3D(p[0], p[1], p[2]).Mul4(a.RestRotation(i).Mat4())
}

// WorldRestMatrix accumulates rest transforms from the root down.
func (a *Animation) WorldRestMatrix(i int) mgl32.Mat4 {
	m := a.RestMatrix(i)
	for p := a.RootedParent(i); p >= 0; p = a.RootedParent(p) {
		m = a.RestMatrix(p).Mul4(m)
	}
	return m
}
