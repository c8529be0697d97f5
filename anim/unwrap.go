package anim

import (
	"github.com/go-gl/mathgl/mgl32"
)

// UnwrapThreshold is the largest step between consecutive angles, in degrees, left as is.
const UnwrapThreshold = 270

// unwrapAxis shifts raw by whole turns until it is within UnwrapThreshold of prev.
// The shift accumulates in offset and carries over to the following samples.
func unwrapAxis(offset *float32, prev, raw float32) float32 {
	cur := raw + *offset
	for {
		delta := cur - prev
		if delta <= UnwrapThreshold && delta >= -UnwrapThreshold {
			return cur
		}
		if delta > 180 {
			*offset -= 360
			cur -= 360
		} else {
			*offset += 360
			cur += 360
		}
	}
}

// Unwrapper turns a stream of euler angles in degrees into a continuous one.
// Each axis keeps its own running offset; the first sample passes through.
type Unwrapper struct {
	offset  mgl32.Vec3
	prev    mgl32.Vec3
	started bool
}

func (u *Unwrapper) Next(angles mgl32.Vec3) mgl32.Vec3 {
	if u.started {
		for axis := range angles {
			angles[axis] = unwrapAxis(&u.offset[axis], u.prev[axis], angles[axis])
		}
	}
	u.started = true
	u.prev = angles
	return angles
}

// UnwrapAngles unwraps a single axis.
func UnwrapAngles(angles []float32) []float32 {
	result := make([]float32, len(angles))
	var offset float32
	for i, a := range angles {
		if i == 0 {
			result[i] = a
			continue
		}
		result[i] = unwrapAxis(&offset, result[i-1], a)
	}
	return result
}
