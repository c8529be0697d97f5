package anim

import (
	"sort"
)

// Keyframe tangents are slopes. Broken keys have independent in and out tangents.
type Keyframe struct {
	Time       float32
	Value      float32
	InTangent  float32
	OutTangent float32
	Broken     bool
}

// Curve is piecewise linear: every key's tangents point straight at its neighbours,
// so the curve passes through each sample and never overshoots between them.
type Curve struct {
	Keys []Keyframe
}

func slope(a, b Keyframe) float32 {
	if dt := b.Time - a.Time; dt != 0 {
		return (b.Value - a.Value) / dt
	}
	return 0
}

func NewLinearCurve(times, values []float32) Curve {
	keys := make([]Keyframe, len(values))
	for i := range keys {
		keys[i] = Keyframe{Time: times[i], Value: values[i], Broken: true}
	}
	for i := range keys {
		if i > 0 {
			keys[i].InTangent = slope(keys[i-1], keys[i])
		}
		if i+1 < len(keys) {
			keys[i].OutTangent = slope(keys[i], keys[i+1])
		}
	}
	return Curve{Keys: keys}
}

func (c Curve) Len() int {
	return len(c.Keys)
}

func (c Curve) Times() []float32 {
	result := make([]float32, len(c.Keys))
	for i, k := range c.Keys {
		result[i] = k.Time
	}
	return result
}

func (c Curve) Values() []float32 {
	result := make([]float32, len(c.Keys))
	for i, k := range c.Keys {
		result[i] = k.Value
	}
	return result
}

// indexByTime is the last key at or before t, -1 if t precedes every key.
func (c Curve) indexByTime(t float32) int {
	return sort.Search(len(c.Keys), func(i int) bool { return c.Keys[i].Time > t }) - 1
}

// Evaluate samples the curve, holding the end values outside of the key range.
func (c Curve) Evaluate(t float32) float32 {
	if len(c.Keys) == 0 {
		return 0
	}
	i := c.indexByTime(t)
	if i < 0 {
		return c.Keys[0].Value
	}
	if i >= len(c.Keys)-1 {
		return c.Keys[len(c.Keys)-1].Value
	}
	k := c.Keys[i]
	return k.Value + k.OutTangent*(t-k.Time)
}
