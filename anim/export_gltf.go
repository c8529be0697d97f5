package anim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/aop_browser/pack/an"
	"github.com/mogaika/aop_browser/utils"
	"github.com/mogaika/aop_browser/utils/gltfutils"
)

type gltfEvent struct {
	Time     float32 `json:"time"`
	Function string  `json:"function"`
	Label    string  `json:"label"`
}

type gltfClipExtras struct {
	StartFrame int         `json:"start_frame"`
	EndFrame   int         `json:"end_frame"`
	Loop       bool        `json:"loop"`
	Events     []gltfEvent `json:"events,omitempty"`
}

func addSampler(a *gltf.Animation, input, output uint32) uint32 {
	a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
		Input:         gltf.Index(input),
		Interpolation: gltf.InterpolationLinear,
		Output:        gltf.Index(output),
	})
	return uint32(len(a.Samplers) - 1)
}

func addChannel(a *gltf.Animation, sampler, node uint32, path gltf.TRSProperty) {
	a.Channels = append(a.Channels, &gltf.Channel{
		Sampler: gltf.Index(sampler),
		Target: gltf.ChannelTarget{
			Node: gltf.Index(node),
			Path: path,
		},
	})
}

// rotationSamples converts euler keys back to quaternions, keeping neighbours in one hemisphere.
func rotationSamples(bc *BoneCurves) [][4]float32 {
	result := make([][4]float32, bc.Euler[0].Len())
	var prev mgl32.Quat
	for j := range result {
		e := mgl32.Vec3{bc.Euler[0].Keys[j].Value, bc.Euler[1].Keys[j].Value, bc.Euler[2].Keys[j].Value}
		q := utils.EulerToQuat(utils.DegreesToRadiansV3(e))
		if j != 0 && prev.Dot(q) < 0 {
			q = q.Scale(-1)
		}
		prev = q
		result[j] = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
	}
	return result
}

// ExportGLTF adds the clip as an animation of the exported skeleton joints.
func (c *Clip) ExportGLTF(gltfCacher *gltfutils.GLTFCacher, skeleton *an.GLTFSkeletonExported) (uint32, error) {
	doc := gltfCacher.Doc
	if skeleton == nil || len(skeleton.JointNodes) == 0 {
		return 0, errors.Errorf("Clip %q has no joints to animate", c.Name)
	}
	if len(c.BoneRotations) > len(skeleton.JointNodes) {
		return 0, errors.Errorf("Clip %q animates %d bones, skeleton has %d",
			c.Name, len(c.BoneRotations), len(skeleton.JointNodes))
	}

	times := c.RootPosition[0].Times()
	if len(times) == 0 {
		return 0, errors.Errorf("Clip %q has no frames", c.Name)
	}

	extras := &gltfClipExtras{
		StartFrame: c.StartFrame,
		EndFrame:   c.EndFrame,
		Loop:       c.Loop,
	}
	for _, ev := range c.Events {
		extras.Events = append(extras.Events, gltfEvent{Time: ev.Time, Function: ev.FunctionName, Label: ev.Label})
	}

	ga := &gltf.Animation{
		Name:   c.Name,
		Extras: extras,
	}

	input := modeler.WriteAccessor(doc, gltf.TargetNone, times)

	positions := make([][3]float32, len(times))
	for j := range positions {
		for axis := range positions[j] {
			positions[j][axis] = c.RootPosition[axis].Keys[j].Value
		}
	}
	output := modeler.WriteAccessor(doc, gltf.TargetNone, positions)
	addChannel(ga, addSampler(ga, input, output), skeleton.JointNodes[0], gltf.TRSTranslation)

	for i := range c.BoneRotations {
		bc := &c.BoneRotations[i]
		output := modeler.WriteAccessor(doc, gltf.TargetNone, rotationSamples(bc))
		addChannel(ga, addSampler(ga, input, output), skeleton.JointNodes[bc.Bone], gltf.TRSRotation)
	}

	doc.Animations = append(doc.Animations, ga)
	return uint32(len(doc.Animations) - 1), nil
}
