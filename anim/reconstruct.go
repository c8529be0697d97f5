// Package anim cuts a skeleton animation into clips as described by a clip description
// and turns the frame samples into continuous per-bone curves.
package anim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/aop_browser/config"
	"github.com/mogaika/aop_browser/convention"
	"github.com/mogaika/aop_browser/pack/an"
	"github.com/mogaika/aop_browser/pack/ani"
	"github.com/mogaika/aop_browser/utils"
)

const (
	keyStartTime = "start_time"
	keyEndTime   = "end_time"
	keyLoop      = "loop"
	keyEvent     = "event"
)

// UnresolvedSectionError reports a clip section that could not be turned into a clip.
type UnresolvedSectionError struct {
	Section string
	Reason  string
}

func (e *UnresolvedSectionError) Error() string {
	return fmt.Sprintf("Section [%s] skipped: %s", e.Section, e.Reason)
}

// UnparsableEventFrameError reports a dropped event entry.
type UnparsableEventFrameError struct {
	Section string
	Value   string
}

func (e *UnparsableEventFrameError) Error() string {
	return fmt.Sprintf("Section [%s]: event %q has no frame number", e.Section, e.Value)
}

type Event struct {
	Time         float32
	FunctionName string
	Label        string
}

// BoneCurves holds euler rotation curves of one bone, in degrees.
type BoneCurves struct {
	Bone  int
	Path  string
	Euler [3]Curve
}

type Clip struct {
	Name       string
	FrameRate  float32
	StartFrame int
	EndFrame   int

	Loop      bool
	LoopTime  bool
	LoopBlend bool
	StopTime  float32

	// RootPosition drives bone 0.
	RootPosition  [3]Curve
	BoneRotations []BoneCurves
	Events        []Event
}

type Result struct {
	Clips []*Clip
	// Diagnostics are problems isolated to a single section or event.
	Diagnostics []error
}

type Options struct {
	// Prefix of clip names, "<animation name>_" when nil.
	Prefix *string
	// EventFunction defaults to config.DefaultEventFunction.
	EventFunction string
}

func (o Options) prefix(a *an.Animation) string {
	if o.Prefix != nil {
		return *o.Prefix
	}
	if a.Name == "" {
		return ""
	}
	return a.Name + "_"
}

func (o Options) eventFunction() string {
	if o.EventFunction != "" {
		return o.EventFunction
	}
	return config.DefaultEventFunction
}

// Reconstruct builds a clip per usable section of d. Sections without a name are not clips
// and are skipped without a diagnostic.
func Reconstruct(a *an.Animation, d *ani.Description, opts Options) (*Result, error) {
	if a == nil || d == nil {
		return nil, errors.Errorf("Nothing to reconstruct")
	}
	if !(a.FPS > 0) {
		return nil, errors.Errorf("Invalid frame rate %v", a.FPS)
	}

	result := &Result{
		Clips:       make([]*Clip, 0),
		Diagnostics: make([]error, 0),
	}

	for _, s := range d.Sections {
		if s.Name == "" {
			continue
		}
		clip, err := reconstructClip(a, s, opts, result)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, err)
			continue
		}
		result.Clips = append(result.Clips, clip)
	}
	return result, nil
}

func frameRange(a *an.Animation, s *ani.Section) (int, int, error) {
	rawStart, okStart := s.First(keyStartTime)
	rawEnd, okEnd := s.First(keyEndTime)
	if !okStart || !okEnd {
		return 0, 0, &UnresolvedSectionError{Section: s.Name, Reason: "start_time or end_time is missing"}
	}
	start, err := strconv.Atoi(rawStart)
	if err != nil {
		return 0, 0, &UnresolvedSectionError{Section: s.Name, Reason: fmt.Sprintf("start_time %q is not a frame", rawStart)}
	}
	end, err := strconv.Atoi(rawEnd)
	if err != nil {
		return 0, 0, &UnresolvedSectionError{Section: s.Name, Reason: fmt.Sprintf("end_time %q is not a frame", rawEnd)}
	}
	if end < start {
		return 0, 0, &UnresolvedSectionError{Section: s.Name, Reason: fmt.Sprintf("end_time %d precedes start_time %d", end, start)}
	}
	if start < 0 || end >= a.FrameCount {
		return 0, 0, &UnresolvedSectionError{
			Section: s.Name,
			Reason:  fmt.Sprintf("frames %d..%d are outside of the %d animation frames", start, end, a.FrameCount),
		}
	}
	return start, end, nil
}

func reconstructClip(a *an.Animation, s *ani.Section, opts Options, result *Result) (*Clip, error) {
	start, end, err := frameRange(a, s)
	if err != nil {
		return nil, err
	}

	dur := a.FrameDuration()
	clip := &Clip{
		Name:       opts.prefix(a) + s.Name,
		FrameRate:  a.FPS,
		StartFrame: start,
		EndFrame:   end,
		StopTime:   float32(end-start) * dur,
	}

	if raw, ok := s.First(keyLoop); ok {
		loop, err := strconv.ParseBool(raw)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics,
				errors.Errorf("Section [%s]: loop %q is not a boolean", s.Name, raw))
		}
		clip.Loop = loop
	}
	clip.LoopTime = clip.Loop
	clip.LoopBlend = clip.Loop

	frames := end - start + 1
	times := make([]float32, frames)
	for j := range times {
		times[j] = float32(j) * dur
	}

	var positions [3][]float32
	for axis := range positions {
		positions[axis] = make([]float32, frames)
	}
	for j := 0; j < frames; j++ {
		p := convention.Skinned.Position(a.RootPositions[start+j])
		for axis := range positions {
			positions[axis][j] = p[axis]
		}
	}
	for axis := range positions {
		clip.RootPosition[axis] = NewLinearCurve(times, positions[axis])
	}

	clip.BoneRotations = make([]BoneCurves, a.BoneCount)
	for iBone := range clip.BoneRotations {
		clip.BoneRotations[iBone] = boneCurves(a, iBone, start, times)
	}

	clip.Events = make([]Event, 0)
	for _, value := range s.Get(keyEvent) {
		ev, err := parseEvent(s.Name, value)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, err)
			continue
		}
		clip.Events = append(clip.Events, Event{
			Time:         float32(ev.frame-start) * dur,
			FunctionName: opts.eventFunction(),
			Label:        ev.label,
		})
	}

	return clip, nil
}

func boneCurves(a *an.Animation, iBone, start int, times []float32) BoneCurves {
	var angles [3][]float32
	for axis := range angles {
		angles[axis] = make([]float32, len(times))
	}

	var u Unwrapper
	for j := range times {
		q := convention.Skinned.Rotation(a.Rotation(iBone, start+j)).Normalize()
		e := u.Next(utils.RadiansToDegreesV3(utils.QuatToEuler(q)))
		for axis := range angles {
			angles[axis][j] = e[axis]
		}
	}

	bc := BoneCurves{Bone: iBone, Path: a.BonePath(iBone)}
	for axis := range angles {
		bc.Euler[axis] = NewLinearCurve(times, angles[axis])
	}
	return bc
}

type rawEvent struct {
	label string
	frame int
}

// parseEvent reads `"label", frame`. Empty items between commas do not count.
func parseEvent(section, value string) (rawEvent, error) {
	parts := make([]string, 0, 2)
	for _, part := range strings.Split(value, ",") {
		if part != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}
	if len(parts) < 2 {
		return rawEvent{}, &UnparsableEventFrameError{Section: section, Value: value}
	}
	frame, err := strconv.Atoi(parts[1])
	if err != nil {
		return rawEvent{}, &UnparsableEventFrameError{Section: section, Value: value}
	}
	return rawEvent{label: strings.Trim(parts[0], `"`), frame: frame}, nil
}

// Rotation samples the bone rotation at t seconds into the clip.
func (bc *BoneCurves) Rotation(t float32) mgl32.Quat {
	e := mgl32.Vec3{bc.Euler[0].Evaluate(t), bc.Euler[1].Evaluate(t), bc.Euler[2].Evaluate(t)}
	return utils.EulerToQuat(utils.DegreesToRadiansV3(e))
}

// Position samples the root position at t seconds into the clip.
func (c *Clip) Position(t float32) mgl32.Vec3 {
	return mgl32.Vec3{c.RootPosition[0].Evaluate(t), c.RootPosition[1].Evaluate(t), c.RootPosition[2].Evaluate(t)}
}
