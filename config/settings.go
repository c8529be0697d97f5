package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEventFunction = "OnAnimationEvent"
	DefaultEncoding      = "Windows 1252"
)

// SceneSettings pairs a .gm scene with the skeleton animation its skinned buffers refer to.
type SceneSettings struct {
	Animation string `yaml:"animation"`
}

// AnimationSettings pairs a .an file with the .ani clip description that cuts it into clips.
type AnimationSettings struct {
	Clips string `yaml:"clips"`
	// ClipPrefix replaces the default "<animation base name>_" prefix when set.
	ClipPrefix *string `yaml:"clip_prefix"`
}

type Settings struct {
	Encoding            string `yaml:"encoding"`
	EventFunction       string `yaml:"event_function"`
	FlipUVVertical      bool   `yaml:"flip_uv_vertical"`
	FlipTextureVertical bool   `yaml:"flip_texture_vertical"`
	SRGBTextures        bool   `yaml:"srgb_textures"`

	Scenes     map[string]SceneSettings     `yaml:"scenes"`
	Animations map[string]AnimationSettings `yaml:"animations"`
}

func Default() *Settings {
	return &Settings{
		Encoding:      DefaultEncoding,
		EventFunction: DefaultEventFunction,
		SRGBTextures:  true,
		Scenes:        make(map[string]SceneSettings),
		Animations:    make(map[string]AnimationSettings),
	}
}

// LoadSettings reads a yaml settings file on top of the defaults.
// An empty path yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read settings %q", path)
	}
	if err := s.Parse(data); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse settings %q", path)
	}
	return s, nil
}

func (s *Settings) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, s); err != nil {
		return err
	}
	if s.Encoding == "" {
		s.Encoding = DefaultEncoding
	}
	if s.EventFunction == "" {
		s.EventFunction = DefaultEventFunction
	}
	if s.Scenes == nil {
		s.Scenes = make(map[string]SceneSettings)
	}
	if s.Animations == nil {
		s.Animations = make(map[string]AnimationSettings)
	}
	if _, err := FindEncoding(s.Encoding); err != nil {
		return err
	}
	return nil
}
