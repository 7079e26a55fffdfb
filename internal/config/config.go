// Package config loads and saves rig descriptions as YAML and resolves them
// into solver constraints.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Bubblyworld/slackline/internal/dynamics"
	"github.com/Bubblyworld/slackline/internal/line"
	"github.com/Bubblyworld/slackline/internal/statics"
)

const (
	DefaultGapLength = 30.0
	DefaultTension   = 2000.0
	DefaultNodes     = 65
	DefaultDuration  = 10.0
	DefaultFrames    = 300
	DefaultWidth     = 2.0
)

type Config struct {
	Line          string        `yaml:"line"` // webbing name from the catalog
	GapLength     float64       `yaml:"gap_length"`
	AnchorTension float64       `yaml:"anchor_tension"`
	NaturalLength float64       `yaml:"natural_length"`
	Form          string        `yaml:"form"`
	Loads         []LoadConfig  `yaml:"loads"`
	Dynamic       DynamicConfig `yaml:"dynamic"`
}

type LoadConfig struct {
	Position float64 `yaml:"position"`
	Mass     float64 `yaml:"mass"`
}

type DynamicConfig struct {
	Nodes        int     `yaml:"nodes"`
	Damping      float64 `yaml:"damping"`
	TensionFloor float64 `yaml:"tension_floor"`
	Duration     float64 `yaml:"duration"`
	Frames       int     `yaml:"frames"`

	// Scenario is one of "none", "pluck", "bounce", "impulse". Position
	// defaults to midspan; the remaining fields apply per scenario.
	Scenario     string  `yaml:"scenario"`
	Position     float64 `yaml:"position"`
	Displacement float64 `yaml:"displacement"`
	Width        float64 `yaml:"width"`
	Frequency    float64 `yaml:"frequency"`
	Amplitude    float64 `yaml:"amplitude"`
	Phase        float64 `yaml:"phase"`
	Magnitude    float64 `yaml:"magnitude"`
	Kick         float64 `yaml:"kick_duration"`
}

func DefaultConfig() *Config {
	return &Config{
		Line:          line.DyneemitePro.Name,
		GapLength:     DefaultGapLength,
		AnchorTension: DefaultTension,
		Dynamic: DynamicConfig{
			Nodes:        DefaultNodes,
			Duration:     DefaultDuration,
			Frames:       DefaultFrames,
			Width:        DefaultWidth,
			Displacement: -0.3,
			Frequency:    1.0,
			Amplitude:    400,
			Magnitude:    800,
			Kick:         0.3,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Statics resolves the config into solver constraints, looking the webbing
// up in the catalog.
func (c *Config) Statics() (statics.Constraints, error) {
	w, err := line.ByName(c.Line)
	if err != nil {
		return statics.Constraints{}, err
	}
	cons := statics.Constraints{
		Line:          w,
		GapLength:     c.GapLength,
		AnchorTension: c.AnchorTension,
		NaturalLength: c.NaturalLength,
		Form:          c.Form,
	}
	for _, ld := range c.Loads {
		cons.Loads = append(cons.Loads, statics.PointLoad{Position: ld.Position, Mass: ld.Mass})
	}
	return cons, nil
}

// Dynamics resolves the config into simulation constraints.
func (c *Config) Dynamics() (dynamics.Constraints, error) {
	st, err := c.Statics()
	if err != nil {
		return dynamics.Constraints{}, err
	}
	return dynamics.Constraints{
		Static:       st,
		Nodes:        c.Dynamic.Nodes,
		Damping:      c.Dynamic.Damping,
		TensionFloor: c.Dynamic.TensionFloor,
	}, nil
}

// SimOptions builds the run options, wiring the configured scenario into a
// perturbation or forcing.
func (c *Config) SimOptions() (dynamics.SimOptions, error) {
	opt := dynamics.SimOptions{
		TEnd:   c.Dynamic.Duration,
		Frames: c.Dynamic.Frames,
	}
	pos := c.Dynamic.Position
	if pos == 0 {
		pos = c.GapLength / 2
	}
	switch c.Dynamic.Scenario {
	case "", "none":
	case "pluck":
		opt.Perturbation = dynamics.Pluck(pos, c.Dynamic.Displacement, c.Dynamic.Width)
	case "bounce":
		opt.Forcing = dynamics.Bounce(pos, c.Dynamic.Frequency, c.Dynamic.Amplitude, c.Dynamic.Phase)
	case "impulse":
		opt.Forcing = dynamics.Impulse(pos, c.Dynamic.Magnitude, c.Dynamic.Kick)
	default:
		return opt, fmt.Errorf("unknown scenario %q", c.Dynamic.Scenario)
	}
	return opt, nil
}
