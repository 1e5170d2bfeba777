package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"honnef.co/go/curve"

	"DotDrawer/internal/state"
)

type Grid struct {
	DotSize float64 `toml:"dot_size"`
	Spacing float64 `toml:"spacing"`
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
}

type Curve struct {
	Multiplier float64 `toml:"multiplier"`
}

type Minimap struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type Preview struct {
	Width       float64 `toml:"width"`
	Height      float64 `toml:"height"`
	StrokeWidth float64 `toml:"stroke_width"`
	PDF         bool    `toml:"pdf"`
}

type Share struct {
	Port      int  `toml:"port"`
	Advertise bool `toml:"advertise"`
}

// Config is the on-disk configuration of a drawing session.
type Config struct {
	OutputDir string  `toml:"output_dir"`
	Grid      Grid    `toml:"grid"`
	Curve     Curve   `toml:"curve"`
	Minimap   Minimap `toml:"minimap"`
	Preview   Preview `toml:"preview"`
	Share     Share   `toml:"share"`
}

// Default returns the settings of a phone-sized canvas of small dots.
func Default() Config {
	return Config{
		OutputDir: ".",
		Grid: Grid{
			DotSize: 3,
			Spacing: 0.2,
			Width:   390,
			Height:  744,
		},
		Curve:   Curve{Multiplier: 10},
		Minimap: Minimap{Width: 80, Height: 100},
		Preview: Preview{
			Width:       390,
			Height:      744,
			StrokeWidth: 2,
			PDF:         true,
		},
		Share: Share{Port: 8888, Advertise: true},
	}
}

// Load reads path on top of Default. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("loading config %s: unknown key %q", path, undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot drive a session.
func (c Config) Validate() error {
	switch {
	case c.Grid.DotSize <= 0:
		return errors.New("grid.dot_size must be positive")
	case c.Grid.Spacing < 0:
		return errors.New("grid.spacing must not be negative")
	case c.Grid.Width <= 0 || c.Grid.Height <= 0:
		return errors.New("grid extent must be positive")
	case c.Curve.Multiplier <= 0:
		return errors.New("curve.multiplier must be positive")
	case c.Minimap.Width <= 0 || c.Minimap.Height <= 0:
		return errors.New("minimap extent must be positive")
	case c.Preview.Width <= 0 || c.Preview.Height <= 0:
		return errors.New("preview extent must be positive")
	case c.Share.Port < 0 || c.Share.Port > 65535:
		return fmt.Errorf("share.port %d out of range", c.Share.Port)
	}
	return nil
}

// StateGrid returns the dot lattice described by the grid section.
func (c Config) StateGrid() state.Grid {
	return state.Grid{
		DotSize: c.Grid.DotSize,
		Spacing: c.Grid.Spacing,
		Width:   c.Grid.Width,
		Height:  c.Grid.Height,
	}
}

func (c Config) MinimapSize() curve.Size {
	return curve.Sz(c.Minimap.Width, c.Minimap.Height)
}

func (c Config) PreviewSize() curve.Size {
	return curve.Sz(c.Preview.Width, c.Preview.Height)
}
