package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Page tile size. Every virtual page is one fixed Full-HD tile, so the replay
// always has a bounded stage with a known output resolution.
const (
	PageWidth  = 1920
	PageHeight = 1080
)

// Replay modes.
const (
	ModeOriginBox     = "origin-box"
	ModePageMode      = "page-mode"
	ModeCameraPanning = "camera-panning"
	ModeChronological = "chronological"
	ModeLayer         = "layer"
)

// Page transition effects.
const (
	TransitionNone       = "none"
	TransitionFade       = "fade"
	TransitionSlideLeft  = "slide-left"
	TransitionSlideRight = "slide-right"
	TransitionSlideUp    = "slide-up"
	TransitionSlideDown  = "slide-down"
	TransitionZoom       = "zoom"
)

type Config struct {
	Width              int     // 0 = auto (falls back to page size)
	Height             int     // 0 = auto
	Background         string  // hex color, e.g. "#ffffff"
	Mode               string  // one of the Mode* constants
	Transition         string  // one of the Transition* constants
	TransitionDuration float64 // seconds
	PanDuration        float64 // seconds, camera-panning page moves
	FPS                int
	PageByPage         bool // group elements page-by-page before replay
	DebugTint          bool // tint each virtual page on the raster surface
	ShowStats          bool
	BuildVersion       string
}

// ResolveSize returns the effective output resolution. "auto" (zero) falls
// back to the fixed virtual page size so one page fills the frame exactly.
func (c *Config) ResolveSize() (int, int) {
	if c.Width <= 0 || c.Height <= 0 {
		return PageWidth, PageHeight
	}
	return c.Width, c.Height
}

// Settings is the per-invocation animation settings bundle. All constants the
// duration policy depends on live here rather than being hard-coded.
type Settings struct {
	PenDuration     float64 `yaml:"pen_duration"`     // seconds, freehand/highlighter base
	ShapeDuration   float64 `yaml:"shape_duration"`   // seconds, geometric shapes and text
	LibraryDuration float64 `yaml:"library_duration"` // seconds, library components
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // divides freehand/highlighter durations
	ElementDelay    float64 `yaml:"element_delay"`    // seconds paused between elements

	TrueSpeed        bool    `yaml:"true_speed"`        // pencil duration ∝ arc length
	PixelsPerSecond  float64 `yaml:"pixels_per_second"` // true-speed drawing rate
	MinDuration      float64 `yaml:"min_duration"`      // true-speed clamp floor, seconds
	MaxDuration      float64 `yaml:"max_duration"`      // true-speed clamp ceiling, seconds
	MinPathLength    float64 `yaml:"min_path_length"`   // length floor for non-path elements
	FallbackDuration float64 `yaml:"fallback_duration"` // seconds when nothing else applies

	// ElementDurations, when non-empty, overrides the computed duration for
	// the element at the same timeline index (true-speed precomputation).
	ElementDurations []float64 `yaml:"element_durations,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		PenDuration:      1.0,
		ShapeDuration:    0.8,
		LibraryDuration:  1.2,
		SpeedMultiplier:  1.0,
		ElementDelay:     0.25,
		PixelsPerSecond:  400,
		MinDuration:      0.1,
		MaxDuration:      10.0,
		MinPathLength:    10,
		FallbackDuration: 1.5,
	}
}

// ReadSettings reads a settings bundle from a YAML file. Zero-valued fields
// are filled from the defaults so partial files stay valid.
func ReadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("settings parse error: %w", err)
	}
	s.Normalize()
	return &s, nil
}

// WriteSettings writes a settings bundle to a YAML file.
func WriteSettings(s *Settings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Normalize clamps nonsensical values back to usable defaults.
func (s *Settings) Normalize() {
	def := DefaultSettings()
	if s.SpeedMultiplier <= 0 {
		s.SpeedMultiplier = def.SpeedMultiplier
	}
	if s.PixelsPerSecond <= 0 {
		s.PixelsPerSecond = def.PixelsPerSecond
	}
	if s.MinDuration <= 0 {
		s.MinDuration = def.MinDuration
	}
	if s.MaxDuration < s.MinDuration {
		s.MaxDuration = def.MaxDuration
	}
	if s.MinPathLength <= 0 {
		s.MinPathLength = def.MinPathLength
	}
	if s.FallbackDuration <= 0 {
		s.FallbackDuration = def.FallbackDuration
	}
	if s.ElementDelay < 0 {
		s.ElementDelay = 0
	}
}
