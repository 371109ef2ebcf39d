package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Config holds runtime configuration for the viewer and app behavior.
// It is loaded once at startup, optionally overridden by command-line flags,
// and passed by pointer afterwards. Nothing mutates it after Load returns.
type Config struct {
	Debug bool `json:"debug"`

	// Pyramid / decoding
	HugeThreshold      int    `json:"huge_threshold"` // side of the square whose area marks an image as huge
	BandHeight         int    `json:"band_height"`
	Reduction          int    `json:"reduction"`
	PyramidTopSize     int    `json:"pyramid_top_size"`
	Filter             string `json:"filter"`
	MaxFullDecodeBytes int64  `json:"max_full_decode_bytes"`

	// Zoom / pan
	ZoomDelta         float64 `json:"zoom_delta"`
	MinImageSide      int     `json:"min_image_side"`
	KeyScrollFraction float64 `json:"key_scroll_fraction"`
	ClickSlop         int     `json:"click_slop"`

	// Magnifier
	MagnifierSize       int     `json:"magnifier_size"`
	MagnifierMultiplier float64 `json:"magnifier_multiplier"`

	// Markers
	MarkerRadius int `json:"marker_radius"`

	// Window
	ViewportWidth  int    `json:"viewport_width"`
	ViewportHeight int    `json:"viewport_height"`
	Background     string `json:"background"`
	DarkMode       bool   `json:"dark_mode"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:               false,
		HugeThreshold:       14000,
		BandHeight:          1024,
		Reduction:           2,
		PyramidTopSize:      512,
		Filter:              "lanczos",
		MaxFullDecodeBytes:  2 << 30,
		ZoomDelta:           1.3,
		MinImageSide:        30,
		KeyScrollFraction:   0.1,
		ClickSlop:           3,
		MagnifierSize:       120,
		MagnifierMultiplier: 2.5,
		MarkerRadius:        5,
		ViewportWidth:       800,
		ViewportHeight:      600,
		Background:          "#1e293b",
		DarkMode:            false,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.HugeThreshold <= 0 {
		c.HugeThreshold = d.HugeThreshold
	}
	if c.BandHeight <= 0 {
		c.BandHeight = d.BandHeight
	}
	if c.Reduction < 2 {
		c.Reduction = d.Reduction
	}
	if c.PyramidTopSize < 16 {
		c.PyramidTopSize = d.PyramidTopSize
	}
	if c.Filter == "" {
		c.Filter = d.Filter
	}
	if c.MaxFullDecodeBytes < 0 {
		c.MaxFullDecodeBytes = 0
	}
	if c.ZoomDelta <= 1 {
		c.ZoomDelta = d.ZoomDelta
	}
	if c.MinImageSide <= 0 {
		c.MinImageSide = d.MinImageSide
	}
	if c.KeyScrollFraction <= 0 || c.KeyScrollFraction > 1 {
		c.KeyScrollFraction = d.KeyScrollFraction
	}
	if c.ClickSlop < 0 {
		c.ClickSlop = d.ClickSlop
	}
	if c.MagnifierSize < 8 {
		c.MagnifierSize = d.MagnifierSize
	}
	if c.MagnifierMultiplier <= 0 {
		c.MagnifierMultiplier = d.MagnifierMultiplier
	}
	if c.MarkerRadius <= 0 {
		c.MarkerRadius = d.MarkerRadius
	}
	if c.ViewportWidth < 100 {
		c.ViewportWidth = 100
	}
	if c.ViewportHeight < 100 {
		c.ViewportHeight = 100
	}
	if c.Background == "" {
		c.Background = d.Background
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "probedoc", "config.json")
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
// Missing parent directories are created.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
