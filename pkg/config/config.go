// Package config provides configuration loading and management for
// cubefind. It handles loading parameters from YAML files and supplies
// the defaults each pipeline stage falls back to, following the
// teacher's own pkg/config: a YAML-tagged struct with
// DefaultConfig/LoadConfig/SaveConfig.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"cubefind/pkg/kernels"
)

// Config is the top-level parameter document, matching SPEC_FULL.md §6's
// input/scfind/scaleNoise/linker schema.
type Config struct {
	Input struct {
		// Cube is the path to the input FITS-subset data cube.
		Cube string `yaml:"cube"`
		// Weights is an optional path to a weights cube divided into
		// Cube before any other processing.
		Weights string `yaml:"weights"`
		// Region restricts loading to "xmin,xmax,ymin,ymax,zmin,zmax";
		// empty means the full cube.
		Region string `yaml:"region"`
	} `yaml:"input"`

	ScFind struct {
		// KernelsSpatial lists the Gaussian FWHM values to try, in pixels.
		KernelsSpatial []float64 `yaml:"kernelsSpatial"`
		// KernelsSpectral lists the boxcar widths to try, in channels.
		KernelsSpectral []int `yaml:"kernelsSpectral"`
		// Threshold is the relative flux threshold in units of noise.
		Threshold float64 `yaml:"threshold"`
		// MaskScaleXY scales the rms used to clip already-detected
		// pixels between smoothing iterations.
		MaskScaleXY float64 `yaml:"maskScaleXY"`
		// Statistic selects the noise estimator: "std", "mad" or "gauss".
		Statistic string `yaml:"statistic"`
		// FluxRange restricts the noise estimate: "full", "negative" or
		// "positive".
		FluxRange string `yaml:"fluxRange"`
	} `yaml:"scfind"`

	ScaleNoise struct {
		// Enable turns on noise scaling ahead of the S+C finder.
		Enable bool `yaml:"enable"`
		// Mode is "global" or "local".
		Mode string `yaml:"mode"`
		// Statistic and FluxRange mirror scfind's, applied to the noise
		// measurement used for scaling.
		Statistic string `yaml:"statistic"`
		FluxRange string `yaml:"fluxRange"`
		// WindowSpatial/WindowSpectral size the local noise window; only
		// used when Mode == "local".
		WindowSpatial  int `yaml:"windowSpatial"`
		WindowSpectral int `yaml:"windowSpectral"`
		// GridSpatial/GridSpectral coarsen the grid the local noise
		// surface is evaluated on before optional interpolation.
		GridSpatial  int  `yaml:"gridSpatial"`
		GridSpectral int  `yaml:"gridSpectral"`
		Interpolate  bool `yaml:"interpolate"`
	} `yaml:"scaleNoise"`

	Linker struct {
		RadiusX int `yaml:"radiusX"`
		RadiusY int `yaml:"radiusY"`
		RadiusZ int `yaml:"radiusZ"`
		MinSizeX int `yaml:"minSizeX"`
		MinSizeY int `yaml:"minSizeY"`
		MinSizeZ int `yaml:"minSizeZ"`
		// RemoveNegative defaults to true; see SPEC_FULL.md §4.F.1.
		RemoveNegative bool `yaml:"removeNegative"`
	} `yaml:"linker"`
}

// DefaultConfig returns a Config with the reference's conventional
// defaults: no smoothing, a 5-sigma threshold, negative-flux-only noise
// estimation, and negative sources removed.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.ScFind.KernelsSpatial = []float64{0}
	cfg.ScFind.KernelsSpectral = []int{0}
	cfg.ScFind.Threshold = 5.0
	cfg.ScFind.MaskScaleXY = 2.0
	cfg.ScFind.Statistic = "std"
	cfg.ScFind.FluxRange = "negative"

	cfg.ScaleNoise.Enable = false
	cfg.ScaleNoise.Mode = "global"
	cfg.ScaleNoise.Statistic = "std"
	cfg.ScaleNoise.FluxRange = "negative"
	cfg.ScaleNoise.WindowSpatial = 25
	cfg.ScaleNoise.WindowSpectral = 15
	cfg.ScaleNoise.GridSpatial = 0
	cfg.ScaleNoise.GridSpectral = 0
	cfg.ScaleNoise.Interpolate = true

	cfg.Linker.RadiusX, cfg.Linker.RadiusY, cfg.Linker.RadiusZ = 1, 1, 1
	cfg.Linker.RemoveNegative = true

	return cfg
}

// LoadConfig loads configuration from a YAML file, layered onto
// DefaultConfig. If the file doesn't exist, the defaults are returned.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file, creating parent
// directories as needed.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// CreateDefaultConfigFile writes a default configuration file at path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// ParseFluxRange maps the config's "full"/"negative"/"positive" strings
// onto kernels.FluxRange, defaulting to RangeFull for anything else.
func ParseFluxRange(s string) kernels.FluxRange {
	switch s {
	case "negative":
		return kernels.RangeNegative
	case "positive":
		return kernels.RangePositive
	default:
		return kernels.RangeFull
	}
}
