// Package config holds the engine settings that a demo or application can override from a TOML
// or YAML file. Every field has a default so a partial file is enough.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned by Load for files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

// Config is the full engine configuration.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Shadow   ShadowConfig   `toml:"shadow" yaml:"shadow"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
	Assets   AssetsConfig   `toml:"assets" yaml:"assets"`
	Shaders  ShadersConfig  `toml:"shaders" yaml:"shaders"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`
}

type RendererConfig struct {
	// TargetFrameRate drives the frame driver; every frame advances the scene by 1/TargetFrameRate.
	TargetFrameRate  float64    `toml:"target_frame_rate" yaml:"target_frame_rate"`
	Composition      bool       `toml:"composition" yaml:"composition"`
	ParallelEncoding int        `toml:"parallel_encoding" yaml:"parallel_encoding"`
	ClearColor       [4]float64 `toml:"clear_color" yaml:"clear_color"`
	Profiler         bool       `toml:"profiler" yaml:"profiler"`
}

// ShadowConfig frames the orthographic shadow projection and sets the depth bias of the shadow pipeline.
type ShadowConfig struct {
	HalfExtent float32 `toml:"half_extent" yaml:"half_extent"`
	Near       float32 `toml:"near" yaml:"near"`
	Far        float32 `toml:"far" yaml:"far"`
	Distance   float32 `toml:"distance" yaml:"distance"`
	// DepthBias is a constant offset in units of the smallest resolvable depth difference.
	DepthBias  int32   `toml:"depth_bias" yaml:"depth_bias"`
	SlopeScale float32 `toml:"slope_scale" yaml:"slope_scale"`
	BiasClamp  float32 `toml:"bias_clamp" yaml:"bias_clamp"`
}

type CameraConfig struct {
	FOV  float32 `toml:"fov" yaml:"fov"`
	Near float32 `toml:"near" yaml:"near"`
	Far  float32 `toml:"far" yaml:"far"`
}

type LoggingConfig struct {
	Level        string `toml:"level" yaml:"level"`
	ReportCaller bool   `toml:"report_caller" yaml:"report_caller"`
}

type AssetsConfig struct {
	Dir string `toml:"dir" yaml:"dir"`
}

type ShadersConfig struct {
	// Dir, when set, replaces the embedded shaders with the .wgsl files found there.
	Dir       string `toml:"dir" yaml:"dir"`
	HotReload bool   `toml:"hot_reload" yaml:"hot_reload"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "obsidian",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Renderer: RendererConfig{
			TargetFrameRate: 60,
			Composition:     true,
			ClearColor:      [4]float64{0.66, 0.9, 0.96, 1},
		},
		Shadow: ShadowConfig{
			HalfExtent: 15,
			Near:       0.1,
			Far:        30,
			Distance:   15,
			DepthBias:  2,
			SlopeScale: 1.0,
			BiasClamp:  0.01,
		},
		Camera: CameraConfig{
			FOV:  100,
			Near: 0.1,
			Far:  1000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Assets: AssetsConfig{
			Dir: "assets",
		},
	}
}

// Load reads path over the defaults. The format is chosen by extension: .toml, .yaml or .yml.
//
// Parameters:
//   - path: the config file
//
// Returns:
//   - *Config: the merged, validated configuration
//   - error: error if the file cannot be read, parsed or fails validation
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	cfg := Default()
	if err := decode(filepath.Ext(path), data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(ext string, data []byte, cfg *Config) error {
	switch strings.ToLower(ext) {
	case ".toml":
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Validate reports the first setting that cannot drive the engine.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width < 0 || c.Window.Height < 0:
		return fmt.Errorf("config: window size %dx%d is negative", c.Window.Width, c.Window.Height)
	case c.Renderer.TargetFrameRate <= 0:
		return fmt.Errorf("config: target_frame_rate must be positive, got %v", c.Renderer.TargetFrameRate)
	case c.Renderer.ParallelEncoding < 0:
		return fmt.Errorf("config: parallel_encoding must not be negative, got %d", c.Renderer.ParallelEncoding)
	case c.Shadow.HalfExtent <= 0:
		return fmt.Errorf("config: shadow half_extent must be positive, got %v", c.Shadow.HalfExtent)
	case c.Shadow.Near < 0 || c.Shadow.Far <= c.Shadow.Near:
		return fmt.Errorf("config: shadow near/far %v/%v is not a valid range", c.Shadow.Near, c.Shadow.Far)
	case c.Shadow.SlopeScale == 0:
		return errors.New("config: shadow slope_scale must be non-zero")
	case c.Camera.FOV <= 0 || c.Camera.FOV >= 180:
		return fmt.Errorf("config: camera fov %v is outside (0, 180)", c.Camera.FOV)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("config: camera near/far %v/%v is not a valid range", c.Camera.Near, c.Camera.Far)
	}
	return nil
}
