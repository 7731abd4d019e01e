// Package config loads fxrack settings from defaults, an optional config
// file and FXRACK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cwbudde/algo-fxrack/dsp/clipper"
	"github.com/cwbudde/algo-fxrack/dsp/dither"
	"github.com/cwbudde/algo-fxrack/dsp/effectchain"
	"github.com/cwbudde/algo-fxrack/dsp/resample"
	"github.com/cwbudde/algo-fxrack/dsp/spectral"
	"github.com/cwbudde/algo-fxrack/internal/logger"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FXRACK_ENGINE_SLOTS.
const EnvPrefix = "FXRACK"

type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Spectral SpectralConfig `mapstructure:"spectral"`
	Clipper  ClipperConfig  `mapstructure:"clipper"`
	Render   RenderConfig   `mapstructure:"render"`
	Log      logger.Config  `mapstructure:"log"`
	Session  SessionConfig  `mapstructure:"session"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type EngineConfig struct {
	SampleRate   float64       `mapstructure:"sample_rate"`
	BlockSize    int           `mapstructure:"block_size"`
	Channels     int           `mapstructure:"channels"`
	Slots        int           `mapstructure:"slots"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type AnalysisConfig struct {
	FFTOrder         int     `mapstructure:"fft_order"`
	QueueCapacity    int     `mapstructure:"queue_capacity"`
	FloorDB          float64 `mapstructure:"floor_db"`
	StagingBlockSize int     `mapstructure:"staging_block_size"`
	ScopeBlockSize   int     `mapstructure:"scope_block_size"`
}

type SpectralConfig struct {
	FFTOrder int `mapstructure:"fft_order"`
	Overlap  int `mapstructure:"overlap"`
}

type ClipperConfig struct {
	Threshold        float64 `mapstructure:"threshold"`
	MaxIterations    int     `mapstructure:"max_iterations"`
	SoftStartSeconds float64 `mapstructure:"soft_start_seconds"`
	Hyperbolic       string  `mapstructure:"hyperbolic"`
}

// RenderConfig controls offline WAV output.
type RenderConfig struct {
	BitDepth     int    `mapstructure:"bit_depth"`
	Dither       string `mapstructure:"dither"`
	NoiseShaping bool   `mapstructure:"noise_shaping"`
	Quality      string `mapstructure:"resample_quality"`
}

type SessionConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration. An empty path searches for fxrack.{yaml,toml,json}
// in the working directory and the user config directory; a missing file is
// not an error then. An explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fxrack")
		v.AddConfigPath(".")

		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "fxrack"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration Load produces with no file and no
// environment overrides.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)

	return &cfg
}

func setDefaults(v *viper.Viper) {
	rack := effectchain.DefaultConfig()
	lg := logger.DefaultConfig()

	v.SetDefault("engine.sample_rate", rack.SampleRate)
	v.SetDefault("engine.block_size", rack.BlockSize)
	v.SetDefault("engine.channels", rack.Channels)
	v.SetDefault("engine.slots", rack.Slots)
	v.SetDefault("engine.poll_interval", effectchain.DefaultPollInterval)

	v.SetDefault("analysis.fft_order", spectral.DefaultAnalyzerOrder)
	v.SetDefault("analysis.queue_capacity", rack.StagingCapacity)
	v.SetDefault("analysis.floor_db", spectral.DefaultFloorDB)
	v.SetDefault("analysis.staging_block_size", rack.StagingBlockSize)
	v.SetDefault("analysis.scope_block_size", rack.ScopeBlockSize)

	v.SetDefault("spectral.fft_order", rack.SpectralOrder)
	v.SetDefault("spectral.overlap", rack.SpectralOverlap)

	v.SetDefault("clipper.threshold", rack.Clipper.Threshold)
	v.SetDefault("clipper.max_iterations", rack.Clipper.MaxIterations)
	v.SetDefault("clipper.soft_start_seconds", rack.Clipper.SoftStartSeconds)
	v.SetDefault("clipper.hyperbolic", rack.Clipper.Hyperbolic.String())

	v.SetDefault("render.bit_depth", 24)
	v.SetDefault("render.dither", "tpdf")
	v.SetDefault("render.noise_shaping", false)
	v.SetDefault("render.resample_quality", "balanced")

	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.console", lg.Console)
	v.SetDefault("log.json", lg.JSONFormat)
	v.SetDefault("log.caller", lg.Caller)
	v.SetDefault("log.file", lg.File)
	v.SetDefault("log.file_path", lg.FilePath)
	v.SetDefault("log.max_size", lg.MaxSize)
	v.SetDefault("log.max_backups", lg.MaxBackups)
	v.SetDefault("log.max_age", lg.MaxAge)

	v.SetDefault("session.path", "fxrack.db")
}

// Validate checks every section that maps onto a typed setting.
func (c *Config) Validate() error {
	rack, err := c.Rack()
	if err != nil {
		return err
	}

	if err := rack.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if c.Engine.PollInterval <= 0 {
		return fmt.Errorf("config: engine.poll_interval must be > 0: %s", c.Engine.PollInterval)
	}

	if _, err := c.DitherOptions(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if _, err := c.ResampleQuality(); err != nil {
		return err
	}

	if c.Session.Path == "" {
		return errors.New("config: session.path is empty")
	}

	return nil
}

// Rack converts the engine, analysis, spectral and clipper sections.
func (c *Config) Rack() (effectchain.Config, error) {
	mode, ok := clipper.ParseHyperbolicMode(strings.ToLower(c.Clipper.Hyperbolic))
	if !ok {
		return effectchain.Config{}, fmt.Errorf("config: clipper.hyperbolic must be fast or exact: %q", c.Clipper.Hyperbolic)
	}

	return effectchain.Config{
		Slots:            c.Engine.Slots,
		SampleRate:       c.Engine.SampleRate,
		BlockSize:        c.Engine.BlockSize,
		Channels:         c.Engine.Channels,
		StagingBlockSize: c.Analysis.StagingBlockSize,
		StagingCapacity:  c.Analysis.QueueCapacity,
		ScopeBlockSize:   c.Analysis.ScopeBlockSize,
		SpectralOrder:    c.Spectral.FFTOrder,
		SpectralOverlap:  c.Spectral.Overlap,
		Clipper: effectchain.ClipperConfig{
			Threshold:        c.Clipper.Threshold,
			MaxIterations:    c.Clipper.MaxIterations,
			SoftStartSeconds: c.Clipper.SoftStartSeconds,
			Hyperbolic:       mode,
		},
	}, nil
}

// AnalyzerOptions configures spectrum analyzers fed from analysis staging.
func (c *Config) AnalyzerOptions() []spectral.AnalyzerOption {
	return []spectral.AnalyzerOption{
		spectral.WithAnalyzerOrder(c.Analysis.FFTOrder),
		spectral.WithFloorDB(c.Analysis.FloorDB),
		spectral.WithQueueCapacity(c.Analysis.QueueCapacity),
	}
}

// DitherOptions converts the render section into quantizer options.
func (c *Config) DitherOptions() ([]dither.Option, error) {
	dt, err := dither.ParseDitherType(c.Render.Dither)
	if err != nil {
		return nil, err
	}

	if c.Render.BitDepth != 16 && c.Render.BitDepth != 24 {
		return nil, fmt.Errorf("render.bit_depth must be 16 or 24: %d", c.Render.BitDepth)
	}

	return []dither.Option{
		dither.WithBitDepth(c.Render.BitDepth),
		dither.WithDitherType(dt),
		dither.WithNoiseShaping(c.Render.NoiseShaping),
	}, nil
}

// ResampleQuality parses render.resample_quality.
func (c *Config) ResampleQuality() (resample.Quality, error) {
	switch strings.ToLower(c.Render.Quality) {
	case "fast":
		return resample.QualityFast, nil
	case "balanced", "":
		return resample.QualityBalanced, nil
	case "best":
		return resample.QualityBest, nil
	default:
		return resample.QualityBalanced, fmt.Errorf("config: render.resample_quality must be fast, balanced or best: %q", c.Render.Quality)
	}
}
