package effectchain

import (
	"fmt"

	"github.com/cwbudde/algo-fxrack/dsp/clipper"
	"github.com/cwbudde/algo-fxrack/dsp/spectral"
)

// Defaults for Config fields left at their zero value.
const (
	DefaultSlots             = 8
	DefaultSampleRate        = 48000.0
	DefaultBlockSize         = 512
	DefaultChannels          = 2
	DefaultStagingBlockSize  = 512
	DefaultScopeBlockSize    = 512
	DefaultSpectralOrder     = spectral.DefaultOverlapOrder
	DefaultSpectralOverlap   = spectral.DefaultOverlap
	DefaultStagingQueueSlots = spectral.DefaultQueueCapacity
)

// ClipperConfig tunes the analog clipper solver.
type ClipperConfig struct {
	Threshold        float64
	MaxIterations    int
	SoftStartSeconds float64
	Hyperbolic       clipper.HyperbolicMode
}

// Config describes a rack.
type Config struct {
	// Slots is the number of user slots N; modules live in [1, N].
	Slots int

	SampleRate float64
	BlockSize  int
	Channels   int

	// StagingBlockSize and StagingCapacity shape the analysis FIFOs.
	StagingBlockSize int
	StagingCapacity  int
	ScopeBlockSize   int

	SpectralOrder   int
	SpectralOverlap int

	Clipper ClipperConfig
}

// DefaultConfig returns the stock rack configuration.
func DefaultConfig() Config {
	return Config{
		Slots:            DefaultSlots,
		SampleRate:       DefaultSampleRate,
		BlockSize:        DefaultBlockSize,
		Channels:         DefaultChannels,
		StagingBlockSize: DefaultStagingBlockSize,
		StagingCapacity:  DefaultStagingQueueSlots,
		ScopeBlockSize:   DefaultScopeBlockSize,
		SpectralOrder:    DefaultSpectralOrder,
		SpectralOverlap:  DefaultSpectralOverlap,
		Clipper: ClipperConfig{
			Threshold:        clipper.DefaultThreshold,
			MaxIterations:    clipper.DefaultMaxIterations,
			SoftStartSeconds: clipper.DefaultSoftStartSeconds,
			Hyperbolic:       clipper.HyperbolicFast,
		},
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()

	if c.Slots == 0 {
		c.Slots = d.Slots
	}

	if c.SampleRate == 0 {
		c.SampleRate = d.SampleRate
	}

	if c.BlockSize == 0 {
		c.BlockSize = d.BlockSize
	}

	if c.Channels == 0 {
		c.Channels = d.Channels
	}

	if c.StagingBlockSize == 0 {
		c.StagingBlockSize = d.StagingBlockSize
	}

	if c.StagingCapacity == 0 {
		c.StagingCapacity = d.StagingCapacity
	}

	if c.ScopeBlockSize == 0 {
		c.ScopeBlockSize = d.ScopeBlockSize
	}

	if c.SpectralOrder == 0 {
		c.SpectralOrder = d.SpectralOrder
	}

	if c.SpectralOverlap == 0 {
		c.SpectralOverlap = d.SpectralOverlap
	}

	if c.Clipper.Threshold == 0 {
		c.Clipper.Threshold = d.Clipper.Threshold
	}

	if c.Clipper.MaxIterations == 0 {
		c.Clipper.MaxIterations = d.Clipper.MaxIterations
	}

	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()

	switch {
	case c.Slots < 1:
		return fmt.Errorf("effectchain: slots must be >= 1: %d", c.Slots)
	case c.SampleRate <= 0:
		return fmt.Errorf("effectchain: sample rate must be > 0: %f", c.SampleRate)
	case c.BlockSize < 1:
		return fmt.Errorf("effectchain: block size must be >= 1: %d", c.BlockSize)
	case c.Channels < 1:
		return fmt.Errorf("effectchain: channels must be >= 1: %d", c.Channels)
	case c.StagingBlockSize < 1 || c.ScopeBlockSize < 1:
		return fmt.Errorf("effectchain: FIFO block sizes must be >= 1: %d/%d", c.StagingBlockSize, c.ScopeBlockSize)
	case c.StagingCapacity < 1:
		return fmt.Errorf("effectchain: staging capacity must be >= 1: %d", c.StagingCapacity)
	case c.Clipper.SoftStartSeconds < 0:
		return fmt.Errorf("effectchain: clipper soft start must be >= 0: %f", c.Clipper.SoftStartSeconds)
	}

	return nil
}

func (c Config) context() Context {
	return Context{SampleRate: c.SampleRate, BlockSize: c.BlockSize, Channels: c.Channels}
}

func (c Config) clipperOptions() []clipper.Option {
	return []clipper.Option{
		clipper.WithThreshold(c.Clipper.Threshold),
		clipper.WithMaxIterations(c.Clipper.MaxIterations),
		clipper.WithSoftStart(c.Clipper.SoftStartSeconds),
		clipper.WithHyperbolicMode(c.Clipper.Hyperbolic),
	}
}
