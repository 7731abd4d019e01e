package host

import (
	"github.com/cwbudde/algo-fxrack/dsp/core"
	"github.com/cwbudde/algo-fxrack/dsp/effectchain"
)

type renderConfig struct {
	tail    int
	onBlock func()
}

// RenderOption configures Render.
type RenderOption func(*renderConfig)

// WithTail appends frames of silence after the input so effect tails and
// spectral latency are rendered.
func WithTail(frames int) RenderOption {
	return func(cfg *renderConfig) {
		cfg.tail = max(frames, 0)
	}
}

// WithBlockHook calls fn after every processed block, on the rendering
// goroutine. Use it to drain analysis FIFOs.
func WithBlockHook(fn func()) RenderOption {
	return func(cfg *renderConfig) {
		cfg.onBlock = fn
	}
}

// Render runs in through rack block by block and returns the processed
// copy with rack.Context().Channels channels. Parameter changes are picked
// up before every block, as a control timer would.
func Render(rack *effectchain.Rack, in [][]float32, opts ...RenderOption) [][]float32 {
	var cfg renderConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := rack.Context()
	frames := core.Frames(in) + cfg.tail
	out := core.NewChannels(ctx.Channels, frames)

	src := NewBuffer(in)
	block := make([][]float32, ctx.Channels)

	for start := 0; start < frames; start += ctx.BlockSize {
		end := min(start+ctx.BlockSize, frames)
		for ch := range block {
			block[ch] = out[ch][start:end]
		}

		// Short fills leave the zeroed tail in place.
		src.Fill(block)

		rack.PollParameterChanges()
		rack.ProcessBlock(block)

		if cfg.onBlock != nil {
			cfg.onBlock()
		}
	}

	return out
}
