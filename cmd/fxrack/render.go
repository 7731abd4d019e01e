package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-fxrack/dsp/dither"
	"github.com/cwbudde/algo-fxrack/dsp/effectchain"
	"github.com/cwbudde/algo-fxrack/dsp/spectral"
	"github.com/cwbudde/algo-fxrack/internal/host"
)

func runRender(a *app, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	in := fs.String("in", "", "input WAV file")
	out := fs.String("out", "", "output WAV file")
	chain := fs.String("chain", "", "module chain, e.g. \"filter:cutoff=800+analogclipper:drive=12\"")
	name := fs.String("session", "", "restore this stored session before applying -chain")
	tail := fs.Float64("tail", 0.5, "seconds of silence rendered after the input")
	analyze := fs.Bool("analyze", false, "report the dominant frequency seen by each analysis module")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *in == "" || *out == "" {
		return errors.New("render: -in and -out are required")
	}

	rack, err := a.newRack()
	if err != nil {
		return err
	}

	if *name != "" {
		if err := a.restoreSession(rack, *name); err != nil {
			return err
		}
	}

	specs, err := parseChain(*chain)
	if err != nil {
		return err
	}

	if err := buildChain(rack, specs); err != nil {
		return err
	}

	src, err := host.ReadWAV(*in)
	if err != nil {
		return err
	}

	quality, err := a.cfg.ResampleQuality()
	if err != nil {
		return err
	}

	engineRate := rack.Context().SampleRate
	if src.SampleRate != engineRate {
		a.log.Info().Float64("from", src.SampleRate).Float64("to", engineRate).Msg("resampling input")

		if src, err = host.Resample(src, engineRate, quality); err != nil {
			return err
		}
	}

	var watches []*spectrumWatch

	opts := []host.RenderOption{host.WithTail(int(*tail * engineRate))}
	if *analyze {
		if watches, err = a.watchSpectra(rack); err != nil {
			return err
		}

		opts = append(opts, host.WithBlockHook(func() {
			for _, w := range watches {
				w.drain(engineRate)
			}
		}))
	}

	wet := host.Render(rack, src.Data, opts...)

	dopts, err := a.cfg.DitherOptions()
	if err != nil {
		return err
	}

	q, err := dither.NewQuantizer(dopts...)
	if err != nil {
		return err
	}

	if err := host.WriteWAV(*out, &host.Audio{SampleRate: engineRate, Data: wet}, q); err != nil {
		return err
	}

	a.log.Info().Str("in", *in).Str("out", *out).Int("frames", len(wet[0])).
		Int("modules", len(rack.Modules())).Msg("rendered")

	a.printMeters(rack)

	for _, w := range watches {
		w.report(a.stdout)
	}

	return nil
}

func (a *app) printMeters(rack *effectchain.Rack) {
	const floor = -120.0

	in, out := rack.InputMeter().Meter(), rack.OutputMeter().Meter()
	for ch := range in.Channels() {
		fmt.Fprintf(a.stdout, "ch%d: last block in %.1f dBFS peak, out %.1f dBFS peak\n",
			ch+1, in.PeakDB(ch, floor), out.PeakDB(ch, floor))
	}

	for _, m := range rack.Modules() {
		if c := m.Clipper(); c != nil && c.ConvergenceFailures() > 0 {
			a.log.Warn().Int("slot", m.Slot()).Uint64("failures", c.ConvergenceFailures()).
				Msg("clipper solver hit its iteration limit")
		}
	}
}

// spectrumWatch follows the left staging FIFO of one analysis module.
type spectrumWatch struct {
	label    string
	producer *spectral.PathProducer
	bounds   spectral.Rect
	paths    int
	peakHz   float64
}

func (a *app) watchSpectra(rack *effectchain.Rack) ([]*spectrumWatch, error) {
	var out []*spectrumWatch

	staging := rack.AnalysisStaging()

	for _, m := range rack.Modules() {
		ord, ok := rack.AnalysisOrdinal(m.Slot())
		if !ok {
			continue
		}

		p, err := spectral.NewPathProducer(staging[ord].Left, a.cfg.AnalyzerOptions()...)
		if err != nil {
			return nil, err
		}

		out = append(out, &spectrumWatch{
			label:    fmt.Sprintf("%s (slot %d)", m.Label(), m.Slot()),
			producer: p,
			bounds:   spectral.Rect{Width: 1000, Height: 100},
		})
	}

	return out, nil
}

func (w *spectrumWatch) drain(sampleRate float64) {
	if !w.producer.Process(w.bounds, sampleRate) {
		return
	}

	w.paths++

	pts := w.producer.Path().Valid()
	if len(pts) == 0 {
		return
	}

	top := pts[0]
	for _, p := range pts[1:] {
		if p.Y < top.Y {
			top = p
		}
	}

	// Invert the generator's 20 Hz..20 kHz log axis.
	w.peakHz = 20 * math.Pow(1000, float64(top.X)/float64(w.bounds.Width))
}

func (w *spectrumWatch) report(out io.Writer) {
	if w.paths == 0 {
		fmt.Fprintf(out, "%s: no spectrum frames\n", w.label)
		return
	}

	fmt.Fprintf(out, "%s: %d spectrum frames, dominant frequency ~%.0f Hz\n", w.label, w.paths, w.peakHz)
}
