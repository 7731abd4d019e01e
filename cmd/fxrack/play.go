package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/cwbudde/algo-fxrack/internal/host"
)

func runPlay(a *app, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	chain := fs.String("chain", "", "module chain")
	name := fs.String("session", "", "restore this stored session before applying -chain")
	in := fs.String("in", "", "WAV file to play (default: a sine tone)")
	freq := fs.Float64("freq", 220, "tone frequency in Hz")
	amp := fs.Float64("amp", 0.5, "tone amplitude (linear)")
	seconds := fs.Float64("seconds", 5, "stop after this many seconds (0 plays until interrupted or the file ends)")
	buffer := fs.Duration("buffer", 0, "device buffer duration (0 uses the driver default)")

	if err := fs.Parse(args); err != nil {
		return err
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

	rate := rack.Context().SampleRate

	var src host.Source = host.NewTone(*freq, rate, *amp)
	if *in != "" {
		audio, err := host.ReadWAV(*in)
		if err != nil {
			return err
		}

		quality, err := a.cfg.ResampleQuality()
		if err != nil {
			return err
		}

		if audio, err = host.Resample(audio, rate, quality); err != nil {
			return err
		}

		src = host.NewBuffer(audio.Data)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *seconds > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, time.Duration(*seconds*float64(time.Second)))
		defer cancel()
	}

	go func() {
		_ = rack.Run(ctx, a.cfg.Engine.PollInterval)
	}()

	stream := host.NewStream(rack, src)

	player, err := host.NewPlayer(stream, int(rate), *buffer)
	if err != nil {
		return err
	}
	defer player.Close()

	a.log.Info().Int("modules", len(rack.Modules())).Float64("rate", rate).Msg("playing")
	player.Start()

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil
			}

			a.log.Info().Msg("interrupted")

			return nil
		case <-tick.C:
			if stream.Ended() && !player.Playing() {
				return player.Err()
			}
		}
	}
}
