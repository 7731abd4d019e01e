// Command fxrack runs the distortion rack from the command line.
//
// Usage:
//
//	fxrack [-config file] <command> [flags]
//
// Commands:
//
//	kinds     list module kinds and their parameters
//	render    process a WAV file through a chain
//	play      play a tone or WAV file through a chain in real time
//	session   save, load, list or delete stored rack sessions
//
// Examples:
//
//	fxrack kinds
//	fxrack render -in dry.wav -out wet.wav -chain "filter:type=highpass,cutoff=120+analogclipper:drive=18"
//	fxrack play -chain "waveshaper:mode=foldback,drive=9" -freq 110 -seconds 5
//	fxrack session save -name crunch -chain "bitcrusher:bits=6"
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-fxrack/dsp/effectchain"
	"github.com/cwbudde/algo-fxrack/internal/config"
	"github.com/cwbudde/algo-fxrack/internal/logger"
)

type app struct {
	cfg    *config.Config
	log    *logger.Logger
	stdout io.Writer
}

type command struct {
	name  string
	usage string
	run   func(a *app, args []string) error
}

var commands = []command{
	{"kinds", "list module kinds and their parameters", runKinds},
	{"render", "process a WAV file through a chain", runRender},
	{"play", "play a tone or WAV file through a chain", runPlay},
	{"session", "save|load|list|delete stored sessions", runSession},
}

func main() {
	configPath := flag.String("config", "", "config file (default: search ./fxrack.yaml and the user config dir)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fxrack [-config file] <command> [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")

		for _, c := range commands {
			fmt.Fprintf(os.Stderr, "  %-8s %s\n", c.name, c.usage)
		}

		fmt.Fprintf(os.Stderr, "\nFlags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables prefixed %s_ override config keys, e.g. %s_ENGINE_SLOTS=12.\n",
			config.EnvPrefix, config.EnvPrefix)
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)

		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}

		os.Exit(1)
	}
}

func run(configPath string, args []string, stdout io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer log.Close()

	if cfg.File != "" {
		log.Debug().Str("file", cfg.File).Msg("config loaded")
	}

	a := &app{cfg: cfg, log: log, stdout: stdout}

	for _, c := range commands {
		if c.name == args[0] {
			return c.run(a, args[1:])
		}
	}

	return fmt.Errorf("unknown command %q", args[0])
}

// newRack builds an empty rack from the loaded configuration.
func (a *app) newRack() (*effectchain.Rack, error) {
	rc, err := a.cfg.Rack()
	if err != nil {
		return nil, err
	}

	return effectchain.NewRack(rc, effectchain.WithLogger(a.log.Logger))
}

// newRackWithChain builds a rack holding the modules described by chain.
func (a *app) newRackWithChain(chain string) (*effectchain.Rack, error) {
	specs, err := parseChain(chain)
	if err != nil {
		return nil, err
	}

	rack, err := a.newRack()
	if err != nil {
		return nil, err
	}

	if err := buildChain(rack, specs); err != nil {
		return nil, err
	}

	return rack, nil
}
