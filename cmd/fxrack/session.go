package main

import (
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-fxrack/dsp/effectchain"
	"github.com/cwbudde/algo-fxrack/dsp/state"
	"github.com/cwbudde/algo-fxrack/internal/session"
)

func (a *app) openStore() (*session.Store, error) {
	return session.Open(session.Config{Path: a.cfg.Session.Path, LogLevel: a.cfg.Log.Level})
}

// restoreSession replaces rack's contents with the stored session name.
func (a *app) restoreSession(rack *effectchain.Rack, name string) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	tree, err := store.Load(name)
	if err != nil {
		return err
	}

	_, err = rack.RestoreState(tree)

	return err
}

func runSession(a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("session: expected save, load, list or delete")
	}

	fs := flag.NewFlagSet("session "+args[0], flag.ContinueOnError)
	name := fs.String("name", "", "session name")
	chain := fs.String("chain", "", "module chain to save")
	asJSON := fs.Bool("json", false, "load: print the raw state tree as JSON")

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if args[0] != "list" && *name == "" {
		return fmt.Errorf("session %s: -name is required", args[0])
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	switch args[0] {
	case "save":
		rack, err := a.newRackWithChain(*chain)
		if err != nil {
			return err
		}

		tree := state.New()
		rack.SaveState(tree)

		if err := store.Save(*name, tree); err != nil {
			return err
		}

		a.log.Info().Str("name", *name).Int("modules", len(rack.Modules())).Msg("session saved")

		return nil
	case "load":
		tree, err := store.Load(*name)
		if err != nil {
			return err
		}

		if *asJSON {
			return tree.Encode(a.stdout)
		}

		rack, err := a.newRack()
		if err != nil {
			return err
		}

		if _, err := rack.RestoreState(tree); err != nil {
			return err
		}

		return a.printRack(rack)
	case "list":
		infos, err := store.List()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "NAME\tVERSION\tPARAMS\tUPDATED\n")

		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", info.Name, info.Version, info.Params, info.UpdatedAt.Local().Format(time.DateTime))
		}

		return w.Flush()
	case "delete":
		return store.Delete(*name)
	default:
		return fmt.Errorf("session: unknown subcommand %q", args[0])
	}
}

func (a *app) printRack(rack *effectchain.Rack) error {
	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SLOT\tMODULE\tPARAMS\n")

	for _, m := range rack.Modules() {
		fmt.Fprintf(w, "%d\t%s\t", m.Slot(), m.Label())

		b := m.Params()
		for i, s := range b.Layout() {
			if i > 0 {
				fmt.Fprint(w, " ")
			}

			v := b.Get(i)
			if labels := effectchain.ChoiceLabels(m.Kind(), s.Name); labels != nil {
				fmt.Fprintf(w, "%s=%s", s.Name, labels[int(v)])
				continue
			}

			fmt.Fprintf(w, "%s=%g", s.Name, v)
		}

		fmt.Fprintln(w)
	}

	return w.Flush()
}
