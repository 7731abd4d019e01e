package main

import (
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-fxrack/dsp/effectchain"
)

func runKinds(a *app, args []string) error {
	fs := flag.NewFlagSet("kinds", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KIND\tPARAM\tUNIT\tMIN\tMAX\tDEFAULT\n")

	for _, k := range effectchain.CreatableKinds() {
		layout := effectchain.Layout(k)
		if len(layout) == 0 {
			fmt.Fprintf(w, "%s\t-\t\t\t\t\n", k)
			continue
		}

		for i, s := range layout {
			name := ""
			if i == 0 {
				name = k.String()
			}

			if labels := effectchain.ChoiceLabels(k, s.Name); labels != nil {
				fmt.Fprintf(w, "%s\t%s\t\t%s\t\t%s\n", name, s.Name, strings.Join(labels, "|"), labels[int(s.Default)])
				continue
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%g\n", name, s.Name, s.Unit, s.Min, s.Max, s.Default)
		}
	}

	return w.Flush()
}
