package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-fxrack/dsp/effectchain"
)

type paramSetting struct {
	name  string
	value float64
}

type moduleSpec struct {
	kind     effectchain.Kind
	slot     int
	settings []paramSetting
}

// parseChain parses a chain description:
//
//	kind[@slot][:param=value[,param=value...]][+kind...]
//
// Kinds and parameter names are case-insensitive; choice parameters accept
// option names. Modules without @slot take the slot after the previous one.
func parseChain(s string) ([]moduleSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var (
		out  []moduleSpec
		next = 1
	)

	for _, part := range strings.Split(s, "+") {
		head, args, _ := strings.Cut(strings.TrimSpace(part), ":")
		name, slotText, hasSlot := strings.Cut(head, "@")

		kind, err := effectchain.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}

		if !kind.Creatable() {
			return nil, fmt.Errorf("%s modules cannot be created", kind)
		}

		slot := next
		if hasSlot {
			slot, err = strconv.Atoi(strings.TrimSpace(slotText))
			if err != nil {
				return nil, fmt.Errorf("%s: bad slot %q", kind, slotText)
			}
		}

		spec := moduleSpec{kind: kind, slot: slot}

		if strings.TrimSpace(args) != "" {
			for _, kv := range strings.Split(args, ",") {
				setting, err := parseSetting(kind, kv)
				if err != nil {
					return nil, err
				}

				spec.settings = append(spec.settings, setting)
			}
		}

		out = append(out, spec)
		next = slot + 1
	}

	return out, nil
}

func parseSetting(kind effectchain.Kind, kv string) (paramSetting, error) {
	key, text, ok := strings.Cut(kv, "=")
	if !ok {
		return paramSetting{}, fmt.Errorf("%s: expected param=value, got %q", kind, kv)
	}

	key, text = strings.TrimSpace(key), strings.TrimSpace(text)

	for _, spec := range effectchain.Layout(kind) {
		if !strings.EqualFold(spec.Name, key) {
			continue
		}

		if v, err := strconv.ParseFloat(text, 64); err == nil {
			return paramSetting{name: spec.Name, value: v}, nil
		}

		for i, label := range effectchain.ChoiceLabels(kind, spec.Name) {
			if strings.EqualFold(label, text) {
				return paramSetting{name: spec.Name, value: float64(i)}, nil
			}
		}

		return paramSetting{}, fmt.Errorf("%s.%s: bad value %q", kind, spec.Name, text)
	}

	return paramSetting{}, fmt.Errorf("%s has no parameter %q", kind, key)
}

// buildChain creates every module of specs in rack and applies its settings.
func buildChain(rack *effectchain.Rack, specs []moduleSpec) error {
	for _, spec := range specs {
		m, err := rack.Create(spec.kind, spec.slot)
		if err != nil {
			return fmt.Errorf("create %s at slot %d: %w", spec.kind, spec.slot, err)
		}

		for _, s := range spec.settings {
			if err := m.Params().SetValue(s.name, s.value); err != nil {
				return err
			}
		}
	}

	return nil
}
