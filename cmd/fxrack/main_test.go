package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-fxrack/dsp/dither"
	"github.com/cwbudde/algo-fxrack/internal/host"
	"github.com/cwbudde/algo-fxrack/internal/testutil"
)

func testConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "fxrack.yaml")
	content := fmt.Sprintf("engine:\n  block_size: 128\nlog:\n  console: false\nsession:\n  path: %q\n",
		filepath.Join(dir, "sessions.db"))

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func runOK(t *testing.T, cfg string, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	if err := run(cfg, args, &out); err != nil {
		t.Fatalf("fxrack %s: %v", strings.Join(args, " "), err)
	}

	return out.String()
}

func TestKindsCommand(t *testing.T) {
	t.Parallel()

	out := runOK(t, testConfig(t), "kinds")

	for _, want := range []string{"AnalogClipper", "SpectrumBitcrusher", "lowpass|highpass", "Cutoff"} {
		if !strings.Contains(out, want) {
			t.Fatalf("kinds output lacks %q:\n%s", want, out)
		}
	}
}

func TestSessionCommands(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	runOK(t, cfg, "session", "save", "-name", "crunch", "-chain", "filter:type=highpass,cutoff=300+bitcrusher@4:bits=6")

	list := runOK(t, cfg, "session", "list")
	if !strings.Contains(list, "crunch") {
		t.Fatalf("list output lacks session:\n%s", list)
	}

	loaded := runOK(t, cfg, "session", "load", "-name", "crunch")
	for _, want := range []string{"Type=highpass", "Cutoff=300", "Bits=6"} {
		if !strings.Contains(loaded, want) {
			t.Fatalf("load output lacks %q:\n%s", want, loaded)
		}
	}

	raw := runOK(t, cfg, "session", "load", "-name", "crunch", "-json")
	if !strings.Contains(raw, "moduleTypes") {
		t.Fatalf("json output lacks allocation table:\n%s", raw)
	}

	runOK(t, cfg, "session", "delete", "-name", "crunch")

	if err := run(cfg, []string{"session", "load", "-name", "crunch"}, &bytes.Buffer{}); err == nil {
		t.Fatal("loading a deleted session succeeded")
	}
}

func TestRenderCommand(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "dry.wav")
	out := filepath.Join(dir, "wet.wav")

	q, err := dither.NewQuantizer(dither.WithDitherType(dither.DitherNone))
	if err != nil {
		t.Fatal(err)
	}

	dry := &host.Audio{SampleRate: 48000, Data: testutil.SineChannels(1000, 48000, 0.5, 2, 9600)}
	if err := host.WriteWAV(in, dry, q); err != nil {
		t.Fatal(err)
	}

	report := runOK(t, cfg, "render", "-in", in, "-out", out, "-tail", "0.1", "-analyze",
		"-chain", "filter:cutoff=5000+analogclipper:drive=6")

	if !strings.Contains(report, "Filter") || !strings.Contains(report, "dBFS") {
		t.Fatalf("render report:\n%s", report)
	}

	wet, err := host.ReadWAV(out)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}

	if wet.Frames() != 9600+4800 || wet.BitDepth != 24 {
		t.Fatalf("output = %d frames at %d bit", wet.Frames(), wet.BitDepth)
	}

	testutil.RequireFinite(t, wet.Data...)
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)

	for _, args := range [][]string{
		{"bogus"},
		{"render", "-in", "x.wav"},
		{"session"},
		{"session", "save"},
		{"session", "rename", "-name", "x"},
	} {
		if err := run(cfg, args, &bytes.Buffer{}); err == nil {
			t.Fatalf("fxrack %v succeeded", args)
		}
	}
}
