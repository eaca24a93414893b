package main

import (
	"bytes"
	"testing"

	"gochip8/internal/app"
)

func TestParseArgs_RomFlag(t *testing.T) {
	opts, err := parseArgs([]string{"-rom", "pong.ch8", "-delay", "1"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if opts.romFile != "pong.ch8" || opts.delay != 1 {
		t.Errorf("rom=%q delay=%d", opts.romFile, opts.delay)
	}
	if !opts.set["delay"] || opts.set["scale"] {
		t.Errorf("set flags = %v, want only rom and delay", opts.set)
	}
}

func TestParseArgs_Positional(t *testing.T) {
	opts, err := parseArgs([]string{"15", "2", "tetris.ch8"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if opts.scale != 15 || opts.delay != 2 || opts.romFile != "tetris.ch8" {
		t.Errorf("scale=%d delay=%d rom=%q", opts.scale, opts.delay, opts.romFile)
	}
	if !opts.set["scale"] || !opts.set["delay"] {
		t.Error("positional scale and delay should count as given")
	}

	opts, err = parseArgs([]string{"-nogui", "maze.ch8"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if opts.romFile != "maze.ch8" || !opts.nogui {
		t.Errorf("rom=%q nogui=%v", opts.romFile, opts.nogui)
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := [][]string{
		{"x", "2", "rom.ch8"},
		{"10", "y", "rom.ch8"},
		{"a.ch8", "b.ch8"},
		{"-unknown"},
	}
	for _, args := range tests {
		if _, err := parseArgs(args, &bytes.Buffer{}); err == nil {
			t.Errorf("parseArgs(%q) should fail", args)
		}
	}
}

func TestOptions_ApplyOnlyOverridesGivenFlags(t *testing.T) {
	opts, err := parseArgs([]string{"-cycles", "500", "-trace", "-nogui", "rom.ch8"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}

	config := app.NewConfig()
	config.Window.Scale = 4
	opts.apply(config)

	if config.Window.Scale != 4 {
		t.Errorf("scale = %d, flag not given so file value should stay", config.Window.Scale)
	}
	if config.Emulation.HeadlessCycles != 500 {
		t.Errorf("headless cycles = %d, want 500", config.Emulation.HeadlessCycles)
	}
	if !config.Debug.Trace || config.Video.Backend != "headless" {
		t.Errorf("trace=%v backend=%q", config.Debug.Trace, config.Video.Backend)
	}
}
