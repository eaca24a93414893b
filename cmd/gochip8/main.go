// Package main implements the gochip8 executable.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gochip8/internal/app"
	"gochip8/internal/version"
)

// options holds the parsed command line
type options struct {
	romFile    string
	configFile string
	backend    string
	scale      int
	delay      int
	cycles     int
	seed       uint64
	nogui      bool
	debug      bool
	trace      bool
	paused     bool
	help       bool
	version    bool

	// Names of the flags given explicitly; only these override the
	// configuration file
	set map[string]bool
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "gochip8: %v\n", err)
		os.Exit(2)
	}

	if opts.help {
		printUsage(os.Stdout)
		os.Exit(0)
	}

	if opts.version {
		version.WriteBuildInfo(os.Stdout)
		os.Exit(0)
	}

	if opts.romFile == "" {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	fmt.Printf("gochip8 %s\n", version.GetVersion())

	configPath := opts.configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	config := app.NewConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		fmt.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v\n", configPath, err)
		config = app.NewConfig()
	}
	opts.apply(config)

	application, err := app.NewApplicationWithConfig(config, opts.nogui)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := run(application, opts); err != nil {
		cleanup(application)
		log.Fatalf("%v", err)
	}
	cleanup(application)
}

func run(application *app.Application, opts *options) error {
	setupGracefulShutdown(application)

	if err := application.LoadROM(opts.romFile); err != nil {
		return fmt.Errorf("failed to load ROM: %w", err)
	}
	fmt.Printf("[APP] Loaded %s\n", application.GetROM())

	config := application.GetConfig()
	if application.IsHeadless() {
		fmt.Printf("[APP] Running headless for %d cycles\n", config.Emulation.HeadlessCycles)
	} else {
		w, h := config.GetWindowResolution()
		fmt.Printf("[APP] Window %dx%d (scale %dx), %s backend, cycle delay %dms\n",
			w, h, config.Window.Scale, config.Video.Backend, config.Emulation.CycleDelayMs)
	}

	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %w", err)
	}

	if !application.IsHeadless() {
		fmt.Printf("[APP] Session: %d frames, %d cycles in %v\n",
			application.GetFrameCount(), application.GetCPU().Cycles(), application.GetUptime().Round(time.Millisecond))
	}
	return nil
}

func cleanup(application *app.Application) {
	if err := application.Cleanup(); err != nil {
		log.Printf("Application cleanup error: %v", err)
	}
}

// parseArgs parses flags followed by either "<rom>" or the positional
// form "<scale> <delay> <rom>"
func parseArgs(args []string, output io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("gochip8", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.romFile, "rom", "", "Path to ROM file")
	fs.StringVar(&opts.configFile, "config", "", "Path to configuration file (default "+app.GetDefaultConfigPath()+")")
	fs.StringVar(&opts.backend, "backend", "", "Graphics backend: ebitengine, terminal or headless")
	fs.IntVar(&opts.scale, "scale", app.DefaultScale, "Display pixel multiplier")
	fs.IntVar(&opts.delay, "delay", app.DefaultCycleDelayMs, "Minimum milliseconds between cycles")
	fs.IntVar(&opts.cycles, "cycles", app.DefaultHeadlessCycles, "Cycles to run in headless mode")
	fs.Uint64Var(&opts.seed, "seed", 0, "Random seed (0 seeds from entropy)")
	fs.BoolVar(&opts.nogui, "nogui", false, "Run without a display (headless mode)")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.trace, "trace", false, "Log every executed instruction")
	fs.BoolVar(&opts.paused, "paused", false, "Start paused")
	fs.BoolVar(&opts.help, "help", false, "Show help message")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.Usage = func() { printUsage(output) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	switch rest := fs.Args(); len(rest) {
	case 0:
	case 1:
		opts.romFile = rest[0]
	case 3:
		scale, err := strconv.Atoi(rest[0])
		if err != nil {
			return nil, fmt.Errorf("invalid scale %q: %w", rest[0], err)
		}
		delay, err := strconv.Atoi(rest[1])
		if err != nil {
			return nil, fmt.Errorf("invalid delay %q: %w", rest[1], err)
		}
		opts.scale, opts.delay, opts.romFile = scale, delay, rest[2]
		opts.set["scale"], opts.set["delay"] = true, true
	default:
		return nil, fmt.Errorf("expected <rom> or <scale> <delay> <rom>, got %d arguments", len(rest))
	}

	return opts, nil
}

// apply copies explicitly given flags over the configuration
func (o *options) apply(config *app.Config) {
	if o.set["scale"] {
		config.Window.Scale = o.scale
	}
	if o.set["delay"] {
		config.Emulation.CycleDelayMs = o.delay
	}
	if o.set["cycles"] {
		config.Emulation.HeadlessCycles = o.cycles
	}
	if o.set["seed"] {
		config.Emulation.Seed = o.seed
	}
	if o.set["backend"] {
		config.Video.Backend = o.backend
	}
	if o.nogui {
		config.Video.Backend = "headless"
	}
	if o.paused {
		config.Emulation.StartPaused = true
	}
	if o.debug {
		config.Debug.EnableLogging = true
	}
	if o.trace {
		config.Debug.Trace = true
	}
}

// setupGracefulShutdown stops the application on SIGINT/SIGTERM. A second
// signal exits immediately.
func setupGracefulShutdown(application *app.Application) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\n[APP] Interrupt received, shutting down...")
		application.Stop()
		<-c
		os.Exit(1)
	}()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "gochip8 - Go CHIP-8 interpreter")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  gochip8 [options] <rom>")
	fmt.Fprintln(w, "  gochip8 [options] <scale> <delay> <rom>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprintln(w, "  -rom <file>       Path to ROM file")
	fmt.Fprintln(w, "  -config <file>    Configuration file (default "+app.GetDefaultConfigPath()+")")
	fmt.Fprintln(w, "  -backend <name>   ebitengine, terminal or headless")
	fmt.Fprintln(w, "  -scale <n>        Display pixel multiplier")
	fmt.Fprintln(w, "  -delay <ms>       Minimum milliseconds between cycles")
	fmt.Fprintln(w, "  -nogui            Run headless and print the final frame")
	fmt.Fprintln(w, "  -cycles <n>       Cycles to run in headless mode")
	fmt.Fprintln(w, "  -seed <n>         Random seed for reproducible runs")
	fmt.Fprintln(w, "  -paused           Start paused")
	fmt.Fprintln(w, "  -debug            Enable debug logging")
	fmt.Fprintln(w, "  -trace            Log every executed instruction")
	fmt.Fprintln(w, "  -version          Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "KEYPAD (default):")
	fmt.Fprintln(w, "  1 2 3 C      1 2 3 4")
	fmt.Fprintln(w, "  4 5 6 D  ->  Q W E R")
	fmt.Fprintln(w, "  7 8 9 E      A S D F")
	fmt.Fprintln(w, "  A 0 B F      Z X C V")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONTROLS:")
	fmt.Fprintln(w, "  Escape   Quit")
	fmt.Fprintln(w, "  P        Pause / resume")
	fmt.Fprintln(w, "  N        Step one instruction while paused")
	fmt.Fprintln(w, "  F5       Reset")
	fmt.Fprintln(w, "  F12      Screenshot")
}
