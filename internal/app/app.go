package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"gochip8/internal/cpu"
	"gochip8/internal/debug"
	"gochip8/internal/graphics"
	"gochip8/internal/input"
	"gochip8/internal/rom"
)

const (
	// frameInterval paces the host loop of backends without their own
	// game loop
	frameInterval = 16 * time.Millisecond

	// messageDuration is how long a transient status message is shown
	messageDuration = 2 * time.Second

	windowTitle = "gochip8"
)

// Application represents the interpreter application
type Application struct {
	// Core emulation components
	cpu      *cpu.CPU
	emulator *Emulator

	// Graphics backend
	graphicsBackend graphics.Backend
	window          graphics.Window

	// Application state
	config      *Config
	running     atomic.Bool
	paused      bool
	initialized bool
	headless    bool
	halted      bool

	// Host key to keypad key bindings
	keyMap map[graphics.Key]input.Key

	// Debugging aids
	logger      *debug.InstructionLogger
	loops       *debug.LoopDetector
	screenshots *debug.FrameDumper

	// ROM management
	romPath string
	rom     *rom.ROM

	// Status overlay
	message      string
	messageUntil time.Time
	forceRender  bool

	// Performance tracking
	frameCount uint64
	startTime  time.Time

	// Debug output, os.Stderr unless replaced by tests
	traceOutput io.Writer
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication creates a new application using the configuration file at
// configPath
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates a new application with optional headless
// mode. An unreadable configuration falls back to defaults.
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	config := NewConfig()
	if configPath != "" {
		if err := config.LoadFromFile(configPath); err != nil {
			fmt.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v\n", configPath, err)
			config = NewConfig()
		}
	}

	return NewApplicationWithConfig(config, headless)
}

// NewApplicationWithConfig creates a new application from an already
// loaded configuration
func NewApplicationWithConfig(config *Config, headless bool) (*Application, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.validate(); err != nil {
		return nil, &ApplicationError{
			Component: "config",
			Operation: "validation",
			Err:       err,
		}
	}

	app := &Application{
		config:      config,
		headless:    headless || config.Video.Backend == string(graphics.BackendHeadless),
		startTime:   time.Now(),
		traceOutput: os.Stderr,
	}

	if err := app.initializeComponents(); err != nil {
		return nil, &ApplicationError{
			Component: "initialization",
			Operation: "component setup",
			Err:       err,
		}
	}

	return app, nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	app.keyMap = buildKeyMap(app.config.Input.Keys)
	for _, control := range hostControls {
		if key, ok := app.config.Input.Keys.Lookup(control.String()); ok {
			fmt.Printf("[APP_WARNING] %s is bound to keypad %s and no longer works as a host control\n", control, key)
		}
	}

	opts := []cpu.Option{}
	if app.config.Emulation.Seed != 0 {
		opts = append(opts, cpu.WithRandomSource(cpu.NewSeededRandomSource(app.config.Emulation.Seed)))
	}
	if tracer := app.buildTracer(); tracer != nil {
		opts = append(opts, cpu.WithTracer(tracer))
	}
	app.cpu = cpu.New(opts...)
	app.cpu.Keypad().EnableDebug(app.config.Debug.EnableLogging)

	app.emulator = NewEmulator(app.cpu, app.config)

	foreground, background := app.config.Colors()
	app.screenshots = debug.NewFrameDumper(app.config.Paths.Screenshots)
	app.screenshots.SetScale(app.config.Window.Scale)
	app.screenshots.SetColors(foreground, background)

	if err := app.initializeGraphicsBackend(); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %w", err)
	}

	app.initialized = true
	return nil
}

// buildTracer assembles the instruction tracers enabled in the debug
// configuration
func (app *Application) buildTracer() cpu.Tracer {
	var tracers debug.MultiTracer

	if app.config.Debug.Trace {
		app.logger = debug.NewInstructionLogger(app.traceOutput)
		app.logger.SetUnknownOnly(app.config.Debug.TraceUnknown)
		tracers = append(tracers, app.logger)
	}

	if app.config.Debug.LoopDetection {
		app.loops = debug.NewLoopDetector(debug.DefaultLoopThreshold, app.onLoop)
		tracers = append(tracers, app.loops)
	}

	switch len(tracers) {
	case 0:
		return nil
	case 1:
		return tracers[0]
	default:
		return tracers
	}
}

// onLoop reports busy loops. A jump to itself halts the program.
func (app *Application) onLoop(loop debug.Loop) {
	if app.config.Debug.EnableLogging {
		log.Printf("[EMU] Busy loop: %s", loop)
	}
	if loop.Kind == debug.LoopJumpSelf {
		app.halted = true
	}
}

// initializeGraphicsBackend initializes the graphics backend based on
// configuration
func (app *Application) initializeGraphicsBackend() error {
	var backendType graphics.BackendType
	if app.headless {
		backendType = graphics.BackendHeadless
	} else {
		backendType = graphics.BackendType(app.config.Video.Backend)
	}

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %w", err)
	}

	width, height := app.config.GetWindowResolution()
	foreground, background := app.config.Colors()
	graphicsConfig := graphics.Config{
		WindowTitle:  windowTitle,
		WindowWidth:  width,
		WindowHeight: height,
		Fullscreen:   app.config.Window.Fullscreen,
		Resizable:    app.config.Window.Resizable,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		Foreground:   foreground,
		Background:   background,
		ShowStatus:   app.config.Video.ShowStatus,
		Headless:     app.headless,
		Debug:        app.config.Debug.EnableLogging,
	}
	if app.config.Debug.DumpFrames {
		graphicsConfig.DumpDir = app.config.Paths.Screenshots
		graphicsConfig.DumpInterval = app.config.Debug.DumpInterval
	}

	err = app.graphicsBackend.Initialize(graphicsConfig)
	if err == nil {
		app.window, err = app.graphicsBackend.CreateWindow(windowTitle, width, height)
	}
	if err == nil {
		return nil
	}
	if backendType == graphics.BackendHeadless {
		return fmt.Errorf("failed to initialize headless backend: %w", err)
	}

	// Displays that cannot be opened fall back to headless mode
	fmt.Printf("[APP_WARNING] %s backend failed (%v), falling back to headless mode\n", app.graphicsBackend.GetName(), err)
	app.graphicsBackend.Cleanup()
	app.headless = true
	return app.initializeGraphicsBackend()
}

// hostControls are the keys handled by handleSpecialInput
var hostControls = []graphics.Key{
	graphics.KeyEscape, graphics.KeyP, graphics.KeyF5, graphics.KeyN, graphics.KeyF12,
}

// buildKeyMap resolves a keypad layout to host keys. Names the graphics
// layer does not know are skipped.
func buildKeyMap(layout input.Layout) map[graphics.Key]input.Key {
	keyMap := make(map[graphics.Key]input.Key, input.NumKeys)
	for i, name := range layout {
		if name == "" {
			continue
		}
		if key, ok := graphics.KeyByName(name); ok {
			keyMap[key] = input.Key(i)
		}
	}
	return keyMap
}

// LoadROM loads a ROM file into program space and resets the machine
func (app *Application) LoadROM(romPath string) error {
	romPath = app.resolveROMPath(romPath)
	r, err := rom.LoadFromFile(romPath)
	if err != nil {
		return &ApplicationError{
			Component: "rom",
			Operation: "load ROM",
			Err:       err,
		}
	}

	if err := app.LoadROMImage(r); err != nil {
		return err
	}
	app.romPath = romPath
	return nil
}

// resolveROMPath falls back to the configured ROM directory for relative
// paths that do not exist as given
func (app *Application) resolveROMPath(romPath string) string {
	if filepath.IsAbs(romPath) || app.config.Paths.ROMs == "" {
		return romPath
	}
	if _, err := os.Stat(romPath); err == nil {
		return romPath
	}
	candidate := filepath.Join(app.config.Paths.ROMs, romPath)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return romPath
}

// LoadROMImage loads an already read ROM image and resets the machine
func (app *Application) LoadROMImage(r *rom.ROM) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	if err := app.cpu.LoadProgram(r.Reader()); err != nil {
		return &ApplicationError{
			Component: "cpu",
			Operation: "load program",
			Err:       err,
		}
	}
	app.rom = r
	app.romPath = r.Path

	if r.Truncated {
		fmt.Printf("[APP_WARNING] %s is %d bytes, only the first %d were loaded\n", r.Name, r.SourceSize, r.Size())
	}
	if app.config.Debug.EnableLogging {
		log.Printf("[APP] Loaded %s", r)
	}

	app.Reset()

	if app.window != nil {
		app.window.SetTitle(fmt.Sprintf("%s - %s", windowTitle, r.Name))
	}

	if app.config.Emulation.StartPaused {
		app.Pause()
	} else {
		app.Resume()
	}

	return nil
}

// Run starts the main application loop and blocks until it ends
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}
	if app.rom == nil {
		return errors.New("no ROM loaded")
	}

	app.running.Store(true)
	app.startTime = time.Now()

	if app.config.Debug.EnableLogging {
		log.Printf("[APP] Starting with %s backend", app.graphicsBackend.GetName())
	}

	if app.headless {
		return app.runHeadless()
	}

	if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
		ebitengineWindow.SetEmulatorUpdateFunc(func() error {
			if err := app.tick(); err != nil {
				return err
			}
			if !app.IsRunning() {
				return ebitengineWindow.Cleanup()
			}
			return nil
		})
		return ebitengineWindow.Run()
	}

	// Sleep-paced loop for backends without their own game loop
	for app.IsRunning() {
		if err := app.tick(); err != nil && app.config.Debug.EnableLogging {
			log.Printf("[APP_ERROR] %v", err)
		}
		time.Sleep(frameInterval)
	}

	if app.config.Debug.EnableLogging {
		log.Printf("[APP] Main loop ended")
	}
	return nil
}

// tick runs one host iteration: input, emulation, presentation
func (app *Application) tick() error {
	app.processInput()

	if err := app.updateEmulator(); err != nil {
		return err
	}

	if err := app.render(); err != nil {
		return err
	}

	if app.window != nil && app.window.ShouldClose() {
		app.Stop()
	}
	return nil
}

// runHeadless executes the configured number of cycles without pacing,
// then dumps the final frame
func (app *Application) runHeadless() error {
	total := app.config.Emulation.HeadlessCycles
	chunk := app.config.Emulation.MaxCyclesPerUpdate

	executed := 0
	for executed < total && app.IsRunning() && !app.halted {
		app.processInput()

		n := chunk
		if remaining := total - executed; n > remaining {
			n = remaining
		}
		if !app.paused {
			app.emulator.RunCycles(n)
		}
		executed += n

		if err := app.render(); err != nil {
			return err
		}
	}
	app.Stop()

	fmt.Printf("[APP] Headless run finished after %d cycles, PC=%03X\n", app.cpu.Cycles(), app.cpu.PC)
	if app.halted {
		fmt.Println("[APP] Program halted on a jump to itself")
	}
	if stack := app.cpu.Stack(); len(stack) > 0 {
		fmt.Printf("[APP] Call stack (outermost first): %03X\n", stack)
	}
	if err := debug.WriteText(os.Stdout, app.cpu.Framebuffer()); err != nil {
		return fmt.Errorf("failed to print final frame: %w", err)
	}

	if app.config.Debug.DumpFrames {
		path, err := app.Screenshot()
		if err != nil {
			return err
		}
		fmt.Printf("[APP] Final frame written to %s\n", path)
	}

	if app.logger != nil {
		app.logger.LogSummary(10)
	}
	return nil
}

// updateEmulator runs the cycles due unless paused
func (app *Application) updateEmulator() error {
	if app.paused || app.rom == nil {
		return nil
	}
	return app.emulator.Update()
}

// processInput processes input events from the graphics backend
func (app *Application) processInput() {
	if app.window == nil {
		return
	}

	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.Stop()
		case graphics.InputEventTypeKey:
			if app.handleKeyInput(event) {
				continue
			}
			app.handleSpecialInput(event)
		}
	}
}

// handleKeyInput forwards bound keys to the keypad. Keypad bindings take
// precedence over host controls.
func (app *Application) handleKeyInput(event graphics.InputEvent) bool {
	key, ok := app.keyMap[event.Key]
	if !ok {
		return false
	}
	app.cpu.Keypad().SetKey(key, event.Pressed)
	return true
}

// handleSpecialInput handles the host controls
func (app *Application) handleSpecialInput(event graphics.InputEvent) bool {
	if !event.Pressed {
		return false
	}

	switch event.Key {
	case graphics.KeyEscape:
		app.Stop()
	case graphics.KeyP:
		app.TogglePause()
	case graphics.KeyF5:
		app.Reset()
		app.setMessage("RESET")
	case graphics.KeyN:
		if app.paused {
			if err := app.Step(); err != nil {
				app.setMessage(err.Error())
			}
		}
	case graphics.KeyF12:
		path, err := app.Screenshot()
		if err != nil {
			fmt.Printf("[APP_ERROR] Screenshot failed: %v\n", err)
			app.setMessage("SCREENSHOT FAILED")
		} else {
			fmt.Printf("[APP] Screenshot saved to %s\n", path)
			app.setMessage("SAVED " + path)
		}
	default:
		return false
	}
	return true
}

// render presents the framebuffer when it changed and refreshes the status
func (app *Application) render() error {
	if app.window == nil {
		return nil
	}

	app.window.SetStatus(app.status())

	fb := app.cpu.Display()
	if fb.Dirty() || app.forceRender {
		if err := app.window.RenderFrame(app.cpu.Framebuffer(), app.cpu.Pitch()); err != nil {
			return fmt.Errorf("failed to render frame: %w", err)
		}
		fb.MarkPresented()
		app.forceRender = false
		app.frameCount++
	}

	app.window.SwapBuffers()
	return nil
}

func (app *Application) status() graphics.Status {
	status := graphics.Status{
		PC:              app.cpu.PC,
		Paused:          app.paused,
		CyclesPerSecond: app.emulator.GetCyclesPerSecond(),
		SoundActive:     app.cpu.SoundTimer > 0,
	}
	if app.rom != nil {
		status.ROM = app.rom.Name
	}
	for k, pressed := range app.cpu.Keypad().State() {
		if pressed {
			status.Keys |= 1 << k
		}
	}
	if app.message != "" && time.Now().Before(app.messageUntil) {
		status.Message = app.message
	} else if app.halted {
		status.Message = "HALTED"
		if loop, ok := app.lastLoop(); ok {
			status.Message = fmt.Sprintf("HALTED AT %03X", loop.PC)
		}
	}
	return status
}

func (app *Application) lastLoop() (debug.Loop, bool) {
	if app.loops == nil {
		return debug.Loop{}, false
	}
	return app.loops.Last()
}

func (app *Application) setMessage(message string) {
	app.message = message
	app.messageUntil = time.Now().Add(messageDuration)
}

// Screenshot writes the current frame as a PPM image and returns its path
func (app *Application) Screenshot() (string, error) {
	if !app.screenshots.IsEnabled() {
		if err := app.screenshots.Enable(); err != nil {
			return "", fmt.Errorf("failed to prepare screenshot directory: %w", err)
		}
	}
	return app.screenshots.DumpPPM(app.cpu.Framebuffer(), "screenshot")
}

// Step executes a single instruction while paused
func (app *Application) Step() error {
	if app.rom == nil {
		return errors.New("no ROM loaded")
	}
	if err := app.emulator.StepInstruction(); err != nil {
		return err
	}
	app.setMessage(fmt.Sprintf("STEP %03X", app.cpu.PC))
	return nil
}

// Stop stops the application
func (app *Application) Stop() {
	app.running.Store(false)
}

// Pause pauses the emulator
func (app *Application) Pause() {
	app.paused = true
	app.emulator.Stop()
}

// Resume resumes the emulator
func (app *Application) Resume() {
	app.paused = false
	app.emulator.Start()
}

// TogglePause toggles pause state
func (app *Application) TogglePause() {
	if app.paused {
		app.Resume()
	} else {
		app.Pause()
	}
}

// Reset restores the machine to its state right after the ROM was loaded
func (app *Application) Reset() {
	app.cpu.Reset()
	app.emulator.Reset()
	if app.loops != nil {
		app.loops.Reset()
	}
	app.halted = false
	app.forceRender = true
}

// IsRunning returns whether the application is running
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// IsPaused returns whether the emulator is paused
func (app *Application) IsPaused() bool {
	return app.paused
}

// IsHeadless returns whether the application runs without a display
func (app *Application) IsHeadless() bool {
	return app.headless
}

// IsHalted returns whether the program stopped on a jump to itself
func (app *Application) IsHalted() bool {
	return app.halted
}

// GetCPU returns the interpreter for direct access
func (app *Application) GetCPU() *cpu.CPU {
	return app.cpu
}

// GetEmulator returns the emulation loop
func (app *Application) GetEmulator() *Emulator {
	return app.emulator
}

// GetWindow returns the active window
func (app *Application) GetWindow() graphics.Window {
	return app.window
}

// GetFrameCount returns the number of frames presented
func (app *Application) GetFrameCount() uint64 {
	return app.frameCount
}

// GetUptime returns the application uptime
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// GetROM returns the loaded ROM, or nil
func (app *Application) GetROM() *rom.ROM {
	return app.rom
}

// GetROMPath returns the currently loaded ROM path
func (app *Application) GetROMPath() string {
	return app.romPath
}

// GetConfig returns the application configuration
func (app *Application) GetConfig() *Config {
	return app.config
}

// Cleanup releases all resources and shuts down the application
func (app *Application) Cleanup() error {
	if app.config != nil && app.config.Debug.EnableLogging {
		log.Printf("[APP] Cleaning up application resources")
	}

	var lastErr error

	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] Window cleanup error: %v\n", err)
		}
	}

	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
			fmt.Printf("[APP_ERROR] Graphics backend cleanup error: %v\n", err)
		}
	}

	app.initialized = false
	return lastErr
}
