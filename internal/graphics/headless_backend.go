package graphics

import (
	"fmt"
	"log"

	"gochip8/internal/debug"
	"gochip8/internal/display"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount int
	lastFrame  display.Frame
	status     Status

	// Events queued by PushEvents, returned by the next PollEvents
	pending []InputEvent

	dumper       *debug.FrameDumper
	dumpInterval int
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	window := &HeadlessWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
	}

	if b.config.DumpDir != "" && b.config.DumpInterval > 0 {
		dumper := debug.NewFrameDumper(b.config.DumpDir)
		if b.config.Foreground != b.config.Background {
			dumper.SetColors(b.config.Foreground, b.config.Background)
		}
		if err := dumper.Enable(); err != nil {
			return nil, err
		}
		window.dumper = dumper
		window.dumpInterval = b.config.DumpInterval
	}

	return window, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// HeadlessWindow implementation

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers does nothing in headless mode
func (w *HeadlessWindow) SwapBuffers() {}

// PollEvents returns events queued with PushEvents
func (w *HeadlessWindow) PollEvents() []InputEvent {
	events := w.pending
	w.pending = nil
	return events
}

// PushEvents queues scripted input for the next PollEvents
func (w *HeadlessWindow) PushEvents(events ...InputEvent) {
	w.pending = append(w.pending, events...)
}

// RenderFrame records the frame and dumps it at the configured interval
func (w *HeadlessWindow) RenderFrame(frame display.Frame, pitch int) error {
	w.frameCount++
	w.lastFrame = frame

	if w.dumper != nil && w.frameCount%w.dumpInterval == 0 {
		path, err := w.dumper.DumpPPM(frame, "frame")
		if err != nil {
			return err
		}
		if path != "" {
			log.Printf("[HEADLESS] Frame %d written to %s", w.frameCount, path)
		}
	}

	return nil
}

// SetStatus records the status
func (w *HeadlessWindow) SetStatus(status Status) {
	w.status = status
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// GetFrameCount returns the number of frames rendered
func (w *HeadlessWindow) GetFrameCount() int {
	return w.frameCount
}

// LastFrame returns the most recently rendered frame
func (w *HeadlessWindow) LastFrame() display.Frame {
	return w.lastFrame
}

// LastStatus returns the most recent status
func (w *HeadlessWindow) LastStatus() Status {
	return w.status
}
