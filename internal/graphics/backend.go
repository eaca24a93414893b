// Package graphics provides an abstraction layer for different rendering backends
package graphics

import (
	"fmt"
	"strings"

	"gochip8/internal/display"
)

// Backend represents a graphics rendering backend (Ebitengine, terminal, headless)
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window for rendering
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if running in headless mode
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns window dimensions
	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// SwapBuffers presents the rendered frame
	SwapBuffers()

	// PollEvents returns input events received since the last call
	PollEvents() []InputEvent

	// RenderFrame copies a framebuffer snapshot to the window. pitch is the
	// number of bytes per source row.
	RenderFrame(frame display.Frame, pitch int) error

	// SetStatus updates the status line shown alongside the display
	SetStatus(status Status)

	// Cleanup releases window resources
	Cleanup() error
}

// Config contains configuration for graphics backends
type Config struct {
	// Window configuration
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	Resizable    bool
	VSync        bool

	// Rendering configuration
	Filter     string // "nearest", "linear"
	Foreground uint32 // 0xRRGGBB for lit pixels
	Background uint32 // 0xRRGGBB for unlit pixels
	ShowStatus bool

	// Headless frame dumps
	DumpDir      string
	DumpInterval int // Dump every N frames; 0 disables

	// Backend-specific options
	Headless bool
	Debug    bool
}

// Status describes the machine for status displays
type Status struct {
	ROM             string
	PC              uint16
	Paused          bool
	CyclesPerSecond float64
	SoundActive     bool
	Keys            uint16 // Bit n set while keypad key n is held
	Message         string
}

// String formats the status as a single line
func (s Status) String() string {
	var b strings.Builder
	if s.ROM != "" {
		fmt.Fprintf(&b, "%s  ", s.ROM)
	}
	fmt.Fprintf(&b, "PC %03X  %.0f c/s", s.PC, s.CyclesPerSecond)
	if s.Keys != 0 {
		b.WriteString("  KEYS ")
		for k := 0; k < 16; k++ {
			if s.Keys&(1<<k) != 0 {
				fmt.Fprintf(&b, "%X", k)
			}
		}
	}
	if s.SoundActive {
		b.WriteString("  BEEP")
	}
	if s.Paused {
		b.WriteString("  PAUSED")
	}
	if s.Message != "" {
		fmt.Fprintf(&b, "  %s", s.Message)
	}
	return b.String()
}

// InputEvent represents an input event from the window
type InputEvent struct {
	Type    InputEventType
	Key     Key
	Pressed bool
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeQuit
)

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine:
		return NewEbitengineBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal:
		return NewTerminalBackend(), nil
	default:
		return nil, fmt.Errorf("unknown graphics backend %q", backendType)
	}
}

// Helper type assertion functions

// AsEbitengineWindow tries to cast a Window to EbitengineWindow
func AsEbitengineWindow(window Window) (*EbitengineWindow, bool) {
	if ebitengineWindow, ok := window.(*EbitengineWindow); ok {
		return ebitengineWindow, true
	}
	return nil, false
}

// AsHeadlessWindow tries to cast a Window to HeadlessWindow
func AsHeadlessWindow(window Window) (*HeadlessWindow, bool) {
	if headlessWindow, ok := window.(*HeadlessWindow); ok {
		return headlessWindow, true
	}
	return nil, false
}
