//go:build !headless
// +build !headless

package graphics

import (
	"errors"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"gochip8/internal/display"
)

// newTestEbitengineWindow initializes a backend and creates a window
func newTestEbitengineWindow(t testing.TB, config Config) *EbitengineWindow {
	t.Helper()
	backend := NewEbitengineBackend()
	if err := backend.Initialize(config); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}
	window, err := backend.CreateWindow("Test Window", 640, 320)
	if err != nil {
		t.Fatalf("Window creation failed: %v", err)
	}
	return window.(*EbitengineWindow)
}

// TestEbitengineBackend_Initialize tests backend initialization
func TestEbitengineBackend_Initialize(t *testing.T) {
	backend := NewEbitengineBackend()

	config := Config{
		WindowTitle:  "Test Window",
		WindowWidth:  640,
		WindowHeight: 320,
		VSync:        true,
		Filter:       "nearest",
		Foreground:   0x33FF66,
		Background:   0x101010,
	}

	if err := backend.Initialize(config); err != nil {
		t.Fatalf("Expected successful initialization, got error: %v", err)
	}
	if !backend.(*EbitengineBackend).initialized {
		t.Error("Backend should be marked as initialized")
	}
	if backend.(*EbitengineBackend).config.Foreground != 0x33FF66 {
		t.Error("Config not properly stored during initialization")
	}
}

// TestEbitengineBackend_DoubleInitialize tests that double initialization fails
func TestEbitengineBackend_DoubleInitialize(t *testing.T) {
	backend := NewEbitengineBackend()

	if err := backend.Initialize(Config{}); err != nil {
		t.Fatalf("First initialization failed: %v", err)
	}

	err := backend.Initialize(Config{})
	if err == nil {
		t.Fatal("Expected error on double initialization, got nil")
	}
	expectedError := "Ebitengine backend already initialized"
	if err.Error() != expectedError {
		t.Errorf("Expected error message '%s', got '%s'", expectedError, err.Error())
	}
}

// TestEbitengineBackend_CreateWindow_Uninitialized tests window creation before Initialize
func TestEbitengineBackend_CreateWindow_Uninitialized(t *testing.T) {
	backend := NewEbitengineBackend()

	_, err := backend.CreateWindow("Test", 640, 320)
	if err == nil || err.Error() != "backend not initialized" {
		t.Errorf("Expected 'backend not initialized', got %v", err)
	}
}

// TestEbitengineBackend_CreateWindow_Headless tests that headless config refuses windows
func TestEbitengineBackend_CreateWindow_Headless(t *testing.T) {
	backend := NewEbitengineBackend()
	if err := backend.Initialize(Config{Headless: true}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}

	if _, err := backend.CreateWindow("Test", 640, 320); err == nil {
		t.Error("Expected error creating a window in headless mode")
	}
}

// TestEbitengineWindow_RenderFrame tests frame upload
func TestEbitengineWindow_RenderFrame(t *testing.T) {
	window := newTestEbitengineWindow(t, Config{Foreground: 0xFFFFFF})

	fb := display.New()
	fb.DrawSprite(0, 0, []uint8{0xAA, 0x55})
	frame := fb.Snapshot()

	if err := window.RenderFrame(frame, display.Pitch); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}

	if window.GetFrameForTesting() != frame {
		t.Error("Rendered frame not stored")
	}
	// First pixel is lit, second unlit
	buf := window.game.pixelBuffer
	if buf[0] != 0xFF || buf[4] != 0x00 || buf[3] != 0xFF {
		t.Errorf("Unexpected RGBA conversion: % X", buf[:8])
	}
}

// TestEbitengineWindow_RenderFrame_NilGame tests rendering with nil game
func TestEbitengineWindow_RenderFrame_NilGame(t *testing.T) {
	window := &EbitengineWindow{game: nil}

	err := window.RenderFrame(display.Frame{}, display.Pitch)
	if err == nil {
		t.Fatal("Expected error when rendering with nil game")
	}
	if err.Error() != "game not initialized" {
		t.Errorf("Expected error message 'game not initialized', got '%s'", err.Error())
	}
}

// TestEbitengineWindow_EmulatorUpdateFunc tests emulator update function integration
func TestEbitengineWindow_EmulatorUpdateFunc(t *testing.T) {
	window := newTestEbitengineWindow(t, Config{})

	updateCalled := false
	window.SetEmulatorUpdateFunc(func() error {
		updateCalled = true
		return nil
	})
	if window.GetEmulatorUpdateFuncForTesting() == nil {
		t.Fatal("Emulator update function should be set")
	}

	if err := window.GetGameForTesting().Update(); err != nil {
		t.Fatalf("Game Update failed: %v", err)
	}
	if !updateCalled {
		t.Error("Emulator update function should have been called during game update")
	}
}

// TestEbitengineWindow_EmulatorUpdateFunc_Error tests error handling in emulator update
func TestEbitengineWindow_EmulatorUpdateFunc_Error(t *testing.T) {
	window := newTestEbitengineWindow(t, Config{})
	window.SetEmulatorUpdateFunc(func() error {
		return errors.New("emulator error")
	})

	// Game Update should not fail even if emulator update fails
	if err := window.game.Update(); err != nil {
		t.Fatalf("Game Update should not fail when emulator update fails: %v", err)
	}
}

// TestEbitengineGame_UpdateTerminatesAfterCleanup tests the loop exit path
func TestEbitengineGame_UpdateTerminatesAfterCleanup(t *testing.T) {
	window := &EbitengineWindow{running: true}
	game := &EbitengineGame{window: window}

	if err := game.Update(); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	window.Cleanup()
	if err := game.Update(); !errors.Is(err, ebiten.Termination) {
		t.Errorf("Expected ebiten.Termination after cleanup, got %v", err)
	}
}

// TestEbitengineGame_Layout tests game layout calculations
func TestEbitengineGame_Layout(t *testing.T) {
	game := &EbitengineGame{}

	screenWidth, screenHeight := game.Layout(800, 600)

	if screenWidth != 800 || screenHeight != 600 {
		t.Errorf("Expected layout 800x600, got %dx%d", screenWidth, screenHeight)
	}
	if game.windowWidth != 800 || game.windowHeight != 600 {
		t.Errorf("Game window dimensions not updated correctly: %dx%d", game.windowWidth, game.windowHeight)
	}
}

// TestEbitengineWindow_WindowOperations tests basic window operations
func TestEbitengineWindow_WindowOperations(t *testing.T) {
	window := newTestEbitengineWindow(t, Config{})

	window.SetTitle("New Title")
	if window.title != "New Title" {
		t.Errorf("Title not updated correctly: expected 'New Title', got '%s'", window.title)
	}

	width, height := window.GetSize()
	if width != 640 || height != 320 {
		t.Errorf("Size not correct: expected 640x320, got %dx%d", width, height)
	}

	window.SetStatus(Status{PC: 0x234, Paused: true})
	if window.game.status.PC != 0x234 {
		t.Error("Status not stored")
	}

	if window.ShouldClose() {
		t.Error("Window should not initially be marked for closing")
	}
	if err := window.Cleanup(); err != nil {
		t.Fatalf("Window cleanup failed: %v", err)
	}
	if !window.ShouldClose() {
		t.Error("Window should be marked for closing after cleanup")
	}
}

// TestEbitengineBackend_BackendProperties tests backend property methods
func TestEbitengineBackend_BackendProperties(t *testing.T) {
	backend := NewEbitengineBackend()

	if backend.GetName() != "Ebitengine" {
		t.Errorf("Expected backend name 'Ebitengine', got '%s'", backend.GetName())
	}
	if backend.IsHeadless() {
		t.Error("Backend should not be headless by default")
	}

	if err := backend.Initialize(Config{Headless: true}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}
	if !backend.IsHeadless() {
		t.Error("Backend should be headless when configured as such")
	}
}

// TestEbitengineWindow_PollEvents tests event polling
func TestEbitengineWindow_PollEvents(t *testing.T) {
	window := &EbitengineWindow{
		events: []InputEvent{
			{Type: InputEventTypeKey, Key: KeyEscape, Pressed: true},
			{Type: InputEventTypeQuit, Pressed: true},
		},
	}

	if events := window.PollEvents(); len(events) != 2 {
		t.Errorf("Expected 2 events, got %d", len(events))
	}
	if events := window.PollEvents(); len(events) != 0 {
		t.Errorf("Expected 0 events after clearing, got %d", len(events))
	}
}

// TestKeyMappings_CoverEveryKey tests that each backend key has an Ebitengine key
func TestKeyMappings_CoverEveryKey(t *testing.T) {
	mapped := make(map[Key]bool)
	for _, key := range keyMappings {
		mapped[key] = true
	}
	for k := KeyUnknown + 1; k < keyCount; k++ {
		if !mapped[k] {
			t.Errorf("Key %s has no Ebitengine mapping", k)
		}
	}
}

// TestEbitengineBackend_Cleanup tests backend cleanup
func TestEbitengineBackend_Cleanup(t *testing.T) {
	backend := NewEbitengineBackend()
	if err := backend.Initialize(Config{}); err != nil {
		t.Fatalf("Backend initialization failed: %v", err)
	}

	if err := backend.Cleanup(); err != nil {
		t.Fatalf("Backend cleanup failed: %v", err)
	}
	if backend.(*EbitengineBackend).initialized {
		t.Error("Backend should not be initialized after cleanup")
	}
}

func BenchmarkEbitengineWindow_RenderFrame(b *testing.B) {
	window := newTestEbitengineWindow(b, Config{})

	var frame display.Frame
	for i := 0; i < len(frame); i += 3 {
		frame[i] = display.PixelOn
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := window.RenderFrame(frame, display.Pitch); err != nil {
			b.Fatalf("RenderFrame failed: %v", err)
		}
	}
}
