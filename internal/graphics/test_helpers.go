//go:build !headless
// +build !headless

package graphics

import "gochip8/internal/display"

// Test helper methods for accessing internal state during testing

// GetFrameForTesting returns the last rendered frame
func (w *EbitengineWindow) GetFrameForTesting() display.Frame {
	if w.game == nil {
		return display.Frame{}
	}
	return w.game.frame
}

// GetGameForTesting returns the internal game instance for testing purposes
func (w *EbitengineWindow) GetGameForTesting() *EbitengineGame {
	return w.game
}

// GetEmulatorUpdateFuncForTesting returns the emulator update function for testing
func (w *EbitengineWindow) GetEmulatorUpdateFuncForTesting() func() error {
	return w.emulatorUpdateFunc
}
