package graphics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gochip8/internal/display"
)

// statusLine returns the text written after the final erase-line sequence
func statusLine(output string) string {
	if i := strings.LastIndex(output, "\033[K"); i >= 0 {
		return output[i+len("\033[K"):]
	}
	return ""
}

func TestDecodeTerminalInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []InputEvent
	}{
		{"letters and digits", "x1Q", []InputEvent{
			{Type: InputEventTypeKey, Key: KeyX, Pressed: true},
			{Type: InputEventTypeKey, Key: Key1, Pressed: true},
			{Type: InputEventTypeKey, Key: KeyQ, Pressed: true},
		}},
		{"lone escape", "\x1b", []InputEvent{
			{Type: InputEventTypeKey, Key: KeyEscape, Pressed: true},
		}},
		{"arrow", "\x1b[A", []InputEvent{
			{Type: InputEventTypeKey, Key: KeyUp, Pressed: true},
		}},
		{"function keys", "\x1b[15~\x1bOP\x1b[24~", []InputEvent{
			{Type: InputEventTypeKey, Key: KeyF5, Pressed: true},
			{Type: InputEventTypeKey, Key: KeyF1, Pressed: true},
			{Type: InputEventTypeKey, Key: KeyF12, Pressed: true},
		}},
		{"ctrl-c", "\x03", []InputEvent{
			{Type: InputEventTypeQuit, Pressed: true},
		}},
		{"unknown sequence", "\x1b[99~a", []InputEvent{
			{Type: InputEventTypeKey, Key: KeyA, Pressed: true},
		}},
		{"truncated sequence", "\x1b[1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeTerminalInput([]byte(tt.input))
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d events, got %d: %+v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Event %d: expected %+v, got %+v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestTerminalWindow_PollEventsSynthesizesRelease(t *testing.T) {
	var out bytes.Buffer
	w := NewTerminalWindow("test", &out)
	clock := time.Unix(0, 0)
	w.now = func() time.Time { return clock }

	w.input <- decodeTerminalInput([]byte("x"))
	events := w.PollEvents()
	if len(events) != 1 || events[0].Key != KeyX || !events[0].Pressed {
		t.Fatalf("Expected X press, got %+v", events)
	}

	// Auto-repeat keeps the key down without a second press event
	clock = clock.Add(keyHoldDuration / 2)
	w.input <- decodeTerminalInput([]byte("x"))
	if events := w.PollEvents(); len(events) != 0 {
		t.Fatalf("Expected no events during repeat, got %+v", events)
	}

	clock = clock.Add(keyHoldDuration)
	events = w.PollEvents()
	if len(events) != 1 || events[0].Key != KeyX || events[0].Pressed {
		t.Fatalf("Expected X release, got %+v", events)
	}
}

func TestTerminalWindow_RenderFrame(t *testing.T) {
	var out bytes.Buffer
	w := NewTerminalWindow("test", &out)

	var frame display.Frame
	frame[0] = display.PixelOn               // (0,0) top half
	frame[display.Width+1] = display.PixelOn // (1,1) bottom half
	frame[2] = display.PixelOn               // (2,0) and (2,1) full
	frame[display.Width+2] = display.PixelOn
	w.SetStatus(Status{PC: 0x2AB})

	if err := w.RenderFrame(frame, display.Pitch); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}

	output := out.String()
	if !strings.HasPrefix(output, "\033[2J\033[H▀▄█ ") {
		t.Errorf("Unexpected first line: %q", output[:30])
	}
	if got := strings.Count(output, "\r\n"); got != display.Height/2 {
		t.Errorf("Expected %d lines, got %d", display.Height/2, got)
	}
	if !strings.Contains(statusLine(output), "PC 2AB") {
		t.Errorf("Expected status line, got %q", statusLine(output))
	}

	// Unchanged frame is skipped
	out.Reset()
	w.RenderFrame(frame, display.Pitch)
	if out.Len() != 0 {
		t.Errorf("Expected no output for an unchanged frame, got %d bytes", out.Len())
	}

	// A status change forces a redraw without clearing the screen
	w.SetStatus(Status{PC: 0x2AD})
	w.RenderFrame(frame, display.Pitch)
	if !strings.HasPrefix(out.String(), "\033[H") {
		t.Errorf("Expected cursor-home redraw, got %q", out.String()[:10])
	}
}

func TestTerminalWindow_Cleanup(t *testing.T) {
	var out bytes.Buffer
	w := NewTerminalWindow("test", &out)

	if err := w.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if !w.ShouldClose() {
		t.Error("Expected window to close after cleanup")
	}
	if !strings.Contains(out.String(), "\033[?25h") {
		t.Error("Expected cursor to be restored")
	}
}

func TestTerminalWindow_RenderFrameWidePitch(t *testing.T) {
	var out bytes.Buffer
	w := NewTerminalWindow("test", &out)

	var frame display.Frame
	frame[0] = display.PixelOn
	frame[2*display.Width] = display.PixelOn // row 1 at a 128-pixel stride

	if err := w.RenderFrame(frame, 2*display.Pitch); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "\033[2J\033[H█") {
		t.Errorf("Unexpected first cell: %q", out.String()[:12])
	}
	if got := strings.Count(out.String(), "\r\n"); got != display.Height/2 {
		t.Errorf("Expected %d lines, got %d", display.Height/2, got)
	}
}

func TestTerminalWindow_SwapBuffersRedrawsStatus(t *testing.T) {
	var out bytes.Buffer
	w := NewTerminalWindow("test", &out)

	// Nothing is drawn before the first frame
	w.SetStatus(Status{PC: 0x200})
	w.SwapBuffers()
	if out.Len() != 0 {
		t.Fatalf("Expected no output before the first frame, got %q", out.String())
	}

	var frame display.Frame
	w.RenderFrame(frame, display.Pitch)
	out.Reset()

	w.SetStatus(Status{PC: 0x200, Paused: true})
	w.RenderFrame(frame, display.Pitch)
	out.Reset()
	w.SwapBuffers()
	if out.Len() != 0 {
		t.Errorf("Expected status already drawn by RenderFrame, got %q", out.String())
	}

	w.SetStatus(Status{PC: 0x200, Message: "STEP"})
	w.SwapBuffers()
	if !strings.HasPrefix(out.String(), "\033[17;1H") || !strings.Contains(statusLine(out.String()), "STEP") {
		t.Errorf("Expected status-only redraw, got %q", out.String())
	}

	out.Reset()
	w.SwapBuffers()
	if out.Len() != 0 {
		t.Errorf("Expected no output for an unchanged status, got %q", out.String())
	}
}

func TestTerminalWindow_ReadInputStopsAfterCleanup(t *testing.T) {
	var out bytes.Buffer
	w := NewTerminalWindow("test", &out)

	// Nobody polls, so the input buffer fills up
	for i := 0; i < cap(w.input); i++ {
		w.input <- nil
	}

	finished := make(chan struct{})
	go func() {
		w.readInput(strings.NewReader("x"))
		close(finished)
	}()

	if err := w.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("readInput still blocked after cleanup")
	}

	// A second cleanup is harmless
	if err := w.Cleanup(); err != nil {
		t.Errorf("Second cleanup failed: %v", err)
	}
}
