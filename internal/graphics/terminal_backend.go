package graphics

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"golang.org/x/term"

	"gochip8/internal/display"
)

// keyHoldDuration is how long a terminal key stays pressed after its last
// byte arrives. Terminals report presses and auto-repeat but no releases.
const keyHoldDuration = 150 * time.Millisecond

// TerminalBackend implements the Backend interface for terminal-based rendering
type TerminalBackend struct {
	initialized bool
	config      Config
}

// TerminalWindow implements the Window interface for terminal rendering
type TerminalWindow struct {
	title   string
	width   int
	height  int
	running bool
	status  Status

	out         io.Writer
	rendered    bool
	statusDirty bool
	lastFrame   display.Frame

	// Raw-mode keyboard input
	fd       int
	oldState *term.State
	input    chan []InputEvent
	done     chan struct{}
	held     map[Key]time.Time
	now      func() time.Time
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow puts the terminal into raw mode and starts reading keys
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	w := NewTerminalWindow(title, os.Stdout)

	outFd := int(os.Stdout.Fd())
	if term.IsTerminal(outFd) {
		cols, rows, err := term.GetSize(outFd)
		if err == nil {
			w.width, w.height = cols, rows
			if cols < display.Width || rows < display.Height/2+1 {
				log.Printf("[TERMINAL] Terminal is %dx%d, display needs %dx%d", cols, rows, display.Width, display.Height/2+1)
			}
		}
	}

	w.fd = int(os.Stdin.Fd())
	if term.IsTerminal(w.fd) {
		oldState, err := term.MakeRaw(w.fd)
		if err != nil {
			return nil, fmt.Errorf("failed to set raw mode: %w", err)
		}
		w.oldState = oldState
		go w.readInput(os.Stdin)
	} else {
		log.Printf("[TERMINAL] stdin is not a terminal, keyboard input disabled")
	}

	fmt.Fprint(w.out, "\033[?25l") // Hide cursor
	return w, nil
}

// NewTerminalWindow creates a terminal window drawing to out. Keyboard input
// is attached by CreateWindow when stdin is a terminal.
func NewTerminalWindow(title string, out io.Writer) *TerminalWindow {
	return &TerminalWindow{
		title:   title,
		width:   display.Width,
		height:  display.Height/2 + 1,
		running: true,
		out:     out,
		input:   make(chan []InputEvent, 64),
		done:    make(chan struct{}),
		held:    make(map[Key]time.Time),
		now:     time.Now,
	}
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false (terminal has basic output)
func (b *TerminalBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

// TerminalWindow implementation

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
}

// GetSize returns the terminal dimensions in cells
func (w *TerminalWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers redraws the status line when it changed after the last frame
func (w *TerminalWindow) SwapBuffers() {
	if !w.rendered || !w.statusDirty {
		return
	}
	fmt.Fprintf(w.out, "\033[%d;1H\033[K%s", display.Height/2+1, w.status.String())
	w.statusDirty = false
}

// PollEvents returns key presses read since the last call and synthesizes
// releases for keys that stopped repeating
func (w *TerminalWindow) PollEvents() []InputEvent {
	var events []InputEvent
	now := w.now()

	for {
		select {
		case batch := <-w.input:
			for _, event := range batch {
				if event.Type == InputEventTypeKey {
					if _, down := w.held[event.Key]; !down {
						events = append(events, event)
					}
					w.held[event.Key] = now
					continue
				}
				events = append(events, event)
			}
			continue
		default:
		}
		break
	}

	for key, last := range w.held {
		if now.Sub(last) >= keyHoldDuration {
			delete(w.held, key)
			events = append(events, InputEvent{Type: InputEventTypeKey, Key: key, Pressed: false})
		}
	}

	return events
}

// readInput decodes stdin bytes into key events until the reader fails or
// the window is cleaned up. A Read already blocked on stdin returns with the
// next keystroke.
func (w *TerminalWindow) readInput(r io.Reader) {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if events := decodeTerminalInput(buf[:n]); len(events) > 0 {
				select {
				case w.input <- events:
				case <-w.done:
					return
				}
			}
		}
		if err != nil {
			return
		}
		select {
		case <-w.done:
			return
		default:
		}
	}
}

// escapeSequences maps CSI and SS3 sequences (without the leading ESC) to keys
var escapeSequences = map[string]Key{
	"[A": KeyUp, "[B": KeyDown, "[C": KeyRight, "[D": KeyLeft,
	"OP": KeyF1, "OQ": KeyF2, "OR": KeyF3, "OS": KeyF4,
	"[11~": KeyF1, "[12~": KeyF2, "[13~": KeyF3, "[14~": KeyF4,
	"[15~": KeyF5, "[17~": KeyF6, "[18~": KeyF7, "[19~": KeyF8,
	"[20~": KeyF9, "[21~": KeyF10, "[23~": KeyF11, "[24~": KeyF12,
}

// decodeTerminalInput turns raw-mode bytes into key press events. Ctrl-C
// becomes a quit event.
func decodeTerminalInput(data []byte) []InputEvent {
	var events []InputEvent
	press := func(k Key) {
		events = append(events, InputEvent{Type: InputEventTypeKey, Key: k, Pressed: true})
	}

	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == 0x03:
			events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
		case b == 0x1B:
			if i+1 >= len(data) || (data[i+1] != '[' && data[i+1] != 'O') {
				press(KeyEscape)
				continue
			}
			// Sequence ends at the first byte in 0x40-0x7E after the introducer
			end := i + 2
			for end < len(data) && (data[end] < 0x40 || data[end] > 0x7E) {
				end++
			}
			if end >= len(data) {
				return events
			}
			if key, ok := escapeSequences[string(data[i+1:end+1])]; ok {
				press(key)
			}
			i = end
		default:
			if key := KeyFromRune(rune(b)); key != KeyUnknown {
				press(key)
			}
		}
	}

	return events
}

// RenderFrame draws the display with half-block characters, two pixel rows
// per terminal line. Unchanged frames are skipped.
func (w *TerminalWindow) RenderFrame(frame display.Frame, pitch int) error {
	if w.rendered && !w.statusDirty && frame == w.lastFrame {
		return nil
	}

	stride := pitch / display.BytesPerPixel
	if stride < display.Width {
		stride = display.Width
	}
	lit := func(x, y int) bool {
		i := y*stride + x
		return i < len(frame) && frame[i] != display.PixelOff
	}

	bw := bufio.NewWriter(w.out)
	if !w.rendered {
		bw.WriteString("\033[2J")
	}
	bw.WriteString("\033[H")

	for y := 0; y < display.Height; y += 2 {
		for x := 0; x < display.Width; x++ {
			top, bottom := lit(x, y), lit(x, y+1)
			switch {
			case top && bottom:
				bw.WriteString("█")
			case top:
				bw.WriteString("▀")
			case bottom:
				bw.WriteString("▄")
			default:
				bw.WriteByte(' ')
			}
		}
		bw.WriteString("\r\n")
	}
	bw.WriteString("\033[K")
	bw.WriteString(w.status.String())

	w.rendered = true
	w.statusDirty = false
	w.lastFrame = frame
	return bw.Flush()
}

// SetStatus updates the status line; it is drawn by the next RenderFrame or
// SwapBuffers
func (w *TerminalWindow) SetStatus(status Status) {
	if status != w.status {
		w.statusDirty = true
	}
	w.status = status
}

// Cleanup restores the terminal
func (w *TerminalWindow) Cleanup() error {
	if w.running {
		close(w.done)
	}
	w.running = false
	fmt.Fprint(w.out, "\033[?25h\r\n") // Show cursor
	if w.oldState != nil {
		if err := term.Restore(w.fd, w.oldState); err != nil {
			return fmt.Errorf("failed to restore terminal: %w", err)
		}
		w.oldState = nil
	}
	return nil
}
