//go:build !headless
// +build !headless

package graphics

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"gochip8/internal/display"
)

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
	game        *EbitengineGame
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	backend            *EbitengineBackend
	title              string
	width              int
	height             int
	game               *EbitengineGame
	running            bool
	events             []InputEvent
	emulatorUpdateFunc func() error
}

// EbitengineGame implements ebiten.Game for the display
type EbitengineGame struct {
	window       *EbitengineWindow
	frame        display.Frame
	frameImage   *ebiten.Image
	windowWidth  int
	windowHeight int

	foreground   uint32
	background   uint32
	showStatus   bool
	integerScale bool // Snap to whole-pixel scales with nearest filtering
	status       Status

	drawCount int // For limiting debug logs

	// Reusable RGBA buffer for WritePixels
	pixelBuffer []byte
}

// keyMappings maps Ebitengine keys to backend keys
var keyMappings = map[ebiten.Key]Key{
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeyEnter:      KeyEnter,
	ebiten.KeySpace:      KeySpace,
	ebiten.KeyArrowUp:    KeyUp,
	ebiten.KeyArrowDown:  KeyDown,
	ebiten.KeyArrowLeft:  KeyLeft,
	ebiten.KeyArrowRight: KeyRight,
	ebiten.Key0:          Key0,
	ebiten.Key1:          Key1,
	ebiten.Key2:          Key2,
	ebiten.Key3:          Key3,
	ebiten.Key4:          Key4,
	ebiten.Key5:          Key5,
	ebiten.Key6:          Key6,
	ebiten.Key7:          Key7,
	ebiten.Key8:          Key8,
	ebiten.Key9:          Key9,
	ebiten.KeyA:          KeyA,
	ebiten.KeyB:          KeyB,
	ebiten.KeyC:          KeyC,
	ebiten.KeyD:          KeyD,
	ebiten.KeyE:          KeyE,
	ebiten.KeyF:          KeyF,
	ebiten.KeyG:          KeyG,
	ebiten.KeyH:          KeyH,
	ebiten.KeyI:          KeyI,
	ebiten.KeyJ:          KeyJ,
	ebiten.KeyK:          KeyK,
	ebiten.KeyL:          KeyL,
	ebiten.KeyM:          KeyM,
	ebiten.KeyN:          KeyN,
	ebiten.KeyO:          KeyO,
	ebiten.KeyP:          KeyP,
	ebiten.KeyQ:          KeyQ,
	ebiten.KeyR:          KeyR,
	ebiten.KeyS:          KeyS,
	ebiten.KeyT:          KeyT,
	ebiten.KeyU:          KeyU,
	ebiten.KeyV:          KeyV,
	ebiten.KeyW:          KeyW,
	ebiten.KeyX:          KeyX,
	ebiten.KeyY:          KeyY,
	ebiten.KeyZ:          KeyZ,
	ebiten.KeyF1:         KeyF1,
	ebiten.KeyF2:         KeyF2,
	ebiten.KeyF3:         KeyF3,
	ebiten.KeyF4:         KeyF4,
	ebiten.KeyF5:         KeyF5,
	ebiten.KeyF6:         KeyF6,
	ebiten.KeyF7:         KeyF7,
	ebiten.KeyF8:         KeyF8,
	ebiten.KeyF9:         KeyF9,
	ebiten.KeyF10:        KeyF10,
	ebiten.KeyF11:        KeyF11,
	ebiten.KeyF12:        KeyF12,
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates an Ebitengine window
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	if b.config.Headless {
		return nil, fmt.Errorf("cannot create window in headless mode")
	}

	game := &EbitengineGame{
		windowWidth:  width,
		windowHeight: height,
		frameImage:   ebiten.NewImage(display.Width, display.Height),
		foreground:   b.config.Foreground,
		background:   b.config.Background,
		showStatus:   b.config.ShowStatus,
		integerScale: b.config.Filter != "linear",
		pixelBuffer:  make([]byte, display.Width*display.Height*4),
	}
	if game.foreground == game.background {
		game.foreground, game.background = DefaultForeground, DefaultBackground
	}

	window := &EbitengineWindow{
		backend: b,
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
	}

	game.window = window
	b.game = game

	// Configure Ebitengine
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	if b.config.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetVsyncEnabled(b.config.VSync)

	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if b.config.Filter == "linear" {
		ebiten.SetScreenFilterEnabled(true)
	} else {
		ebiten.SetScreenFilterEnabled(false)
	}

	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// EbitengineWindow implementation

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers is handled automatically by Ebitengine
func (w *EbitengineWindow) SwapBuffers() {}

// PollEvents returns input events and clears the queue
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// RenderFrame uploads a framebuffer snapshot to the display texture
func (w *EbitengineWindow) RenderFrame(frame display.Frame, pitch int) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	w.game.frame = frame
	FrameToRGBA(w.game.pixelBuffer, frame, pitch, w.game.foreground, w.game.background)
	w.game.frameImage.WritePixels(w.game.pixelBuffer)
	return nil
}

// SetStatus updates the status overlay
func (w *EbitengineWindow) SetStatus(status Status) {
	if w.game != nil {
		w.game.status = status
	}
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop and blocks until the window closes
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	return ebiten.RunGame(w.game)
}

// SetEmulatorUpdateFunc sets the function called once per game tick
func (w *EbitengineWindow) SetEmulatorUpdateFunc(updateFunc func() error) {
	w.emulatorUpdateFunc = updateFunc
}

// EbitengineGame implementation

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}

	if ebiten.IsWindowBeingClosed() {
		g.window.events = append(g.window.events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
	}

	g.processInput()

	if g.window.emulatorUpdateFunc != nil {
		if err := g.window.emulatorUpdateFunc(); err != nil {
			// Log error but don't stop the game
			log.Printf("[Ebitengine] Emulator update error: %v", err)
		}
	}

	if !g.window.running {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(rgbColor(g.background))
	if g.frameImage == nil {
		return
	}

	areaHeight := g.windowHeight
	if g.showStatus && areaHeight > StatusBarHeight*2 {
		areaHeight -= StatusBarHeight
	}

	// Fit the display into the window, keeping its aspect ratio
	scaleX := float64(g.windowWidth) / float64(display.Width)
	scaleY := float64(areaHeight) / float64(display.Height)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	if g.integerScale && scale >= 1 {
		scale = float64(windowScale(g.windowWidth, areaHeight))
	}
	offsetX := (float64(g.windowWidth) - float64(display.Width)*scale) / 2
	offsetY := (float64(areaHeight) - float64(display.Height)*scale) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(g.frameImage, op)

	if g.showStatus && areaHeight < g.windowHeight {
		g.drawStatus(screen, areaHeight)
	}

	g.drawCount++
	if g.drawCount%1800 == 0 {
		log.Printf("[Ebitengine] Drawing frame %d - %dx%d scaled %.2fx, %d lit pixels",
			g.drawCount, display.Width, display.Height, scale, g.frame.LitPixels())
	}
}

// drawStatus renders the status bar at the bottom of the window
func (g *EbitengineGame) drawStatus(screen *ebiten.Image, y int) {
	ebitenutil.DrawRect(screen, 0, float64(y), float64(g.windowWidth), float64(StatusBarHeight), color.RGBA{0, 0, 0, 200})

	labelColor := color.RGBA{190, 190, 190, 255}
	if g.status.Paused {
		labelColor = color.RGBA{240, 200, 0, 255}
	}
	text.Draw(screen, g.status.String(), basicfont.Face7x13, 4, y+13, labelColor)
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// processInput queues press and release events for mapped keys
func (g *EbitengineGame) processInput() {
	if g.window == nil {
		return
	}

	for ebitenKey, key := range keyMappings {
		if inpututil.IsKeyJustPressed(ebitenKey) {
			g.window.events = append(g.window.events, InputEvent{
				Type:    InputEventTypeKey,
				Key:     key,
				Pressed: true,
			})
		} else if inpututil.IsKeyJustReleased(ebitenKey) {
			g.window.events = append(g.window.events, InputEvent{
				Type:    InputEventTypeKey,
				Key:     key,
				Pressed: false,
			})
		}
	}
}

// rgbColor converts 0xRRGGBB to an opaque color
func rgbColor(rgb uint32) color.RGBA {
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xFF}
}
