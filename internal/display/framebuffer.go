// Package display implements the 64x32 monochrome framebuffer.
package display

// Framebuffer geometry
const (
	Width  = 64
	Height = 32
	// SpriteWidth is the number of pixels in one sprite row byte
	SpriteWidth = 8
	// BytesPerPixel is the size of one pixel in the presentation format
	BytesPerPixel = 4
	// Pitch is the number of bytes per framebuffer row
	Pitch = Width * BytesPerPixel
)

// Pixel values. On is all bits set so the buffer can be handed to a
// 32-bit surface without conversion.
const (
	PixelOff uint32 = 0x00000000
	PixelOn  uint32 = 0xFFFFFFFF
)

// Frame is a row-major copy of the framebuffer
type Frame [Width * Height]uint32

// Framebuffer holds the display pixels
type Framebuffer struct {
	pixels Frame

	// Set whenever pixels change, cleared by the presenter
	dirty bool
}

// New creates a cleared framebuffer
func New() *Framebuffer {
	return &Framebuffer{dirty: true}
}

// Clear turns every pixel off
func (fb *Framebuffer) Clear() {
	fb.pixels = Frame{}
	fb.dirty = true
}

// DrawSprite XOR-composites sprite rows at (x, y) and reports whether any
// lit pixel was turned off. The origin wraps to the screen; pixels that run
// past the right or bottom edge are clipped.
func (fb *Framebuffer) DrawSprite(x, y uint8, rows []uint8) bool {
	originX := int(x) % Width
	originY := int(y) % Height
	collision := false

	for row, bits := range rows {
		py := originY + row
		if py >= Height {
			break
		}
		for col := 0; col < SpriteWidth; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := originX + col
			if px >= Width {
				continue
			}

			pixel := &fb.pixels[py*Width+px]
			if *pixel != PixelOff {
				collision = true
			}
			*pixel ^= PixelOn
		}
	}

	if len(rows) > 0 {
		fb.dirty = true
	}
	return collision
}

// Pixel returns the value at (x, y); coordinates outside the grid read as off
func (f Frame) Pixel(x, y int) uint32 {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return PixelOff
	}
	return f[y*Width+x]
}

// Snapshot returns a copy of the pixels
func (fb *Framebuffer) Snapshot() Frame {
	return fb.pixels
}

// Dirty reports whether pixels changed since the last MarkPresented
func (fb *Framebuffer) Dirty() bool {
	return fb.dirty
}

// MarkPresented clears the dirty flag
func (fb *Framebuffer) MarkPresented() {
	fb.dirty = false
}

// LitPixels counts pixels that are on
func (f Frame) LitPixels() int {
	count := 0
	for _, pixel := range f {
		if pixel != PixelOff {
			count++
		}
	}
	return count
}
