package graphics

import "gochip8/internal/display"

// Default display colors, 0xRRGGBB
const (
	DefaultForeground uint32 = 0xFFFFFF
	DefaultBackground uint32 = 0x000000
)

// StatusBarHeight is the height in window pixels of the status overlay
const StatusBarHeight = 18

// WindowSize returns the window size that shows the display at the given
// scale, plus room for the status overlay when it is enabled
func WindowSize(scale int, showStatus bool) (width, height int) {
	if scale < 1 {
		scale = 1
	}
	width, height = display.Width*scale, display.Height*scale
	if showStatus {
		height += StatusBarHeight
	}
	return width, height
}

// FrameToRGBA converts a framebuffer snapshot into RGBA bytes, four per
// pixel, using foreground for lit pixels. pitch is the source row stride in
// bytes. dst must hold display.Width*display.Height*4 bytes.
func FrameToRGBA(dst []byte, frame display.Frame, pitch int, foreground, background uint32) {
	stride := pitch / display.BytesPerPixel
	if stride < display.Width {
		stride = display.Width
	}

	fr, fg, fb := uint8(foreground>>16), uint8(foreground>>8), uint8(foreground)
	br, bg, bb := uint8(background>>16), uint8(background>>8), uint8(background)

	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			src := y*stride + x
			i := (y*display.Width + x) * 4
			if src < len(frame) && frame[src] != display.PixelOff {
				dst[i], dst[i+1], dst[i+2] = fr, fg, fb
			} else {
				dst[i], dst[i+1], dst[i+2] = br, bg, bb
			}
			dst[i+3] = 0xFF
		}
	}
}

// windowScale returns the largest integer scale at which the display fits
// in the given window size
func windowScale(width, height int) int {
	scale := width / display.Width
	if s := height / display.Height; s < scale {
		scale = s
	}
	if scale < 1 {
		scale = 1
	}
	return scale
}
