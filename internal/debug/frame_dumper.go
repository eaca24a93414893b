// Package debug provides host-side instrumentation: instruction tracing,
// busy-loop detection and framebuffer dumps.
package debug

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gochip8/internal/display"
)

// FrameDumper writes framebuffer snapshots to disk
type FrameDumper struct {
	outputDir   string
	dumpEnabled bool
	dumpCount   int
	maxDumps    int
	scale       int

	// Colors used for lit and unlit pixels, 0xRRGGBB
	foreground uint32
	background uint32
}

// NewFrameDumper creates a new frame dumper
func NewFrameDumper(outputDir string) *FrameDumper {
	return &FrameDumper{
		outputDir:   outputDir,
		dumpEnabled: false,
		maxDumps:    100,
		scale:       1,
		foreground:  0xFFFFFF,
		background:  0x000000,
	}
}

// Enable activates frame dumping and creates the output directory
func (fd *FrameDumper) Enable() error {
	if err := os.MkdirAll(fd.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}
	fd.dumpEnabled = true
	return nil
}

// Disable deactivates frame dumping
func (fd *FrameDumper) Disable() {
	fd.dumpEnabled = false
}

// IsEnabled reports whether dumps are written
func (fd *FrameDumper) IsEnabled() bool {
	return fd.dumpEnabled
}

// SetMaxDumps sets the maximum number of files written; 0 means unlimited
func (fd *FrameDumper) SetMaxDumps(max int) {
	fd.maxDumps = max
}

// SetScale sets the pixel magnification used for image dumps
func (fd *FrameDumper) SetScale(scale int) {
	if scale < 1 {
		scale = 1
	}
	fd.scale = scale
}

// SetColors sets the RGB colors for lit and unlit pixels
func (fd *FrameDumper) SetColors(foreground, background uint32) {
	fd.foreground = foreground & 0xFFFFFF
	fd.background = background & 0xFFFFFF
}

// DumpCount returns the number of files written so far
func (fd *FrameDumper) DumpCount() int {
	return fd.dumpCount
}

// DumpPPM writes frame as a PPM image and returns the file path. Nothing is
// written while the dumper is disabled or the dump limit has been reached.
func (fd *FrameDumper) DumpPPM(frame display.Frame, tag string) (string, error) {
	return fd.dump(tag, "ppm", func(w io.Writer) error {
		return WritePPM(w, frame, fd.scale, fd.foreground, fd.background)
	})
}

// DumpText writes frame as ASCII art and returns the file path
func (fd *FrameDumper) DumpText(frame display.Frame, tag string) (string, error) {
	return fd.dump(tag, "txt", func(w io.Writer) error {
		return WriteText(w, frame)
	})
}

func (fd *FrameDumper) dump(tag, ext string, write func(io.Writer) error) (string, error) {
	if !fd.dumpEnabled {
		return "", nil
	}
	if fd.maxDumps > 0 && fd.dumpCount >= fd.maxDumps {
		return "", nil
	}

	filename := fmt.Sprintf("%s_%03d_%s.%s", tag, fd.dumpCount, time.Now().Format("150405"), ext)
	filePath := filepath.Join(fd.outputDir, filename)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create frame dump file: %w", err)
	}
	defer file.Close()

	if err := write(file); err != nil {
		return "", fmt.Errorf("failed to write frame dump %s: %w", filePath, err)
	}

	fd.dumpCount++
	return filePath, nil
}

// WritePPM encodes frame as a plain (P3) PPM image, magnifying each pixel
// to a scale x scale block.
func WritePPM(w io.Writer, frame display.Frame, scale int, foreground, background uint32) error {
	if scale < 1 {
		scale = 1
	}
	bw := bufio.NewWriter(w)

	// PPM header
	fmt.Fprintf(bw, "P3\n%d %d\n255\n", display.Width*scale, display.Height*scale)

	// RGB data
	for y := 0; y < display.Height*scale; y++ {
		for x := 0; x < display.Width*scale; x++ {
			color := background
			if frame.Pixel(x/scale, y/scale) != display.PixelOff {
				color = foreground
			}
			fmt.Fprintf(bw, "%d %d %d ", (color>>16)&0xFF, (color>>8)&0xFF, color&0xFF)
		}
		fmt.Fprintf(bw, "\n")
	}

	return bw.Flush()
}

// WriteText renders frame as rows of '#' (lit) and '.' (unlit)
func WriteText(w io.Writer, frame display.Frame) error {
	bw := bufio.NewWriter(w)
	line := make([]byte, display.Width+1)
	line[display.Width] = '\n'

	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			if frame.Pixel(x, y) != display.PixelOff {
				line[x] = '#'
			} else {
				line[x] = '.'
			}
		}
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}

	return bw.Flush()
}
