// Package rom loads program images from persistent storage.
package rom

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gochip8/internal/memory"
)

var (
	// ErrEmptyROM is returned when a ROM source contains no bytes
	ErrEmptyROM = errors.New("rom is empty")
)

// ROM is a raw program image. There is no header; bytes load verbatim at
// memory.ProgramStart.
type ROM struct {
	Name     string
	Path     string
	Data     []uint8
	Checksum uint32

	// Set when the source was larger than program space
	Truncated bool
	// Size of the source before truncation
	SourceSize int64
}

// LoadFromFile reads a ROM from disk
func LoadFromFile(filename string) (*ROM, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open ROM: %w", err)
	}
	defer file.Close()

	rom, err := LoadFromReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM %s: %w", filename, err)
	}

	rom.Path = filename
	rom.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return rom, nil
}

// LoadFromReader reads a ROM from an io.Reader. Images longer than program
// space are truncated and flagged.
func LoadFromReader(r io.Reader) (*ROM, error) {
	// Read one byte past program space to detect truncation
	data, err := io.ReadAll(io.LimitReader(r, memory.ProgramSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyROM
	}

	rom := &ROM{SourceSize: int64(len(data))}
	if len(data) > memory.ProgramSize {
		rom.Truncated = true
		// Drain the remainder so SourceSize is accurate
		rest, err := io.Copy(io.Discard, r)
		if err != nil {
			return nil, err
		}
		rom.SourceSize += rest
		data = data[:memory.ProgramSize]
	}

	rom.Data = data
	rom.Checksum = crc32.ChecksumIEEE(data)
	return rom, nil
}

// Size returns the number of bytes that will be loaded
func (r *ROM) Size() int {
	return len(r.Data)
}

// Reader returns a fresh reader over the image
func (r *ROM) Reader() io.Reader {
	return bytes.NewReader(r.Data)
}

// String describes the ROM for status output
func (r *ROM) String() string {
	name := r.Name
	if name == "" {
		name = "<memory>"
	}
	return fmt.Sprintf("%s (%d bytes, crc32 %08x)", name, len(r.Data), r.Checksum)
}
