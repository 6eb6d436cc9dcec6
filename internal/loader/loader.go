// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const copierHeaderSize = 512

var (
	// ErrEmpty is returned for files without any ROM data.
	ErrEmpty = errors.New("empty rom file")
	// ErrInvalidSize is returned for files whose size is not a multiple of 512 bytes.
	ErrInvalidSize = errors.New("invalid rom file size")
)

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a ROM file and removes a copier header if one is present.
// A copier header is detected by a file size that is 512 bytes larger than a
// multiple of 1 KiB, stripCopier forces its removal.
func (l *Loader) Load(path string, stripCopier bool) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	return l.LoadFromBytes(data, stripCopier)
}

// LoadFromBytes validates the ROM data and removes a copier header.
func (l *Loader) LoadFromBytes(data []byte, stripCopier bool) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data)%copierHeaderSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, len(data))
	}

	if stripCopier || len(data)%1024 == copierHeaderSize {
		data = data[copierHeaderSize:]
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}
