package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lugehorsam/postfix-spreadsheet/internal/grid"
)

var ErrNotFound = errors.New("file not found")

// Load reads the whole file as text.
func Load(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", filename, err)
	}
	return string(data), nil
}

// LoadGrid reads filename and builds a grid from its contents.
func LoadGrid(filename string) (*grid.Grid, error) {
	text, err := Load(filename)
	if err != nil {
		return nil, err
	}
	return grid.Build(text), nil
}

// Save writes rendered text to filename, replacing it. A final newline is
// added when text is not empty.
func Save(filename, text string) error {
	if text != "" {
		text += "\n"
	}
	if err := os.WriteFile(filename, []byte(text), 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", filename, err)
	}
	return nil
}
