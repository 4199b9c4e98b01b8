package source

import (
	"context"
	"fmt"
	"os"

	"customer-analytics/parser"
	"customer-analytics/utils"
)

// File reads the table from a local path.
type File struct {
	path   string
	logger *utils.Logger
}

// NewFile creates a file source for the given path.
func NewFile(path string, opts Options) *File {
	return &File{path: path, logger: opts.Logger}
}

// Fetch reads and decodes the file.
func (f *File) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("source: read %q: %w", f.path, err)
	}
	text, err := parser.Decode(data)
	if err != nil {
		return "", err
	}
	f.logger.Debug("[source] read %d bytes from %s", len(data), f.path)
	return text, nil
}
