// Package fs provides file-based export of collected records.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/pinexport"
)

// Ensure Exporter implements pinexport.Exporter at compile time.
var _ pinexport.Exporter = (*Exporter)(nil)

// Exporter writes records as a CSV document into a directory.
// The document is written to a temporary file first and renamed into place,
// so a reader never sees a partial export.
type Exporter struct {
	dir string

	// Now returns the export time used to name the document.
	// Defaults to time.Now.
	Now func() time.Time
}

// NewExporter creates a new Exporter that writes to dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir, Now: time.Now}
}

// Export writes records to dir/pinterest_data_<epoch-millis>.csv and returns
// the path. Returns ENODATA without touching the directory if records is empty.
func (e *Exporter) Export(ctx context.Context, records []pinexport.Record) (string, error) {
	if len(records) == 0 {
		return "", pinexport.Errorf(pinexport.ENODATA, "No data collected yet!")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	finalPath := filepath.Join(e.dir, pinexport.ExportFilename(e.Now()))
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, pinexport.FormatCSV(records), 0644); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing export: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("committing export: %w", err)
	}

	return finalPath, nil
}
