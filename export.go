package pinexport

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CSVHeader is the first line of every exported document.
const CSVHeader = "Link,Views,Pins,Clicks"

// Exporter persists collected records as a user-retrievable document.
type Exporter interface {
	// Export writes records in the given order and returns where they went.
	// Returns ENODATA and writes nothing if records is empty.
	Export(ctx context.Context, records []Record) (path string, err error)
}

// FormatCSV serializes records with a header row. Every field is quoted and
// rows are separated by a single newline, with no newline after the last row.
// Quotes inside a field are doubled.
func FormatCSV(records []Record) []byte {
	var b strings.Builder
	b.WriteString(CSVHeader)
	for _, r := range records {
		b.WriteByte('\n')
		b.WriteString(quoteField(r.Link))
		b.WriteByte(',')
		b.WriteString(quoteField(r.Views))
		b.WriteByte(',')
		b.WriteString(quoteField(r.Pins))
		b.WriteByte(',')
		b.WriteString(quoteField(r.Clicks))
	}
	return []byte(b.String())
}

func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportFilename returns the document name for an export made at t.
// Example: pinterest_data_1700000000000.csv
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("pinterest_data_%d.csv", t.UnixMilli())
}
