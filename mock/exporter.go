package mock

import (
	"context"

	"github.com/fwojciec/pinexport"
)

var _ pinexport.Exporter = (*Exporter)(nil)

// Exporter is a mock implementation of pinexport.Exporter.
type Exporter struct {
	ExportFn func(ctx context.Context, records []pinexport.Record) (string, error)
}

func (e *Exporter) Export(ctx context.Context, records []pinexport.Record) (string, error) {
	return e.ExportFn(ctx, records)
}
