// Package sink writes migration records to their target credential store:
// flat JSON/CSV files for offline import, or AWS Secrets Manager directly.
// Sinks are fault-isolated per record; one bad record never aborts a batch.
package sink

import (
	"context"

	"github.com/byteness/pasmigrate/migrate"
)

// Sink writes a batch of migration records to one target.
type Sink interface {
	// Name identifies the sink in logs and reports.
	Name() string
	// Write stores the records, continuing past per-record failures.
	Write(ctx context.Context, records []*migrate.Record) (*WriteReport, error)
}

// WriteReport summarizes one batch write.
type WriteReport struct {
	// Written is the number of records stored.
	Written int
	// Failed maps record secret names to their write errors.
	Failed map[string]error
}

// newWriteReport creates an empty report.
func newWriteReport() *WriteReport {
	return &WriteReport{Failed: make(map[string]error)}
}
