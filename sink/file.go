package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"

	"github.com/byteness/pasmigrate/migrate"
)

// sinkFileMode protects exported credential material.
const sinkFileMode = 0600

// JSONSink writes the whole batch as one indented JSON document.
type JSONSink struct {
	// Path is the output file.
	Path string
}

// Name identifies the sink.
func (s *JSONSink) Name() string { return "json" }

// Write stores the records. JSON marshalling is all-or-nothing, so the
// report never carries partial failures.
func (s *JSONSink) Write(ctx context.Context, records []*migrate.Record) (*WriteReport, error) {
	report := newWriteReport()
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return report, err
	}
	if err := os.WriteFile(s.Path, data, sinkFileMode); err != nil {
		return report, err
	}
	report.Written = len(records)
	return report, nil
}

// CSVSink writes one row per record in the flat import layout most
// credential stores accept.
type CSVSink struct {
	// Path is the output file.
	Path string
}

// Name identifies the sink.
func (s *CSVSink) Name() string { return "csv" }

// csvHeader is the fixed column layout of the CSV sink.
var csvHeader = []string{
	"template", "secret_name", "target", "username", "password",
	"folder", "set_count", "has_conflicts", "source_id", "source_kind",
}

// Write stores the records.
func (s *CSVSink) Write(ctx context.Context, records []*migrate.Record) (*WriteReport, error) {
	report := newWriteReport()

	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, sinkFileMode)
	if err != nil {
		return report, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return report, err
	}
	for _, rec := range records {
		row := []string{
			rec.SecretTemplateName,
			rec.SecretName,
			rec.Target,
			rec.Username,
			rec.Password,
			rec.Folder,
			strconv.Itoa(len(rec.MemberOfSets)),
			strconv.FormatBool(rec.HasConflicts),
			rec.SourceID,
			string(rec.SourceKind),
		}
		if err := w.Write(row); err != nil {
			report.Failed[rec.SecretName] = err
			continue
		}
		report.Written++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return report, err
	}
	return report, nil
}
