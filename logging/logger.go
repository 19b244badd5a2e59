// Package logging provides structured logging for tenant operations.
// It defines a Logger interface and implementations for JSON output
// and no-op logging.
package logging

import (
	"encoding/json"
	"io"
)

// Logger defines the interface for logging remote queries, secret exports,
// and credential migration events.
type Logger interface {
	// LogQuery logs a remote query or RPC invocation.
	LogQuery(entry QueryLogEntry)

	// LogExport logs a secret retrieve/export event.
	LogExport(entry ExportLogEntry)

	// LogMigration logs a credential migration event.
	LogMigration(entry MigrationLogEntry)
}

// JSONLogger implements Logger with JSON Lines output.
// Each entry is written as a single line of JSON suitable for log aggregation.
type JSONLogger struct {
	writer io.Writer
}

// NewJSONLogger creates a new JSONLogger that writes to the given writer.
func NewJSONLogger(w io.Writer) *JSONLogger {
	return &JSONLogger{writer: w}
}

// LogQuery writes the entry as a single line of JSON.
func (l *JSONLogger) LogQuery(entry QueryLogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

// LogExport writes the export entry as a single line of JSON.
func (l *JSONLogger) LogExport(entry ExportLogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

// LogMigration writes the migration entry as a single line of JSON.
func (l *JSONLogger) LogMigration(entry MigrationLogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

// NopLogger implements Logger but discards all entries.
// Useful for testing or when logging is disabled.
type NopLogger struct{}

// NewNopLogger creates a new NopLogger that discards all entries.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// LogQuery discards the entry.
func (l *NopLogger) LogQuery(entry QueryLogEntry) {
	// Intentionally empty - discards all entries
}

// LogExport discards the export entry.
func (l *NopLogger) LogExport(entry ExportLogEntry) {
	// Intentionally empty - discards all entries
}

// LogMigration discards the migration entry.
func (l *NopLogger) LogMigration(entry MigrationLogEntry) {
	// Intentionally empty - discards all entries
}
