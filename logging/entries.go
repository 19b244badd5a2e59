package logging

import "time"

// QueryLogEntry records a single remote invocation against the tenant.
type QueryLogEntry struct {
	// Timestamp is when the call completed.
	Timestamp time.Time `json:"timestamp"`
	// RequestID is the client-generated correlation id for the call.
	RequestID string `json:"request_id"`
	// Endpoint is the tenant endpoint path (e.g. "/RedRock/query").
	Endpoint string `json:"endpoint"`
	// SQL is the query text, empty for non-query invocations.
	SQL string `json:"sql,omitempty"`
	// RowCount is the number of rows returned, for query invocations.
	RowCount int `json:"row_count,omitempty"`
	// DurationMS is the wall-clock call duration in milliseconds.
	DurationMS int64 `json:"duration_ms"`
	// Success reports whether the envelope carried success=true.
	Success bool `json:"success"`
	// Error holds the failure message when Success is false.
	Error string `json:"error,omitempty"`
}

// ExportLogEntry records a secret retrieve or export event.
type ExportLogEntry struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// SecretID identifies the secret being processed.
	SecretID string `json:"secret_id"`
	// SecretName is the display name of the secret.
	SecretName string `json:"secret_name"`
	// Action is "retrieve" or "export".
	Action string `json:"action"`
	// Path is the export target path, for export events.
	Path string `json:"path,omitempty"`
	// Skipped reports a no-clobber skip (Text secret already on disk).
	Skipped bool `json:"skipped,omitempty"`
	// Success reports whether the action completed.
	Success bool `json:"success"`
	// Error holds the failure message when Success is false.
	Error string `json:"error,omitempty"`
}

// MigrationLogEntry records production of one migration record.
type MigrationLogEntry struct {
	// Timestamp is when the record was produced.
	Timestamp time.Time `json:"timestamp"`
	// SourceID identifies the source account or credential.
	SourceID string `json:"source_id"`
	// SourceKind is "account" or "external".
	SourceKind string `json:"source_kind"`
	// SecretName is the target secret name of the record.
	SecretName string `json:"secret_name"`
	// TemplateName is the resolved target template, empty when unmapped.
	TemplateName string `json:"template_name,omitempty"`
	// SetCount is the number of sets the source belongs to.
	SetCount int `json:"set_count"`
	// HasConflicts reports cross-set membership conflicts.
	HasConflicts bool `json:"has_conflicts"`
	// Sink names the sink the record was written to, if any.
	Sink string `json:"sink,omitempty"`
	// Success reports whether mapping (and sink write) completed.
	Success bool `json:"success"`
	// Error holds the failure message when Success is false.
	Error string `json:"error,omitempty"`
}
