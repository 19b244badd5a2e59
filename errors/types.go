// Package errors provides structured error types with fix suggestions for
// pasmigrate. These error types wrap remote tenant failures and provide
// actionable guidance on how to resolve common connection and query problems.
package errors

// PlatformError provides additional context for error handling.
// It wraps underlying errors with error codes and actionable suggestions.
type PlatformError interface {
	error
	Unwrap() error              // Original error
	Code() string               // Error code (e.g., "QUERY_FAILED")
	Suggestion() string         // Actionable fix suggestion
	Context() map[string]string // Additional context (endpoint, object id, etc.)
}

// Connection error codes
const (
	ErrCodeNotConnected   = "CONNECTION_NOT_ESTABLISHED"
	ErrCodeSessionExpired = "SESSION_EXPIRED"
)

// Remote call error codes
const (
	ErrCodeRemoteCallFailed = "REMOTE_CALL_FAILED"
	ErrCodeQueryFailed      = "QUERY_FAILED"
	ErrCodeEnvelopeInvalid  = "ENVELOPE_INVALID"
)

// ACL error codes
const (
	ErrCodeACLRowInvalid  = "ACL_ROW_INVALID"
	ErrCodeACLFetchFailed = "ACL_FETCH_FAILED"
)

// Object error codes
const (
	ErrCodeObjectRowInvalid   = "OBJECT_ROW_INVALID"
	ErrCodeSecretNotRetrieved = "SECRET_NOT_RETRIEVED"
	ErrCodeExportFailed       = "EXPORT_FAILED"
)

// Auth error codes
const (
	ErrCodeAuthStartFailed   = "AUTH_START_FAILED"
	ErrCodeAuthMFAFailed     = "AUTH_MFA_FAILED"
	ErrCodeAuthTokenRejected = "AUTH_TOKEN_REJECTED"
)

// Config error codes
const (
	ErrCodeConfigProfileNotFound = "CONFIG_PROFILE_NOT_FOUND"
	ErrCodeConfigInvalidTenant   = "CONFIG_INVALID_TENANT"
)

// Sink error codes
const (
	ErrCodeSinkWriteFailed = "SINK_WRITE_FAILED"
)

// platformError implements the PlatformError interface.
type platformError struct {
	code       string
	message    string
	suggestion string
	context    map[string]string
	cause      error
}

// Error implements the error interface.
func (e *platformError) Error() string {
	return e.message
}

// Unwrap returns the underlying cause error.
func (e *platformError) Unwrap() error {
	return e.cause
}

// Code returns the error code.
func (e *platformError) Code() string {
	return e.code
}

// Suggestion returns the actionable fix suggestion.
func (e *platformError) Suggestion() string {
	return e.suggestion
}

// Context returns additional context about the error.
func (e *platformError) Context() map[string]string {
	return e.context
}

// New creates a new PlatformError with the given code, message, suggestion, and cause.
func New(code, message, suggestion string, cause error) PlatformError {
	return &platformError{
		code:       code,
		message:    message,
		suggestion: suggestion,
		context:    make(map[string]string),
		cause:      cause,
	}
}

// WithContext adds context to an error and returns a new PlatformError.
// The original error is not modified.
func WithContext(err PlatformError, key, value string) PlatformError {
	existingCtx := err.Context()
	newCtx := make(map[string]string, len(existingCtx)+1)
	for k, v := range existingCtx {
		newCtx[k] = v
	}
	newCtx[key] = value

	return &platformError{
		code:       err.Code(),
		message:    err.Error(),
		suggestion: err.Suggestion(),
		context:    newCtx,
		cause:      err.Unwrap(),
	}
}

// IsPlatformError checks if err is a PlatformError and returns it.
// If err is nil or not a PlatformError, returns (nil, false).
func IsPlatformError(err error) (PlatformError, bool) {
	if err == nil {
		return nil, false
	}
	if pe, ok := err.(PlatformError); ok {
		return pe, true
	}
	return nil, false
}

// GetCode extracts the error code from an error.
// Returns empty string if err is not a PlatformError.
func GetCode(err error) string {
	if pe, ok := IsPlatformError(err); ok {
		return pe.Code()
	}
	return ""
}
