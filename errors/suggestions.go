package errors

import (
	"fmt"
	"strings"
)

// Suggestions contains default fix suggestions for each error code.
var Suggestions = map[string]string{
	ErrCodeNotConnected: "No active tenant session. " +
		"Run: pasmigrate login --profile <profile>",
	ErrCodeSessionExpired: "The tenant session has expired. " +
		"Run: pasmigrate login --profile <profile> to re-authenticate.",
	ErrCodeRemoteCallFailed: "The tenant returned a failure envelope. " +
		"Inspect the captured endpoint and payload with --debug.",
	ErrCodeQueryFailed: "The SQL query was rejected by the tenant. " +
		"Check table and column names against the tenant schema.",
	ErrCodeEnvelopeInvalid: "The tenant response could not be parsed. " +
		"The tenant may be returning an HTML error page; verify the tenant URL.",
	ErrCodeACLRowInvalid: "An access-control row could not be converted to a typed entry. " +
		"The offending raw row is attached to the error context.",
	ErrCodeACLFetchFailed:     "The ACL endpoint call failed. Verify the object still exists and you hold the View permission on it.",
	ErrCodeObjectRowInvalid:   "A query row was missing required identity columns (ID, Name).",
	ErrCodeSecretNotRetrieved: "Secret content has not been retrieved yet. Call Retrieve before Export.",
	ErrCodeExportFailed:       "The export target could not be written. Check directory permissions and free space.",
	ErrCodeAuthStartFailed: "The authentication handshake could not be started. " +
		"Verify the tenant URL and that the user is not federated-only.",
	ErrCodeAuthMFAFailed: "A challenge answer was rejected. " +
		"Run: pasmigrate login again and pick a different mechanism if available.",
	ErrCodeAuthTokenRejected: "The OAuth2 client credentials were rejected. " +
		"Verify the confidential client id/secret and application scope.",
	ErrCodeConfigProfileNotFound: "Tenant profile not found in ~/.pasmigrate/config. " +
		"List available profiles with: pasmigrate profiles",
	ErrCodeConfigInvalidTenant: "Invalid tenant URL. Use the full https host, e.g. https://acme.my.centrify.net",
	ErrCodeSinkWriteFailed:     "A migration sink write failed. The failing record id is attached to the error context.",
}

// GetSuggestion returns the default suggestion for an error code.
// Returns empty string if no suggestion is defined.
func GetSuggestion(code string) string {
	return Suggestions[code]
}

// NewNotConnected creates the error every public entry point returns when it
// is called without an established tenant session.
func NewNotConnected(operation string) PlatformError {
	se := New(ErrCodeNotConnected,
		fmt.Sprintf("no active tenant session for operation: %s", operation),
		Suggestions[ErrCodeNotConnected], nil)
	return WithContext(se, "operation", operation)
}

// WrapRemoteCallError examines a remote invocation failure and returns a
// PlatformError carrying the endpoint and payload for diagnostics.
func WrapRemoteCallError(err error, endpoint, payload string) PlatformError {
	if err == nil {
		return nil
	}

	code := ErrCodeRemoteCallFailed
	message := fmt.Sprintf("remote call to %s failed: %v", endpoint, err)
	suggestion := Suggestions[ErrCodeRemoteCallFailed]

	errStr := strings.ToLower(err.Error())
	switch {
	case isSessionExpired(errStr):
		code = ErrCodeSessionExpired
		message = fmt.Sprintf("tenant session rejected during call to %s", endpoint)
		suggestion = Suggestions[ErrCodeSessionExpired]
	case isEnvelopeInvalid(errStr):
		code = ErrCodeEnvelopeInvalid
		message = fmt.Sprintf("unparseable response from %s", endpoint)
		suggestion = Suggestions[ErrCodeEnvelopeInvalid]
	}

	se := New(code, message, suggestion, err)
	se = WithContext(se, "endpoint", endpoint)
	return WithContext(se, "payload", payload)
}

// WrapQueryError returns a PlatformError for a failed SQL query, keeping the
// query text available for operator inspection.
func WrapQueryError(err error, sql string) PlatformError {
	if err == nil {
		return nil
	}
	se := New(ErrCodeQueryFailed,
		fmt.Sprintf("query failed: %v", err),
		Suggestions[ErrCodeQueryFailed], err)
	return WithContext(se, "sql", sql)
}

// isSessionExpired checks if error indicates an expired or rejected session.
func isSessionExpired(errStr string) bool {
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "authentication required") ||
		strings.Contains(errStr, "session expired")
}

// isEnvelopeInvalid checks if error indicates an unparseable response body.
func isEnvelopeInvalid(errStr string) bool {
	return strings.Contains(errStr, "invalid character") ||
		strings.Contains(errStr, "unexpected end of json") ||
		strings.Contains(errStr, "cannot unmarshal")
}
