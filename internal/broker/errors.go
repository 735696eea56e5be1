package broker

import (
	"errors"
	"fmt"
)

// Kind classifies a broker failure. The same taxonomy is surfaced by
// probe, fetch, import and the credential store so the UI can branch
// on it consistently.
type Kind string

const (
	KindInvalidInput            Kind = "invalid_input"
	KindInvalidCredentials      Kind = "invalid_credentials"
	KindInsufficientPermissions Kind = "insufficient_permissions"
	KindAPINotFound             Kind = "api_not_found"
	KindRemotePlatformError     Kind = "remote_platform_error"
	KindTransientNetworkError   Kind = "transient_network_error"
	KindDecryptionError         Kind = "decryption_error"
	KindPersistenceError        Kind = "persistence_error"
)

// Error is the discriminated failure crossing every broker boundary.
// Message is operator-facing; Detail carries diagnostics such as the
// list of attempted candidate paths. Neither may ever contain secret
// material.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
	cause   error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Terminal reports whether retrying this failure is pointless:
// authentication and input failures stay failed no matter how often
// they are retried.
func (e *Error) Terminal() bool {
	switch e.Kind {
	case KindInvalidInput, KindInvalidCredentials, KindInsufficientPermissions:
		return true
	}
	return false
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func newErrorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// InvalidInputError names the missing or malformed field.
func InvalidInputError(field string) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf("missing or invalid field: %s", field)}
}

// PersistenceError wraps a storage-layer failure.
func PersistenceError(msg string, cause error) *Error {
	return &Error{Kind: KindPersistenceError, Message: msg, cause: cause}
}

// DecryptionError wraps a credential-decryption failure. The cause is
// never surfaced to callers verbatim; it may reference key material.
func DecryptionError(cause error) *Error {
	return &Error{Kind: KindDecryptionError, Message: "stored credentials could not be decrypted", cause: cause}
}

// AsError extracts a *Error from err, falling back to wrapping it as a
// remote platform error so handlers always have a kind to report.
func AsError(err error) *Error {
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	return &Error{Kind: KindRemotePlatformError, Message: err.Error(), cause: err}
}

// truncate caps remote error bodies included in messages so a
// misbehaving platform cannot flood logs or responses.
const maxRemoteBodyLen = 500

func truncate(s string) string {
	if len(s) > maxRemoteBodyLen {
		return s[:maxRemoteBodyLen] + "..."
	}
	return s
}
