// Package remote reads form schemas from the lead-capture service. The HTTP
// directory talks to the service API; the file directory serves records from
// disk for offline imports and tests. Both return normalized leadform values,
// so callers never see the raw response shape.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-formimport/pkg/leadform"
)

// Directory lists and fetches remote form schemas. Credentials are bound
// when the directory is constructed.
type Directory interface {
	ListForms(ctx context.Context) ([]leadform.Summary, error)
	GetForm(ctx context.Context, id string) (leadform.Form, error)
}

// ErrFormNotFound is wrapped when the service has no form with the id.
var ErrFormNotFound = errors.New("remote: form not found")

type ErrorCode string

const (
	ErrorCodeInvalidInput     ErrorCode = "invalid_input"
	ErrorCodeTransport        ErrorCode = "transport"
	ErrorCodeUnexpectedStatus ErrorCode = "unexpected_status"
	ErrorCodeDecode           ErrorCode = "decode"
	ErrorCodeInvalidPayload   ErrorCode = "invalid_payload"
)

// Error reports a failed directory call. Secrets are redacted from the
// rendered message.
type Error struct {
	Code       ErrorCode
	StatusCode int
	Message    string
	Err        error
	apiKey     secret
}

func (err *Error) Error() string {
	if err == nil {
		return ""
	}
	base := err.Message
	if base == "" {
		base = "remote directory call failed"
	}
	if err.Err == nil {
		return err.apiKey.scrub(base)
	}
	return err.apiKey.scrub(fmt.Sprintf("%s: %v", base, err.Err))
}

func (err *Error) Unwrap() error {
	if err == nil {
		return nil
	}
	return err.Err
}

// IsErrorCode reports whether err is a *Error carrying code.
func IsErrorCode(err error, code ErrorCode) bool {
	var remoteErr *Error
	if !errors.As(err, &remoteErr) {
		return false
	}
	return remoteErr.Code == code
}
