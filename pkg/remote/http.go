package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-formimport/pkg/leadform"
)

const (
	maxResponseBodyBytes = 1 << 20
	// DefaultAPIKeyHeader carries the service API key.
	DefaultAPIKeyHeader = "X-API-Key"
)

// HTTPOptions configures an HTTPDirectory.
type HTTPOptions struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	Doer         Doer
	Retry        RetryOptions
}

// HTTPDirectory reads forms from the service API: GET {base}/forms and
// GET {base}/forms/{id}.
type HTTPDirectory struct {
	baseURL      *url.URL
	apiKey       secret
	apiKeyHeader string
	client       *RetryClient
}

var _ Directory = (*HTTPDirectory)(nil)

func NewHTTPDirectory(options HTTPOptions) (*HTTPDirectory, error) {
	base, err := normalizeBaseURL(options.BaseURL)
	if err != nil {
		return nil, err
	}
	apiKey := strings.TrimSpace(options.APIKey)
	if apiKey == "" {
		return nil, &Error{Code: ErrorCodeInvalidInput, Message: "invalid remote options: api key must be set"}
	}
	header := strings.TrimSpace(options.APIKeyHeader)
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	return &HTTPDirectory{
		baseURL:      base,
		apiKey:       secret(apiKey),
		apiKeyHeader: header,
		client:       NewRetryClient(options.Doer, options.Retry),
	}, nil
}

func (d *HTTPDirectory) ListForms(ctx context.Context) ([]leadform.Summary, error) {
	body, err := d.get(ctx, "forms")
	if err != nil {
		return nil, err
	}
	summaries, err := DecodeListPayload(body)
	if err != nil {
		return nil, d.redacted(err)
	}
	return summaries, nil
}

// GetForm fetches one schema. A 404 wraps ErrFormNotFound. Records without
// an id take the requested one.
func (d *HTTPDirectory) GetForm(ctx context.Context, id string) (leadform.Form, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return leadform.Form{}, &Error{Code: ErrorCodeInvalidInput, Message: "form id is required"}
	}
	body, err := d.get(ctx, "forms", url.PathEscape(trimmed))
	if err != nil {
		return leadform.Form{}, err
	}
	form, err := DecodeFormPayload(body)
	if err != nil {
		return leadform.Form{}, d.redacted(err)
	}
	if form.ID == "" {
		form.ID = trimmed
	}
	return form, nil
}

func (d *HTTPDirectory) get(ctx context.Context, segments ...string) ([]byte, error) {
	endpoint := d.baseURL.JoinPath(segments...)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInvalidInput, Message: "build request", Err: err, apiKey: d.apiKey}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(d.apiKeyHeader, string(d.apiKey))

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &Error{Code: ErrorCodeTransport, Message: "execute request", Err: err, apiKey: d.apiKey}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, &Error{Code: ErrorCodeTransport, StatusCode: resp.StatusCode, Message: "read response body", Err: err, apiKey: d.apiKey}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &Error{
			Code:       ErrorCodeUnexpectedStatus,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("GET %s", endpoint.Path),
			Err:        ErrFormNotFound,
			apiKey:     d.apiKey,
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &Error{
			Code:       ErrorCodeUnexpectedStatus,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("GET %s returned status %d: %s", endpoint.Path, resp.StatusCode, snippet(body)),
			apiKey:     d.apiKey,
		}
	}
	return body, nil
}

func (d *HTTPDirectory) redacted(err error) error {
	var remoteErr *Error
	if errors.As(err, &remoteErr) {
		remoteErr.apiKey = d.apiKey
	}
	return err
}

func normalizeBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &Error{Code: ErrorCodeInvalidInput, Message: "invalid remote options: base URL must be set"}
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &Error{Code: ErrorCodeInvalidInput, Message: "invalid remote options: base URL is malformed", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{Code: ErrorCodeInvalidInput, Message: "invalid remote options: base URL must include scheme and host"}
	}
	return parsed, nil
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		return text[:200] + "..."
	}
	return text
}
