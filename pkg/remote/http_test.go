package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formimport/pkg/leadform"
	"github.com/goliatone/go-formimport/pkg/remote"
)

const testAPIKey = "secret-key-123"

type noSleep struct{}

func (noSleep) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newDirectory(t *testing.T, handler http.HandlerFunc) *remote.HTTPDirectory {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dir, err := remote.NewHTTPDirectory(remote.HTTPOptions{
		BaseURL: server.URL + "/api/v1",
		APIKey:  testAPIKey,
		Retry:   remote.RetryOptions{Sleeper: noSleep{}, MaxAttempts: 3},
	})
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}
	return dir
}

func TestHTTPDirectory_GetForm(t *testing.T) {
	t.Parallel()

	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/forms/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get(remote.DefaultAPIKeyHeader) != testAPIKey {
			t.Errorf("missing api key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":42,"name":"Contact","custom_fields":[{"name":"email","type":"EMAIL","required":"1"}]}}`))
	})

	form, err := dir.GetForm(context.Background(), "42")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	want := leadform.Form{
		ID:     "42",
		Name:   "Contact",
		Fields: []leadform.Field{{Name: "email", Label: "email", Type: "email", Required: true, Options: []string{}}},
	}
	if diff := cmp.Diff(want, form); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPDirectory_GetFormUsesRequestedIDWhenMissing(t *testing.T) {
	t.Parallel()

	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"No id","fields":[]}`))
	})
	form, err := dir.GetForm(context.Background(), "abc")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if form.ID != "abc" {
		t.Fatalf("expected requested id, got %q", form.ID)
	}
}

func TestHTTPDirectory_ListForms(t *testing.T) {
	t.Parallel()

	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/forms" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":"a","name":"Alpha","fields":[{},{}]},{"id":7,"name":"Seven","field_count":4}]`))
	})

	got, err := dir.ListForms(context.Background())
	if err != nil {
		t.Fatalf("list forms: %v", err)
	}
	want := []leadform.Summary{
		{ID: "a", Name: "Alpha", FieldCount: 2},
		{ID: "7", Name: "Seven", FieldCount: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPDirectory_NotFound(t *testing.T) {
	t.Parallel()

	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	_, err := dir.GetForm(context.Background(), "missing")
	if !errors.Is(err, remote.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
	if !remote.IsErrorCode(err, remote.ErrorCodeUnexpectedStatus) {
		t.Fatalf("expected unexpected_status code, got %v", err)
	}
}

func TestHTTPDirectory_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"f","fields":[]}`))
	})

	if _, err := dir.GetForm(context.Background(), "f"); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestHTTPDirectory_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream rejected key " + testAPIKey))
	})

	_, err := dir.GetForm(context.Background(), "f")
	if !remote.IsErrorCode(err, remote.ErrorCodeUnexpectedStatus) {
		t.Fatalf("expected unexpected_status, got %v", err)
	}
	if strings.Contains(err.Error(), testAPIKey) {
		t.Fatalf("api key leaked into error: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestHTTPDirectory_PayloadErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		code remote.ErrorCode
	}{
		{"NotJSON", `<html>`, remote.ErrorCodeDecode},
		{"NotObject", `[1,2]`, remote.ErrorCodeInvalidPayload},
		{"FieldEntryNotObject", `{"id":"f","fields":["oops"]}`, remote.ErrorCodeInvalidPayload},
		{"NameNotString", `{"id":"f","name":{"x":1}}`, remote.ErrorCodeInvalidPayload},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := dir.GetForm(context.Background(), "f")
			if !remote.IsErrorCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestHTTPDirectory_ToleratesNonListFields(t *testing.T) {
	t.Parallel()

	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"f","fields":"none","custom_fields":[{"name":"a"}]}`))
	})
	form, err := dir.GetForm(context.Background(), "f")
	if err != nil {
		t.Fatalf("get form: %v", err)
	}
	if len(form.Fields) != 1 || form.Fields[0].Name != "a" {
		t.Fatalf("expected legacy field list, got %+v", form.Fields)
	}
}

func TestNewHTTPDirectory_ValidatesOptions(t *testing.T) {
	t.Parallel()

	cases := []remote.HTTPOptions{
		{APIKey: "k"},
		{BaseURL: "not a url", APIKey: "k"},
		{BaseURL: "https://example.com"},
	}
	for _, options := range cases {
		if _, err := remote.NewHTTPDirectory(options); !remote.IsErrorCode(err, remote.ErrorCodeInvalidInput) {
			t.Fatalf("expected invalid_input for %+v, got %v", options, err)
		}
	}
}

func TestHTTPDirectory_ContextCancelled(t *testing.T) {
	t.Parallel()

	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"f"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := dir.GetForm(ctx, "f")
	if !remote.IsErrorCode(err, remote.ErrorCodeTransport) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled transport error, got %v", err)
	}
}

func TestHTTPDirectory_MasksAPIKeyInErrors(t *testing.T) {
	t.Parallel()

	const key = "k/ey+1 x"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("rejected key " + r.Header.Get(remote.DefaultAPIKeyHeader) + " (k%2Fey%2B1+x)"))
	}))
	t.Cleanup(server.Close)

	dir, err := remote.NewHTTPDirectory(remote.HTTPOptions{
		BaseURL: server.URL,
		APIKey:  key,
		Retry:   remote.RetryOptions{Sleeper: noSleep{}, MaxAttempts: 1},
	})
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	_, err = dir.ListForms(context.Background())
	if err == nil {
		t.Fatalf("expected unauthorized error")
	}
	msg := err.Error()
	if strings.Contains(msg, key) || strings.Contains(msg, "k%2Fey%2B1+x") {
		t.Fatalf("api key leaked into error: %s", msg)
	}
	if strings.Count(msg, "[api-key]") != 2 {
		t.Fatalf("expected both key forms masked, got: %s", msg)
	}
}
