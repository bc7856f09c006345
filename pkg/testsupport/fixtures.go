package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formimport/pkg/leadform"
)

// LoadRemoteForm reads a remote form record fixture (JSON, either field list
// shape) and normalizes it. Failures abort the test.
func LoadRemoteForm(t *testing.T, path string) leadform.Form {
	t.Helper()

	form, err := LoadRemoteFormFromPath(path)
	if err != nil {
		t.Fatalf("load remote form: %v", err)
	}
	return form
}

// LoadRemoteFormFromPath is the error-returning variant of LoadRemoteForm for
// setup code running outside *testing.T.
func LoadRemoteFormFromPath(path string) (leadform.Form, error) {
	if path == "" {
		return leadform.Form{}, errors.New("testsupport: form path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return leadform.Form{}, fmt.Errorf("testsupport: read form: %w", err)
	}
	form, err := leadform.Decode(data)
	if err != nil {
		return leadform.Form{}, fmt.Errorf("testsupport: decode form: %w", err)
	}
	return form, nil
}

// MustJSON marshals value with indentation, the layout used by JSON goldens.
func MustJSON(t *testing.T, value any) []byte {
	t.Helper()

	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	return append(payload, '\n')
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
