package remote

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formimport/pkg/leadform"
)

//go:embed directory.yaml
var directoryDocument []byte

const (
	schemaForm     = "Form"
	schemaFormList = "FormList"
)

var (
	schemasOnce sync.Once
	schemas     map[string]*openapi3.Schema
	schemasErr  error
)

// PayloadSchemas loads the embedded directory API document and returns its
// component schemas by name.
func PayloadSchemas() (map[string]*openapi3.Schema, error) {
	schemasOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(directoryDocument)
		if err != nil {
			schemasErr = fmt.Errorf("remote: load directory document: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			schemasErr = fmt.Errorf("remote: validate directory document: %w", err)
			return
		}
		out := make(map[string]*openapi3.Schema, len(doc.Components.Schemas))
		for name, ref := range doc.Components.Schemas {
			if ref != nil && ref.Value != nil {
				out[name] = ref.Value
			}
		}
		schemas = out
	})
	return schemas, schemasErr
}

// DecodeFormPayload validates a single form response body and normalizes it.
func DecodeFormPayload(body []byte) (leadform.Form, error) {
	value, err := decodeEnvelope(body)
	if err != nil {
		return leadform.Form{}, err
	}
	if err := validatePayload(schemaForm, value); err != nil {
		return leadform.Form{}, err
	}
	return leadform.FromMap(value.(map[string]any)), nil
}

// DecodeListPayload validates a form listing response body.
func DecodeListPayload(body []byte) ([]leadform.Summary, error) {
	value, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	if err := validatePayload(schemaFormList, value); err != nil {
		return nil, err
	}
	items := value.([]any)
	out := make([]leadform.Summary, 0, len(items))
	for _, item := range items {
		out = append(out, leadform.SummaryFromMap(item.(map[string]any)))
	}
	return out, nil
}

// ValidateFormRecord checks an already decoded record against the form
// schema. Used for records read from disk.
func ValidateFormRecord(record map[string]any) error {
	return validatePayload(schemaForm, jsonCompatible(record))
}

func decodeEnvelope(body []byte) (any, error) {
	value, err := leadform.DecodeJSON(body)
	if err != nil {
		return nil, &Error{Code: ErrorCodeDecode, Message: "decode response body", Err: err}
	}
	if object, ok := value.(map[string]any); ok {
		if data, wrapped := object["data"]; wrapped && object["id"] == nil {
			return data, nil
		}
	}
	return value, nil
}

func validatePayload(name string, value any) error {
	all, err := PayloadSchemas()
	if err != nil {
		return err
	}
	schema, ok := all[name]
	if !ok {
		return fmt.Errorf("remote: schema %q missing from directory document", name)
	}
	if err := schema.VisitJSON(value); err != nil {
		return &Error{Code: ErrorCodeInvalidPayload, Message: fmt.Sprintf("payload does not match %s", name), Err: err}
	}
	return nil
}

// jsonCompatible rewrites YAML decoded values into the shapes the JSON
// decoder produces (integers become json.Number) so validation and
// normalization see the same types for both sources.
func jsonCompatible(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = jsonCompatible(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = jsonCompatible(item)
		}
		return out
	case int:
		return json.Number(strconv.Itoa(v))
	case int64:
		return json.Number(strconv.FormatInt(v, 10))
	case uint64:
		return json.Number(strconv.FormatUint(v, 10))
	default:
		return v
	}
}
