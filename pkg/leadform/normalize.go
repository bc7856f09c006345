package leadform

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

const documentMarker = "document"

// Field list keys in priority order. custom_fields is the legacy shape.
var fieldListKeys = []string{"fields", "custom_fields"}

// Decode parses a JSON form record and normalizes it.
func Decode(raw []byte) (Form, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Form{}, errors.New("leadform: payload is empty")
	}
	payload, err := DecodeJSON(raw)
	if err != nil {
		return Form{}, fmt.Errorf("leadform: decode payload: %w", err)
	}
	record, ok := payload.(map[string]any)
	if !ok {
		return Form{}, fmt.Errorf("leadform: payload must be an object, got %T", payload)
	}
	return FromMap(record), nil
}

// DecodeJSON decodes a single JSON value keeping numbers as json.Number so
// large numeric ids survive.
func DecodeJSON(raw []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, errors.New("unexpected trailing JSON content")
		}
		return nil, fmt.Errorf("trailing JSON content: %w", err)
	}
	return value, nil
}

// FromMap converts a loosely typed remote record into a canonical Form. It
// never fails: malformed attributes fall back to their zero values.
func FromMap(record map[string]any) Form {
	form := Form{
		ID:             stringValue(record["id"]),
		Name:           firstString(record, "name", "title"),
		Description:    firstString(record, "description"),
		CompletionText: firstString(record, "completion_text", "completionText"),
		ErrorText:      firstString(record, "error_text", "errorText"),
	}

	for _, raw := range RawFields(record) {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		form.Fields = append(form.Fields, NormalizeField(fieldFromMap(entry)))
	}
	if form.Fields == nil {
		form.Fields = []Field{}
	}
	return form
}

// SummaryFromMap reads the listing attributes of a remote record. An explicit
// field_count wins over counting the embedded field list.
func SummaryFromMap(record map[string]any) Summary {
	summary := Summary{
		ID:          stringValue(record["id"]),
		Name:        firstString(record, "name", "title"),
		Description: firstString(record, "description"),
		FieldCount:  len(RawFields(record)),
	}
	if count, ok := intValue(record["field_count"]); ok {
		summary.FieldCount = count
	}
	return summary
}

// RawFields returns the raw field list from whichever historical key carries
// it. Keys holding something other than a list are skipped.
func RawFields(record map[string]any) []any {
	for _, key := range fieldListKeys {
		if list, ok := record[key].([]any); ok {
			return list
		}
	}
	return nil
}

// NormalizeField trims and defaults field attributes and applies the
// document heuristic. Applying it twice yields the same field.
func NormalizeField(field Field) Field {
	out := field
	out.Name = strings.TrimSpace(field.Name)
	out.Label = strings.TrimSpace(field.Label)
	if out.Label == "" {
		out.Label = out.Name
	}
	out.Type = fold(strings.TrimSpace(field.Type))
	if out.Type == "" {
		out.Type = TypeText
	}
	out.FileType = strings.TrimSpace(field.FileType)
	out.Options = cleanOptions(field.Options)

	if ContainsFold(out.Label, documentMarker) && !IsFileType(out.Type) {
		out.Type = TypeFileUpload
		out.Reclassified = true
	}
	return out
}

// ContainsFold reports whether substr is within s under Unicode case folding.
func ContainsFold(s, substr string) bool {
	return strings.Contains(fold(s), fold(substr))
}

func fieldFromMap(entry map[string]any) Field {
	return Field{
		Name:             firstString(entry, "name", "key"),
		Label:            firstString(entry, "label"),
		Type:             firstString(entry, "type"),
		Required:         boolValue(entry["required"]),
		HalfWidth:        boolValue(entry["half_width"]),
		Options:          optionsValue(entry["options"]),
		FileType:         firstString(entry, "file_type"),
		Content:          firstString(entry, "content"),
		Placeholder:      firstString(entry, "placeholder"),
		Description:      firstString(entry, "description"),
		DisablePastDates: boolValue(entry["disable_past_dates"]),
	}
}

func cleanOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, option := range options {
		trimmed := strings.TrimSpace(option)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func optionsValue(value any) []string {
	switch v := value.(type) {
	case []string:
		return cleanOptions(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch item.(type) {
			case map[string]any, []any, nil:
				continue
			}
			out = append(out, stringValue(item))
		}
		return cleanOptions(out)
	default:
		return []string{}
	}
}

func firstString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		if value := stringValue(record[key]); value != "" {
			return value
		}
	}
	return ""
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func boolValue(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch fold(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		}
		return false
	case float64:
		return v != 0
	case int:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	default:
		return false
	}
}

func intValue(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := strconv.Atoi(v.String())
		return n, err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	default:
		return 0, false
	}
}

// fold builds a fresh caser per call; cases.Caser is not safe for concurrent
// use and compilers run concurrently.
func fold(s string) string {
	return cases.Fold().String(s)
}
