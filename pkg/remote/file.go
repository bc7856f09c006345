package remote

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formimport/pkg/leadform"
)

// FileDirectory serves form records stored as *.json, *.yaml or *.yml files
// in the root of an fs.FS. A record without an id takes its file name stem.
type FileDirectory struct {
	fsys fs.FS
}

var _ Directory = (*FileDirectory)(nil)

func NewFileDirectory(fsys fs.FS) *FileDirectory {
	return &FileDirectory{fsys: fsys}
}

func (d *FileDirectory) ListForms(ctx context.Context) ([]leadform.Summary, error) {
	records, err := d.records(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]leadform.Summary, 0, len(records))
	for _, record := range records {
		out = append(out, leadform.SummaryFromMap(record))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *FileDirectory) GetForm(ctx context.Context, id string) (leadform.Form, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return leadform.Form{}, &Error{Code: ErrorCodeInvalidInput, Message: "form id is required"}
	}
	records, err := d.records(ctx)
	if err != nil {
		return leadform.Form{}, err
	}
	for _, record := range records {
		form := leadform.FromMap(record)
		if form.ID == trimmed {
			return form, nil
		}
	}
	return leadform.Form{}, &Error{Code: ErrorCodeUnexpectedStatus, Message: fmt.Sprintf("form %q", trimmed), Err: ErrFormNotFound}
}

func (d *FileDirectory) records(ctx context.Context) ([]map[string]any, error) {
	if d == nil || d.fsys == nil {
		return nil, &Error{Code: ErrorCodeInvalidInput, Message: "file directory has no filesystem"}
	}
	entries, err := fs.ReadDir(d.fsys, ".")
	if err != nil {
		return nil, &Error{Code: ErrorCodeTransport, Message: "read form directory", Err: err}
	}

	var out []map[string]any
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(path.Ext(name))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		record, err := d.readRecord(name, ext)
		if err != nil {
			return nil, err
		}
		if _, ok := record["id"]; !ok {
			record["id"] = strings.TrimSuffix(name, path.Ext(name))
		}
		out = append(out, record)
	}
	return out, nil
}

func (d *FileDirectory) readRecord(name, ext string) (map[string]any, error) {
	raw, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		return nil, &Error{Code: ErrorCodeTransport, Message: fmt.Sprintf("read %s", name), Err: err}
	}

	var decoded any
	if ext == ".json" {
		decoded, err = leadform.DecodeJSON(raw)
	} else {
		err = yaml.Unmarshal(raw, &decoded)
	}
	if err != nil {
		return nil, &Error{Code: ErrorCodeDecode, Message: fmt.Sprintf("decode %s", name), Err: err}
	}

	record, ok := jsonCompatible(decoded).(map[string]any)
	if !ok {
		return nil, &Error{Code: ErrorCodeInvalidPayload, Message: fmt.Sprintf("%s must hold an object", name)}
	}
	if err := ValidateFormRecord(record); err != nil {
		return nil, fmt.Errorf("remote: %s: %w", name, err)
	}
	return record, nil
}
