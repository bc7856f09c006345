package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goliatone/go-formimport/pkg/compiler/structured"
	"github.com/goliatone/go-formimport/pkg/duplicate"
	"github.com/goliatone/go-formimport/pkg/repository"
	"github.com/goliatone/go-formimport/pkg/target"
)

// ListExisting returns the forms of one target in creation order.
func (s *Store) ListExisting(ctx context.Context, tgt target.Target) ([]duplicate.ExistingForm, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, markup, fields
		FROM forms
		WHERE target = ?
		ORDER BY seq ASC
	`, tgt.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: list forms: %w", err)
	}
	defer rows.Close()

	var out []duplicate.ExistingForm
	for rows.Next() {
		var (
			form       duplicate.ExistingForm
			fieldsJSON string
		)
		if err := rows.Scan(&form.ID, &form.Title, &form.Markup, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("sqlite: scan form: %w", err)
		}
		form.Target = tgt
		form.Locator = repository.Locator(tgt, form.ID)
		if tgt == target.B {
			var fields []structured.Field
			if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
				return nil, fmt.Errorf("sqlite: decode fields of %s: %w", form.ID, err)
			}
			form.Fields = fields
		}
		out = append(out, form)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list forms: %w", err)
	}
	return out, nil
}

// Create stores the compiled form together with its full JSON payload.
func (s *Store) Create(ctx context.Context, tgt target.Target, compiled target.Compiled) (string, error) {
	id, err := s.nextID()
	if err != nil {
		return "", fmt.Errorf("sqlite: generate form id: %w", err)
	}
	form, err := repository.ExistingFrom(id, tgt, compiled)
	if err != nil {
		return "", err
	}

	fields := form.Fields
	if fields == nil {
		fields = []structured.Field{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode fields: %w", err)
	}
	payload, err := json.Marshal(compiled)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO forms (id, target, title, markup, fields, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		form.ID,
		tgt.String(),
		form.Title,
		form.Markup,
		string(fieldsJSON),
		string(payload),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: insert form: %w", err)
	}
	return id, nil
}
