package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-formimport/pkg/repository"
	"github.com/goliatone/go-formimport/pkg/target"
)

// GetLink returns the active link for the pair or repository.ErrNotFound.
func (s *Store) GetLink(ctx context.Context, remoteFormID string, tgt target.Target) (repository.ImportLink, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT remote_form_id, local_form_id, target, imported_at, superseded
		FROM import_links
		WHERE remote_form_id = ? AND target = ? AND superseded = 0
	`, remoteFormID, tgt.String())

	link, err := scanLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ImportLink{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.ImportLink{}, fmt.Errorf("sqlite: get link: %w", err)
	}
	return link, nil
}

// SaveLink inserts an active link. A second active link for the same pair
// violates idx_import_links_active and is reported as ErrLinkExists.
func (s *Store) SaveLink(ctx context.Context, link repository.ImportLink) error {
	if err := repository.ValidateLink(link); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_links (remote_form_id, local_form_id, target, imported_at, superseded)
		VALUES (?, ?, ?, ?, 0)
	`,
		link.RemoteFormID,
		link.LocalFormID,
		link.Target.String(),
		link.ImportedAt.UTC().Format(time.RFC3339Nano),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s/%s", repository.ErrLinkExists, link.RemoteFormID, link.Target)
	}
	if err != nil {
		return fmt.Errorf("sqlite: save link: %w", err)
	}
	return nil
}

// ListLinks returns every link, superseded ones included, oldest first.
func (s *Store) ListLinks(ctx context.Context) ([]repository.ImportLink, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT remote_form_id, local_form_id, target, imported_at, superseded
		FROM import_links
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list links: %w", err)
	}
	defer rows.Close()

	var out []repository.ImportLink
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan link: %w", err)
		}
		out = append(out, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list links: %w", err)
	}
	return out, nil
}

// SupersedeLink retires the active link so the remote form can be imported
// again.
func (s *Store) SupersedeLink(ctx context.Context, remoteFormID string, tgt target.Target) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE import_links SET superseded = 1
		WHERE remote_form_id = ? AND target = ? AND superseded = 0
	`, remoteFormID, tgt.String())
	if err != nil {
		return fmt.Errorf("sqlite: supersede link: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: supersede link: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner) (repository.ImportLink, error) {
	var (
		link       repository.ImportLink
		tgt        string
		importedAt string
		superseded int
	)
	if err := row.Scan(&link.RemoteFormID, &link.LocalFormID, &tgt, &importedAt, &superseded); err != nil {
		return repository.ImportLink{}, err
	}
	ts, err := time.Parse(time.RFC3339Nano, importedAt)
	if err != nil {
		return repository.ImportLink{}, fmt.Errorf("parse imported_at %q: %w", importedAt, err)
	}
	link.Target = target.Target(tgt)
	link.ImportedAt = ts
	link.Superseded = superseded != 0
	return link, nil
}
