// Package repository defines the local form repository the importer writes
// to: the forms already stored per target, creation of new native forms, and
// the import links tying remote form ids to the local forms they produced.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formimport/pkg/compiler/markup"
	"github.com/goliatone/go-formimport/pkg/compiler/structured"
	"github.com/goliatone/go-formimport/pkg/duplicate"
	"github.com/goliatone/go-formimport/pkg/target"
)

var (
	// ErrNotFound is returned when a link or form does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrLinkExists is returned by SaveLink when an active link already
	// exists for the same remote form id and target.
	ErrLinkExists = errors.New("repository: import link already exists")
	// ErrRejected is returned by Create when the compiled form cannot be
	// stored by the target builder.
	ErrRejected = errors.New("repository: form rejected")
)

// ImportLink associates a remote form with the local form it produced. At
// most one non-superseded link exists per (RemoteFormID, Target).
type ImportLink struct {
	RemoteFormID string        `json:"remote_form_id"`
	LocalFormID  string        `json:"local_form_id"`
	Target       target.Target `json:"target"`
	ImportedAt   time.Time     `json:"imported_at"`
	Superseded   bool          `json:"superseded,omitempty"`
}

// Repository is the collaborator the importer depends on.
type Repository interface {
	// ListExisting returns the stored forms of one target in backend order.
	ListExisting(ctx context.Context, tgt target.Target) ([]duplicate.ExistingForm, error)
	// Create stores a compiled form and returns its local id.
	Create(ctx context.Context, tgt target.Target, compiled target.Compiled) (string, error)
	// GetLink returns the active link or ErrNotFound.
	GetLink(ctx context.Context, remoteFormID string, tgt target.Target) (ImportLink, error)
	// SaveLink persists a link, failing with ErrLinkExists on conflict.
	SaveLink(ctx context.Context, link ImportLink) error
}

// LinkManager covers link administration outside an import.
type LinkManager interface {
	ListLinks(ctx context.Context) ([]ImportLink, error)
	SupersedeLink(ctx context.Context, remoteFormID string, tgt target.Target) error
}

// Store is a Repository that also manages links.
type Store interface {
	Repository
	LinkManager
}

// Locator returns the admin path used to reach a stored form.
func Locator(tgt target.Target, id string) string {
	return fmt.Sprintf("forms/%s/%s", strings.ToLower(tgt.String()), id)
}

// ExistingFrom converts a compiled form into the stored representation used
// for duplicate detection. It rejects outputs that do not belong to tgt or
// that a target builder could not store.
func ExistingFrom(id string, tgt target.Target, compiled target.Compiled) (duplicate.ExistingForm, error) {
	if compiled == nil {
		return duplicate.ExistingForm{}, fmt.Errorf("%w: compiled form is required", ErrRejected)
	}
	if compiled.Target() != tgt {
		return duplicate.ExistingForm{}, fmt.Errorf("%w: %s output cannot be stored as %s", ErrRejected, compiled.Target(), tgt)
	}
	title := strings.TrimSpace(compiled.FormTitle())
	if title == "" {
		return duplicate.ExistingForm{}, fmt.Errorf("%w: title is required", ErrRejected)
	}

	existing := duplicate.ExistingForm{
		ID:      id,
		Title:   title,
		Target:  tgt,
		Locator: Locator(tgt, id),
	}
	switch form := compiled.(type) {
	case *markup.Form:
		if strings.TrimSpace(form.Markup) == "" {
			return duplicate.ExistingForm{}, fmt.Errorf("%w: markup is empty", ErrRejected)
		}
		existing.Markup = form.Markup
	case *structured.Form:
		existing.Fields = append([]structured.Field{}, form.Fields...)
	default:
		return duplicate.ExistingForm{}, fmt.Errorf("%w: unsupported compiled form %T", ErrRejected, compiled)
	}
	return existing, nil
}

// ValidateLink checks the fields every store requires.
func ValidateLink(link ImportLink) error {
	var problems []string
	if strings.TrimSpace(link.RemoteFormID) == "" {
		problems = append(problems, "remote form id is required")
	}
	if strings.TrimSpace(link.LocalFormID) == "" {
		problems = append(problems, "local form id is required")
	}
	if !link.Target.Valid() {
		problems = append(problems, fmt.Sprintf("target %q is not supported", link.Target))
	}
	if link.ImportedAt.IsZero() {
		problems = append(problems, "imported at is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("repository: invalid link: %s", strings.Join(problems, "; "))
	}
	return nil
}
