// Package memory provides an in-process repository.Store. It enforces the
// same link uniqueness as the SQLite store and is safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-formimport/pkg/duplicate"
	"github.com/goliatone/go-formimport/pkg/repository"
	"github.com/goliatone/go-formimport/pkg/target"
)

// Option customises the store.
type Option func(*Store)

// WithIDGenerator replaces the UUIDv7 local form id generator.
func WithIDGenerator(next func() (string, error)) Option {
	return func(s *Store) {
		if next != nil {
			s.nextID = next
		}
	}
}

// WithForms seeds the store with existing forms.
func WithForms(forms ...duplicate.ExistingForm) Option {
	return func(s *Store) {
		s.forms = append(s.forms, forms...)
	}
}

// Store keeps forms and links in memory.
type Store struct {
	mu     sync.RWMutex
	forms  []duplicate.ExistingForm
	links  []repository.ImportLink
	nextID func() (string, error)
}

var _ repository.Store = (*Store)(nil)

// New constructs an empty store.
func New(options ...Option) *Store {
	s := &Store{nextID: newID}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

func (s *Store) ListExisting(ctx context.Context, tgt target.Target) ([]duplicate.ExistingForm, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]duplicate.ExistingForm, 0, len(s.forms))
	for _, form := range s.forms {
		if form.Target == tgt {
			out = append(out, form)
		}
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, tgt target.Target, compiled target.Compiled) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := s.nextID()
	if err != nil {
		return "", fmt.Errorf("memory: generate form id: %w", err)
	}
	form, err := repository.ExistingFrom(id, tgt, compiled)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms = append(s.forms, form)
	return id, nil
}

func (s *Store) GetLink(ctx context.Context, remoteFormID string, tgt target.Target) (repository.ImportLink, error) {
	if err := ctx.Err(); err != nil {
		return repository.ImportLink{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.activeIndex(remoteFormID, tgt); i >= 0 {
		return s.links[i], nil
	}
	return repository.ImportLink{}, repository.ErrNotFound
}

func (s *Store) SaveLink(ctx context.Context, link repository.ImportLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := repository.ValidateLink(link); err != nil {
		return err
	}
	link.Superseded = false

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.activeIndex(link.RemoteFormID, link.Target); i >= 0 {
		return fmt.Errorf("%w: %s/%s -> %s", repository.ErrLinkExists, link.RemoteFormID, link.Target, s.links[i].LocalFormID)
	}
	s.links = append(s.links, link)
	return nil
}

func (s *Store) ListLinks(ctx context.Context) ([]repository.ImportLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]repository.ImportLink{}, s.links...), nil
}

func (s *Store) SupersedeLink(ctx context.Context, remoteFormID string, tgt target.Target) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.activeIndex(remoteFormID, tgt)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.links[i].Superseded = true
	return nil
}

// caller holds s.mu
func (s *Store) activeIndex(remoteFormID string, tgt target.Target) int {
	for i, link := range s.links {
		if link.RemoteFormID == remoteFormID && link.Target == tgt && !link.Superseded {
			return i
		}
	}
	return -1
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
