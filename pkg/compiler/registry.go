// Package compiler exposes the per-target compilers behind one registry so
// callers select an output format by target rather than by package.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-formimport/pkg/compiler/markup"
	"github.com/goliatone/go-formimport/pkg/compiler/structured"
	"github.com/goliatone/go-formimport/pkg/leadform"
	"github.com/goliatone/go-formimport/pkg/target"
)

// Compiler converts a remote schema into one target's representation.
// Compilation never fails; problems surface as degradations on the result.
type Compiler interface {
	Target() target.Target
	Compile(ctx context.Context, form leadform.Form, title string) target.Compiled
}

var (
	_ Compiler = (*markup.Compiler)(nil)
	_ Compiler = (*structured.Compiler)(nil)
)

// ErrUnknownTarget is wrapped by Get when no compiler serves the target.
var ErrUnknownTarget = errors.New("compiler: unknown target")

// Registry stores compilers by target.
type Registry struct {
	mu        sync.RWMutex
	compilers map[target.Target]Compiler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		compilers: make(map[target.Target]Compiler),
	}
}

// NewDefaultRegistry returns a registry holding the markup and structured
// compilers built with default options.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.MustRegister(markup.New())
	registry.MustRegister(structured.New())
	return registry
}

// Register adds a compiler. Registering a second compiler for the same
// target returns an error.
func (r *Registry) Register(c Compiler) error {
	if c == nil {
		return fmt.Errorf("compiler: compiler is required")
	}
	tgt := c.Target()
	if !tgt.Valid() {
		return fmt.Errorf("compiler: target %q is not supported", tgt)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.compilers[tgt]; exists {
		return fmt.Errorf("compiler: target %q already registered", tgt)
	}
	r.compilers[tgt] = c
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(c Compiler) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Get returns the compiler for a target.
func (r *Registry) Get(tgt target.Target) (Compiler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.compilers[tgt]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTarget, tgt)
	}
	return c, nil
}

// Compile looks up the target's compiler and runs it.
func (r *Registry) Compile(ctx context.Context, tgt target.Target, form leadform.Form, title string) (target.Compiled, error) {
	c, err := r.Get(tgt)
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx, form, title), nil
}

// List returns the registered targets in sorted order.
func (r *Registry) List() []target.Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]target.Target, 0, len(r.compilers))
	for tgt := range r.compilers {
		out = append(out, tgt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
