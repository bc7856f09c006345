package compiler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formimport/pkg/compiler"
	"github.com/goliatone/go-formimport/pkg/compiler/markup"
	"github.com/goliatone/go-formimport/pkg/compiler/structured"
	"github.com/goliatone/go-formimport/pkg/leadform"
	"github.com/goliatone/go-formimport/pkg/target"
)

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	registry := compiler.NewDefaultRegistry()
	if diff := cmp.Diff([]target.Target{target.A, target.B}, registry.List()); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}

	form := leadform.Form{Name: "Demo", Fields: []leadform.Field{{Name: "email", Type: "email"}}}
	for _, tgt := range target.All() {
		out, err := registry.Compile(context.Background(), tgt, form, "")
		if err != nil {
			t.Fatalf("compile %s: %v", tgt, err)
		}
		if out.Target() != tgt {
			t.Fatalf("expected %s output, got %s", tgt, out.Target())
		}
		if out.FormTitle() != "Demo" {
			t.Fatalf("unexpected title %q", out.FormTitle())
		}
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	registry := compiler.NewRegistry()
	if err := registry.Register(markup.New()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(markup.New()); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil compiler error")
	}
}

func TestRegistry_UnknownTarget(t *testing.T) {
	t.Parallel()

	registry := compiler.NewRegistry()
	registry.MustRegister(structured.New())

	_, err := registry.Get(target.A)
	if !errors.Is(err, compiler.ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
	if _, err := registry.Compile(context.Background(), target.A, leadform.Form{}, ""); err == nil {
		t.Fatalf("expected compile error for unregistered target")
	}
}
