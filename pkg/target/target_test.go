package target_test

import (
	"testing"

	"github.com/goliatone/go-formimport/pkg/target"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := map[string]target.Target{
		"A":          target.A,
		" a ":        target.A,
		"markup":     target.A,
		"B":          target.B,
		"Structured": target.B,
	}
	for input, want := range cases {
		got, err := target.Parse(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: want %q, got %q", input, want, got)
		}
	}

	if _, err := target.Parse("C"); err == nil {
		t.Fatalf("expected error for unknown target")
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	for _, tgt := range target.All() {
		if !tgt.Valid() {
			t.Fatalf("expected %q to be valid", tgt)
		}
	}
	if target.Target("").Valid() {
		t.Fatalf("empty target must be invalid")
	}
}
