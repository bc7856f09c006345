// Package target identifies the local form builders a remote form can be
// imported into and the contract shared by their compiled representations.
//
// Target A stores forms as a textual markup DSL (label blocks wrapping
// bracketed input tags). Target B stores forms as a structured field list
// that serialises to JSON.
package target

import (
	"fmt"
	"strings"
)

// Target names a local form builder.
type Target string

const (
	// A is the markup DSL form builder.
	A Target = "A"
	// B is the structured field-list form builder.
	B Target = "B"
)

// All returns the supported targets in a stable order.
func All() []Target {
	return []Target{A, B}
}

// Valid reports whether t is a supported target.
func (t Target) Valid() bool {
	switch t {
	case A, B:
		return true
	default:
		return false
	}
}

func (t Target) String() string {
	return string(t)
}

// Parse accepts "A"/"B" in any case as well as the descriptive aliases
// "markup" and "structured".
func Parse(raw string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "a", "markup":
		return A, nil
	case "b", "structured":
		return B, nil
	default:
		return "", fmt.Errorf("target: unsupported target %q", raw)
	}
}

// Compiled is implemented by every compiler output. Concrete values are
// *markup.Form and *structured.Form.
type Compiled interface {
	Target() Target
	FormTitle() string
	// Degraded lists the fallback paths taken while compiling. Empty means
	// the remote schema translated without substitution.
	Degraded() []string
}
