// Package duplicate decides whether a compiled candidate form already exists
// in the local form builder.
//
// Target A forms are compared as text: whitespace runs collapse to a single
// space and the results must be equal, so field order matters. Target B forms
// are compared structurally and order-insensitively on label, type and
// required flag only. The structural comparison is intentionally lossy: two
// forms that differ only in their choice lists or sizes are duplicates unless
// the detector runs in Strict mode.
package duplicate

import (
	"sort"
	"strings"

	"github.com/goliatone/go-formimport/pkg/compiler/markup"
	"github.com/goliatone/go-formimport/pkg/compiler/structured"
	"github.com/goliatone/go-formimport/pkg/target"
)

// Strictness selects the target B comparator.
type Strictness string

const (
	// Loose compares label, type and isRequired.
	Loose Strictness = "loose"
	// Strict additionally compares size and the choice list.
	Strict Strictness = "strict"
)

// ParseStrictness maps configuration values onto a Strictness. Unknown or
// empty values fall back to Loose.
func ParseStrictness(raw string) Strictness {
	if Strictness(strings.ToLower(strings.TrimSpace(raw))) == Strict {
		return Strict
	}
	return Loose
}

// ExistingForm is a form already stored by the local form builder. Markup is
// populated for target A forms, Fields for target B forms. When Target is
// empty it is inferred from whichever payload is set.
type ExistingForm struct {
	ID      string             `json:"id"`
	Title   string             `json:"title"`
	Target  target.Target      `json:"target"`
	Markup  string             `json:"markup,omitempty"`
	Fields  []structured.Field `json:"fields,omitempty"`
	Locator string             `json:"locator,omitempty"`
}

// Match describes the existing form a candidate duplicates. Payload holds the
// matched form's markup (target A) or field list (target B).
type Match struct {
	LocalFormID    string        `json:"local_form_id"`
	LocalFormTitle string        `json:"local_form_title"`
	Target         target.Target `json:"target"`
	Payload        any           `json:"payload"`
	Locator        string        `json:"locator,omitempty"`
}

// Detector compares candidates against existing forms. The zero value uses
// Loose strictness. Detectors hold no mutable state.
type Detector struct {
	Strictness Strictness
}

// New returns a detector with the given strictness.
func New(strictness Strictness) Detector {
	return Detector{Strictness: strictness}
}

// Find is shorthand for a Loose detector.
func Find(candidate target.Compiled, existing []ExistingForm) (*Match, bool) {
	return Detector{}.Find(candidate, existing)
}

// Find returns the first existing form, in the supplied order, that the
// candidate duplicates. Existing forms of another target are skipped, and so
// are forms whose target cannot be inferred.
func (d Detector) Find(candidate target.Compiled, existing []ExistingForm) (*Match, bool) {
	switch form := candidate.(type) {
	case *markup.Form:
		if form == nil {
			return nil, false
		}
		want := CollapseWhitespace(form.Markup)
		for _, other := range existing {
			if other.target() != target.A {
				continue
			}
			if CollapseWhitespace(other.Markup) == want {
				return matchFor(other, other.Markup), true
			}
		}
	case *structured.Form:
		if form == nil {
			return nil, false
		}
		for _, other := range existing {
			if other.target() != target.B {
				continue
			}
			if d.SameFields(form.Fields, other.Fields) {
				return matchFor(other, other.Fields), true
			}
		}
	}
	return nil, false
}

// SameFields applies the target B comparator to two field lists.
func (d Detector) SameFields(a, b []structured.Field) bool {
	if len(a) != len(b) {
		return false
	}
	left := sortedByLabel(a)
	right := sortedByLabel(b)
	for i := range left {
		if !d.sameField(left[i], right[i]) {
			return false
		}
	}
	return true
}

func (d Detector) sameField(a, b structured.Field) bool {
	if a.Label != b.Label || a.Type != b.Type || a.IsRequired != b.IsRequired {
		return false
	}
	if d.Strictness != Strict {
		return true
	}
	if a.Size != b.Size || len(a.Choices) != len(b.Choices) {
		return false
	}
	for i := range a.Choices {
		if a.Choices[i].Text != b.Choices[i].Text || a.Choices[i].Value != b.Choices[i].Value {
			return false
		}
	}
	return true
}

// CollapseWhitespace replaces every whitespace run with one space and trims
// the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Ties on label are broken by type then required flag so equal multisets
// always line up.
func sortedByLabel(fields []structured.Field) []structured.Field {
	out := append([]structured.Field(nil), fields...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return !out[i].IsRequired && out[j].IsRequired
	})
	return out
}

func (f ExistingForm) target() target.Target {
	switch {
	case f.Target != "":
		return f.Target
	case f.Markup != "":
		return target.A
	case f.Fields != nil:
		return target.B
	default:
		return ""
	}
}

func matchFor(form ExistingForm, payload any) *Match {
	return &Match{
		LocalFormID:    form.ID,
		LocalFormTitle: form.Title,
		Target:         form.target(),
		Payload:        payload,
		Locator:        form.Locator,
	}
}
