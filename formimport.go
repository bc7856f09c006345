// Package formimport imports forms defined in a remote lead-capture service
// into local form builders. The subpackages carry the pieces; this package
// re-exports the common entry points.
package formimport

import (
	"context"

	"github.com/goliatone/go-formimport/pkg/compiler"
	"github.com/goliatone/go-formimport/pkg/duplicate"
	"github.com/goliatone/go-formimport/pkg/leadform"
	"github.com/goliatone/go-formimport/pkg/orchestrator"
	"github.com/goliatone/go-formimport/pkg/target"
)

// Target names a local form builder.
type Target = target.Target

const (
	TargetA = target.A
	TargetB = target.B
)

// Request describes one import.
type Request = orchestrator.Request

// Result describes a finished import.
type Result = orchestrator.Result

// ExistingForm is a stored local form considered by duplicate detection.
type ExistingForm = duplicate.ExistingForm

// NewImporter exposes the orchestrator constructor from the top-level
// module.
func NewImporter(options ...orchestrator.Option) *orchestrator.Importer {
	return orchestrator.New(options...)
}

// Import runs a single import with a throwaway importer. The request must
// carry its directory and repository unless options supply them.
func Import(ctx context.Context, req Request, options ...orchestrator.Option) (Result, error) {
	return orchestrator.New(options...).Import(ctx, req)
}

// Compile translates a normalized remote form for tgt using the default
// compilers.
func Compile(ctx context.Context, tgt Target, form leadform.Form, title string) (target.Compiled, error) {
	return compiler.NewDefaultRegistry().Compile(ctx, tgt, form, title)
}

// DecodeForm normalizes a raw remote form record.
func DecodeForm(raw []byte) (leadform.Form, error) {
	return leadform.Decode(raw)
}

// FindDuplicate reports the first existing form equivalent to candidate,
// comparing fields loosely.
func FindDuplicate(candidate target.Compiled, existing []ExistingForm) (*duplicate.Match, bool) {
	return duplicate.Find(candidate, existing)
}
