package orchestrator

import (
	"fmt"
	"time"

	"github.com/goliatone/go-formimport/pkg/duplicate"
	"github.com/goliatone/go-formimport/pkg/repository"
	"github.com/goliatone/go-formimport/pkg/target"
)

// State is a step of the import state machine.
type State string

const (
	StateValidating        State = "validating"
	StateCheckingLink      State = "checking_link"
	StateFetching          State = "fetching"
	StateCompiling         State = "compiling"
	StateCheckingDuplicate State = "checking_duplicate"
	StateCreating          State = "creating"
	StateLinked            State = "linked"
	StateFailed            State = "failed"
)

func (s State) describe() string {
	switch s {
	case StateValidating:
		return "validating the request"
	case StateCheckingLink:
		return "checking for an existing import"
	case StateFetching:
		return "fetching the remote form"
	case StateCompiling:
		return "compiling the form"
	case StateCheckingDuplicate:
		return "looking for duplicates"
	case StateCreating:
		return "creating the local form"
	case StateLinked:
		return "recording the import link"
	default:
		return string(s)
	}
}

// Outcome is the non-error result of an import.
type Outcome string

const (
	// OutcomeSuccess means a local form was created and linked.
	OutcomeSuccess Outcome = "success"
	// OutcomeDuplicateFound means an equivalent local form already exists.
	OutcomeDuplicateFound Outcome = "duplicate_found"
	// OutcomeAlreadyLinked means the remote form was imported before for
	// this target.
	OutcomeAlreadyLinked Outcome = "already_linked"
)

// Result describes a finished import. On failure Outcome is empty, State is
// StateFailed and the accompanying error is an *Error.
type Result struct {
	Outcome      Outcome                `json:"outcome,omitempty"`
	State        State                  `json:"state"`
	History      []State                `json:"history"`
	RemoteFormID string                 `json:"remote_form_id"`
	Target       target.Target          `json:"target"`
	Title        string                 `json:"title"`
	LocalFormID  string                 `json:"local_form_id,omitempty"`
	Match        *duplicate.Match       `json:"match,omitempty"`
	Link         *repository.ImportLink `json:"link,omitempty"`
	Degraded     []string               `json:"degraded,omitempty"`
}

// Success reports whether a new local form was created.
func (r Result) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// Message renders a one-line summary for people.
func (r Result) Message() string {
	switch r.Outcome {
	case OutcomeSuccess:
		return fmt.Sprintf("Imported remote form %s as target %s form %s (%q).", r.RemoteFormID, r.Target, r.LocalFormID, r.Title)
	case OutcomeDuplicateFound:
		if r.Match == nil {
			return fmt.Sprintf("Remote form %s duplicates an existing target %s form. Nothing was created.", r.RemoteFormID, r.Target)
		}
		return fmt.Sprintf("Remote form %s duplicates target %s form %s (%q). Nothing was created.",
			r.RemoteFormID, r.Target, r.Match.LocalFormID, r.Match.LocalFormTitle)
	case OutcomeAlreadyLinked:
		if r.Link == nil {
			return fmt.Sprintf("Remote form %s was already imported into target %s. Nothing was created.", r.RemoteFormID, r.Target)
		}
		return fmt.Sprintf("Remote form %s was already imported into target %s as form %s on %s. Nothing was created.",
			r.RemoteFormID, r.Target, r.Link.LocalFormID, r.Link.ImportedAt.UTC().Format(time.RFC3339))
	default:
		return fmt.Sprintf("Import of remote form %s into target %s did not complete.", r.RemoteFormID, r.Target)
	}
}
