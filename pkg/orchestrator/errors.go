package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies import failures.
type Kind string

const (
	// KindValidation marks invalid request parameters. No collaborator was
	// called.
	KindValidation Kind = "validation"
	// KindFetch marks a remote directory failure.
	KindFetch Kind = "fetch"
	// KindCreate marks the local repository rejecting the compiled form.
	KindCreate Kind = "create"
	// KindLinkRace marks a concurrent import that stored its link first. The
	// form created by this attempt is orphaned and Error.LocalFormID names it.
	KindLinkRace Kind = "link_race"
	// KindRepository marks a failed repository lookup or link write.
	KindRepository Kind = "repository"
	// KindCanceled marks a context cancelled between states.
	KindCanceled Kind = "canceled"
)

// Error is returned for every failed import.
type Error struct {
	Kind        Kind
	State       State
	Messages    []string
	LocalFormID string
	Err         error
}

func (err *Error) Error() string {
	if err == nil {
		return ""
	}
	base := fmt.Sprintf("orchestrator: %s failed while %s", err.Kind, err.State.describe())
	if len(err.Messages) > 0 {
		base += ": " + strings.Join(err.Messages, "; ")
	}
	if err.Err != nil {
		base += ": " + err.Err.Error()
	}
	return base
}

func (err *Error) Unwrap() error {
	if err == nil {
		return nil
	}
	return err.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var importErr *Error
	if !errors.As(err, &importErr) {
		return false
	}
	return importErr.Kind == kind
}
