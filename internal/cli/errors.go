package cli

import (
	"errors"

	"github.com/goliatone/go-formimport/internal/config"
	"github.com/goliatone/go-formimport/pkg/orchestrator"
	"github.com/goliatone/go-formimport/pkg/remote"
)

func configFailure(formatter *OutputFormatter, err error) error {
	var details any
	var validation *config.ValidationError
	if errors.As(err, &validation) {
		details = validation.Problems
	}
	var remoteErr *remote.Error
	if errors.As(err, &remoteErr) {
		return formatter.Error(ExitCommandError, ErrCodeRemote, err.Error(), err, nil)
	}
	return formatter.Error(ExitCommandError, ErrCodeConfig, err.Error(), err, details)
}

func importFailure(formatter *OutputFormatter, err error) error {
	var importErr *orchestrator.Error
	if !errors.As(err, &importErr) {
		return formatter.Error(ExitFailure, ErrCodeImport, err.Error(), err, nil)
	}
	details := map[string]any{
		"kind":  importErr.Kind,
		"state": importErr.State,
	}
	if len(importErr.Messages) > 0 {
		details["messages"] = importErr.Messages
	}
	if importErr.LocalFormID != "" {
		details["local_form_id"] = importErr.LocalFormID
	}
	code := ExitFailure
	if importErr.Kind == orchestrator.KindValidation {
		code = ExitCommandError
	}
	return formatter.Error(code, ErrCodeImport, err.Error(), err, details)
}
