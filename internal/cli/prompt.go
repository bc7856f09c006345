package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-formimport/pkg/leadform"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("cli: prompt aborted")

// Prompter asks the user to pick a remote form and confirm a title.
type Prompter interface {
	Select(ctx context.Context, message string, options []string) (int, error)
	Input(ctx context.Context, message, defaultValue string) (string, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Select(ctx context.Context, message string, options []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var out string
	prompt := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return indexOf(options, out), nil
}

func (surveyPrompter) Input(ctx context.Context, message, defaultValue string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &out, survey.WithValidator(survey.Required)); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

// chooseForm prompts for one of forms and returns it.
func chooseForm(ctx context.Context, prompter Prompter, forms []leadform.Summary) (leadform.Summary, error) {
	if len(forms) == 0 {
		return leadform.Summary{}, errors.New("no remote forms available")
	}
	options := make([]string, len(forms))
	for i, form := range forms {
		options[i] = fmt.Sprintf("%s  %s (%d fields)", form.ID, form.Name, form.FieldCount)
	}
	index, err := prompter.Select(ctx, "Remote form to import:", options)
	if err != nil {
		return leadform.Summary{}, err
	}
	if index < 0 || index >= len(forms) {
		return leadform.Summary{}, fmt.Errorf("selection %d out of range", index)
	}
	return forms[index], nil
}
