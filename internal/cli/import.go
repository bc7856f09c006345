package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formimport/pkg/orchestrator"
)

type importOptions struct {
	target string
	title  string
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &importOptions{}
	cmd := &cobra.Command{
		Use:   "import [remote-id]",
		Short: "Import a remote form into a local form builder",
		Long: `Import a remote form into a local form builder.

Without a remote id the command lists the remote forms and prompts for one,
then asks for a title defaulting to the remote form name. The import is
skipped when the form was imported before for the target or when an
equivalent local form already exists.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			remoteID := ""
			if len(args) == 1 {
				remoteID = args[0]
			}
			return runImport(rootOpts, opts, remoteID, cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "target form builder (A|B); defaults to import.default_target")
	cmd.Flags().StringVar(&opts.title, "title", "", "title of the local form")
	return cmd
}

func runImport(rootOpts *RootOptions, opts *importOptions, remoteID string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)
	ctx := cmd.Context()

	rt, err := newRuntime(rootOpts, cmd)
	if err != nil {
		return configFailure(formatter, err)
	}
	defer rt.Close()

	tgt, err := rt.resolveTarget(opts.target)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeInput, err.Error(), err, nil)
	}
	directory, err := rt.directory()
	if err != nil {
		return configFailure(formatter, err)
	}
	store, err := rt.store()
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeRepository, err.Error(), err, nil)
	}

	title := strings.TrimSpace(opts.title)
	if strings.TrimSpace(remoteID) == "" {
		prompter := rootOpts.Prompter
		if prompter == nil {
			prompter = surveyPrompter{}
		}
		forms, err := directory.ListForms(ctx)
		if err != nil {
			return formatter.Error(ExitFailure, ErrCodeRemote, err.Error(), err, nil)
		}
		chosen, err := chooseForm(ctx, prompter, forms)
		if err != nil {
			return promptFailure(formatter, err)
		}
		remoteID = chosen.ID
		if title == "" {
			if title, err = prompter.Input(ctx, "Title:", chosen.Name); err != nil {
				return promptFailure(formatter, err)
			}
		}
	}
	formatter.VerboseLog("Importing remote form %s into target %s", remoteID, tgt)

	result, err := rt.importer(directory, store).Import(ctx, orchestrator.Request{
		RemoteFormID: remoteID,
		Target:       tgt,
		Title:        title,
	})
	if err != nil {
		return importFailure(formatter, err)
	}
	for _, reason := range result.Degraded {
		formatter.VerboseLog("degraded: %s", reason)
	}
	return formatter.Success(result, result.Message())
}

func promptFailure(formatter *OutputFormatter, err error) error {
	if errors.Is(err, ErrAborted) {
		return formatter.Error(ExitCommandError, ErrCodeInput, "import aborted", err, nil)
	}
	return formatter.Error(ExitCommandError, ErrCodeInput, err.Error(), err, nil)
}
