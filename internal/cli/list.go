package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formimport/pkg/leadform"
)

type listOptions struct {
	filter string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List forms available in the remote service",
		Long: `List forms available in the remote lead-capture service.

--filter takes a CEL expression over form.id, form.name, form.description
and form.field_count, for example:

  formimport list --filter 'form.field_count > 3 && form.name.contains("Contact")'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.filter, "filter", "", "CEL expression selecting forms")
	return cmd
}

func runList(rootOpts *RootOptions, opts *listOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	filter, err := newFormFilter(opts.filter)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeInput, "invalid filter: "+err.Error(), err, nil)
	}

	rt, err := newRuntime(rootOpts, cmd)
	if err != nil {
		return configFailure(formatter, err)
	}
	defer rt.Close()

	directory, err := rt.directory()
	if err != nil {
		return configFailure(formatter, err)
	}
	forms, err := directory.ListForms(cmd.Context())
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeRemote, err.Error(), err, nil)
	}
	formatter.VerboseLog("Fetched %d remote form(s)", len(forms))

	forms, err = filter.Apply(forms)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeInput, "filter failed: "+err.Error(), err, nil)
	}
	return formatter.Success(forms, formatSummaries(forms))
}

func formatSummaries(forms []leadform.Summary) string {
	if len(forms) == 0 {
		return "No remote forms."
	}
	var b strings.Builder
	for i, form := range forms {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s\t%s\t%d fields", form.ID, form.Name, form.FieldCount)
	}
	return b.String()
}
