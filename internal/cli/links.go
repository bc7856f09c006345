package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formimport/pkg/repository"
)

// NewLinksCommand creates the links command.
func NewLinksCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "links",
		Short:         "List recorded import links",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinks(rootOpts, cmd)
		},
	}
}

func runLinks(rootOpts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	rt, err := newRuntime(rootOpts, cmd)
	if err != nil {
		return configFailure(formatter, err)
	}
	defer rt.Close()

	store, err := rt.store()
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeRepository, err.Error(), err, nil)
	}
	links, err := store.ListLinks(cmd.Context())
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeRepository, err.Error(), err, nil)
	}
	if links == nil {
		links = []repository.ImportLink{}
	}
	return formatter.Success(links, formatLinks(links))
}

func formatLinks(links []repository.ImportLink) string {
	if len(links) == 0 {
		return "No import links."
	}
	var b strings.Builder
	for i, link := range links {
		if i > 0 {
			b.WriteByte('\n')
		}
		status := "active"
		if link.Superseded {
			status = "superseded"
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%s", link.RemoteFormID, link.Target, link.LocalFormID,
			link.ImportedAt.UTC().Format(time.RFC3339), status)
	}
	return b.String()
}

type unlinkOptions struct {
	target string
}

// NewUnlinkCommand creates the unlink command. Superseding a link allows
// the remote form to be imported again.
func NewUnlinkCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &unlinkOptions{}
	cmd := &cobra.Command{
		Use:           "unlink <remote-id>",
		Short:         "Supersede the import link of a remote form",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnlink(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "target form builder (A|B); defaults to import.default_target")
	return cmd
}

func runUnlink(rootOpts *RootOptions, opts *unlinkOptions, remoteID string, cmd *cobra.Command) error {
	formatter := newFormatter(rootOpts, cmd)

	rt, err := newRuntime(rootOpts, cmd)
	if err != nil {
		return configFailure(formatter, err)
	}
	defer rt.Close()

	tgt, err := rt.resolveTarget(opts.target)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeInput, err.Error(), err, nil)
	}
	store, err := rt.store()
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeRepository, err.Error(), err, nil)
	}
	if err := store.SupersedeLink(cmd.Context(), remoteID, tgt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return formatter.Error(ExitCommandError, ErrCodeNotFound,
				fmt.Sprintf("no active import link for remote form %s on target %s", remoteID, tgt), err, nil)
		}
		return formatter.Error(ExitFailure, ErrCodeRepository, err.Error(), err, nil)
	}

	data := map[string]any{"remote_form_id": remoteID, "target": tgt, "superseded": true}
	return formatter.Success(data, fmt.Sprintf("Superseded import link for remote form %s on target %s.", remoteID, tgt))
}
