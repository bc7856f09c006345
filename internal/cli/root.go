// Package cli implements the formimport command tree.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formimport/pkg/remote"
	"github.com/goliatone/go-formimport/pkg/repository"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Directory, Store and Prompter replace the configured collaborators
	// when set.
	Directory remote.Directory
	Store     repository.Store
	Prompter  Prompter
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Run executes the command tree and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(&RootOptions{})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Flag and argument errors never reach a formatter.
		fmt.Fprintln(stderr, "Error:", err)
		return ExitCommandError
	}
	return exitErr.Code
}

// NewRootCommand creates the root command. opts may carry pre-built
// collaborators; nil starts from empty options.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}

	cmd := &cobra.Command{
		Use:   "formimport",
		Short: "Import remote lead-capture forms into local form builders",
		Long: `Import forms defined in a remote lead-capture service into one of the
local form builders: target A (markup DSL) or target B (structured fields).

Imports are deduplicated against existing local forms and recorded as
import links so the same remote form is never imported twice per target.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to the YAML configuration")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewLinksCommand(opts))
	cmd.AddCommand(NewUnlinkCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
