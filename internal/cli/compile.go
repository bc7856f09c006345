package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formimport/pkg/compiler/markup"
	"github.com/goliatone/go-formimport/pkg/target"
)

type compileOptions struct {
	target string
	title  string
}

// NewCompileCommand creates the compile command. It prints the compiled
// candidate without touching the local repository.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &compileOptions{}
	cmd := &cobra.Command{
		Use:           "compile <remote-id>",
		Short:         "Compile a remote form for a target without importing it",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, opts, args[0], cmd)
		},
	}
	cmd.Flags().StringVarP(&opts.target, "target", "t", "", "target form builder (A|B); defaults to import.default_target")
	cmd.Flags().StringVar(&opts.title, "title", "", "title for the compiled form")
	return cmd
}

func runCompile(rootOpts *RootOptions, opts *compileOptions, remoteID string, cmd *cobra.Command) error {
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
	directory, err := rt.directory()
	if err != nil {
		return configFailure(formatter, err)
	}

	form, err := directory.GetForm(cmd.Context(), remoteID)
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeRemote, err.Error(), err, nil)
	}
	compiled, err := rt.compilers().Compile(cmd.Context(), tgt, form, opts.title)
	if err != nil {
		return formatter.Error(ExitCommandError, ErrCodeInput, err.Error(), err, nil)
	}
	for _, reason := range compiled.Degraded() {
		formatter.VerboseLog("degraded: %s", reason)
	}

	text, err := compiledText(compiled)
	if err != nil {
		return formatter.Error(ExitFailure, ErrCodeImport, err.Error(), err, nil)
	}
	return formatter.Success(compiled, text)
}

// compiledText shows target A as its markup and target B as JSON.
func compiledText(compiled target.Compiled) (string, error) {
	if form, ok := compiled.(*markup.Form); ok {
		return fmt.Sprintf("# %s\n%s", form.Title, form.Markup), nil
	}
	raw, err := json.MarshalIndent(compiled, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (r *runtime) resolveTarget(raw string) (target.Target, error) {
	if raw == "" {
		return r.cfg.Target(), nil
	}
	return target.Parse(raw)
}
