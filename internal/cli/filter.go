package cli

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/goliatone/go-formimport/pkg/leadform"
)

// formFilter evaluates a CEL expression against remote form summaries.
// The expression sees one variable, form, with keys id, name, description
// and field_count.
type formFilter struct {
	program cel.Program
}

func newFormFilter(expr string) (*formFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	env, err := cel.NewEnv(cel.Variable("form", cel.MapType(cel.StringType, cel.DynType)))
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	output := ast.OutputType()
	if !output.IsExactType(cel.BoolType) && !output.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("filter must evaluate to a bool, got %s", output)
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	return &formFilter{program: program}, nil
}

func (f *formFilter) Match(form leadform.Summary) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.program.Eval(map[string]any{
		"form": map[string]any{
			"id":          form.ID,
			"name":        form.Name,
			"description": form.Description,
			"field_count": int64(form.FieldCount),
		},
	})
	if err != nil {
		return false, err
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, want bool", out.Value())
	}
	return matched, nil
}

// Apply keeps the forms the expression accepts.
func (f *formFilter) Apply(forms []leadform.Summary) ([]leadform.Summary, error) {
	if f == nil {
		return forms, nil
	}
	kept := make([]leadform.Summary, 0, len(forms))
	for _, form := range forms {
		matched, err := f.Match(form)
		if err != nil {
			return nil, fmt.Errorf("form %s: %w", form.ID, err)
		}
		if matched {
			kept = append(kept, form)
		}
	}
	return kept, nil
}
