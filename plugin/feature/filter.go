package feature

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/hrygo/sixdegrees/store"
)

// Filter is a compiled CEL inclusion policy over artifact attributes.
//
// Available variables: id (int), title, maker, date, medium, department,
// classification, culture (string). Example:
//
//	department == "Paintings" && !date.startsWith("19")
type Filter struct {
	expr    string
	program cel.Program
}

var filterEnvOptions = []cel.EnvOption{
	cel.Variable("id", cel.IntType),
	cel.Variable("title", cel.StringType),
	cel.Variable("maker", cel.StringType),
	cel.Variable("date", cel.StringType),
	cel.Variable("medium", cel.StringType),
	cel.Variable("department", cel.StringType),
	cel.Variable("classification", cel.StringType),
	cel.Variable("culture", cel.StringType),
}

// CompileFilter compiles a boolean CEL expression.
func CompileFilter(expr string) (*Filter, error) {
	env, err := cel.NewEnv(filterEnvOptions...)
	if err != nil {
		return nil, fmt.Errorf("create filter environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter program: %w", err)
	}
	return &Filter{expr: expr, program: program}, nil
}

// Match reports whether the artifact passes the filter.
func (f *Filter) Match(a *store.Artifact) (bool, error) {
	out, _, err := f.program.Eval(map[string]any{
		"id":             a.ID,
		"title":          a.Title,
		"maker":          a.Maker,
		"date":           a.Date,
		"medium":         a.Medium,
		"department":     a.Department,
		"classification": a.Classification,
		"culture":        a.MakerCulture,
	})
	if err != nil {
		return false, err
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %T", f.expr, out.Value())
	}
	return matched, nil
}

func (f *Filter) String() string {
	return f.expr
}
