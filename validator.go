package recgen

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ExprValidator compiles a boolean expression over a record's visible
// attributes into a Validator. The expression sees one variable per
// visible attribute, plus "id" and "version". Integer and reference
// attributes are exposed as integers (the reference target's
// identifier), strings as strings; absent optional values are nil.
//
//	recgen.RegisterValidator("book_valid",
//	    recgen.MustExprValidator(`pages > 0 && title != ""`))
func ExprValidator(src string) (Validator, error) {
	program, err := expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("recgen: compile validator: %w", err)
	}
	return func(r Record) error {
		env, err := exprEnv(r)
		if err != nil {
			return err
		}
		return runExprProgram(program, src, r, env)
	}, nil
}

// MustExprValidator is ExprValidator that panics on a compile error.
// Intended for init-time registration.
func MustExprValidator(src string) Validator {
	v, err := ExprValidator(src)
	if err != nil {
		panic(err)
	}
	return v
}

func runExprProgram(program *vm.Program, src string, r Record, env map[string]any) error {
	out, err := expr.Run(program, env)
	if err != nil {
		return NewValidationError(r.TypeName(), err)
	}
	if ok, _ := out.(bool); !ok {
		return NewValidationError(r.TypeName(), fmt.Errorf("expression %q rejected the value", src))
	}
	return nil
}

// exprEnv builds the expression environment from the record's visible
// attributes via its registered introspection.
func exprEnv(r Record) (map[string]any, error) {
	in, ok := Lookup(r.TypeName())
	if !ok {
		return nil, NewValidationError(r.TypeName(), fmt.Errorf("type %q not registered", r.TypeName()))
	}
	env := map[string]any{
		"id":      r.ID(),
		"version": r.Version(),
	}
	for _, at := range in.Attributes() {
		text, err := r.Get(at.Name)
		if err != nil {
			return nil, err
		}
		switch {
		case at.Optional && at.Kind == KindString:
			v, err := ParseOptionalString(text)
			if err != nil {
				return nil, err
			}
			if v == nil {
				env[at.Name] = nil
			} else {
				env[at.Name] = *v
			}
		case at.Optional:
			v, err := ParseOptionalInt(text)
			if err != nil {
				return nil, err
			}
			if v == nil {
				env[at.Name] = nil
			} else {
				env[at.Name] = *v
			}
		case at.Kind == KindString:
			env[at.Name] = text
		default:
			v, err := ParseInt(text)
			if err != nil {
				return nil, err
			}
			env[at.Name] = v
		}
	}
	return env, nil
}
