package protocol

import "fmt"

// Step is one link of a compiled argument validator: it validates a value
// and returns it, possibly transformed, for the next step.
type Step interface {
	Apply(v any) (any, error)
}

// StepFunc adapts a function to the Step interface.
type StepFunc func(v any) (any, error)

func (f StepFunc) Apply(v any) (any, error) { return f(v) }

// ArgValidator is the compiled validator of one argument: the base coercion
// followed by each extra constraint in declared order.
type ArgValidator struct {
	arg   ArgumentDefinition
	steps []Step
}

// CompileArgument builds the validator for arg. A declared default is run
// through the full chain immediately and replaced by its coerced value; a
// default that fails is a definition error.
func CompileArgument(arg ArgumentDefinition) (*ArgValidator, error) {
	return compileArgument(arg, arg.Name)
}

func compileArgument(arg ArgumentDefinition, path string) (*ArgValidator, error) {
	if !arg.Type.Valid() {
		return nil, structural("compile", path+".type", fmt.Sprintf("unknown type %q", arg.Type), nil)
	}
	steps := []Step{coercionStep(arg.Type)}
	for _, spec := range arg.Schema {
		c, err := ParseConstraint(spec)
		if err != nil {
			return nil, structural("compile", path+".schema."+spec.Name, "invalid constraint", err)
		}
		steps = append(steps, constraintStep(c))
	}

	v := &ArgValidator{arg: cloneArgument(arg), steps: steps}
	if arg.HasDefault {
		d, err := v.Validate(arg.Default)
		if err != nil {
			return nil, structural("compile", path+".default",
				fmt.Sprintf("error in default value for argument <%s>", arg.Name), err)
		}
		v.arg.Default = d
	}
	return v, nil
}

// Validate runs raw through every step, stopping at the first failure.
func (v *ArgValidator) Validate(raw any) (any, error) {
	val := raw
	for _, step := range v.steps {
		var err error
		if val, err = step.Apply(val); err != nil {
			return nil, err
		}
	}
	return val, nil
}

// Name returns the argument name.
func (v *ArgValidator) Name() string { return v.arg.Name }

// Definition returns a copy of the argument definition with its coerced
// default.
func (v *ArgValidator) Definition() ArgumentDefinition { return cloneArgument(v.arg) }

// Default returns a copy of the coerced default, if the argument has one.
func (v *ArgValidator) Default() (any, bool) {
	if !v.arg.HasDefault {
		return nil, false
	}
	return cloneValue(v.arg.Default), true
}

func coercionStep(t ArgType) Step {
	return StepFunc(func(v any) (any, error) { return Coerce(t, v) })
}

// constraintStep turns a constraint variant into a validator step. Range and
// Any inspect each element of a list; the other variants see the whole value.
func constraintStep(c Constraint) Step {
	switch c := c.(type) {
	case RangeConstraint:
		return elementwise(c.Kind(), c.check)
	case OneOfConstraint:
		return elementwise(c.Kind(), c.check)
	case LengthConstraint:
		return StepFunc(func(v any) (any, error) {
			if msg := c.check(v); msg != "" {
				return nil, constraintError(c.Kind(), msg, -1)
			}
			return v, nil
		})
	case AlternatingSignsConstraint:
		return StepFunc(func(v any) (any, error) {
			if err := c.check(v); err != nil {
				return nil, err
			}
			return v, nil
		})
	case BinaryStringConstraint:
		return StepFunc(c.check)
	case ProntoConstraint:
		return StepFunc(func(v any) (any, error) { return v, nil })
	}
	panic(fmt.Sprintf("protocol: unhandled constraint %T", c))
}

func elementwise(kind ConstraintKind, check func(any) string) Step {
	return StepFunc(func(v any) (any, error) {
		if items, ok := v.([]any); ok {
			for i, item := range items {
				if msg := check(item); msg != "" {
					return nil, constraintError(kind, msg, i)
				}
			}
			return v, nil
		}
		if msg := check(v); msg != "" {
			return nil, constraintError(kind, msg, -1)
		}
		return v, nil
	})
}

func cloneArgument(a ArgumentDefinition) ArgumentDefinition {
	a.Default = cloneValue(a.Default)
	if a.Schema == nil {
		return a
	}
	specs := make([]ConstraintSpec, len(a.Schema))
	for i, spec := range a.Schema {
		specs[i] = cloneSpec(spec)
	}
	a.Schema = specs
	return a
}

// cloneSpec copies the parameters of spec. A nil Args or Kwargs stays nil,
// parameterless constraints depend on it.
func cloneSpec(spec ConstraintSpec) ConstraintSpec {
	if spec.Args != nil {
		args := make([]any, len(spec.Args))
		for i, a := range spec.Args {
			args[i] = cloneValue(a)
		}
		spec.Args = args
	}
	if spec.Kwargs != nil {
		kw := make(map[string]any, len(spec.Kwargs))
		for k, a := range spec.Kwargs {
			kw[k] = cloneValue(a)
		}
		spec.Kwargs = kw
	}
	return spec
}

func cloneValue(v any) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = cloneValue(item)
	}
	return out
}
