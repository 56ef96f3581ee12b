package protocol

import (
	"fmt"
	"sort"
)

// ProtocolSchema validates a named argument mapping for one protocol and
// produces the ordered argument vector.
type ProtocolSchema struct {
	name  string
	args  []*ArgValidator
	index map[string]int
}

// GenerateSchema compiles every argument of def in declared order.
func GenerateSchema(def ProtocolDefinition) (*ProtocolSchema, error) {
	return generateSchema(def, "protocols."+def.Name)
}

func generateSchema(def ProtocolDefinition, path string) (*ProtocolSchema, error) {
	s := &ProtocolSchema{
		name:  def.Name,
		args:  make([]*ArgValidator, 0, len(def.Args)),
		index: make(map[string]int, len(def.Args)),
	}
	for i, arg := range def.Args {
		if _, dup := s.index[arg.Name]; dup {
			return nil, structural("compile", fmt.Sprintf("%s.args[%d]", path, i), fmt.Sprintf("duplicate argument name %q", arg.Name), nil)
		}
		v, err := compileArgument(arg, fmt.Sprintf("%s.args[%d]", path, i))
		if err != nil {
			return nil, err
		}
		s.index[arg.Name] = len(s.args)
		s.args = append(s.args, v)
	}
	return s, nil
}

// Validate checks named against the declared arguments and returns one
// coerced value per argument, in declared order. Absent arguments take their
// default; absent required arguments and undeclared names are errors.
func (s *ProtocolSchema) Validate(named map[string]any) ([]any, error) {
	var unknown []string
	for k := range named {
		if _, ok := s.index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &ArgumentError{Argument: unknown[0], Err: ErrUnknownArgument}
	}

	out := make([]any, len(s.args))
	for i, v := range s.args {
		raw, present := named[v.Name()]
		if !present {
			def, ok := v.Default()
			if !ok {
				return nil, &ArgumentError{Argument: v.Name(), Err: ErrMissingArgument}
			}
			out[i] = def
			continue
		}
		val, err := v.Validate(raw)
		if err != nil {
			return nil, &ArgumentError{Argument: v.Name(), Err: err}
		}
		out[i] = val
	}
	return out, nil
}

// Name returns the protocol name the schema was generated for.
func (s *ProtocolSchema) Name() string { return s.name }

// Arguments returns the compiled argument validators in declared order.
func (s *ProtocolSchema) Arguments() []*ArgValidator {
	return append([]*ArgValidator(nil), s.args...)
}

// Argument returns the compiled validator for the named argument.
func (s *ProtocolSchema) Argument(name string) (*ArgValidator, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.args[i], true
}
