package protocol

import (
	"errors"
	"strings"
)

// RawCommand is a command that has been split but not validated: a protocol
// name and its positional raw values.
type RawCommand struct {
	Protocol string
	Args     []any
}

// Command is a validated command: the lowercase protocol name and one coerced
// value per declared argument, in declared order.
type Command struct {
	Protocol string `json:"protocol"`
	Args     []any  `json:"args"`
}

// String renders c back to command syntax, e.g. "nec:4:8:1".
func (c Command) String() string {
	return renderCommand(c.Protocol, c.Args)
}

func renderCommand(protocol string, args []any) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, protocol)
	for _, a := range args {
		parts = append(parts, formatValue(a))
	}
	return strings.Join(parts, ":")
}

// ParseCommand splits a colon-delimited command into its protocol and
// positional values. Values keep their quotes: an empty value is unset, a
// quoted empty value is the empty string. It does not consult the catalog.
func ParseCommand(text string) (RawCommand, error) {
	tokens := splitTokens(text, ':', false)
	if len(tokens) > 0 {
		tokens[0] = unquoteToken(tokens[0])
	}
	if len(tokens) < 2 || tokens[0] == "" {
		return RawCommand{}, &CommandSyntaxError{
			Command: text,
			Reason:  "command string needs at least a protocol and one parameter",
		}
	}
	args := make([]any, len(tokens)-1)
	for i, tok := range tokens[1:] {
		args[i] = tok
	}
	return RawCommand{Protocol: NormalizeName(tokens[0]), Args: args}, nil
}

// ValidateSendCommand parses text and validates it against the catalog.
func (r *Registry) ValidateSendCommand(text string) (Command, error) {
	raw, err := ParseCommand(text)
	if err != nil {
		return Command{}, err
	}
	return r.validate(raw, strings.TrimSpace(text))
}

// ValidateCommand validates an already split command.
func (r *Registry) ValidateCommand(raw RawCommand) (Command, error) {
	return r.validate(raw, renderCommand(raw.Protocol, raw.Args))
}

func (r *Registry) validate(raw RawCommand, received string) (Command, error) {
	if strings.TrimSpace(raw.Protocol) == "" {
		return Command{}, &CommandSyntaxError{Command: received, Reason: "command needs a protocol"}
	}
	name := NormalizeName(raw.Protocol)
	def, ok := r.defs[name]
	if !ok {
		return Command{}, &UnknownProtocolError{Name: name}
	}
	if len(raw.Args) == 0 {
		return Command{}, &CommandSyntaxError{Command: received, Reason: "command needs at least one parameter"}
	}

	fail := func(err error) (Command, error) {
		cerr := &CommandError{
			Protocol:  name,
			Signature: Signature(def),
			Received:  received,
			Err:       err,
		}
		var argErr *ArgumentError
		if errors.As(err, &argErr) {
			cerr.Argument = argErr.Argument
		}
		return Command{}, cerr
	}

	named, err := positionalToNamed(def, raw.Args)
	if err != nil {
		return fail(err)
	}
	args, err := r.schemas[name].Validate(named)
	if err != nil {
		return fail(err)
	}
	return Command{Protocol: name, Args: args}, nil
}

// positionalToNamed zips values against the declared argument order. Empty
// values are left out so that the argument falls back to its default.
func positionalToNamed(def ProtocolDefinition, values []any) (map[string]any, error) {
	if len(values) > len(def.Args) {
		return nil, &ArgumentCountError{Protocol: NormalizeName(def.Name), Max: len(def.Args), Got: len(values)}
	}
	named := make(map[string]any, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		named[def.Args[i].Name] = v
	}
	return named, nil
}
