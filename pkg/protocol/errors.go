package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidDefinition  = errors.New("invalid protocol definition")
	ErrUnknownProtocol    = errors.New("unknown protocol")
	ErrCommandSyntax      = errors.New("malformed command")
	ErrArgumentCount      = errors.New("too many arguments")
	ErrArgumentType       = errors.New("invalid argument type")
	ErrArgumentConstraint = errors.New("argument constraint violated")
	ErrMissingArgument    = errors.New("required argument missing")
	ErrUnknownArgument    = errors.New("unknown argument")
	ErrNotInitialized     = errors.New("protocols not initialized")
)

// StructuralDefinitionError reports a malformed catalog. Phase is one of
// "parse" (source decoding), "raw" (structural checks) or "compile"
// (constraint parameters and default values).
type StructuralDefinitionError struct {
	Phase  string
	Path   string
	Reason string
	Err    error
}

func (e *StructuralDefinitionError) Error() string {
	msg := fmt.Sprintf("phase=%s path=%s: %s", e.Phase, e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructuralDefinitionError) Unwrap() error { return e.Err }

func (e *StructuralDefinitionError) Is(target error) bool { return target == ErrInvalidDefinition }

// UnknownProtocolError is returned when a command names a protocol that is
// not in the registry.
type UnknownProtocolError struct {
	Name string
}

func (e *UnknownProtocolError) Error() string {
	return fmt.Sprintf("protocol '%s' is not defined", e.Name)
}

func (e *UnknownProtocolError) Is(target error) bool { return target == ErrUnknownProtocol }

// CommandSyntaxError reports a command that cannot be split into a protocol
// and its parameters.
type CommandSyntaxError struct {
	Command string
	Reason  string
}

func (e *CommandSyntaxError) Error() string {
	if e.Command == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s (got %q)", e.Reason, e.Command)
}

func (e *CommandSyntaxError) Is(target error) bool { return target == ErrCommandSyntax }

// ArgumentCountError is returned when more positional values are supplied
// than the protocol declares.
type ArgumentCountError struct {
	Protocol string
	Max      int
	Got      int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("expected maximum %d arguments for protocol '%s', got %d", e.Max, e.Protocol, e.Got)
}

func (e *ArgumentCountError) Is(target error) bool { return target == ErrArgumentCount }

// ArgumentTypeError is a base coercion failure. Index is the offending
// element for array types and -1 otherwise.
type ArgumentTypeError struct {
	Type   string
	Value  any
	Reason string
	Index  int
}

func (e *ArgumentTypeError) Error() string {
	prefix := ""
	if e.Index >= 0 {
		prefix = fmt.Sprintf("element %d: ", e.Index)
	}
	return fmt.Sprintf("%sinvalid %s value %s: %s", prefix, e.Type, describeValue(e.Value), e.Reason)
}

func (e *ArgumentTypeError) Is(target error) bool { return target == ErrArgumentType }

// ArgumentConstraintError is an extra-constraint failure. Index is the
// offending element when the constraint inspects a sequence, -1 otherwise.
type ArgumentConstraintError struct {
	Constraint string
	Message    string
	Index      int
}

func (e *ArgumentConstraintError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("element %d: %s", e.Index, e.Message)
	}
	return e.Message
}

func (e *ArgumentConstraintError) Is(target error) bool { return target == ErrArgumentConstraint }

// ArgumentError attaches the failing argument name to an underlying error.
type ArgumentError struct {
	Argument string
	Err      error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("<%s>: %v", e.Argument, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// CommandError is the diagnostic returned for a command that names a known
// protocol but fails validation.
type CommandError struct {
	Protocol  string
	Signature string
	Received  string
	Argument  string
	Err       error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "malformed command for protocol '%s'.\n", e.Protocol)
	fmt.Fprintf(&b, "Expected:   %s\n", e.Signature)
	fmt.Fprintf(&b, "Received:   %s\n", e.Received)
	b.WriteString("ERROR:      ")
	if e.Argument != "" {
		fmt.Fprintf(&b, "<%s>: ", e.Argument)
	}
	b.WriteString(e.Message())
	return b.String()
}

// Message returns the underlying failure without the argument path.
func (e *CommandError) Message() string {
	var argErr *ArgumentError
	if errors.As(e.Err, &argErr) {
		return argErr.Err.Error()
	}
	return e.Err.Error()
}

func (e *CommandError) Unwrap() error { return e.Err }

func structural(phase, path, reason string, err error) *StructuralDefinitionError {
	return &StructuralDefinitionError{Phase: phase, Path: path, Reason: reason, Err: err}
}

func describeValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
