package protocol

// Category is the transport family a protocol belongs to.
type Category string

const (
	CategoryIR   Category = "IR"
	CategoryRF   Category = "RF"
	CategoryIRRF Category = "IR/RF"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryIR, CategoryRF, CategoryIRRF:
		return true
	}
	return false
}

// ProtocolDefinition is one catalog entry: a named command family with an
// ordered argument list. Definitions are immutable once loaded.
type ProtocolDefinition struct {
	Name  string
	Desc  string
	Type  Category
	Links []string
	Note  string
	Args  []ArgumentDefinition
}

// ArgumentDefinition declares one positional argument of a protocol.
//
// Default holds the raw declared default until the protocol is compiled; a
// definition returned by a Registry carries the coerced default instead.
type ArgumentDefinition struct {
	Name       string
	Type       ArgType
	Desc       string
	Example    string
	Default    any
	HasDefault bool
	Schema     []ConstraintSpec
}

// Optional reports whether the argument may be omitted from a command.
func (a ArgumentDefinition) Optional() bool { return a.HasDefault }

// ConstraintSpec is an extra constraint as declared in the catalog, before
// its parameters have been checked.
//
// A spec with neither Args nor Kwargs was declared without parameters
// (YAML null).
type ConstraintSpec struct {
	Name   string
	Args   []any
	Kwargs map[string]any
}

// RequiredArgs returns the number of leading arguments without a default.
func (d ProtocolDefinition) RequiredArgs() int {
	n := 0
	for _, a := range d.Args {
		if !a.HasDefault {
			n++
		}
	}
	return n
}

// Arg returns the argument with the given name.
func (d ProtocolDefinition) Arg(name string) (ArgumentDefinition, bool) {
	for _, a := range d.Args {
		if a.Name == name {
			return a, true
		}
	}
	return ArgumentDefinition{}, false
}
