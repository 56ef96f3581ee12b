package protocol

import (
	"strings"
	"sync/atomic"
)

// Registry is the compiled, read-only catalog. It is safe for concurrent use
// because nothing in it is written after NewRegistry returns.
type Registry struct {
	defs    map[string]ProtocolDefinition
	schemas map[string]*ProtocolSchema
	names   []string
}

// NewRegistry validates defs, compiles every protocol and returns the
// registry. On error nothing is built.
func NewRegistry(defs []ProtocolDefinition) (*Registry, error) {
	if err := ValidateDefinitions(defs); err != nil {
		return nil, err
	}
	r := &Registry{
		defs:    make(map[string]ProtocolDefinition, len(defs)),
		schemas: make(map[string]*ProtocolSchema, len(defs)),
		names:   make([]string, 0, len(defs)),
	}
	for _, def := range defs {
		schema, err := generateSchema(def, "protocols."+def.Name)
		if err != nil {
			return nil, err
		}
		compiled := cloneDefinition(def)
		for i, v := range schema.args {
			compiled.Args[i] = v.Definition()
		}
		key := NormalizeName(def.Name)
		r.defs[key] = compiled
		r.schemas[key] = schema
		r.names = append(r.names, def.Name)
	}
	return r, nil
}

// NormalizeName returns the lookup key for a protocol name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Definition returns the protocol definition with coerced defaults.
func (r *Registry) Definition(name string) (ProtocolDefinition, error) {
	def, ok := r.defs[NormalizeName(name)]
	if !ok {
		return ProtocolDefinition{}, &UnknownProtocolError{Name: name}
	}
	return cloneDefinition(def), nil
}

// Schema returns the compiled schema of a protocol.
func (r *Registry) Schema(name string) (*ProtocolSchema, error) {
	s, ok := r.schemas[NormalizeName(name)]
	if !ok {
		return nil, &UnknownProtocolError{Name: name}
	}
	return s, nil
}

// Signature returns the rendered signature of a protocol.
func (r *Registry) Signature(name string) (string, error) {
	def, ok := r.defs[NormalizeName(name)]
	if !ok {
		return "", &UnknownProtocolError{Name: name}
	}
	return Signature(def), nil
}

// ValidProtocols returns the protocol names in declaration order.
func (r *Registry) ValidProtocols() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of protocols.
func (r *Registry) Len() int { return len(r.names) }

func cloneDefinition(def ProtocolDefinition) ProtocolDefinition {
	out := def
	out.Links = append([]string(nil), def.Links...)
	out.Args = make([]ArgumentDefinition, len(def.Args))
	for i, a := range def.Args {
		out.Args[i] = cloneArgument(a)
	}
	return out
}

// ---------------------------------------------------------------------------
// Process-wide default registry
// ---------------------------------------------------------------------------

var defaultRegistry atomic.Pointer[Registry]

// Replace publishes r as the default registry and returns the previous one.
// Readers holding the old registry keep a consistent snapshot.
func Replace(r *Registry) *Registry {
	return defaultRegistry.Swap(r)
}

// Default returns the published registry, or ErrNotInitialized.
func Default() (*Registry, error) {
	r := defaultRegistry.Load()
	if r == nil {
		return nil, ErrNotInitialized
	}
	return r, nil
}

// ValidateSendCommand validates text against the default registry.
func ValidateSendCommand(text string) (Command, error) {
	r, err := Default()
	if err != nil {
		return Command{}, err
	}
	return r.ValidateSendCommand(text)
}

// ValidateCommand validates raw against the default registry.
func ValidateCommand(raw RawCommand) (Command, error) {
	r, err := Default()
	if err != nil {
		return Command{}, err
	}
	return r.ValidateCommand(raw)
}

// GetProtoDef looks up a definition in the default registry.
func GetProtoDef(name string) (ProtocolDefinition, error) {
	r, err := Default()
	if err != nil {
		return ProtocolDefinition{}, err
	}
	return r.Definition(name)
}

// GetProtoSignature renders a signature from the default registry.
func GetProtoSignature(name string) (string, error) {
	r, err := Default()
	if err != nil {
		return "", err
	}
	return r.Signature(name)
}

// ValidProtocols lists the protocols of the default registry.
func ValidProtocols() ([]string, error) {
	r, err := Default()
	if err != nil {
		return nil, err
	}
	return r.ValidProtocols(), nil
}
