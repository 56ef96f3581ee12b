// Package protocolyaml decodes protocol catalogs written in YAML and builds
// registries from them.
package protocolyaml

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"remote-tools/pkg/protocol"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultCatalog is the built-in protocol catalog.
//
//go:embed protocols.yaml
var DefaultCatalog []byte

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report catalog loading.
func WithLogger(l zerolog.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// Loader turns YAML sources into a protocol.Registry.
type Loader struct {
	logger zerolog.Logger
}

// New returns a Loader. Without options it does not log.
func New(opts ...Option) *Loader {
	l := &Loader{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source is one named catalog document.
type Source struct {
	Name string
	Data []byte
}

// Build parses a single catalog and compiles it.
func (l *Loader) Build(in []byte) (*protocol.Registry, error) {
	return l.BuildSources(Source{Name: "<input>", Data: in})
}

// BuildMany parses several catalogs and compiles their union. A protocol
// declared in more than one document is a definition error.
func (l *Loader) BuildMany(inputs ...[]byte) (*protocol.Registry, error) {
	sources := make([]Source, len(inputs))
	for i, in := range inputs {
		sources[i] = Source{Name: fmt.Sprintf("<input %d>", i), Data: in}
	}
	return l.BuildSources(sources...)
}

// BuildFiles reads and compiles the catalogs at paths.
func (l *Loader) BuildFiles(paths ...string) (*protocol.Registry, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		sources = append(sources, Source{Name: p, Data: data})
	}
	return l.BuildSources(sources...)
}

// BuildSources parses every source in order and compiles the result.
func (l *Loader) BuildSources(sources ...Source) (*protocol.Registry, error) {
	var defs []protocol.ProtocolDefinition
	for _, src := range sources {
		parsed, err := Parse(src.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
		l.logger.Debug().Str("source", src.Name).Int("protocols", len(parsed)).Msg("catalog parsed")
		defs = append(defs, parsed...)
	}
	if len(defs) == 0 {
		return nil, &protocol.StructuralDefinitionError{Phase: "parse", Path: "<doc>", Reason: "catalog declares no protocols"}
	}
	reg, err := protocol.NewRegistry(defs)
	if err != nil {
		return nil, err
	}
	l.logger.Debug().Int("sources", len(sources)).Int("protocols", reg.Len()).Msg("catalog compiled")
	return reg, nil
}

// Build parses and compiles a single catalog without logging.
func Build(in []byte) (*protocol.Registry, error) { return New().Build(in) }

// BuildMany parses and compiles several catalogs without logging.
func BuildMany(inputs ...[]byte) (*protocol.Registry, error) { return New().BuildMany(inputs...) }

// LoadDefault compiles the built-in catalog.
func LoadDefault(opts ...Option) (*protocol.Registry, error) {
	return New(opts...).BuildSources(Source{Name: "protocols.yaml", Data: DefaultCatalog})
}

var (
	initOnce sync.Once
	initReg  *protocol.Registry
	initErr  error
)

// Initialize compiles the built-in catalog once and publishes it as the
// process-wide default registry. Later calls return the same result.
func Initialize(opts ...Option) (*protocol.Registry, error) {
	initOnce.Do(func() {
		initReg, initErr = LoadDefault(opts...)
		if initErr == nil {
			protocol.Replace(initReg)
		}
	})
	return initReg, initErr
}

// ---- Parse -----------------------------------------------------------------

// Parse decodes a catalog document into definitions, keeping the order of
// protocols, arguments and constraints as written. Only the document shape
// is checked here; the catalog rules are enforced when the registry is built.
func Parse(in []byte) ([]protocol.ProtocolDefinition, error) {
	var docNode yaml.Node
	if err := yaml.Unmarshal(in, &docNode); err != nil {
		return nil, parseErr("<doc>", "invalid YAML", err)
	}
	if len(docNode.Content) == 0 {
		return nil, parseErr("<doc>", "empty YAML", nil)
	}
	root := docNode.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, parseErr("<doc>", fmt.Sprintf("expected a mapping of protocol names, got %s", kindOf(root)), nil)
	}

	defs := make([]protocol.ProtocolDefinition, 0, len(root.Content)/2)
	err := eachPair(root, "protocols", func(key string, val *yaml.Node) error {
		def, err := decodeProtocol(key, val, "protocols."+key)
		if err != nil {
			return err
		}
		defs = append(defs, def)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defs, nil
}
