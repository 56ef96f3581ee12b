package protocolyaml

import (
	"fmt"

	"remote-tools/pkg/protocol"

	"gopkg.in/yaml.v3"
)

// ---- Node walking ----------------------------------------------------------

func parseErr(path, reason string, err error) *protocol.StructuralDefinitionError {
	return &protocol.StructuralDefinitionError{Phase: "parse", Path: path, Reason: reason, Err: err}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func kindOf(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return "null"
		}
		return "scalar " + n.ShortTag()
	}
	return fmt.Sprintf("YAML kind %d", n.Kind)
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// eachPair calls fn for every key/value of a mapping node in document order.
// Keys must be strings and unique.
func eachPair(node *yaml.Node, path string, fn func(key string, val *yaml.Node) error) error {
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k := resolve(node.Content[i])
		if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" {
			return parseErr(path, fmt.Sprintf("keys must be strings, got %s at line %d", kindOf(k), k.Line), nil)
		}
		if _, dup := seen[k.Value]; dup {
			return parseErr(path+"."+k.Value, fmt.Sprintf("duplicate key at line %d", k.Line), nil)
		}
		seen[k.Value] = struct{}{}
		if err := fn(k.Value, resolve(node.Content[i+1])); err != nil {
			return err
		}
	}
	return nil
}

func expectKind(n *yaml.Node, kind yaml.Kind, path, want string) error {
	if n.Kind != kind {
		return parseErr(path, fmt.Sprintf("expected %s, got %s", want, kindOf(n)), nil)
	}
	return nil
}

// text reads a scalar as its literal text. Numbers and booleans are kept as
// written, so `example: 0x20` stays "0x20".
func text(n *yaml.Node, path string) (string, error) {
	if n.Kind != yaml.ScalarNode || isNull(n) {
		return "", parseErr(path, fmt.Sprintf("expected a string, got %s", kindOf(n)), nil)
	}
	return n.Value, nil
}

func value(n *yaml.Node, path string) (any, error) {
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, parseErr(path, "cannot decode value", err)
	}
	return v, nil
}

func requireKeys(present map[string]bool, path string, keys ...string) error {
	for _, k := range keys {
		if !present[k] {
			return parseErr(path, fmt.Sprintf("missing required field '%s'", k), nil)
		}
	}
	return nil
}

// ---- Protocols -------------------------------------------------------------

func decodeProtocol(name string, node *yaml.Node, path string) (protocol.ProtocolDefinition, error) {
	def := protocol.ProtocolDefinition{Name: name}
	if err := expectKind(node, yaml.MappingNode, path, "mapping"); err != nil {
		return def, err
	}
	present := map[string]bool{}
	err := eachPair(node, path, func(key string, val *yaml.Node) error {
		present[key] = true
		fieldPath := path + "." + key
		var err error
		switch key {
		case "desc":
			def.Desc, err = text(val, fieldPath)
		case "note":
			def.Note, err = text(val, fieldPath)
		case "type":
			var s string
			s, err = text(val, fieldPath)
			def.Type = protocol.Category(s)
		case "link":
			def.Links, err = decodeLinks(val, fieldPath)
		case "args":
			def.Args, err = decodeArgs(val, fieldPath)
		default:
			err = parseErr(fieldPath, "unknown field", nil)
		}
		return err
	})
	if err != nil {
		return def, err
	}
	return def, requireKeys(present, path, "desc", "type", "args")
}

func decodeLinks(node *yaml.Node, path string) ([]string, error) {
	if err := expectKind(node, yaml.SequenceNode, path, "sequence of URLs"); err != nil {
		return nil, err
	}
	links := make([]string, 0, len(node.Content))
	for i, item := range node.Content {
		s, err := text(resolve(item), fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		links = append(links, s)
	}
	return links, nil
}

// ---- Arguments -------------------------------------------------------------

func decodeArgs(node *yaml.Node, path string) ([]protocol.ArgumentDefinition, error) {
	if err := expectKind(node, yaml.SequenceNode, path, "sequence of arguments"); err != nil {
		return nil, err
	}
	args := make([]protocol.ArgumentDefinition, 0, len(node.Content))
	for i, item := range node.Content {
		arg, err := decodeArgument(resolve(item), fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

func decodeArgument(node *yaml.Node, path string) (protocol.ArgumentDefinition, error) {
	var arg protocol.ArgumentDefinition
	if err := expectKind(node, yaml.MappingNode, path, "mapping"); err != nil {
		return arg, err
	}
	present := map[string]bool{}
	err := eachPair(node, path, func(key string, val *yaml.Node) error {
		present[key] = true
		fieldPath := path + "." + key
		var err error
		switch key {
		case "name":
			arg.Name, err = text(val, fieldPath)
		case "desc":
			arg.Desc, err = text(val, fieldPath)
		case "example":
			arg.Example, err = text(val, fieldPath)
		case "type":
			var s string
			if s, err = text(val, fieldPath); err != nil {
				return err
			}
			if arg.Type, err = protocol.ParseArgType(s); err != nil {
				return parseErr(fieldPath, "invalid type", err)
			}
		case "default":
			arg.Default, err = value(val, fieldPath)
			arg.HasDefault = true
		case "schema":
			arg.Schema, err = decodeSchema(val, fieldPath)
		default:
			err = parseErr(fieldPath, "unknown field", nil)
		}
		return err
	})
	if err != nil {
		return arg, err
	}
	return arg, requireKeys(present, path, "name", "type", "desc")
}

// ---- Constraints -----------------------------------------------------------

// decodeSchema reads the ordered constraint mapping of an argument. Each
// value is null (no parameters), a sequence (positional parameters) or a
// mapping (keyword parameters, with positional ones under "args").
func decodeSchema(node *yaml.Node, path string) ([]protocol.ConstraintSpec, error) {
	if err := expectKind(node, yaml.MappingNode, path, "mapping of constraints"); err != nil {
		return nil, err
	}
	var specs []protocol.ConstraintSpec
	err := eachPair(node, path, func(key string, val *yaml.Node) error {
		spec, err := decodeConstraint(key, val, path+"."+key)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
		return nil
	})
	return specs, err
}

func decodeConstraint(name string, node *yaml.Node, path string) (protocol.ConstraintSpec, error) {
	spec := protocol.ConstraintSpec{Name: name}
	switch {
	case isNull(node):
		return spec, nil

	case node.Kind == yaml.SequenceNode:
		args, err := decodeList(node, path)
		spec.Args = args
		return spec, err

	case node.Kind == yaml.MappingNode:
		spec.Kwargs = map[string]any{}
		err := eachPair(node, path, func(key string, val *yaml.Node) error {
			if key == "args" {
				if val.Kind != yaml.SequenceNode {
					return parseErr(path+".args", fmt.Sprintf("expected sequence, got %s", kindOf(val)), nil)
				}
				args, err := decodeList(val, path+".args")
				spec.Args = args
				return err
			}
			v, err := value(val, path+"."+key)
			spec.Kwargs[key] = v
			return err
		})
		return spec, err
	}
	return spec, parseErr(path, fmt.Sprintf("expected null, sequence or mapping, got %s", kindOf(node)), nil)
}

func decodeList(node *yaml.Node, path string) ([]any, error) {
	out := make([]any, 0, len(node.Content))
	for i, item := range node.Content {
		v, err := value(resolve(item), fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
