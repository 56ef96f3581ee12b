package protocol

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ---------------------------------------------------------------------------
// Phase raw: structural checks over decoded definitions
// ---------------------------------------------------------------------------

// ValidateDefinitions checks the catalog meta-schema over defs before any
// argument is compiled. The first violation is returned as a
// *StructuralDefinitionError.
func ValidateDefinitions(defs []ProtocolDefinition) error {
	seen := make(map[string]string, len(defs))
	for _, def := range defs {
		path := "protocols." + def.Name
		if def.Name == "" {
			path = "protocols.<missing>"
		}
		if err := validateDefinition(def, path); err != nil {
			return err
		}
		key := NormalizeName(def.Name)
		if prev, dup := seen[key]; dup {
			return structural("raw", path, fmt.Sprintf("protocol %q is already defined as %q", def.Name, prev), nil)
		}
		seen[key] = def.Name
	}
	return nil
}

func validateDefinition(def ProtocolDefinition, path string) error {
	if !identPattern.MatchString(def.Name) {
		return structural("raw", path, fmt.Sprintf("invalid protocol name %q", def.Name), nil)
	}
	if strings.TrimSpace(def.Desc) == "" {
		return structural("raw", path+".desc", "protocol is missing a description", nil)
	}
	if !def.Type.Valid() {
		return structural("raw", path+".type", fmt.Sprintf("unknown category %q, expected one of: IR, RF, IR/RF", def.Type), nil)
	}
	for i, link := range def.Links {
		if err := validateLink(link); err != nil {
			return structural("raw", fmt.Sprintf("%s.link[%d]", path, i), "invalid link", err)
		}
	}
	if len(def.Args) == 0 {
		return structural("raw", path+".args", "protocol must declare at least one argument", nil)
	}

	names := make(map[string]struct{}, len(def.Args))
	firstOptional := ""
	for i, arg := range def.Args {
		argPath := fmt.Sprintf("%s.args[%d]", path, i)
		if err := validateArgument(arg, argPath); err != nil {
			return err
		}
		if _, dup := names[arg.Name]; dup {
			return structural("raw", argPath+".name", fmt.Sprintf("duplicate argument name %q", arg.Name), nil)
		}
		names[arg.Name] = struct{}{}

		switch {
		case arg.Optional() && firstOptional == "":
			firstOptional = arg.Name
		case !arg.Optional() && firstOptional != "":
			return structural("raw", argPath,
				fmt.Sprintf("required argument %q follows optional argument %q", arg.Name, firstOptional), nil)
		}
	}
	return nil
}

func validateArgument(arg ArgumentDefinition, path string) error {
	if !identPattern.MatchString(arg.Name) {
		return structural("raw", path+".name", fmt.Sprintf("invalid argument name %q", arg.Name), nil)
	}
	if !arg.Type.Valid() {
		return structural("raw", path+".type",
			fmt.Sprintf("unknown type %q, expected one of: %s", arg.Type, strings.Join(ValidTypes(), ", ")), nil)
	}
	if strings.TrimSpace(arg.Desc) == "" {
		return structural("raw", path+".desc", "argument is missing a description", nil)
	}
	kinds := make(map[string]struct{}, len(arg.Schema))
	for _, spec := range arg.Schema {
		specPath := path + ".schema." + spec.Name
		if _, dup := kinds[spec.Name]; dup {
			return structural("raw", specPath, "constraint declared twice", nil)
		}
		kinds[spec.Name] = struct{}{}
		if _, err := ParseConstraint(spec); err != nil {
			return structural("raw", specPath, "invalid constraint", err)
		}
	}
	return nil
}

func validateLink(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", link)
	}
	return nil
}
