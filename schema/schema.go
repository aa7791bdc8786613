// Package schema derives and validates the JSON schema descriptors that
// describe tools to language models.
package schema

import (
	"math"

	"github.com/cockroachdb/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrSchema is returned when a tool definition cannot be converted
// into a valid descriptor.
var ErrSchema = errors.New("invalid tool schema")

// Type is the JSON schema type of a tool parameter.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

var knownTypes = map[Type]bool{
	TypeString:  true,
	TypeInteger: true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeArray:   true,
	TypeObject:  true,
}

// ParameterSpec describes a single tool parameter.
type ParameterSpec struct {
	Name        string
	Type        Type
	Description string
	// Required marks the parameter as mandatory. A parameter with a
	// Default is never required, the model may omit it.
	Required bool
	// Default is advertised in the parameter description only. The
	// arguments the model supplies are passed through to the tool
	// unchanged, without injecting defaults.
	Default any
}

// Descriptor is the model-facing definition of a tool: its name, its
// purpose, and the JSON schema of its arguments.
type Descriptor struct {
	Name        string
	Description string
	// Parameters is the JSON schema value sent to providers. It is
	// either an ordered map built from parameter specs, preserving
	// declaration order, or a schema carried verbatim from an external
	// tool server.
	Parameters any

	params []ParameterSpec
}

// NewDescriptor builds a descriptor from explicit parameter specs.
// The description is mandatory, the model relies on it to decide when
// to call the tool.
func NewDescriptor(name, description string, params []ParameterSpec) (*Descriptor, error) {
	if name == "" {
		return nil, errors.WithMessage(ErrSchema, "tool name is required")
	}
	if description == "" {
		return nil, errors.WithMessagef(ErrSchema, "tool %q has no description", name)
	}

	seen := make(map[string]bool, len(params))
	properties := orderedmap.New[string, any]()
	var required []string
	specs := make([]ParameterSpec, 0, len(params))

	for _, p := range params {
		if p.Name == "" {
			return nil, errors.WithMessagef(ErrSchema, "tool %q has a parameter without a name", name)
		}
		if seen[p.Name] {
			return nil, errors.WithMessagef(ErrSchema, "tool %q declares parameter %q twice", name, p.Name)
		}
		seen[p.Name] = true
		if !knownTypes[p.Type] {
			return nil, errors.WithMessagef(ErrSchema, "tool %q parameter %q has unsupported type %q", name, p.Name, p.Type)
		}

		if p.Default != nil {
			p.Required = false
		}

		prop := map[string]any{
			"type": string(p.Type),
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties.Set(p.Name, prop)

		if p.Required {
			required = append(required, p.Name)
		}
		specs = append(specs, p)
	}

	// The ordered map keeps properties in declaration order when the
	// schema is serialized for the model.
	parameters := orderedmap.New[string, any]()
	parameters.Set("type", "object")
	parameters.Set("properties", properties)
	if len(required) > 0 {
		parameters.Set("required", required)
	}

	return &Descriptor{
		Name:        name,
		Description: description,
		Parameters:  parameters,
		params:      specs,
	}, nil
}

// FromSchema builds a descriptor around an externally supplied JSON
// schema, typically one advertised by an MCP server. The schema is
// carried verbatim to providers, parameter specs are derived from it on
// a best effort basis for local argument validation.
func FromSchema(name, description string, jsSchema map[string]any) *Descriptor {
	d := &Descriptor{
		Name:        name,
		Description: description,
		Parameters:  jsSchema,
	}

	props, _ := jsSchema["properties"].(map[string]any)
	requiredSet := map[string]bool{}
	if req, ok := jsSchema["required"].([]string); ok {
		for _, r := range req {
			requiredSet[r] = true
		}
	} else if req, ok := jsSchema["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				requiredSet[s] = true
			}
		}
	}

	for pname, raw := range props {
		spec := ParameterSpec{
			Name:     pname,
			Required: requiredSet[pname],
		}
		if prop, ok := raw.(map[string]any); ok {
			if t, ok := prop["type"].(string); ok && knownTypes[Type(t)] {
				spec.Type = Type(t)
			}
			if desc, ok := prop["description"].(string); ok {
				spec.Description = desc
			}
			spec.Default = prop["default"]
		}
		d.params = append(d.params, spec)
	}
	return d
}

// ParameterSpecs returns the parameter specs of the descriptor.
func (d *Descriptor) ParameterSpecs() []ParameterSpec {
	return d.params
}

// Validate checks the model-supplied arguments against the descriptor.
// Missing required parameters, unknown parameters and mismatched value
// types are reported. Parameters without a known type are skipped, the
// tool itself is the final authority on its input.
func (d *Descriptor) Validate(args map[string]any) error {
	known := make(map[string]ParameterSpec, len(d.params))
	for _, p := range d.params {
		known[p.Name] = p
		if p.Required {
			if _, ok := args[p.Name]; !ok {
				return errors.Newf("missing required parameter %q", p.Name)
			}
		}
	}
	if len(d.params) > 0 {
		for name := range args {
			if _, ok := known[name]; !ok {
				return errors.Newf("unknown parameter %q", name)
			}
		}
	}
	for name, val := range args {
		spec, ok := known[name]
		if !ok || val == nil {
			continue
		}
		if err := checkType(spec.Type, val); err != nil {
			return errors.WithMessagef(err, "parameter %q", name)
		}
	}
	return nil
}

func checkType(t Type, val any) error {
	switch t {
	case TypeString:
		if _, ok := val.(string); !ok {
			return errors.Newf("expected string, got %T", val)
		}
	case TypeBoolean:
		if _, ok := val.(bool); !ok {
			return errors.Newf("expected boolean, got %T", val)
		}
	case TypeInteger:
		switch v := val.(type) {
		case int, int32, int64:
		case float64:
			// JSON numbers decode as float64
			if v != math.Trunc(v) {
				return errors.Newf("expected integer, got %v", v)
			}
		default:
			return errors.Newf("expected integer, got %T", val)
		}
	case TypeNumber:
		switch val.(type) {
		case int, int32, int64, float32, float64:
		default:
			return errors.Newf("expected number, got %T", val)
		}
	case TypeArray:
		if _, ok := val.([]any); !ok {
			return errors.Newf("expected array, got %T", val)
		}
	case TypeObject:
		if _, ok := val.(map[string]any); !ok {
			return errors.Newf("expected object, got %T", val)
		}
	}
	return nil
}
