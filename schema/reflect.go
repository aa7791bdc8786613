package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	cache   = make(map[reflect.Type]*jsonschema.Schema)
	cacheMu sync.Mutex
)

// Reflect derives a descriptor from a Go struct type. Field names,
// types and `jsonschema` tags become the parameter schema. Nested
// struct and slice references are flattened so providers receive a
// self-contained schema.
func Reflect[T any](name, description string) (*Descriptor, error) {
	if name == "" {
		return nil, errors.WithMessage(ErrSchema, "tool name is required")
	}
	if description == "" {
		return nil, errors.WithMessagef(ErrSchema, "tool %q has no description", name)
	}

	t := reflect.TypeOf((*T)(nil)).Elem()
	funcDef, err := functionSchema(t)
	if err != nil {
		return nil, errors.WithMessagef(err, "tool %q", name)
	}

	d := &Descriptor{
		Name:        name,
		Description: description,
		Parameters:  funcDef,
	}

	requiredSet := map[string]bool{}
	for _, r := range funcDef.Required {
		requiredSet[r] = true
	}
	if funcDef.Properties != nil {
		for pair := funcDef.Properties.Oldest(); pair != nil; pair = pair.Next() {
			spec := ParameterSpec{
				Name:        pair.Key,
				Description: pair.Value.Description,
				Required:    requiredSet[pair.Key],
				Default:     pair.Value.Default,
			}
			if knownTypes[Type(pair.Value.Type)] {
				spec.Type = Type(pair.Value.Type)
			}
			d.params = append(d.params, spec)
		}
	}
	return d, nil
}

func functionSchema(t reflect.Type) (*jsonschema.Schema, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s, nil
	}

	if t.Kind() != reflect.Struct {
		return nil, errors.Newf("expected struct type, got %s", t.Kind())
	}

	s, err := toFunctionSchema(jsonSchema(t))
	if err != nil {
		return nil, err
	}
	cache[t] = s
	return s, nil
}

// toFunctionSchema lifts the root definition out of the reflected
// schema and inlines all $defs references, producing the flat object
// schema the function-calling APIs expect.
func toFunctionSchema(tSchema *jsonschema.Schema) (*jsonschema.Schema, error) {
	refID := strings.TrimPrefix(tSchema.Ref, "#/$defs/")

	defs := make(map[string]*jsonschema.Schema)
	root := tSchema

	for name, def := range tSchema.Definitions {
		if name == refID {
			root = def
		} else {
			defs[name] = def
		}
	}

	res := &jsonschema.Schema{
		Type:       root.Type,
		Properties: root.Properties,
		Required:   root.Required,
	}

	if err := resolveRefs(res.Properties, defs); err != nil {
		return nil, err
	}
	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	if props == nil {
		return nil
	}
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		if child.Ref != "" {
			name := strings.TrimPrefix(child.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Newf("unresolved schema reference %q", child.Ref)
			}
			pair.Value = def
			child = def
		}
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
		if child.Items != nil && child.Items.Ref != "" {
			name := strings.TrimPrefix(child.Items.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Newf("unresolved schema reference %q", child.Items.Ref)
			}
			child.Items = def
		}
	}
	return nil
}

// jsonSchema reflects the json schema of the given type.
func jsonSchema(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)

	// Struct names can collide across packages, which breaks $ref
	// resolution. Hash the full package path into the definition name.
	// See https://github.com/invopop/jsonschema/issues/42
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}

	return r.ReflectFromType(t)
}

// FromAny converts any JSON-shaped value into a schema.
func FromAny(t any) (*jsonschema.Schema, error) {
	js, err := json.Marshal(t)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s := &jsonschema.Schema{}
	if err := json.Unmarshal(js, s); err != nil {
		return nil, errors.WithStack(err)
	}
	return s, nil
}
