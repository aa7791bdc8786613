package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/MichaelAnckaert/go-agents/pkg/llmutils"
	"github.com/MichaelAnckaert/go-agents/schema"
)

// Handler is the function a Func tool dispatches to. It receives the
// decoded arguments exactly as the model supplied them.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Func adapts a plain function into a tool. The descriptor defines the
// argument schema advertised to the model.
type Func struct {
	desc *schema.Descriptor
	fn   Handler
}

var _ IDescribedTool = (*Func)(nil)

// NewFunc creates a tool from a descriptor and a handler.
func NewFunc(desc *schema.Descriptor, fn Handler) (*Func, error) {
	if desc == nil {
		return nil, errors.WithMessage(schema.ErrSchema, "descriptor is required")
	}
	if fn == nil {
		return nil, errors.Newf("tool %q has no handler", desc.Name)
	}
	return &Func{desc: desc, fn: fn}, nil
}

func (t *Func) Name() string {
	return t.desc.Name
}

func (t *Func) Description() string {
	return t.desc.Description
}

func (t *Func) Parameters() any {
	return t.desc.Parameters
}

func (t *Func) Descriptor() *schema.Descriptor {
	return t.desc
}

// Call decodes the JSON input and dispatches to the handler. Schema
// validation is owned by the registry, which checks described tools
// before dispatch. The result is rendered as a string for the
// conversation.
func (t *Func) Call(ctx context.Context, input string) (string, error) {
	args, err := DecodeArgs(input)
	if err != nil {
		return "", err
	}
	res, err := t.fn(ctx, args)
	if err != nil {
		return "", err
	}
	return StringifyResult(res), nil
}

// Typed adapts a function with a typed input and output into a tool.
// The argument schema is reflected from the input struct.
type Typed[I any, O any] struct {
	desc *schema.Descriptor
	fn   func(context.Context, *I) (*O, error)
}

// NewTyped creates a tool from a typed function. The input struct
// fields become the tool parameters.
func NewTyped[I any, O any](name, description string, fn func(context.Context, *I) (*O, error)) (*Typed[I, O], error) {
	desc, err := schema.Reflect[I](name, description)
	if err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.Newf("tool %q has no handler", name)
	}
	return &Typed[I, O]{desc: desc, fn: fn}, nil
}

var _ IDescribedTool = (*Typed[struct{}, struct{}])(nil)

func (t *Typed[I, O]) Name() string {
	return t.desc.Name
}

func (t *Typed[I, O]) Description() string {
	return t.desc.Description
}

func (t *Typed[I, O]) Parameters() any {
	return t.desc.Parameters
}

func (t *Typed[I, O]) Descriptor() *schema.Descriptor {
	return t.desc
}

func (t *Typed[I, O]) Run(ctx context.Context, in *I) (*O, error) {
	return t.fn(ctx, in)
}

func (t *Typed[I, O]) Call(ctx context.Context, input string) (string, error) {
	var in I
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &in); err != nil {
		return "", errors.WithMessage(err, "failed to unmarshal input")
	}
	res, err := t.fn(ctx, &in)
	if err != nil {
		return "", err
	}
	return StringifyResult(res), nil
}

// DecodeArgs parses a JSON arguments payload. An empty payload means no
// arguments.
func DecodeArgs(input string) (map[string]any, error) {
	if input == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &args); err != nil {
		return nil, errors.WithMessage(err, "failed to unmarshal input")
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// StringifyResult renders a tool result for the conversation. Scalars
// keep their literal form, structures are JSON encoded.
func StringifyResult(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
		return fmt.Sprint(rv.Interface())
	}

	return llmutils.ToJSON(v)
}
