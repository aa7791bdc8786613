package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAnckaert/go-agents/schema"
)

func Test_NewDescriptor(t *testing.T) {
	d, err := schema.NewDescriptor("get_weather", "Get the current weather for a city.", []schema.ParameterSpec{
		{Name: "city", Type: schema.TypeString, Description: "City name", Required: true},
		{Name: "units", Type: schema.TypeString, Description: "Temperature units", Default: "celsius"},
	})
	require.NoError(t, err)
	assert.Equal(t, "get_weather", d.Name)

	js, err := json.Marshal(d.Parameters)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(js, &parsed))
	assert.Equal(t, "object", parsed["type"])
	assert.Equal(t, []any{"city"}, parsed["required"])

	props := parsed["properties"].(map[string]any)
	units := props["units"].(map[string]any)
	assert.Equal(t, "celsius", units["default"])

	specs := d.ParameterSpecs()
	require.Len(t, specs, 2)
	assert.True(t, specs[0].Required)
	// a parameter with a default is never required
	assert.False(t, specs[1].Required)
}

func Test_NewDescriptor_ParameterOrder(t *testing.T) {
	d, err := schema.NewDescriptor("route", "Plan a route between two places.", []schema.ParameterSpec{
		{Name: "zeta", Type: schema.TypeString, Required: true},
		{Name: "alpha", Type: schema.TypeString},
		{Name: "mid", Type: schema.TypeInteger},
	})
	require.NoError(t, err)

	// properties serialize in declaration order, not key order
	js, err := json.Marshal(d.Parameters)
	require.NoError(t, err)
	assert.Equal(t,
		`{"type":"object","properties":{"zeta":{"type":"string"},"alpha":{"type":"string"},"mid":{"type":"integer"}},"required":["zeta"]}`,
		string(js))

	specs := d.ParameterSpecs()
	require.Len(t, specs, 3)
	assert.Equal(t, "zeta", specs[0].Name)
	assert.Equal(t, "alpha", specs[1].Name)
	assert.Equal(t, "mid", specs[2].Name)
}

func Test_NewDescriptor_Invalid(t *testing.T) {
	_, err := schema.NewDescriptor("tool", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSchema)
	assert.EqualError(t, err, `tool "tool" has no description: invalid tool schema`)

	_, err = schema.NewDescriptor("", "desc", nil)
	assert.ErrorIs(t, err, schema.ErrSchema)

	_, err = schema.NewDescriptor("tool", "desc", []schema.ParameterSpec{
		{Name: "x", Type: "datetime"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSchema)
	assert.EqualError(t, err, `tool "tool" parameter "x" has unsupported type "datetime": invalid tool schema`)

	_, err = schema.NewDescriptor("tool", "desc", []schema.ParameterSpec{
		{Name: "x", Type: schema.TypeString},
		{Name: "x", Type: schema.TypeString},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSchema)
}

func Test_Validate(t *testing.T) {
	d, err := schema.NewDescriptor("add", "Add two numbers.", []schema.ParameterSpec{
		{Name: "a", Type: schema.TypeInteger, Required: true},
		{Name: "b", Type: schema.TypeInteger, Required: true},
		{Name: "note", Type: schema.TypeString},
	})
	require.NoError(t, err)

	// JSON decodes numbers as float64
	assert.NoError(t, d.Validate(map[string]any{"a": float64(7), "b": float64(2)}))
	assert.NoError(t, d.Validate(map[string]any{"a": float64(7), "b": float64(2), "note": "check"}))

	err = d.Validate(map[string]any{"a": float64(7)})
	assert.EqualError(t, err, `missing required parameter "b"`)

	err = d.Validate(map[string]any{"a": float64(7), "b": float64(2), "oops": true})
	assert.EqualError(t, err, `unknown parameter "oops"`)

	err = d.Validate(map[string]any{"a": "seven", "b": float64(2)})
	assert.EqualError(t, err, `parameter "a": expected integer, got string`)

	err = d.Validate(map[string]any{"a": 7.5, "b": float64(2)})
	assert.EqualError(t, err, `parameter "a": expected integer, got 7.5`)
}

func Test_FromSchema(t *testing.T) {
	d := schema.FromSchema("search", "Search the knowledge base.", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Search query",
			},
			"limit": map[string]any{
				"type":    "integer",
				"default": float64(10),
			},
		},
		"required": []any{"query"},
	})

	specs := map[string]schema.ParameterSpec{}
	for _, p := range d.ParameterSpecs() {
		specs[p.Name] = p
	}
	require.Len(t, specs, 2)
	assert.True(t, specs["query"].Required)
	assert.Equal(t, schema.TypeString, specs["query"].Type)
	assert.False(t, specs["limit"].Required)

	assert.NoError(t, d.Validate(map[string]any{"query": "go agents"}))
	assert.Error(t, d.Validate(map[string]any{"limit": float64(5)}))
}

type searchInput struct {
	Query string `json:"query" jsonschema:"description=Search query"`
	Limit int    `json:"limit,omitempty" jsonschema:"description=Maximum results"`
}

func Test_Reflect(t *testing.T) {
	d, err := schema.Reflect[searchInput]("search", "Search the knowledge base.")
	require.NoError(t, err)
	assert.Equal(t, "search", d.Name)

	js, err := json.Marshal(d.Parameters)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(js, &parsed))
	assert.Equal(t, "object", parsed["type"])

	props := parsed["properties"].(map[string]any)
	require.Contains(t, props, "query")
	require.Contains(t, props, "limit")
	query := props["query"].(map[string]any)
	assert.Equal(t, "string", query["type"])
	assert.Equal(t, "Search query", query["description"])

	_, err = schema.Reflect[searchInput]("search", "")
	assert.ErrorIs(t, err, schema.ErrSchema)
}
