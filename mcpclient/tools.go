package mcpclient

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MichaelAnckaert/go-agents/schema"
	"github.com/MichaelAnckaert/go-agents/tools"
)

// remoteTool adapts a tool advertised by an MCP server to the ITool
// interface. The server's input schema is carried to the model verbatim.
type remoteTool struct {
	client *Client
	desc   *schema.Descriptor
}

var _ tools.IDescribedTool = (*remoteTool)(nil)

// NewTool wraps a server-advertised tool so it can be registered
// alongside local tools.
func NewTool(c *Client, t mcp.Tool) (tools.ITool, error) {
	js, err := json.Marshal(t.InputSchema)
	if err != nil {
		return nil, errors.Wrapf(err, "mcp: invalid input schema for tool %q", t.Name)
	}
	var params map[string]any
	if err := json.Unmarshal(js, &params); err != nil {
		return nil, errors.Wrapf(err, "mcp: invalid input schema for tool %q", t.Name)
	}

	return &remoteTool{
		client: c,
		desc:   schema.FromSchema(t.Name, t.Description, params),
	}, nil
}

func (t *remoteTool) Name() string {
	return t.desc.Name
}

func (t *remoteTool) Description() string {
	return t.desc.Description
}

func (t *remoteTool) Parameters() any {
	return t.desc.Parameters
}

func (t *remoteTool) Descriptor() *schema.Descriptor {
	return t.desc
}

func (t *remoteTool) Call(ctx context.Context, input string) (string, error) {
	args, err := tools.DecodeArgs(input)
	if err != nil {
		return "", err
	}
	return t.client.CallTool(ctx, t.desc.Name, args)
}

// RegisterTools lists the server's tools and registers each with the
// registry, in the order the server advertises them.
func RegisterTools(ctx context.Context, c *Client, reg *tools.Registry) error {
	list, err := c.ListTools(ctx)
	if err != nil {
		return err
	}
	for _, t := range list {
		tool, err := NewTool(c, t)
		if err != nil {
			return err
		}
		if err := reg.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
