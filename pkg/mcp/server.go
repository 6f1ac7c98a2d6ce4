// Package mcp exposes argument validation to AI agents as MCP tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ormasoftchile/argspec/pkg/validate"
)

// NewServer creates an MCP server with the argspec tools registered. A nil
// validator means validate.New().
func NewServer(version string, v *validate.Validator) *server.MCPServer {
	s := server.NewMCPServer(
		"argspec",
		version,
		server.WithToolCapabilities(true),
	)
	h := &Handlers{Validator: v}
	if h.Validator == nil {
		h.Validator = validate.New()
	}

	s.AddTool(
		mcp.NewTool("argspec/validate",
			mcp.WithDescription("Validate model run arguments against a model spec YAML file"),
			mcp.WithString("spec", mcp.Required(), mcp.Description("Path to the model spec YAML file")),
			mcp.WithObject("args", mcp.Description("Arguments to validate, keyed by args key")),
			mcp.WithString("args_path", mcp.Description("Path to a YAML or JSON args file, used when args is not given")),
		),
		h.HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("argspec/describe",
			mcp.WithDescription("Describe the arguments a model spec declares, as a Markdown table"),
			mcp.WithString("spec", mcp.Required(), mcp.Description("Path to the model spec YAML file")),
		),
		h.HandleDescribe,
	)

	s.AddTool(
		mcp.NewTool("argspec/schema",
			mcp.WithDescription("Export the model spec JSON Schema"),
		),
		h.HandleSchema,
	)

	return s
}
