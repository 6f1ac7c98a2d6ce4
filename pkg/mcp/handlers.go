package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/argspec/pkg/report"
	"github.com/ormasoftchile/argspec/pkg/spec"
	"github.com/ormasoftchile/argspec/pkg/validate"
)

// Handlers implements the argspec MCP tools.
type Handlers struct {
	Validator *validate.Validator
}

// HandleValidate implements the argspec/validate MCP tool. Invalid
// arguments are a successful call whose report lists the warnings.
func (h *Handlers) HandleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	specPath, _ := args["spec"].(string)
	if specPath == "" {
		return errorResult("spec argument is required"), nil
	}
	ms, err := spec.LoadFile(specPath)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	var values map[string]any
	argsPath, _ := args["args_path"].(string)
	switch raw := args["args"].(type) {
	case map[string]any:
		values = raw
	case nil:
		if argsPath == "" {
			return errorResult("either args or args_path is required"), nil
		}
		values, err = spec.LoadArgsFile(argsPath)
		if err != nil {
			return errorResult(err.Error()), nil
		}
	default:
		return errorResult(fmt.Sprintf("args must be an object, got %T", raw)), nil
	}

	warnings, err := h.Validator.Validate(ctx, values, &ms.Args)
	if err != nil {
		var cfgErr *spec.ConfigError
		if errors.As(err, &cfgErr) {
			return errorResult(fmt.Sprintf("model spec %s is invalid: %s", specPath, cfgErr)), nil
		}
		return errorResult(err.Error()), nil
	}

	data, err := json.MarshalIndent(report.New(ms.ModelName, argsPath, warnings), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return textResult(string(data)), nil
}

// HandleDescribe implements the argspec/describe MCP tool.
func (h *Handlers) HandleDescribe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	specPath := req.GetString("spec", "")
	if specPath == "" {
		return errorResult("spec argument is required"), nil
	}
	ms, err := spec.LoadFile(specPath)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(report.Describe(ms)), nil
}

// HandleSchema implements the argspec/schema MCP tool.
func (h *Handlers) HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := spec.GenerateJSONSchema()
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
