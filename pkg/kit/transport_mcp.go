package kit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPDecoder builds an endpoint request from MCP tool arguments.
type MCPDecoder func(args map[string]any) (any, error)

// RegisterMCPTool exposes endpoint as an MCP tool. Decode and endpoint errors
// become tool errors (isError results, not protocol errors); a successful
// response is returned as JSON text.
func RegisterMCPTool(srv *server.MCPServer, tool mcp.Tool, endpoint Endpoint, decode MCPDecoder) {
	srv.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		request, err := decode(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		resp, err := endpoint(ctx, request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode %s result: %v", tool.Name, err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

// StringArg reads an optional string argument.
func StringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

// BoolArg reads an optional boolean argument. Absent or mistyped values
// leave *dst unchanged so callers can pre-fill defaults.
func BoolArg(args map[string]any, name string, dst *bool) {
	if v, ok := args[name].(bool); ok {
		*dst = v
	}
}
