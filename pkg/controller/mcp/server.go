// Package mcp serves the tool registry over MCP stdio, the transport agent
// runtimes attach to directly.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/arbadacarbaYK/gittr-mcp/pkg/controller/toolset"
	"github.com/arbadacarbaYK/gittr-mcp/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps an MCP server whose tools mirror the registry one-to-one.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer registers every registry tool on a fresh MCP server.
func NewServer(registry *toolset.Registry) (*Server, error) {
	s := server.NewMCPServer(types.ServiceName, types.Version,
		server.WithToolCapabilities(true),
	)

	for _, tool := range registry.Tools() {
		schema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode tool schema", goerr.V("tool", tool.Name))
		}
		s.AddTool(
			mcp.NewToolWithRawSchema(tool.Name, tool.Description, schema),
			makeHandler(registry, tool.Name),
		)
	}

	return &Server{mcpServer: s}, nil
}

// makeHandler adapts one registry entry to the MCP tool call signature. Both
// success and failure become a JSON text result; errors additionally set the
// MCP error flag so agents can branch without parsing.
func makeHandler(registry *toolset.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := registry.Execute(ctx, name, req.GetArguments())
		if err != nil {
			ctxlog.From(ctx).Warn("tool call failed", "tool", name, "error", err)
			payload, encErr := json.Marshal(toolset.ErrorPayload(err))
			if encErr != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultError(string(payload)), nil
		}

		payload, err := json.Marshal(map[string]any{
			"success": true,
			"result":  result,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode tool result", goerr.V("tool", name))
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

// Serve runs the stdio loop until stdin closes.
func (s *Server) Serve() error {
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return goerr.Wrap(err, "mcp stdio server failed")
	}
	return nil
}
