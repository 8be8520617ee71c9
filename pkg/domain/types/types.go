package types

// Version is set at build time via ldflags
var Version = "dev"

// ServiceName is used in health responses and MCP server identification
const ServiceName = "gittr-mcp"
