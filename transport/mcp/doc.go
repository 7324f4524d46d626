// Package mcp provides Model Context Protocol server implementation for the
// Grid Rush track server.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for map operations
//   - Stdio transport mode
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - list_maps: List available track maps with validity status
//   - get_map: Fetch a full map config by reference
//   - validate_map: Run schema validation and return the report
//   - map_stats: Summarize a map's geometry
//   - save_map: Write a map config to the map directory
//   - refresh_maps: Drop the server's map cache
//   - map_format_reference: Get the map config format documentation
//
// Architecture:
//
// The MCP server is a thin client that proxies every tool call to the REST
// API, so a single map store serves browsers, editors and agents with
// identical validation behavior.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
