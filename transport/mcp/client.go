package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gridrush/trackd/track/schema"
	"github.com/gridrush/trackd/track/service"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Rush Track Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Rush Track Server - MCP Interface

This is a thin client that proxies all requests to the REST API server.

PURPOSE:
Inspect, validate and edit race track map configs (JSON documents) used by
the Grid Rush browser game.

AVAILABLE TOOLS:
- list_maps: List available maps with validity status
- get_map: Fetch a full map config (normalized, defaults applied)
- validate_map: Validate a map and get the full error/warning report
- map_stats: Geometry summary (checkpoints, obstacles, friction usage)
- save_map: Write a map config (rejected if it fails validation)
- refresh_maps: Drop the server's map cache after editing files on disk
- map_format_reference: Get the map config format documentation

NOTE: validation reports carry machine-readable issue codes
(required-field-missing, unresolved-reference, duplicate-checkpoint-order,
unsupported-schema-version, invalid-value) plus the JSON path of each
offending field.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_maps",
		Description: "List all available track maps, including invalid files with their load error",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"difficulty": map[string]interface{}{
					"type":        "string",
					"description": "Only show maps with this difficulty (optional)",
				},
			},
		},
	}, c.handleListMaps)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_map",
		Description: "Fetch a full map config by reference, e.g. 'track-02' or 'maps/track-02.json'",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map": map[string]interface{}{
					"type":        "string",
					"description": "Map reference; omit to get the server's default map",
				},
			},
		},
	}, c.handleGetMap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "validate_map",
		Description: "Validate a map config and return the full issue report",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map": map[string]interface{}{
					"type":        "string",
					"description": "Map name to validate",
				},
				"lenient": map[string]interface{}{
					"type":        "boolean",
					"description": "Downgrade unresolved friction references to warnings and fall back to the default type",
				},
			},
			Required: []string{"map"},
		},
	}, c.handleValidateMap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "map_stats",
		Description: "Summarize a map's geometry: spawns, checkpoints, obstacles, friction usage",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map": map[string]interface{}{
					"type":        "string",
					"description": "Map name",
				},
			},
			Required: []string{"map"},
		},
	}, c.handleMapStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_map",
		Description: "Write a map config to the map directory. The config must pass strict validation.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"map": map[string]interface{}{
					"type":        "string",
					"description": "Map name to save under (without .json)",
				},
				"config": map[string]interface{}{
					"type":        "object",
					"description": "The full map config document",
				},
			},
			Required: []string{"map", "config"},
		},
	}, c.handleSaveMap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "refresh_maps",
		Description: "Drop the server's map cache so edited files are re-read from disk",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleRefreshMaps)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "map_format_reference",
		Description: "Get the map config format documentation: sections, defaults, legacy aliases and issue codes",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleFormatReference)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	difficulty, _ := args["difficulty"].(string)

	path := "/api/maps"
	if difficulty != "" {
		path += "?difficulty=" + difficulty
	}

	var response struct {
		Count int               `json:"count"`
		Maps  []service.MapInfo `json:"maps"`
	}
	if err := c.apiCall("GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Available Maps (%d):\n\n", response.Count)
	for _, m := range response.Maps {
		if m.Valid {
			result += fmt.Sprintf("- %s: %s (difficulty: %s, checkpoints: %d, spawns: %d)\n",
				m.MapID, m.Name, orDash(m.Difficulty), m.Checkpoints, m.Spawns)
		} else {
			result += fmt.Sprintf("- %s: INVALID (%s)\n", m.MapID, m.Error)
		}
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	ref, _ := args["map"].(string)

	path := "/api/map"
	if ref != "" {
		path += "?map=" + ref
	}

	var cfg schema.MapConfig
	if err := c.apiCall("GET", path, nil, &cfg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.MarshalIndent(&cfg, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (c *Client) handleValidateMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	mapName, _ := args["map"].(string)
	lenient, _ := args["lenient"].(bool)

	path := fmt.Sprintf("/api/maps/%s/validate", mapName)
	if lenient {
		path += "?lenient=true"
	}

	var response struct {
		Valid  bool           `json:"valid"`
		Report *schema.Report `json:"report"`
	}
	if err := c.apiCall("POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReport(mapName, response.Valid, response.Report)), nil
}

func (c *Client) handleMapStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	mapName, _ := args["map"].(string)

	var stats schema.Stats
	if err := c.apiCall("GET", fmt.Sprintf("/api/maps/%s/stats", mapName), nil, &stats); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStats(mapName, &stats)), nil
}

func (c *Client) handleSaveMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	mapName, _ := args["map"].(string)
	config, ok := args["config"].(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("config must be a JSON object"), nil
	}

	var response map[string]interface{}
	if err := c.apiCall("PUT", fmt.Sprintf("/api/maps/%s", mapName), config, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Saved map %q", mapName)), nil
}

func (c *Client) handleRefreshMaps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := c.apiCall("POST", "/api/refresh", nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Map cache refreshed"), nil
}

func (c *Client) handleFormatReference(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reference := `Grid Rush Map Config Format (schemaVersion 1)

TOP-LEVEL SECTIONS:
- schemaVersion (required): must be 1
- metadata (required): name, author, description, difficulty, version
- world: width/height in world units (default 2048x2048), backgroundColor
- frictionTypes: named materials {grip, drag, color}; "asphalt" is always
  available as the built-in default
- spawns (required, non-empty): {x, y, angleDegrees}
- groundSegments: rectangles with a required frictionType reference
- walls: impassable rectangles, optional frictionType
- obstacles: circular blockers {x, y, radius}, optional frictionType
- dizzyObstacles: {x, y, radius, dizzyDurationSeconds (default 3),
  color (default #a855f7)}
- bounceElements: {x, y, radius, strength}; legacy key "bouncers" accepted
- staminaPickups: {x, y, staminaRestoreAmount}; legacy key "restoreAmount"
  accepted
- checkpoints (required, non-empty): ordered gates; order values must be
  unique within a map
- finishLine (required): {x, y, width, height}

NORMALIZATION:
Numeric fields are clamped into safe ranges rather than rejected (world
size, grip/drag, radii, durations, strengths, restore amounts). Spawn
angles are normalized into [0, 360).

VALIDATION ISSUE CODES:
- unsupported-schema-version: schemaVersion != 1
- required-field-missing: a required section or field is absent
- duplicate-checkpoint-order: two checkpoints share an order value
- unresolved-reference: geometry names an unknown frictionType (lenient
  mode rewrites it to "asphalt" and reports a warning instead)
- invalid-value: a field value is structurally unusable

MAP SELECTION:
The game client loads maps via GET /api/map?map=maps/track-02.json.`

	return mcp.NewToolResultText(reference), nil
}

// Formatting helpers

func formatReport(mapName string, valid bool, report *schema.Report) string {
	var b strings.Builder
	if valid {
		fmt.Fprintf(&b, "Map %q is VALID\n", mapName)
	} else {
		fmt.Fprintf(&b, "Map %q is INVALID\n", mapName)
	}

	if report == nil {
		return b.String()
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors (%d):\n", len(report.Errors))
		for _, iss := range report.Errors {
			fmt.Fprintf(&b, "  - %s\n", iss.String())
		}
	}
	if len(report.Warnings) > 0 {
		fmt.Fprintf(&b, "\nWarnings (%d):\n", len(report.Warnings))
		for _, iss := range report.Warnings {
			fmt.Fprintf(&b, "  - %s\n", iss.String())
		}
	}

	return b.String()
}

func formatStats(mapName string, stats *schema.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Map: %s", mapName)
	if stats.Name != "" && stats.Name != mapName {
		fmt.Fprintf(&b, " (%s)", stats.Name)
	}
	b.WriteString("\n")
	if stats.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty: %s\n", stats.Difficulty)
	}
	fmt.Fprintf(&b, "Spawns: %d\n", stats.Spawns)
	fmt.Fprintf(&b, "Checkpoints: %d (orders %d..%d)\n", stats.Checkpoints, stats.FirstOrder, stats.LastOrder)
	fmt.Fprintf(&b, "Ground segments: %d\n", stats.GroundSegments)
	fmt.Fprintf(&b, "Walls: %d\n", stats.Walls)
	fmt.Fprintf(&b, "Obstacles: %d (dizzy: %d, bounce: %d)\n",
		stats.Obstacles, stats.DizzyObstacles, stats.BounceElements)
	fmt.Fprintf(&b, "Stamina pickups: %d\n", stats.StaminaPickups)

	if len(stats.FrictionUsage) > 0 {
		names := make([]string, 0, len(stats.FrictionUsage))
		for name := range stats.FrictionUsage {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("Friction usage:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %s: %d\n", name, stats.FrictionUsage[name])
		}
	}

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
