package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gridrush/trackd/track/schema"
	"github.com/gridrush/trackd/track/service"
	"github.com/mark3labs/mcp-go/mcp"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	expectedResponse := map[string]interface{}{
		"count": float64(2),
		"sort":  "name",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall("GET", "/api/maps", nil, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["count"] != expectedResponse["count"] {
		t.Errorf("Expected count %v, got %v", expectedResponse["count"], response["count"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall("GET", "/api/maps", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/maps", nil, nil)
	if err == nil {
		t.Error("Expected error for HTTP 500 response")
	}

	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_apiCall_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "map nope not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/maps/nope", nil, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 404 response")
	}

	if !strings.Contains(err.Error(), "map nope not found") {
		t.Errorf("Expected server error message to surface, got: %v", err)
	}
}

func TestClient_handleListMaps(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/maps" {
			t.Errorf("Expected GET /api/maps, got %s %s", r.Method, r.URL.Path)
		}

		resp := map[string]interface{}{
			"count": 2,
			"maps": []service.MapInfo{
				{MapID: "track-01", Name: "Sunset Loop", Difficulty: "easy", Checkpoints: 3, Spawns: 2, Valid: true},
				{MapID: "broken", Valid: false, Error: "duplicate checkpoint order"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "list_maps",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleListMaps(ctx, request)
	if err != nil {
		t.Fatalf("handleListMaps failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "track-01") || !strings.Contains(resultStr.Text, "Sunset Loop") {
		t.Errorf("Expected map listing in result, got: %s", resultStr.Text)
	}
	if !strings.Contains(resultStr.Text, "INVALID") {
		t.Errorf("Expected invalid map to be flagged, got: %s", resultStr.Text)
	}
}

func TestClient_handleGetMap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/map" {
			t.Errorf("Expected /api/map, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("map") != "maps/track-02.json" {
			t.Errorf("Expected map query parameter, got %s", r.URL.RawQuery)
		}

		cfg := &schema.MapConfig{
			SchemaVersion: schema.CurrentSchemaVersion,
			Metadata:      &schema.Metadata{Name: "Track Two"},
			Spawns:        []schema.Spawn{{X: 10, Y: 10}},
			Checkpoints:   []schema.Checkpoint{{Order: 1}},
			FinishLine:    &schema.FinishLine{Width: 50, Height: 10},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cfg)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "get_map",
			Arguments: map[string]interface{}{"map": "maps/track-02.json"},
		},
	}

	result, err := client.handleGetMap(ctx, request)
	if err != nil {
		t.Fatalf("handleGetMap failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "Track Two") {
		t.Errorf("Expected map config JSON in result, got: %s", resultStr.Text)
	}
}

func TestClient_handleValidateMap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/maps/track-01/validate" {
			t.Errorf("Expected POST /api/maps/track-01/validate, got %s %s", r.Method, r.URL.Path)
		}
		if r.URL.Query().Get("lenient") != "true" {
			t.Errorf("Expected lenient=true, got %s", r.URL.RawQuery)
		}

		report := &schema.Report{Name: "track-01"}
		report.Warnings = append(report.Warnings, schema.Issue{
			Code:    schema.CodeUnresolvedReference,
			Field:   "walls[0].frictionType",
			Message: `unknown friction type "mud", falling back to "asphalt"`,
		})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"valid":  true,
			"report": report,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "validate_map",
			Arguments: map[string]interface{}{
				"map":     "track-01",
				"lenient": true,
			},
		},
	}

	result, err := client.handleValidateMap(ctx, request)
	if err != nil {
		t.Fatalf("handleValidateMap failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	if !strings.Contains(resultStr.Text, "VALID") {
		t.Errorf("Expected validity verdict in result, got: %s", resultStr.Text)
	}
	if !strings.Contains(resultStr.Text, "Warnings (1)") {
		t.Errorf("Expected warning section in result, got: %s", resultStr.Text)
	}
}

func TestClient_handleMapStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stats := &schema.Stats{
			Name:        "Sunset Loop",
			Spawns:      2,
			Checkpoints: 4,
			FirstOrder:  1,
			LastOrder:   4,
			Walls:       7,
			FrictionUsage: map[string]int{
				"asphalt": 5,
				"ice":     2,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "map_stats",
			Arguments: map[string]interface{}{"map": "track-01"},
		},
	}

	result, err := client.handleMapStats(ctx, request)
	if err != nil {
		t.Fatalf("handleMapStats failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	expectedFields := []string{
		"Checkpoints: 4 (orders 1..4)",
		"Walls: 7",
		"asphalt: 5",
		"ice: 2",
	}
	for _, field := range expectedFields {
		if !strings.Contains(resultStr.Text, field) {
			t.Errorf("Expected '%s' in stats output, got: %s", field, resultStr.Text)
		}
	}
}

func TestClient_handleFormatReference(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "map_format_reference",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleFormatReference(ctx, request)
	if err != nil {
		t.Fatalf("handleFormatReference failed: %v", err)
	}

	resultStr, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}

	expectedContent := []string{
		"schemaVersion 1",
		"frictionTypes",
		"bouncers",
		"restoreAmount",
		"duplicate-checkpoint-order",
		"unresolved-reference",
		"GET /api/map?map=maps/track-02.json",
	}

	for _, content := range expectedContent {
		if !strings.Contains(resultStr.Text, content) {
			t.Errorf("Expected '%s' in format reference, got: %s", content, resultStr.Text)
		}
	}
}

func TestFormatReport_Invalid(t *testing.T) {
	report := &schema.Report{Name: "broken"}
	report.Errors = append(report.Errors, schema.Issue{
		Code:    schema.CodeDuplicateOrder,
		Field:   "checkpoints[2].order",
		Message: "order 3 already used",
	})

	result := formatReport("broken", false, report)

	if !strings.Contains(result, "INVALID") {
		t.Errorf("Expected INVALID verdict, got: %s", result)
	}
	if !strings.Contains(result, "Errors (1)") {
		t.Errorf("Expected error section, got: %s", result)
	}
	if !strings.Contains(result, "duplicate-checkpoint-order") {
		t.Errorf("Expected issue code in output, got: %s", result)
	}
}

func TestClient_Integration(t *testing.T) {
	// Verifies the client can be created and initialized without errors
	client := NewClient("http://localhost:8080")

	if client == nil {
		t.Fatal("Failed to create client")
	}

	if client.mcpServer == nil {
		t.Fatal("MCP server not initialized")
	}

	if client.baseURL == "" {
		t.Error("Base URL not set")
	}

	if client.httpClient == nil {
		t.Error("HTTP client not initialized")
	}
}
