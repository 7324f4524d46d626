// Package api provides the HTTP REST API for the Grid Rush track server.
//
// The api package implements:
//   - Map listing, retrieval, saving and dry-run validation
//   - The game client's map selection interface (?map=maps/track-02.json)
//   - Map statistics for editor tooling
//   - WebSocket upgrade handling for live map-reload events
//   - Static file serving for the browser client
//
// Endpoints:
//
// Maps:
//   - GET  /api/maps                 - List maps (difficulty/sort/order/limit query params)
//   - GET  /api/maps/{name}          - Get the full validated map document
//   - PUT  /api/maps/{name}          - Validate and save a map document
//   - POST /api/maps                 - Save; map name derived from metadata.name
//   - POST /api/maps/{name}/validate - Dry-run validation (?lenient=1)
//   - GET  /api/maps/{name}/stats    - Geometry and friction usage statistics
//   - POST /api/refresh              - Drop the map cache and re-read from disk
//
// Map selection (used by the browser client):
//   - GET /api/map?map=maps/track-02.json - Resolve and return the selected
//     map; without the query parameter the server default map is returned
//
// Misc:
//   - GET /healthz     - Health check
//   - GET /ws?map=name - WebSocket subscription for map reload events
//   - /                - Static files for the game client
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Validation failures respond with
// HTTP 400 and carry the full issue report:
//
//	{
//	  "error": "map config validation failed: ...",
//	  "report": {"errors": [{"code": "unresolved-reference", ...}]}
//	}
package api
