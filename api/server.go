package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gridrush/trackd/track/schema"
	"github.com/gridrush/trackd/track/service"
	"github.com/gridrush/trackd/transport/websocket"
)

// Server represents the REST API server.
type Server struct {
	service   service.MapService
	hub       *websocket.Hub
	router    *mux.Router
	staticDir string
}

// NewServer creates a new API server.
func NewServer(mapService service.MapService, hub *websocket.Hub) *Server {
	s := &Server{
		service:   mapService,
		hub:       hub,
		router:    mux.NewRouter(),
		staticDir: "./static/",
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Map selection used by the browser client (must be before /maps routes
	// so "map" is not swallowed by the {name} pattern)
	api.HandleFunc("/map", s.handleSelectMap).Methods("GET")

	// Map management
	api.HandleFunc("/maps", s.handleListMaps).Methods("GET")
	api.HandleFunc("/maps", s.handleCreateMap).Methods("POST")
	api.HandleFunc("/maps/{name}", s.handleGetMap).Methods("GET")
	api.HandleFunc("/maps/{name}", s.handleSaveMap).Methods("PUT")
	api.HandleFunc("/maps/{name}/validate", s.handleValidateMap).Methods("POST")
	api.HandleFunc("/maps/{name}/stats", s.handleMapStats).Methods("GET")

	// Cache control
	api.HandleFunc("/refresh", s.handleRefresh).Methods("POST")

	// Health and WebSocket
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files for the game client
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors onto HTTP statuses and attaches
// the validation report when one is available.
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  err.Error(),
			"report": verr.Report,
		})
		return
	}
	if errors.Is(err, service.ErrMapNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if strings.Contains(err.Error(), "invalid map reference") ||
		strings.Contains(err.Error(), "invalid map config") {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// Map Handlers

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	maps, err := s.service.ListMaps(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")   // "name", "checkpoints" (default: "name")
	order := query.Get("order")   // "asc" (default), "desc"
	limitStr := query.Get("limit")

	if difficulty := query.Get("difficulty"); difficulty != "" {
		filtered := maps[:0]
		for _, m := range maps {
			if m.Difficulty == difficulty {
				filtered = append(filtered, m)
			}
		}
		maps = filtered
	}

	if sortBy == "" {
		sortBy = "name"
	}
	if order == "" {
		order = "asc"
	}

	sort.Slice(maps, func(i, j int) bool {
		var less bool
		if sortBy == "checkpoints" {
			less = maps[i].Checkpoints < maps[j].Checkpoints
		} else {
			less = maps[i].MapID < maps[j].MapID
		}
		if order == "desc" {
			return !less
		}
		return less
	})

	limit := len(maps)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(maps) {
			limit = l
		}
	}
	maps = maps[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(maps),
		"maps":  maps,
		"sort":  sortBy,
		"order": order,
	})
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mapName := vars["name"]

	cfg, err := s.service.GetMap(r.Context(), mapName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

// handleSelectMap implements the game client's map selection interface:
// GET /api/map?map=maps/track-02.json. Without the parameter the server's
// default map is returned.
func (s *Server) handleSelectMap(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("map")

	var (
		cfg *schema.MapConfig
		err error
	)
	if ref == "" {
		cfg, err = s.service.DefaultMap(r.Context())
	} else {
		cfg, err = s.service.GetMap(r.Context(), ref)
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleSaveMap(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mapName := vars["name"]

	var cfg schema.MapConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.SaveMap(r.Context(), mapName, &cfg); err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastMapEvent(strings.TrimSuffix(mapName, ".json"), websocket.EventMapUpdated, nil)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Map saved successfully",
		"map_id":  strings.TrimSuffix(mapName, ".json"),
	})
}

// handleCreateMap saves a map whose name is derived from metadata.name.
func (s *Server) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	var cfg schema.MapConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if cfg.Metadata == nil || cfg.Metadata.Name == "" {
		respondError(w, http.StatusBadRequest, "metadata.name is required")
		return
	}
	mapID := slugify(cfg.Metadata.Name)

	if err := s.service.SaveMap(r.Context(), mapID, &cfg); err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastMapEvent(mapID, websocket.EventMapUpdated, nil)
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Map saved successfully",
		"map_id":  mapID,
	})
}

func (s *Server) handleValidateMap(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mapName := vars["name"]
	lenient := isTruthy(r.URL.Query().Get("lenient"))

	report, err := s.service.ValidateMap(r.Context(), mapName, lenient)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Compact server log for observability
	status := "OK"
	if !report.Valid() {
		status = "FAIL"
	}
	log.Printf("[VALIDATE] map=%s lenient=%t errors=%d warnings=%d status=%s",
		mapName, lenient, len(report.Errors), len(report.Warnings), status)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  report.Valid(),
		"report": report,
	})
}

func (s *Server) handleMapStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mapName := vars["name"]

	stats, err := s.service.MapStats(r.Context(), mapName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RefreshMaps(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Map cache refreshed"})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("map")
	if ref == "" {
		http.Error(w, "map parameter required", http.StatusBadRequest)
		return
	}

	// Verify the map exists before upgrading
	if _, err := s.service.GetMap(r.Context(), ref); err != nil {
		http.Error(w, "Invalid map", http.StatusNotFound)
		return
	}

	// Subscribe under the bare map name so watcher events match
	mapName := strings.TrimSuffix(path.Base(ref), ".json")
	s.hub.ServeWS(w, r, mapName)
}

// Health check

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// slugify turns a display name into a filesystem-friendly map ID.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
