package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedAppName := "Grid Rush Track Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	dir := t.TempDir()
	mapJSON := `{
		"schemaVersion": 1,
		"metadata": {"name": "Test Track"},
		"spawns": [{"x": 100, "y": 100}],
		"checkpoints": [{"order": 1, "x": 200, "y": 200, "width": 50, "height": 10}],
		"finishLine": {"x": 300, "y": 200, "width": 50, "height": 10}
	}`
	if err := os.WriteFile(filepath.Join(dir, "track-01.json"), []byte(mapJSON), 0644); err != nil {
		t.Fatalf("Failed to write test map: %v", err)
	}

	originalMapsDir := *mapsDir
	*mapsDir = dir
	defer func() { *mapsDir = originalMapsDir }()

	mapService, mapStore, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	if mapService == nil {
		t.Fatal("Expected map service to be initialized")
	}
	if mapStore == nil {
		t.Fatal("Expected map store to be initialized")
	}
	if mapStore.Count() == 0 {
		t.Error("Expected map store to cache the test map")
	}
}

func TestInitializeServices_InvalidMapsDir(t *testing.T) {
	originalMapsDir := *mapsDir
	*mapsDir = "/non/existent/path"
	defer func() { *mapsDir = originalMapsDir }()

	_, _, err := initializeServices()
	if err == nil {
		t.Error("Expected error for non-existent map directory")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port != 8080 {
		t.Errorf("Expected default port 8080, got %d", *port)
	}
	if *host != "localhost" {
		t.Errorf("Expected default host localhost, got %s", *host)
	}
	if *lenient {
		t.Error("Expected lenient validation to default to off")
	}
	if *debug {
		t.Error("Expected debug logging to default to off")
	}
}

func TestGetMapsDirDefault(t *testing.T) {
	original, had := os.LookupEnv("MAPS_DIR")
	defer func() {
		if had {
			os.Setenv("MAPS_DIR", original)
		} else {
			os.Unsetenv("MAPS_DIR")
		}
	}()

	os.Unsetenv("MAPS_DIR")
	if got := getMapsDirDefault(); got != "maps" {
		t.Errorf("Expected default 'maps', got %s", got)
	}

	os.Setenv("MAPS_DIR", "/tmp/tracks")
	if got := getMapsDirDefault(); got != "/tmp/tracks" {
		t.Errorf("Expected MAPS_DIR override, got %s", got)
	}
}
