package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gridrush/trackd/track/schema"
	"github.com/gridrush/trackd/track/service"
)

var (
	// ErrMapNotFound aliases the service sentinel so both packages match.
	ErrMapNotFound = service.ErrMapNotFound

	ErrInvalidMap = errors.New("invalid map config")
	ErrBadMapRef  = errors.New("invalid map reference")
)

// defaultMapName is tried first when selecting the startup map.
const defaultMapName = "track-01"

// Store handles map config loading, caching and saving.
type Store struct {
	dir        string
	opts       schema.Options
	mu         sync.RWMutex
	maps       map[string]*schema.MapConfig
	defaultMap *schema.MapConfig
}

// NewStore creates a map store over an existing directory.
func NewStore(dir string, opts schema.Options) (*Store, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("map directory does not exist: %s", dir)
	}

	s := &Store{
		dir:  dir,
		opts: opts,
		maps: make(map[string]*schema.MapConfig),
	}

	if err := s.loadDefaultMap(); err != nil {
		return nil, fmt.Errorf("failed to select default map: %w", err)
	}
	return s, nil
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string { return s.dir }

// Resolve turns a map reference into a canonical map name. References may
// be bare names ("track-02"), filenames ("track-02.json"), or the client's
// query form ("maps/track-02.json" where "maps" is the store directory).
// Anything that would escape the map directory is rejected.
func (s *Store) Resolve(ref string) (string, error) {
	name := strings.TrimSpace(ref)
	name = strings.TrimPrefix(name, "./")
	if base := filepath.Base(s.dir); base != "." && base != "/" {
		name = strings.TrimPrefix(name, base+"/")
	}
	name = strings.TrimSuffix(name, ".json")

	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrBadMapRef, ref)
	}
	return name, nil
}

// Load returns the parsed and validated map by name, reading it from disk
// on first access and caching it afterwards.
func (s *Store) Load(name string) (*schema.MapConfig, error) {
	s.mu.RLock()
	if cfg, ok := s.maps[name]; ok {
		s.mu.RUnlock()
		return cfg, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock.
	if cfg, ok := s.maps[name]; ok {
		return cfg, nil
	}

	cfg, err := s.loadFromDisk(name)
	if err != nil {
		return nil, err
	}

	s.maps[name] = cfg
	return cfg, nil
}

// loadFromDisk reads and parses a single map file. Callers hold s.mu.
func (s *Store) loadFromDisk(name string) (*schema.MapConfig, error) {
	path := filepath.Join(s.dir, name+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMapNotFound
		}
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	cfg, _, err := schema.Parse(data, s.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMap, err)
	}
	return cfg, nil
}

// List scans the map directory and returns summary info for every *.json
// file. Files that fail to parse or validate are included with Valid=false.
func (s *Store) List() ([]*service.MapInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read map directory: %w", err)
	}

	var infos []*service.MapInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")

		info := &service.MapInfo{
			Filename: entry.Name(),
			MapID:    name,
		}
		cfg, err := s.Load(name)
		if err != nil {
			info.Error = err.Error()
			infos = append(infos, info)
			continue
		}

		info.Valid = true
		info.Checkpoints = len(cfg.Checkpoints)
		info.Spawns = len(cfg.Spawns)
		if cfg.Metadata != nil {
			info.Name = cfg.Metadata.Name
			info.Author = cfg.Metadata.Author
			info.Difficulty = cfg.Metadata.Difficulty
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Save validates a map and writes it to disk as indented JSON, updating the
// cache on success.
func (s *Store) Save(name string, cfg *schema.MapConfig) error {
	schema.Normalize(cfg)
	if report := schema.Validate(cfg, s.opts); !report.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidMap, &schema.ValidationError{Report: report})
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal map config: %w", err)
	}

	path := filepath.Join(s.dir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write map file: %w", err)
	}

	s.mu.Lock()
	s.maps[name] = cfg
	s.mu.Unlock()
	return nil
}

// Validate runs a dry-run validation pass over the stored file without
// touching the cache. The report is returned even when the map is invalid;
// the error is reserved for read failures.
func (s *Store) Validate(name string, opts schema.Options) (*schema.Report, error) {
	path := filepath.Join(s.dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMapNotFound
		}
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	_, report, err := schema.Parse(data, opts)
	if err != nil && report == nil {
		// Decode failure: synthesize a report so callers always get one.
		report = &schema.Report{Name: name}
		report.Errors = append(report.Errors, schema.Issue{
			Code:    schema.CodeInvalidValue,
			Field:   "(document)",
			Message: err.Error(),
		})
	}
	report.Name = name
	return report, nil
}

// Refresh clears the cache and reselects the default map.
func (s *Store) Refresh() error {
	s.mu.Lock()
	s.maps = make(map[string]*schema.MapConfig)
	s.mu.Unlock()
	return s.loadDefaultMap()
}

// Evict drops a single map from the cache. The watcher calls this when the
// underlying file changes or disappears.
func (s *Store) Evict(name string) {
	s.mu.Lock()
	delete(s.maps, name)
	s.mu.Unlock()
}

// Default returns the startup map.
func (s *Store) Default() *schema.MapConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultMap
}

// SetDefault selects the default map by name.
func (s *Store) SetDefault(name string) error {
	cfg, err := s.Load(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.defaultMap = cfg
	s.mu.Unlock()
	return nil
}

// Count reports how many maps are currently cached.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.maps)
}

// loadDefaultMap picks track-01 when present, otherwise the first valid map
// on disk, otherwise the built-in oval.
func (s *Store) loadDefaultMap() error {
	cfg, err := s.Load(defaultMapName)
	if err != nil {
		infos, listErr := s.List()
		if listErr != nil {
			return listErr
		}
		cfg = nil
		for _, info := range infos {
			if !info.Valid {
				continue
			}
			if loaded, loadErr := s.Load(info.MapID); loadErr == nil {
				cfg = loaded
				break
			}
		}
		if cfg == nil {
			cfg = builtinMap()
		}
	}

	s.mu.Lock()
	s.defaultMap = cfg
	s.mu.Unlock()
	return nil
}

// builtinMap is a minimal valid oval used when the map directory holds no
// loadable maps.
func builtinMap() *schema.MapConfig {
	cfg := &schema.MapConfig{
		SchemaVersion: schema.CurrentSchemaVersion,
		Metadata: &schema.Metadata{
			Name:        "Fallback Oval",
			Description: "Built-in map used when no map files are available",
			Difficulty:  "easy",
		},
		Spawns: []schema.Spawn{
			{X: 200, Y: 520, AngleDegrees: 0},
			{X: 200, Y: 560, AngleDegrees: 0},
		},
		GroundSegments: []schema.GroundSegment{
			{X: 0, Y: 0, Width: 1200, Height: 800, FrictionType: schema.DefaultFrictionName},
		},
		Walls: []schema.Wall{
			{X: 0, Y: 0, Width: 1200, Height: 16},
			{X: 0, Y: 784, Width: 1200, Height: 16},
		},
		Checkpoints: []schema.Checkpoint{
			{Order: 1, X: 600, Y: 40, Width: 12, Height: 200},
			{Order: 2, X: 1100, Y: 400, Width: 200, Height: 12},
		},
		FinishLine: &schema.FinishLine{X: 160, Y: 480, Width: 12, Height: 160},
	}
	schema.Normalize(cfg)
	return cfg
}
