package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/gridrush/trackd/track/schema"
)

// fakeStore implements MapStore with function fields, mirroring how the
// transports are tested.
type fakeStore struct {
	ResolveFunc  func(ref string) (string, error)
	LoadFunc     func(name string) (*schema.MapConfig, error)
	ListFunc     func() ([]*MapInfo, error)
	SaveFunc     func(name string, cfg *schema.MapConfig) error
	ValidateFunc func(name string, opts schema.Options) (*schema.Report, error)
	RefreshFunc  func() error
	DefaultFunc  func() *schema.MapConfig
}

func (f *fakeStore) Resolve(ref string) (string, error) {
	if f.ResolveFunc != nil {
		return f.ResolveFunc(ref)
	}
	return strings.TrimSuffix(ref, ".json"), nil
}

func (f *fakeStore) Load(name string) (*schema.MapConfig, error) {
	if f.LoadFunc != nil {
		return f.LoadFunc(name)
	}
	return nil, ErrMapNotFound
}

func (f *fakeStore) List() ([]*MapInfo, error) {
	if f.ListFunc != nil {
		return f.ListFunc()
	}
	return nil, nil
}

func (f *fakeStore) Save(name string, cfg *schema.MapConfig) error {
	if f.SaveFunc != nil {
		return f.SaveFunc(name, cfg)
	}
	return nil
}

func (f *fakeStore) Validate(name string, opts schema.Options) (*schema.Report, error) {
	if f.ValidateFunc != nil {
		return f.ValidateFunc(name, opts)
	}
	return &schema.Report{}, nil
}

func (f *fakeStore) Refresh() error {
	if f.RefreshFunc != nil {
		return f.RefreshFunc()
	}
	return nil
}

func (f *fakeStore) Default() *schema.MapConfig {
	if f.DefaultFunc != nil {
		return f.DefaultFunc()
	}
	return nil
}

func namedMap(name string) *schema.MapConfig {
	cfg := &schema.MapConfig{
		SchemaVersion: 1,
		Metadata:      &schema.Metadata{Name: name},
		Spawns:        []schema.Spawn{{X: 1, Y: 1}},
		Checkpoints:   []schema.Checkpoint{{Order: 1, Width: 10, Height: 10}},
		FinishLine:    &schema.FinishLine{Width: 10, Height: 10},
	}
	schema.Normalize(cfg)
	return cfg
}

func TestGetMap_ResolvesReference(t *testing.T) {
	var loaded string
	svc := NewMapService(&fakeStore{
		LoadFunc: func(name string) (*schema.MapConfig, error) {
			loaded = name
			return namedMap("Track Two"), nil
		},
	})

	cfg, err := svc.GetMap(context.Background(), "track-02.json")
	if err != nil {
		t.Fatal(err)
	}
	if loaded != "track-02" {
		t.Errorf("loaded %q, want resolved name", loaded)
	}
	if cfg.Metadata.Name != "Track Two" {
		t.Errorf("unexpected map: %q", cfg.Metadata.Name)
	}
}

func TestGetMap_NotFoundListsAvailable(t *testing.T) {
	svc := NewMapService(&fakeStore{
		LoadFunc: func(name string) (*schema.MapConfig, error) {
			return nil, ErrMapNotFound
		},
		ListFunc: func() ([]*MapInfo, error) {
			return []*MapInfo{{MapID: "track-01"}, {MapID: "track-02"}}, nil
		},
	})

	_, err := svc.GetMap(context.Background(), "track-99")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "track-01") {
		t.Errorf("error should list available maps: %v", err)
	}
}

func TestGetMap_ResolveFailure(t *testing.T) {
	svc := NewMapService(&fakeStore{
		ResolveFunc: func(ref string) (string, error) {
			return "", fmt.Errorf("invalid map reference %q", ref)
		},
	})

	if _, err := svc.GetMap(context.Background(), "../escape"); err == nil {
		t.Error("expected resolve error to propagate")
	}
}

func TestDefaultMap(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		svc := NewMapService(&fakeStore{
			DefaultFunc: func() *schema.MapConfig { return namedMap("Default") },
		})
		cfg, err := svc.DefaultMap(context.Background())
		if err != nil || cfg.Metadata.Name != "Default" {
			t.Errorf("got %v, %v", cfg, err)
		}
	})

	t.Run("absent", func(t *testing.T) {
		svc := NewMapService(&fakeStore{})
		if _, err := svc.DefaultMap(context.Background()); err != ErrMapNotFound {
			t.Errorf("expected ErrMapNotFound, got %v", err)
		}
	})
}

func TestValidateMap_PassesLenientFlag(t *testing.T) {
	var gotOpts schema.Options
	svc := NewMapService(&fakeStore{
		ValidateFunc: func(name string, opts schema.Options) (*schema.Report, error) {
			gotOpts = opts
			return &schema.Report{Name: name}, nil
		},
	})

	if _, err := svc.ValidateMap(context.Background(), "track-01", true); err != nil {
		t.Fatal(err)
	}
	if !gotOpts.Lenient {
		t.Error("lenient flag not passed through")
	}
}

func TestMapStats(t *testing.T) {
	svc := NewMapService(&fakeStore{
		LoadFunc: func(name string) (*schema.MapConfig, error) {
			cfg := namedMap("Statsy")
			cfg.Obstacles = []schema.Obstacle{{Radius: 5}, {Radius: 6}}
			return cfg, nil
		},
	})

	stats, err := svc.MapStats(context.Background(), "statsy")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Name != "Statsy" || stats.Obstacles != 2 || stats.Checkpoints != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
