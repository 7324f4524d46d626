package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridrush/trackd/track/schema"
)

// ErrMapNotFound is re-declared here so transports can match it without
// importing the store. The store wraps its own sentinel with this one.
var ErrMapNotFound = errors.New("map not found")

// mapServiceImpl implements MapService on top of a MapStore.
type mapServiceImpl struct {
	store MapStore
}

// NewMapService creates a map service backed by the given store.
func NewMapService(store MapStore) MapService {
	return &mapServiceImpl{store: store}
}

func (s *mapServiceImpl) ListMaps(ctx context.Context) ([]*MapInfo, error) {
	return s.store.List()
}

// GetMap resolves ref (a bare map name or a "maps/track-02.json" style
// reference) and loads the validated document. When the map does not exist
// the error names the available map IDs so clients can self-correct.
func (s *mapServiceImpl) GetMap(ctx context.Context, ref string) (*schema.MapConfig, error) {
	name, err := s.store.Resolve(ref)
	if err != nil {
		return nil, err
	}

	cfg, err := s.store.Load(name)
	if err != nil {
		if errors.Is(err, ErrMapNotFound) {
			if infos, listErr := s.store.List(); listErr == nil && len(infos) > 0 {
				ids := make([]string, 0, len(infos))
				for _, info := range infos {
					ids = append(ids, info.MapID)
				}
				return nil, fmt.Errorf("%w: %q (available maps: %v)", ErrMapNotFound, ref, ids)
			}
		}
		return nil, err
	}
	return cfg, nil
}

func (s *mapServiceImpl) DefaultMap(ctx context.Context) (*schema.MapConfig, error) {
	cfg := s.store.Default()
	if cfg == nil {
		return nil, ErrMapNotFound
	}
	return cfg, nil
}

func (s *mapServiceImpl) SaveMap(ctx context.Context, name string, cfg *schema.MapConfig) error {
	resolved, err := s.store.Resolve(name)
	if err != nil {
		return err
	}
	return s.store.Save(resolved, cfg)
}

func (s *mapServiceImpl) ValidateMap(ctx context.Context, name string, lenient bool) (*schema.Report, error) {
	resolved, err := s.store.Resolve(name)
	if err != nil {
		return nil, err
	}
	return s.store.Validate(resolved, schema.Options{Lenient: lenient})
}

func (s *mapServiceImpl) MapStats(ctx context.Context, name string) (*schema.Stats, error) {
	cfg, err := s.GetMap(ctx, name)
	if err != nil {
		return nil, err
	}
	return schema.Collect(cfg), nil
}

func (s *mapServiceImpl) RefreshMaps(ctx context.Context) error {
	return s.store.Refresh()
}
