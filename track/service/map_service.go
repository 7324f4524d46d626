package service

import (
	"context"

	"github.com/gridrush/trackd/track/schema"
)

// MapService defines all map-related operations exposed to transports.
type MapService interface {
	// Listing and retrieval
	ListMaps(ctx context.Context) ([]*MapInfo, error)
	GetMap(ctx context.Context, ref string) (*schema.MapConfig, error)
	DefaultMap(ctx context.Context) (*schema.MapConfig, error)

	// Editing
	SaveMap(ctx context.Context, name string, cfg *schema.MapConfig) error

	// Tooling
	ValidateMap(ctx context.Context, name string, lenient bool) (*schema.Report, error)
	MapStats(ctx context.Context, name string) (*schema.Stats, error)
	RefreshMaps(ctx context.Context) error
}

// MapStore is the storage contract the service delegates to. Implemented by
// track/store.
type MapStore interface {
	Resolve(ref string) (string, error)
	Load(name string) (*schema.MapConfig, error)
	List() ([]*MapInfo, error)
	Save(name string, cfg *schema.MapConfig) error
	Validate(name string, opts schema.Options) (*schema.Report, error)
	Refresh() error
	Default() *schema.MapConfig
}
