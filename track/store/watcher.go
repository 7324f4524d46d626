package store

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventType classifies a map directory change.
type EventType string

const (
	MapUpdated EventType = "map_updated"
	MapRemoved EventType = "map_removed"
)

// Event describes a change to one map file.
type Event struct {
	Type EventType `json:"type"`
	Name string    `json:"name"`
}

// Watch follows the map directory until ctx is cancelled. Changed files are
// evicted from the cache so the next load re-reads them, and every change
// is passed to notify (which may be nil). Removing the default map's file
// keeps the already-loaded default in memory; it is only replaced on the
// next Refresh.
func (s *Store) Watch(ctx context.Context, notify func(Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(ev.Name), ".json")

			switch {
			case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
				s.Evict(name)
				if notify != nil {
					notify(Event{Type: MapRemoved, Name: name})
				}
			case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
				s.Evict(name)
				if notify != nil {
					notify(Event{Type: MapUpdated, Name: name})
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("map watcher error: %v", err)
		}
	}
}
