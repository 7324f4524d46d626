// Package store provides directory-backed storage for map config files.
//
// The Store loads maps from a single directory of *.json files, validates
// them through track/schema, and keeps parsed documents in an in-memory
// read-through cache keyed by map name. Saving a map validates it first and
// writes pretty-printed JSON so files stay diffable.
//
// A default map is selected at startup (track-01.json when present,
// otherwise the first valid map, otherwise a built-in oval) so the game
// client always has something to load.
//
// Watch runs an fsnotify loop over the map directory: edited or deleted
// files are evicted from the cache and reported as events, which the server
// fans out to websocket subscribers for live map reloads.
package store
