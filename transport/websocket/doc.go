// Package websocket provides the live map-reload channel for the Grid Rush
// track server.
//
// The package uses a hub-and-spoke model: a central Hub tracks clients
// grouped by the map they subscribed to. When the map store's watcher sees
// a map file change or disappear, the server broadcasts a small JSON event
// to every client subscribed to that map so the browser can re-fetch the
// document without a page reload.
//
// Message Protocol:
//
// Outgoing messages are JSON-encoded:
//
//	{"map": "track-02", "event": "map_updated"}
//	{"map": "track-02", "event": "map_removed"}
//
// Clients do not send application messages; incoming frames only keep the
// connection alive.
//
// Map Subscription:
//
// Clients pick the map they care about with a query parameter when
// establishing the connection (/ws?map=track-02). Events are delivered only
// to clients subscribed to the changed map.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	hub.ServeWS(w, r, "track-02")
//	hub.BroadcastMapEvent("track-02", "map_updated", nil)
package websocket
