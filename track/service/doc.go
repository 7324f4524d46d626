// Package service defines the map-facing service interface consumed by the
// HTTP API and MCP transport, decoupled from the concrete store.
//
// MapService is the single entry point for transports: listing maps,
// fetching a validated map document (by name or by the client's
// "?map=maps/track-02.json" style reference), saving edited maps, running
// dry-run validation, and computing map statistics.
//
// MapStore is the storage contract implemented by track/store; transports
// never talk to the store directly, which keeps them trivially mockable in
// tests.
package service
