// Package schema defines the race-track map configuration document ("map
// config") consumed by the Grid Rush browser client, and the loader that
// parses and validates it.
//
// A map config is a single JSON file describing one track: spawn points,
// ground geometry, walls, obstacles, checkpoints, and the finish line.
// The document is loaded once when a map is requested and is read-only
// afterwards.
//
// Loading Pipeline:
//
// Parse and Load run a single synchronous pass over the document:
//  1. Decode JSON (legacy field aliases are accepted here)
//  2. Apply defaults (dizzy obstacle duration/color, built-in friction type)
//  3. Clamp numeric fields into their safe ranges
//  4. Validate structure and references
//
// Validation Rules:
//
//   - schemaVersion must equal CurrentSchemaVersion (1)
//   - metadata, spawns, checkpoints and finishLine are required
//   - checkpoint order values must be unique
//   - every frictionType reference must name an entry in frictionTypes
//
// Unresolved friction references fail the load in strict mode (the
// default). With Options.Lenient the reference falls back to the built-in
// default type and is reported as a warning instead.
//
// Back-Compat Aliases:
//
// Older map files used "bouncers" for "bounceElements" and "restoreAmount"
// for "staminaRestoreAmount". Both are still accepted and behave exactly
// like their renamed successors.
//
// Usage:
//
//	cfg, report, err := schema.LoadFile("maps/track-02.json", schema.Options{})
//	if err != nil {
//		var verr *schema.ValidationError
//		if errors.As(err, &verr) {
//			// verr.Report lists every issue found
//		}
//		log.Fatal(err)
//	}
//	_ = cfg.Checkpoints
package schema
