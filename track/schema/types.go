package schema

import "encoding/json"

// CurrentSchemaVersion is the only schemaVersion the loader accepts.
const CurrentSchemaVersion = 1

// Defaults applied during normalization.
const (
	DefaultFrictionName    = "asphalt"
	DefaultDizzyDuration   = 3.0
	DefaultDizzyColor      = "#a855f7"
	DefaultWorldSize       = 2048.0
	DefaultBackgroundColor = "#1e293b"
)

// Safe ranges for numeric fields. Out-of-range values are clamped, not
// rejected.
const (
	MinWorldSize = 256.0
	MaxWorldSize = 16384.0

	MinGrip = 0.0
	MaxGrip = 4.0
	MinDrag = 0.0
	MaxDrag = 10.0

	MinRadius = 1.0
	MaxRadius = 512.0
	MinExtent = 1.0
	MaxExtent = 8192.0

	MinDizzyDuration = 0.25
	MaxDizzyDuration = 30.0

	MinBounceStrength = 0.0
	MaxBounceStrength = 4.0

	MinStaminaRestore = 1.0
	MaxStaminaRestore = 100.0
)

// MapConfig is the top-level map document as stored on disk. Pointer and
// slice fields distinguish a missing section from an empty one; the
// required sections are checked during validation.
type MapConfig struct {
	SchemaVersion  int                     `json:"schemaVersion"`
	Metadata       *Metadata               `json:"metadata"`
	World          *World                  `json:"world,omitempty"`
	FrictionTypes  map[string]FrictionType `json:"frictionTypes,omitempty"`
	Spawns         []Spawn                 `json:"spawns"`
	GroundSegments []GroundSegment         `json:"groundSegments,omitempty"`
	Walls          []Wall                  `json:"walls,omitempty"`
	Obstacles      []Obstacle              `json:"obstacles,omitempty"`
	DizzyObstacles []DizzyObstacle         `json:"dizzyObstacles,omitempty"`
	BounceElements []BounceElement         `json:"bounceElements,omitempty"`
	StaminaPickups []StaminaPickup         `json:"staminaPickups,omitempty"`
	Checkpoints    []Checkpoint            `json:"checkpoints"`
	FinishLine     *FinishLine             `json:"finishLine"`
}

// Metadata describes the track itself rather than its geometry.
type Metadata struct {
	Name        string `json:"name"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	Version     string `json:"version,omitempty"`
}

// World sets the playfield dimensions and backdrop.
type World struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
}

// FrictionType is a named physics-material preset referenced by track and
// obstacle geometry through its map key.
type FrictionType struct {
	Grip  float64 `json:"grip"`
	Drag  float64 `json:"drag"`
	Color string  `json:"color,omitempty"`
}

// Spawn is a starting position for a player.
type Spawn struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	AngleDegrees float64 `json:"angleDegrees"`
}

// GroundSegment is a rectangular surface patch with a friction material.
type GroundSegment struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	FrictionType string  `json:"frictionType"`
}

// Wall is an impassable rectangle. FrictionType is optional and controls
// how the car scrapes along it.
type Wall struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Color        string  `json:"color,omitempty"`
	FrictionType string  `json:"frictionType,omitempty"`
}

// Obstacle is a circular static blocker.
type Obstacle struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Radius       float64 `json:"radius"`
	Color        string  `json:"color,omitempty"`
	FrictionType string  `json:"frictionType,omitempty"`
}

// DizzyObstacle spins the car on contact for DizzyDurationSeconds.
type DizzyObstacle struct {
	X                    float64 `json:"x"`
	Y                    float64 `json:"y"`
	Radius               float64 `json:"radius"`
	DizzyDurationSeconds float64 `json:"dizzyDurationSeconds"`
	Color                string  `json:"color,omitempty"`
	FrictionType         string  `json:"frictionType,omitempty"`
}

// BounceElement pushes the car away on contact.
type BounceElement struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Radius   float64 `json:"radius"`
	Strength float64 `json:"strength"`
	Color    string  `json:"color,omitempty"`
}

// StaminaPickup restores player stamina when collected.
type StaminaPickup struct {
	X                    float64 `json:"x"`
	Y                    float64 `json:"y"`
	StaminaRestoreAmount float64 `json:"staminaRestoreAmount"`
}

// Checkpoint is an ordered gate the player must pass before finishing.
// Order values must be unique within a map.
type Checkpoint struct {
	Order  int     `json:"order"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color,omitempty"`
}

// FinishLine is the rectangle that ends the race once all checkpoints have
// been passed.
type FinishLine struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// UnmarshalJSON accepts the legacy "bouncers" key as an alias for
// "bounceElements". When both are present the renamed key wins.
func (m *MapConfig) UnmarshalJSON(data []byte) error {
	type mapConfig MapConfig
	aux := struct {
		*mapConfig
		Bouncers []BounceElement `json:"bouncers"`
	}{mapConfig: (*mapConfig)(m)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if m.BounceElements == nil && aux.Bouncers != nil {
		m.BounceElements = aux.Bouncers
	}
	return nil
}

// UnmarshalJSON accepts the legacy "restoreAmount" key as an alias for
// "staminaRestoreAmount". When both are present the renamed key wins.
func (p *StaminaPickup) UnmarshalJSON(data []byte) error {
	type staminaPickup StaminaPickup
	aux := struct {
		*staminaPickup
		RestoreAmount *float64 `json:"restoreAmount"`
	}{staminaPickup: (*staminaPickup)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.StaminaRestoreAmount == 0 && aux.RestoreAmount != nil {
		p.StaminaRestoreAmount = *aux.RestoreAmount
	}
	return nil
}
