package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Issue codes forming the validation error taxonomy.
const (
	CodeRequiredFieldMissing = "required-field-missing"
	CodeUnresolvedReference  = "unresolved-reference"
	CodeDuplicateOrder       = "duplicate-checkpoint-order"
	CodeUnsupportedVersion   = "unsupported-schema-version"
	CodeInvalidValue         = "invalid-value"
)

// Issue is a single validation finding.
type Issue struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Field, i.Message, i.Code)
}

// Report collects the findings of one validation pass. Errors make the map
// unusable; warnings are informational (lenient-mode fallbacks land here).
type Report struct {
	Name     string  `json:"name,omitempty"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings,omitempty"`
}

// Valid reports whether the document passed validation.
func (r *Report) Valid() bool { return len(r.Errors) == 0 }

func (r *Report) addError(code, field, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Issue{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *Report) addWarning(code, field, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Issue{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

// ValidationError wraps a failed Report so callers can unwrap the full
// issue list with errors.As.
type ValidationError struct {
	Report *Report
}

func (e *ValidationError) Error() string {
	if e.Report == nil || len(e.Report.Errors) == 0 {
		return "map config validation failed"
	}
	msgs := make([]string, 0, len(e.Report.Errors))
	for _, iss := range e.Report.Errors {
		msgs = append(msgs, iss.String())
	}
	return fmt.Sprintf("map config validation failed: %s", strings.Join(msgs, "; "))
}

// Options controls validation strictness.
type Options struct {
	// Lenient rewrites unresolved frictionType references to the built-in
	// default type and reports them as warnings instead of errors.
	Lenient bool
}

// Normalize applies defaults and clamps numeric fields into their safe
// ranges. It mutates cfg in place and is called by Parse before Validate;
// it is exported for callers that build configs programmatically.
func Normalize(cfg *MapConfig) {
	if cfg == nil {
		return
	}

	// The built-in surface is always available so lenient fallback and
	// maps without an explicit palette still resolve.
	if cfg.FrictionTypes == nil {
		cfg.FrictionTypes = make(map[string]FrictionType)
	}
	if _, ok := cfg.FrictionTypes[DefaultFrictionName]; !ok {
		cfg.FrictionTypes[DefaultFrictionName] = FrictionType{Grip: 1, Drag: 1, Color: "#374151"}
	}

	if cfg.World == nil {
		cfg.World = &World{Width: DefaultWorldSize, Height: DefaultWorldSize}
	}
	if cfg.World.BackgroundColor == "" {
		cfg.World.BackgroundColor = DefaultBackgroundColor
	}
	cfg.World.Width = clamp(cfg.World.Width, MinWorldSize, MaxWorldSize)
	cfg.World.Height = clamp(cfg.World.Height, MinWorldSize, MaxWorldSize)

	for name, ft := range cfg.FrictionTypes {
		ft.Grip = clamp(ft.Grip, MinGrip, MaxGrip)
		ft.Drag = clamp(ft.Drag, MinDrag, MaxDrag)
		cfg.FrictionTypes[name] = ft
	}

	for i := range cfg.Spawns {
		cfg.Spawns[i].AngleDegrees = normalizeAngle(cfg.Spawns[i].AngleDegrees)
	}

	for i := range cfg.GroundSegments {
		cfg.GroundSegments[i].Width = clamp(cfg.GroundSegments[i].Width, MinExtent, MaxExtent)
		cfg.GroundSegments[i].Height = clamp(cfg.GroundSegments[i].Height, MinExtent, MaxExtent)
	}
	for i := range cfg.Walls {
		cfg.Walls[i].Width = clamp(cfg.Walls[i].Width, MinExtent, MaxExtent)
		cfg.Walls[i].Height = clamp(cfg.Walls[i].Height, MinExtent, MaxExtent)
	}
	for i := range cfg.Obstacles {
		cfg.Obstacles[i].Radius = clamp(cfg.Obstacles[i].Radius, MinRadius, MaxRadius)
	}
	for i := range cfg.DizzyObstacles {
		d := &cfg.DizzyObstacles[i]
		d.Radius = clamp(d.Radius, MinRadius, MaxRadius)
		if d.DizzyDurationSeconds == 0 {
			d.DizzyDurationSeconds = DefaultDizzyDuration
		}
		d.DizzyDurationSeconds = clamp(d.DizzyDurationSeconds, MinDizzyDuration, MaxDizzyDuration)
		if d.Color == "" {
			d.Color = DefaultDizzyColor
		}
	}
	for i := range cfg.BounceElements {
		cfg.BounceElements[i].Radius = clamp(cfg.BounceElements[i].Radius, MinRadius, MaxRadius)
		cfg.BounceElements[i].Strength = clamp(cfg.BounceElements[i].Strength, MinBounceStrength, MaxBounceStrength)
	}
	for i := range cfg.StaminaPickups {
		cfg.StaminaPickups[i].StaminaRestoreAmount = clamp(cfg.StaminaPickups[i].StaminaRestoreAmount, MinStaminaRestore, MaxStaminaRestore)
	}
	for i := range cfg.Checkpoints {
		cfg.Checkpoints[i].Width = clamp(cfg.Checkpoints[i].Width, MinExtent, MaxExtent)
		cfg.Checkpoints[i].Height = clamp(cfg.Checkpoints[i].Height, MinExtent, MaxExtent)
	}
	if cfg.FinishLine != nil {
		cfg.FinishLine.Width = clamp(cfg.FinishLine.Width, MinExtent, MaxExtent)
		cfg.FinishLine.Height = clamp(cfg.FinishLine.Height, MinExtent, MaxExtent)
	}
}

// Validate checks a normalized map config and returns the full list of
// findings. In lenient mode unresolved friction references are rewritten to
// the default type and downgraded to warnings.
func Validate(cfg *MapConfig, opts Options) *Report {
	report := &Report{}
	if cfg == nil {
		report.addError(CodeRequiredFieldMissing, "(document)", "map config is empty")
		return report
	}
	if cfg.Metadata != nil {
		report.Name = cfg.Metadata.Name
	}

	if cfg.SchemaVersion != CurrentSchemaVersion {
		report.addError(CodeUnsupportedVersion, "schemaVersion",
			"schemaVersion must be %d, got %d", CurrentSchemaVersion, cfg.SchemaVersion)
	}

	// Required top-level sections.
	if cfg.Metadata == nil {
		report.addError(CodeRequiredFieldMissing, "metadata", "metadata is required")
	} else if cfg.Metadata.Name == "" {
		report.addError(CodeRequiredFieldMissing, "metadata.name", "metadata.name is required")
	}
	if cfg.Spawns == nil {
		report.addError(CodeRequiredFieldMissing, "spawns", "spawns is required")
	} else if len(cfg.Spawns) == 0 {
		report.addError(CodeInvalidValue, "spawns", "spawns must contain at least one entry")
	}
	if cfg.Checkpoints == nil {
		report.addError(CodeRequiredFieldMissing, "checkpoints", "checkpoints is required")
	} else if len(cfg.Checkpoints) == 0 {
		report.addError(CodeInvalidValue, "checkpoints", "checkpoints must contain at least one entry")
	}
	if cfg.FinishLine == nil {
		report.addError(CodeRequiredFieldMissing, "finishLine", "finishLine is required")
	}

	// Checkpoint order uniqueness.
	seen := make(map[int]int, len(cfg.Checkpoints))
	for i, cp := range cfg.Checkpoints {
		if prev, dup := seen[cp.Order]; dup {
			report.addError(CodeDuplicateOrder, fmt.Sprintf("checkpoints[%d].order", i),
				"order %d already used by checkpoints[%d]", cp.Order, prev)
			continue
		}
		seen[cp.Order] = i
	}

	// Friction references across all geometry sections.
	checkRef := func(field, name string) string {
		if name == "" {
			return name
		}
		if _, ok := cfg.FrictionTypes[name]; ok {
			return name
		}
		if opts.Lenient {
			report.addWarning(CodeUnresolvedReference, field,
				"unknown frictionType %q, falling back to %q", name, DefaultFrictionName)
			return DefaultFrictionName
		}
		report.addError(CodeUnresolvedReference, field,
			"unknown frictionType %q (available: %s)", name, strings.Join(frictionNames(cfg), ", "))
		return name
	}

	for i := range cfg.GroundSegments {
		g := &cfg.GroundSegments[i]
		if g.FrictionType == "" {
			report.addError(CodeRequiredFieldMissing, fmt.Sprintf("groundSegments[%d].frictionType", i),
				"ground segments must name a frictionType")
			continue
		}
		g.FrictionType = checkRef(fmt.Sprintf("groundSegments[%d].frictionType", i), g.FrictionType)
	}
	for i := range cfg.Walls {
		cfg.Walls[i].FrictionType = checkRef(fmt.Sprintf("walls[%d].frictionType", i), cfg.Walls[i].FrictionType)
	}
	for i := range cfg.Obstacles {
		cfg.Obstacles[i].FrictionType = checkRef(fmt.Sprintf("obstacles[%d].frictionType", i), cfg.Obstacles[i].FrictionType)
	}
	for i := range cfg.DizzyObstacles {
		cfg.DizzyObstacles[i].FrictionType = checkRef(fmt.Sprintf("dizzyObstacles[%d].frictionType", i), cfg.DizzyObstacles[i].FrictionType)
	}

	return report
}

func frictionNames(cfg *MapConfig) []string {
	names := make([]string, 0, len(cfg.FrictionTypes))
	for name := range cfg.FrictionTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeAngle wraps an angle into [0, 360).
func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
