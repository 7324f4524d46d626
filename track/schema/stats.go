package schema

// Stats summarizes a map's geometry for the analyze tooling and the stats
// API endpoint.
type Stats struct {
	Name           string         `json:"name"`
	Difficulty     string         `json:"difficulty,omitempty"`
	Spawns         int            `json:"spawns"`
	Checkpoints    int            `json:"checkpoints"`
	FirstOrder     int            `json:"first_order"`
	LastOrder      int            `json:"last_order"`
	GroundSegments int            `json:"ground_segments"`
	Walls          int            `json:"walls"`
	Obstacles      int            `json:"obstacles"`
	DizzyObstacles int            `json:"dizzy_obstacles"`
	BounceElements int            `json:"bounce_elements"`
	StaminaPickups int            `json:"stamina_pickups"`
	FrictionUsage  map[string]int `json:"friction_usage"`
}

// Collect computes summary statistics for a map config.
func Collect(cfg *MapConfig) *Stats {
	s := &Stats{
		Spawns:         len(cfg.Spawns),
		Checkpoints:    len(cfg.Checkpoints),
		GroundSegments: len(cfg.GroundSegments),
		Walls:          len(cfg.Walls),
		Obstacles:      len(cfg.Obstacles),
		DizzyObstacles: len(cfg.DizzyObstacles),
		BounceElements: len(cfg.BounceElements),
		StaminaPickups: len(cfg.StaminaPickups),
		FrictionUsage:  make(map[string]int),
	}
	if cfg.Metadata != nil {
		s.Name = cfg.Metadata.Name
		s.Difficulty = cfg.Metadata.Difficulty
	}

	for i, cp := range cfg.Checkpoints {
		if i == 0 || cp.Order < s.FirstOrder {
			s.FirstOrder = cp.Order
		}
		if i == 0 || cp.Order > s.LastOrder {
			s.LastOrder = cp.Order
		}
	}

	count := func(name string) {
		if name != "" {
			s.FrictionUsage[name]++
		}
	}
	for _, g := range cfg.GroundSegments {
		count(g.FrictionType)
	}
	for _, w := range cfg.Walls {
		count(w.FrictionType)
	}
	for _, o := range cfg.Obstacles {
		count(o.FrictionType)
	}
	for _, d := range cfg.DizzyObstacles {
		count(d.FrictionType)
	}

	return s
}
