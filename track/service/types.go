package service

// MapInfo summarizes one map file for listings. Invalid files are included
// with Valid=false so map editors can surface them instead of silently
// hiding broken tracks.
type MapInfo struct {
	Filename    string `json:"filename"`
	MapID       string `json:"map_id"` // The identifier to use when requesting the map
	Name        string `json:"name,omitempty"`
	Author      string `json:"author,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	Checkpoints int    `json:"checkpoints"`
	Spawns      int    `json:"spawns"`
	Valid       bool   `json:"valid"`
	Error       string `json:"error,omitempty"`
}
