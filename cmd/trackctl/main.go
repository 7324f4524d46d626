// Command trackctl provides offline tooling for track map configs. It
// validates map JSON files against the schema and prints geometry heuristics
// without needing a running server:
//   - validate: full schema validation with per-file issue reports
//   - analyze: dimensions, element counts, friction usage, and
//     out-of-bounds / checkpoint-gap warnings
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gridrush/trackd/track/schema"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "trackctl",
		Usage: "validate and analyze Grid Rush track map configs",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "validate all map JSON files in a directory",
				ArgsUsage: "[dir]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "lenient",
						Usage: "fall back to the default friction type on unresolved references",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir := cmd.Args().First()
					if dir == "" {
						dir = "maps"
					}
					ok, err := validateDir(os.Stdout, dir, cmd.Bool("lenient"))
					if err != nil {
						return err
					}
					if !ok {
						return cli.Exit("some maps have errors", 1)
					}
					return nil
				},
			},
			{
				Name:      "analyze",
				Usage:     "print geometry heuristics for all map JSON files in a directory",
				ArgsUsage: "[dir]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir := cmd.Args().First()
					if dir == "" {
						dir = "maps"
					}
					return analyzeDir(os.Stdout, dir)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// mapFiles lists the *.json files in dir, sorted for stable output.
func mapFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// validateDir validates every map file in dir and writes a per-file report.
// It returns false when at least one map is invalid.
func validateDir(w io.Writer, dir string, lenient bool) (bool, error) {
	files, err := mapFiles(dir)
	if err != nil {
		return false, err
	}
	if len(files) == 0 {
		return false, fmt.Errorf("no map files found in %s", dir)
	}

	opts := schema.Options{Lenient: lenient}
	allValid := true
	for _, file := range files {
		report := validateFile(file, opts)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), filepath.Base(file))
		if report.Valid() {
			fmt.Fprintln(w, "VALID")
		} else {
			fmt.Fprintln(w, "INVALID")
			allValid = false
			for _, iss := range report.Errors {
				fmt.Fprintf(w, "  error: %s\n", iss.String())
			}
		}
		for _, iss := range report.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", iss.String())
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "All maps are valid")
	} else {
		fmt.Fprintln(w, "Some maps have errors")
	}

	return allValid, nil
}

// validateFile always produces a report, synthesizing one for files that
// cannot be read or decoded.
func validateFile(path string, opts schema.Options) *schema.Report {
	data, err := os.ReadFile(path)
	if err != nil {
		report := &schema.Report{
			Name: filepath.Base(path),
			Errors: []schema.Issue{{
				Code:    schema.CodeInvalidValue,
				Field:   "(file)",
				Message: fmt.Sprintf("failed to read file: %v", err),
			}},
		}
		return report
	}

	_, report, err := schema.Parse(data, opts)
	if report != nil {
		report.Name = filepath.Base(path)
		return report
	}

	// Decode failure before validation could run
	return &schema.Report{
		Name: filepath.Base(path),
		Errors: []schema.Issue{{
			Code:    schema.CodeInvalidValue,
			Field:   "(document)",
			Message: fmt.Sprintf("invalid JSON: %v", err),
		}},
	}
}

// analyzeDir prints geometry heuristics for every map file in dir. Maps are
// loaded leniently so analysis works on files with unresolved references.
func analyzeDir(w io.Writer, dir string) error {
	files, err := mapFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no map files found in %s", dir)
	}

	for _, file := range files {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeFile(w, file)
	}
	return nil
}

func analyzeFile(w io.Writer, path string) {
	cfg, _, err := schema.LoadFile(path, schema.Options{Lenient: true})
	if err != nil {
		fmt.Fprintf(w, "Error loading map: %v\n", err)
		return
	}

	stats := schema.Collect(cfg)

	fmt.Fprintf(w, "Name: %s\n", stats.Name)
	if stats.Difficulty != "" {
		fmt.Fprintf(w, "Difficulty: %s\n", stats.Difficulty)
	}
	fmt.Fprintf(w, "World: %.0f x %.0f\n", cfg.World.Width, cfg.World.Height)
	fmt.Fprintf(w, "Spawns: %d\n", stats.Spawns)
	fmt.Fprintf(w, "Checkpoints: %d (orders %d..%d)\n", stats.Checkpoints, stats.FirstOrder, stats.LastOrder)
	fmt.Fprintf(w, "Ground segments: %d, Walls: %d\n", stats.GroundSegments, stats.Walls)
	fmt.Fprintf(w, "Obstacles: %d (dizzy: %d, bounce: %d), Stamina pickups: %d\n",
		stats.Obstacles, stats.DizzyObstacles, stats.BounceElements, stats.StaminaPickups)

	if len(stats.FrictionUsage) > 0 {
		names := make([]string, 0, len(stats.FrictionUsage))
		for name := range stats.FrictionUsage {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprint(w, "Friction usage:")
		for _, name := range names {
			fmt.Fprintf(w, " %s=%d", name, stats.FrictionUsage[name])
		}
		fmt.Fprintln(w)
	}

	// Elements placed outside the world rectangle are unreachable in-game
	outside := outOfBoundsElements(cfg)
	if len(outside) > 0 {
		fmt.Fprintf(w, "WARNING: %d elements outside the %gx%g world:\n",
			len(outside), cfg.World.Width, cfg.World.Height)
		for i, desc := range outside {
			if i >= 5 {
				fmt.Fprintf(w, "   ... and %d more\n", len(outside)-5)
				break
			}
			fmt.Fprintf(w, "   %s\n", desc)
		}
	} else {
		fmt.Fprintln(w, "All elements are inside the world bounds")
	}

	if gaps := checkpointGaps(cfg.Checkpoints); len(gaps) > 0 {
		fmt.Fprintf(w, "WARNING: checkpoint order sequence has gaps at %v\n", gaps)
	} else {
		fmt.Fprintln(w, "Checkpoint orders form a contiguous sequence")
	}
}

// outOfBoundsElements returns a description of every element whose anchor
// point lies outside the world rectangle.
func outOfBoundsElements(cfg *schema.MapConfig) []string {
	var out []string
	inside := func(x, y float64) bool {
		return x >= 0 && y >= 0 && x <= cfg.World.Width && y <= cfg.World.Height
	}

	for i, s := range cfg.Spawns {
		if !inside(s.X, s.Y) {
			out = append(out, fmt.Sprintf("spawns[%d] at (%.0f, %.0f)", i, s.X, s.Y))
		}
	}
	for i, cp := range cfg.Checkpoints {
		if !inside(cp.X, cp.Y) {
			out = append(out, fmt.Sprintf("checkpoints[%d] (order %d) at (%.0f, %.0f)", i, cp.Order, cp.X, cp.Y))
		}
	}
	for i, o := range cfg.Obstacles {
		if !inside(o.X, o.Y) {
			out = append(out, fmt.Sprintf("obstacles[%d] at (%.0f, %.0f)", i, o.X, o.Y))
		}
	}
	for i, d := range cfg.DizzyObstacles {
		if !inside(d.X, d.Y) {
			out = append(out, fmt.Sprintf("dizzyObstacles[%d] at (%.0f, %.0f)", i, d.X, d.Y))
		}
	}
	for i, b := range cfg.BounceElements {
		if !inside(b.X, b.Y) {
			out = append(out, fmt.Sprintf("bounceElements[%d] at (%.0f, %.0f)", i, b.X, b.Y))
		}
	}
	for i, p := range cfg.StaminaPickups {
		if !inside(p.X, p.Y) {
			out = append(out, fmt.Sprintf("staminaPickups[%d] at (%.0f, %.0f)", i, p.X, p.Y))
		}
	}
	if cfg.FinishLine != nil && !inside(cfg.FinishLine.X, cfg.FinishLine.Y) {
		out = append(out, fmt.Sprintf("finishLine at (%.0f, %.0f)", cfg.FinishLine.X, cfg.FinishLine.Y))
	}

	return out
}

// checkpointGaps returns the missing order values between the lowest and
// highest checkpoint orders.
func checkpointGaps(checkpoints []schema.Checkpoint) []int {
	if len(checkpoints) == 0 {
		return nil
	}

	present := make(map[int]bool, len(checkpoints))
	lo, hi := checkpoints[0].Order, checkpoints[0].Order
	for _, cp := range checkpoints {
		present[cp.Order] = true
		if cp.Order < lo {
			lo = cp.Order
		}
		if cp.Order > hi {
			hi = cp.Order
		}
	}

	var gaps []int
	for order := lo; order <= hi; order++ {
		if !present[order] {
			gaps = append(gaps, order)
		}
	}
	return gaps
}
