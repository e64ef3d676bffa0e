// Package scenario validates venue geometry before a simulation starts and
// loads scenario definitions from YAML files. Validation is strict where the
// simulation core is lenient: geometry problems are reported here as hard
// errors so that no run ever begins against an unusable scenario, while the
// core tolerates the same defects defensively.
package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/crowdflow/core"
)

// Validate checks a scenario for the elements a simulation requires. It
// accepts iff at least one walkable area, one source or start point, and one
// exit are present and all declared geometry is well formed; otherwise it
// returns an error wrapping core.ErrGeometryInvalid that lists every
// violation found.
func Validate(sc *core.Scenario) error {
	var problems []string

	if len(sc.WalkableAreas) == 0 {
		problems = append(problems, "no walkable area")
	}
	for i, p := range sc.WalkableAreas {
		if !p.Valid() {
			problems = append(problems, fmt.Sprintf("walkable area %d has %d points, need at least 3", i, len(p.Points)))
		}
	}
	for i, p := range sc.Obstacles {
		if !p.Valid() {
			problems = append(problems, fmt.Sprintf("obstacle %d has %d points, need at least 3", i, len(p.Points)))
		}
	}

	if len(sc.Sources) == 0 && len(sc.StartPoints) == 0 {
		problems = append(problems, "no source or start point")
	}
	for i, src := range sc.Sources {
		if src.AgentCount <= 0 {
			problems = append(problems, fmt.Sprintf("source %d has non-positive agent count %d", i, src.AgentCount))
		}
	}

	if len(sc.Exits) == 0 {
		problems = append(problems, "no exit")
	}

	ids := make(map[string]bool, len(sc.Waypoints))
	for _, wp := range sc.Waypoints {
		if ids[wp.ID] {
			problems = append(problems, fmt.Sprintf("duplicate waypoint id %q", wp.ID))
		}
		ids[wp.ID] = true
	}
	for _, wp := range sc.Waypoints {
		for _, conn := range wp.Connections {
			if !ids[conn] {
				problems = append(problems, fmt.Sprintf("waypoint %q connects to unknown waypoint %q", wp.ID, conn))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", core.ErrGeometryInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// File is the on-disk scenario document: geometry plus optional run defaults
// that CLI flags may override.
type File struct {
	Scenario core.Scenario  `yaml:"scenario"`
	Run      core.RunConfig `yaml:"run"`
}

// Parse decodes a YAML scenario document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	return &f, nil
}

// Load reads and decodes a YAML scenario file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}
