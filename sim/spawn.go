package sim

import (
	"fmt"

	"github.com/jbeda/geom"

	"github.com/hupe1980/crowdflow/core"
	"github.com/hupe1980/crowdflow/planner"
)

const (
	minSpawnRadius   = 0.25
	maxSpawnRadius   = 0.35
	startPointRadius = 0.3
)

// spawn creates the run's agents from source rectangles and explicit start
// points, assigns each the nearest exit as goal and plans its initial path.
func (r *Run) spawn(scenario *core.Scenario, desiredSpeed float64) error {
	pl := planner.New(r.index, scenario.Waypoints, r.rng)

	next := 0
	add := func(pos geom.Coord, radius float64) error {
		exit, ok := r.index.NearestExit(pos)
		if !ok {
			return fmt.Errorf("%w: no exit to assign to agent at (%.2f, %.2f)", core.ErrGeometryInvalid, pos.X, pos.Y)
		}
		path := pl.Plan(pos, exit.Midpoint())
		ag := &core.Agent{
			ID:           fmt.Sprintf("agent-%d", next),
			Pos:          pos,
			Radius:       radius,
			DesiredSpeed: desiredSpeed,
			Path:         path,
			State:        core.StateSpawned,
		}
		next++
		if path.Degraded {
			r.logger.Warn("planner degraded: no obstacle-clear path", "agent", ag.ID)
		}
		r.agents = append(r.agents, ag)
		return nil
	}

	for _, src := range scenario.Sources {
		rect := src.Rect()
		for i := 0; i < src.AgentCount; i++ {
			pos := geom.Coord{
				X: rect.Min.X + r.rng.Float64()*(rect.Max.X-rect.Min.X),
				Y: rect.Min.Y + r.rng.Float64()*(rect.Max.Y-rect.Min.Y),
			}
			radius := minSpawnRadius + r.rng.Float64()*(maxSpawnRadius-minSpawnRadius)
			if err := add(pos, radius); err != nil {
				return err
			}
		}
	}
	for _, pos := range scenario.StartPoints {
		if err := add(pos, startPointRadius); err != nil {
			return err
		}
	}
	return nil
}
