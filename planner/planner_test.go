package planner

import (
	"testing"

	"github.com/jbeda/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crowdflow/core"
	"github.com/hupe1980/crowdflow/geo"
	"github.com/hupe1980/crowdflow/internal/util"
)

func newPlanner(t *testing.T, sc *core.Scenario, seed int64) *Planner {
	t.Helper()
	return New(geo.NewIndex(sc), sc.Waypoints, util.NewRand(seed))
}

func square(x0, y0, x1, y1 float64) core.Polygon {
	return core.Polygon{Points: []geom.Coord{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}}
}

func TestPlan_DirectWhenClear(t *testing.T) {
	p := newPlanner(t, &core.Scenario{}, 1)

	start := geom.Coord{X: 0, Y: 0}
	goal := geom.Coord{X: 10, Y: 10}
	path := p.Plan(start, goal)

	require.Len(t, path.Points, 2)
	assert.Equal(t, start, path.Points[0])
	assert.Equal(t, goal, path.Points[1])
	assert.False(t, path.Degraded)
}

func TestPlan_WaypointRoute(t *testing.T) {
	// One obstacle sits between start and goal but clears both waypoints'
	// connecting segments, so the single declared hop A→B wins over a detour.
	sc := &core.Scenario{
		Obstacles: []core.Polygon{square(45, 30, 55, 45)},
		Waypoints: []core.Waypoint{
			{ID: "A", Position: geom.Coord{X: 30, Y: 50}, Connections: []string{"B"}},
			{ID: "B", Position: geom.Coord{X: 70, Y: 50}},
		},
	}
	p := newPlanner(t, sc, 1)

	start := geom.Coord{X: 25, Y: 50}
	goal := geom.Coord{X: 75, Y: 50}
	path := p.Plan(start, goal)

	require.Len(t, path.Points, 4)
	assert.Equal(t, start, path.Points[0])
	assert.Equal(t, geom.Coord{X: 30, Y: 50}, path.Points[1])
	assert.Equal(t, geom.Coord{X: 70, Y: 50}, path.Points[2])
	assert.Equal(t, goal, path.Points[3])
	assert.False(t, path.Degraded)
}

func TestPlan_ConnectionsAreDirected(t *testing.T) {
	// Only A→B is declared; planning from near B toward near A must not
	// traverse the edge backwards.
	sc := &core.Scenario{
		Waypoints: []core.Waypoint{
			{ID: "A", Position: geom.Coord{X: 30, Y: 50}, Connections: []string{"B"}},
			{ID: "B", Position: geom.Coord{X: 70, Y: 50}},
		},
	}
	p := newPlanner(t, sc, 1)

	path := p.Plan(geom.Coord{X: 69, Y: 50}, geom.Coord{X: 31, Y: 50})

	// No waypoint route exists in that direction; the clear direct segment
	// is used instead.
	require.Len(t, path.Points, 2)
	assert.False(t, path.Degraded)
}

func TestPlan_FewestHops(t *testing.T) {
	// Chain A→B→D versus A→C→E→D: BFS picks the two-hop route.
	sc := &core.Scenario{
		Waypoints: []core.Waypoint{
			{ID: "A", Position: geom.Coord{X: 0, Y: 0}, Connections: []string{"B", "C"}},
			{ID: "B", Position: geom.Coord{X: 50, Y: 10}, Connections: []string{"D"}},
			{ID: "C", Position: geom.Coord{X: 30, Y: -10}, Connections: []string{"E"}},
			{ID: "E", Position: geom.Coord{X: 60, Y: -10}, Connections: []string{"D"}},
			{ID: "D", Position: geom.Coord{X: 100, Y: 0}},
		},
	}
	p := newPlanner(t, sc, 1)

	path := p.Plan(geom.Coord{X: -1, Y: 0}, geom.Coord{X: 101, Y: 0})

	require.Len(t, path.Points, 5) // start, A, B, D, goal
	assert.Equal(t, geom.Coord{X: 50, Y: 10}, path.Points[2])
}

func TestPlan_DetourAroundObstacle(t *testing.T) {
	// Obstacle directly on the straight line, no waypoint graph: the result
	// must be a non-empty path whose every consecutive segment is clear.
	sc := &core.Scenario{
		Obstacles: []core.Polygon{square(40, 40, 60, 60)},
	}
	ix := geo.NewIndex(sc)
	p := New(ix, nil, util.NewRand(1))

	path := p.Plan(geom.Coord{X: 10, Y: 50}, geom.Coord{X: 90, Y: 50})

	require.GreaterOrEqual(t, len(path.Points), 3)
	assert.False(t, path.Degraded)
	for i := 0; i < len(path.Points)-1; i++ {
		assert.False(t, ix.SegmentBlocked(path.Points[i], path.Points[i+1]),
			"segment %d must be unobstructed", i)
	}
}

func TestPlan_DegradedWhenEnclosed(t *testing.T) {
	// Goal completely walled in: no clear route exists, the planner still
	// returns the direct segment and flags it.
	sc := &core.Scenario{
		Obstacles: []core.Polygon{square(80, 40, 100, 60)},
	}
	p := newPlanner(t, sc, 1)

	path := p.Plan(geom.Coord{X: 10, Y: 50}, geom.Coord{X: 90, Y: 50})

	require.Len(t, path.Points, 2)
	assert.True(t, path.Degraded)
}

func TestPlan_Idempotent(t *testing.T) {
	sc := &core.Scenario{
		Obstacles: []core.Polygon{square(40, 40, 60, 60)},
	}
	start := geom.Coord{X: 10, Y: 50}
	goal := geom.Coord{X: 90, Y: 50}

	first := newPlanner(t, sc, 42).Plan(start, goal)
	second := newPlanner(t, sc, 42).Plan(start, goal)

	assert.Equal(t, first, second)
}
