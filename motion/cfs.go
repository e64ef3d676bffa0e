package motion

import (
	"math"

	"github.com/jbeda/geom"

	"github.com/hupe1980/crowdflow/core"
	"github.com/hupe1980/crowdflow/geo"
)

// CollisionFreeSpeed advances agents with a speed-selection model: the agent
// always heads straight for its target and only its scalar speed is reduced,
// proportionally to the smallest frontal gap divided by the configured time
// gap. Unlike the social-force model there is no inertia; velocity is chosen
// fresh every step, which makes the model immune to force overshoot.
type CollisionFreeSpeed struct {
	params core.CollisionFreeSpeedParams
	env    Environment
}

// NewCollisionFreeSpeed creates the integrator.
func NewCollisionFreeSpeed(params core.CollisionFreeSpeedParams, env Environment) *CollisionFreeSpeed {
	return &CollisionFreeSpeed{params: params, env: env}
}

// Kind implements Integrator.
func (m *CollisionFreeSpeed) Kind() core.ModelKind { return core.ModelCollisionFreeSpeed }

// Advance moves one agent by one time step. Arrived agents are untouched.
func (m *CollisionFreeSpeed) Advance(ag *core.Agent, neighbors []Neighbor, dt float64) {
	if ag.Arrived() {
		return
	}

	target, done := selectTarget(ag)
	if done {
		arrive(ag)
		return
	}

	diff := target.Minus(ag.Pos)
	dist := diff.Magnitude()
	if dist == 0 {
		ag.Vel = geom.Coord{}
		classify(ag)
		return
	}
	dir := diff.Times(1 / dist)

	speed := m.params.DesiredSpeed
	if gap, ok := m.frontalGap(ag, dir, neighbors); ok {
		speed = math.Min(speed, math.Max(0, gap/m.params.TimeGap))
	}
	if gap, ok := m.obstacleGap(ag); ok {
		speed = math.Min(speed, math.Max(0, gap/m.params.TimeGap))
	}

	ag.Vel = dir.Times(speed)
	ag.Pos = ag.Pos.Plus(ag.Vel.Times(dt))

	classify(ag)
}

// frontalGap returns the smallest surface-to-surface distance to a neighbor
// inside the agent's heading corridor (ahead of the agent, laterally within
// the sum of both radii).
func (m *CollisionFreeSpeed) frontalGap(ag *core.Agent, dir geom.Coord, neighbors []Neighbor) (float64, bool) {
	gap := math.Inf(1)
	found := false
	for _, nb := range neighbors {
		diff := nb.Pos.Minus(ag.Pos)
		dist := diff.Magnitude()
		if dist == 0 {
			continue
		}
		ahead := diff.X*dir.X + diff.Y*dir.Y
		if ahead <= 0 {
			continue
		}
		lateral := math.Abs(diff.X*dir.Y - diff.Y*dir.X)
		if lateral > ag.Radius+nb.Radius {
			continue
		}
		if g := dist - ag.Radius - nb.Radius; g < gap {
			gap, found = g, true
		}
	}
	return gap, found
}

// obstacleGap returns the smallest clearance between the agent surface and
// any obstacle edge within the agent's desired-speed reach.
func (m *CollisionFreeSpeed) obstacleGap(ag *core.Agent) (float64, bool) {
	reach := m.params.DesiredSpeed * m.params.TimeGap
	gap := math.Inf(1)
	found := false
	m.env.VisitObstacleEdges(func(a, b geom.Coord) {
		d := geo.DistanceToSegment(ag.Pos, a, b) - ag.Radius
		if d < reach && d < gap {
			gap, found = d, true
		}
	})
	return gap, found
}
