package motion

import (
	"math"
	"math/rand"

	"github.com/jbeda/geom"

	"github.com/hupe1980/crowdflow/core"
	"github.com/hupe1980/crowdflow/geo"
)

// SocialForce advances agents with the social-force model: a goal-attraction
// force plus short-range exponential repulsion from other agents and obstacle
// edges, behavioral noise, explicit-Euler velocity integration and a speed
// cap at the desired speed.
//
// Integration is first-order and fixed-step, chosen for determinism and
// simplicity over energy conservation. Known limitation: stiff force
// combinations can overshoot at large time steps; the cap bounds speed, not
// force.
type SocialForce struct {
	params core.SocialForceParams
	env    Environment
	rng    *rand.Rand
}

// NewSocialForce creates the integrator. The RNG is owned by the run and is
// the sole source of the stochastic force, keeping runs reproducible for a
// fixed seed.
func NewSocialForce(params core.SocialForceParams, env Environment, rng *rand.Rand) *SocialForce {
	return &SocialForce{params: params, env: env, rng: rng}
}

// Kind implements Integrator.
func (sf *SocialForce) Kind() core.ModelKind { return core.ModelSocialForce }

// Advance moves one agent by one time step. Arrived agents are untouched.
func (sf *SocialForce) Advance(ag *core.Agent, neighbors []Neighbor, dt float64) {
	if ag.Arrived() {
		return
	}

	target, done := selectTarget(ag)
	if done {
		arrive(ag)
		return
	}

	p := sf.params
	force := sf.desiredForce(ag, target)
	force = force.Plus(sf.agentRepulsion(ag, neighbors))
	force = force.Plus(sf.obstacleRepulsion(ag))
	force = force.Plus(geom.Coord{
		X: (sf.rng.Float64()*2 - 1) * p.RandomForce,
		Y: (sf.rng.Float64()*2 - 1) * p.RandomForce,
	})

	ag.Vel = ag.Vel.Plus(force.Times(dt))
	if speed := ag.Vel.Magnitude(); speed > p.DesiredSpeed {
		ag.Vel = ag.Vel.Times(p.DesiredSpeed / speed)
	}
	ag.Pos = ag.Pos.Plus(ag.Vel.Times(dt))

	classify(ag)
}

// desiredForce attracts the agent toward its target at desired speed, scaled
// by the relaxation time.
func (sf *SocialForce) desiredForce(ag *core.Agent, target geom.Coord) geom.Coord {
	diff := target.Minus(ag.Pos)
	dist := diff.Magnitude()
	if dist == 0 {
		return geom.Coord{}
	}
	return diff.Times(sf.params.DesiredSpeed / (sf.params.RelaxationTime * dist))
}

// agentRepulsion sums the short-range exponential repulsion from every
// neighbor within the cutoff. The decay is exponential, not inverse-square:
// strong near contact, vanishing quickly at range.
func (sf *SocialForce) agentRepulsion(ag *core.Agent, neighbors []Neighbor) geom.Coord {
	p := sf.params
	cutoff := p.RepulsionRange * 5
	var total geom.Coord
	for _, nb := range neighbors {
		diff := nb.Pos.Minus(ag.Pos)
		dist := diff.Magnitude()
		if dist == 0 || dist > cutoff {
			continue
		}
		minSep := ag.Radius + nb.Radius + separationBuffer
		strength := p.RepulsionStrength * 2 * math.Exp(-(dist-minSep)/p.RepulsionRange)
		// Outward normal points from the neighbor toward this agent.
		total = total.Plus(diff.Times(-strength / dist))
	}
	return total
}

// obstacleRepulsion sums repulsion from every obstacle edge within the
// cutoff, directed along the edge normal sign-corrected to point away from
// the edge toward the agent.
func (sf *SocialForce) obstacleRepulsion(ag *core.Agent) geom.Coord {
	p := sf.params
	cutoff := p.ObstacleRepulsionRange * 5
	var total geom.Coord
	sf.env.VisitObstacleEdges(func(a, b geom.Coord) {
		dist := geo.DistanceToSegment(ag.Pos, a, b)
		if dist > cutoff {
			return
		}
		edge := b.Minus(a)
		length := edge.Magnitude()
		if length == 0 {
			return
		}
		normal := geom.Coord{X: -edge.Y / length, Y: edge.X / length}
		rel := ag.Pos.Minus(a)
		if rel.X*normal.X+rel.Y*normal.Y < 0 {
			normal = normal.Times(-1)
		}
		strength := p.ObstacleRepulsionStrength * 3 * math.Exp(-(dist-ag.Radius)/p.ObstacleRepulsionRange)
		total = total.Plus(normal.Times(strength))
	})
	return total
}
