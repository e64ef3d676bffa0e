// Package motion implements the per-agent motion models that advance an
// agent's kinematic state by one fixed time step. One integrator exists per
// model kind, behind the shared Integrator interface, mirroring the tagged
// parameter variants in core.
package motion

import (
	"math"

	"github.com/jbeda/geom"

	"github.com/hupe1980/crowdflow/core"
)

// waitingSpeed is the threshold below which a non-arrived agent is reported
// as waiting rather than moving.
const waitingSpeed = 0.05

// separationBuffer is added to the sum of two agent radii when computing the
// minimum comfortable separation.
const separationBuffer = 0.2

// Neighbor is the read-only view of another agent used during force
// computation. Neighbors are snapshotted from the previous step before any
// agent is mutated, so results do not depend on update order; arrived agents
// are excluded.
type Neighbor struct {
	Pos    geom.Coord
	Radius float64
}

// Environment exposes the static obstacle geometry to the integrators.
// *geo.Index satisfies it.
type Environment interface {
	VisitObstacleEdges(fn func(a, b geom.Coord))
}

// Integrator advances one agent by one time step given the previous-step
// state of all other agents. Implementations mutate only the passed agent.
type Integrator interface {
	Kind() core.ModelKind
	Advance(ag *core.Agent, neighbors []Neighbor, dt float64)
}

// selectTarget picks the agent's current steering target: the path point
// nearest the agent at or after its cursor, advanced by one. The cursor never
// moves backwards, so agents do not regress along their route. The second
// return value is true when the agent is within its radius of the final path
// point and should transition to arrived.
func selectTarget(ag *core.Agent) (geom.Coord, bool) {
	pts := ag.Path.Points
	if len(pts) == 0 {
		return ag.Pos, true
	}

	final := pts[len(pts)-1]
	if ag.Pos.Minus(final).Magnitude() <= ag.Radius {
		return final, true
	}

	nearest := ag.PathCursor
	best := math.Inf(1)
	for i := ag.PathCursor; i < len(pts); i++ {
		if d := ag.Pos.Minus(pts[i]).Magnitude(); d < best {
			best, nearest = d, i
		}
	}
	ag.PathCursor = nearest

	next := nearest + 1
	if next > len(pts)-1 {
		next = len(pts) - 1
	}
	return pts[next], false
}

// arrive puts the agent into its terminal state.
func arrive(ag *core.Agent) {
	ag.State = core.StateArrived
	ag.Vel = geom.Coord{}
}

// classify sets moving/waiting from the agent's post-step speed.
func classify(ag *core.Agent) {
	if ag.Speed() < waitingSpeed {
		ag.State = core.StateWaiting
	} else {
		ag.State = core.StateMoving
	}
}
