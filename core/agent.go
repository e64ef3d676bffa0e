package core

import (
	"math"

	"github.com/jbeda/geom"
)

// AgentState enumerates the agent lifecycle:
//
//	spawned → moving ⇄ waiting → arrived
//
// Arrived is terminal and sticky; once set the agent is excluded from force
// computation and its velocity stays zero.
type AgentState string

const (
	// StateSpawned marks an agent that has been placed but not yet stepped.
	StateSpawned AgentState = "spawned"
	// StateMoving marks an agent whose speed is at or above the waiting threshold.
	StateMoving AgentState = "moving"
	// StateWaiting marks an agent that is effectively standing still.
	StateWaiting AgentState = "waiting"
	// StateArrived marks an agent that reached the end of its path. Terminal.
	StateArrived AgentState = "arrived"
)

// Agent is the mutable kinematic state of one pedestrian. It is owned
// exclusively by its simulation run: created at initialization, mutated every
// step by the integrator and never shared outside the run.
type Agent struct {
	ID           string
	Pos          geom.Coord
	Vel          geom.Coord
	Radius       float64
	DesiredSpeed float64
	Path         Path
	// PathCursor is the index of the last path point the agent was nearest
	// to. Target selection never moves it backwards, so agents do not regress
	// along their route.
	PathCursor int
	State      AgentState
}

// Arrived reports whether the agent is in its terminal state.
func (a *Agent) Arrived() bool { return a.State == StateArrived }

// Speed returns the magnitude of the agent's velocity.
func (a *Agent) Speed() float64 { return a.Vel.Magnitude() }

// Finite reports whether position and velocity are free of NaN/Inf. A false
// result is an integration failure and fatal for the run.
func (a *Agent) Finite() bool {
	for _, v := range [...]float64{a.Pos.X, a.Pos.Y, a.Vel.X, a.Vel.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Snapshot captures the agent's kinematic state for inclusion in a Frame.
func (a *Agent) Snapshot() AgentSnapshot {
	return AgentSnapshot{
		ID:     a.ID,
		X:      a.Pos.X,
		Y:      a.Pos.Y,
		Radius: a.Radius,
		VX:     a.Vel.X,
		VY:     a.Vel.Y,
		State:  a.State,
	}
}
