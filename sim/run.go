package sim

import (
	"fmt"
	"math/rand"

	"github.com/hupe1980/crowdflow/core"
	"github.com/hupe1980/crowdflow/geo"
	"github.com/hupe1980/crowdflow/logging"
	"github.com/hupe1980/crowdflow/motion"
)

// Run is one live simulation: the sole owner of its agents and clock. It is
// created by Simulator.NewRun and stepped by a single caller; Step is not
// reentrant. Independent runs share no mutable state.
type Run struct {
	index      *geo.Index
	integrator motion.Integrator
	agents     []*core.Agent
	elapsed    float64
	dt         float64
	maxTime    float64
	status     core.RunStatus
	stepErr    error
	logger     logging.Logger
	rng        *rand.Rand
}

// Status implements core.SimulationRun.
func (r *Run) Status() core.RunStatus { return r.status }

// Elapsed implements core.SimulationRun.
func (r *Run) Elapsed() float64 { return r.elapsed }

// Agents exposes the run's agents for inspection. The returned slice must
// not be retained across steps.
func (r *Run) Agents() []*core.Agent { return r.agents }

// Result implements core.SimulationRun.
func (r *Run) Result() core.RunResult {
	return core.RunResult{
		TotalTime:  r.elapsed,
		TimeStep:   r.dt,
		Model:      r.integrator.Kind(),
		AgentCount: len(r.agents),
	}
}

// Snapshot assembles a frame from the current agent states without advancing
// the clock.
func (r *Run) Snapshot() core.Frame {
	snaps := make([]core.AgentSnapshot, len(r.agents))
	for i, ag := range r.agents {
		snaps[i] = ag.Snapshot()
	}
	return core.Frame{Time: r.elapsed, Agents: snaps}
}

// Step advances every agent by exactly one time step and returns the
// resulting frame.
//
// Neighbor positions are snapshotted before any agent is mutated, so the force
// pass reads every other agent's previous-step state regardless of update
// order; this is the invariant that makes runs deterministic for a fixed
// seed. A non-finite position or velocity is fatal: the run transitions to
// the error status and keeps returning the last valid frame with the error.
func (r *Run) Step() (core.Frame, error) {
	switch r.status {
	case core.RunStatusError:
		return r.Snapshot(), r.stepErr
	case core.RunStatusCompleted, core.RunStatusCancelled:
		return r.Snapshot(), nil
	}
	r.status = core.RunStatusRunning

	snapshots := make([]motion.Neighbor, 0, len(r.agents))
	arrived := make([]bool, len(r.agents))
	for i, ag := range r.agents {
		arrived[i] = ag.Arrived()
		if !arrived[i] {
			snapshots = append(snapshots, motion.Neighbor{Pos: ag.Pos, Radius: ag.Radius})
		}
	}

	allArrived := true
	neighborIdx := 0
	for i, ag := range r.agents {
		if arrived[i] {
			continue
		}
		neighbors := excluding(snapshots, neighborIdx)
		neighborIdx++

		r.integrator.Advance(ag, neighbors, r.dt)
		if !ag.Finite() {
			r.stepErr = fmt.Errorf("%w: agent %s produced non-finite state at t=%.3f", core.ErrIntegrationFailure, ag.ID, r.elapsed)
			r.status = core.RunStatusError
			r.logger.Error("integration failure", "agent", ag.ID, "time", r.elapsed)
			return r.Snapshot(), r.stepErr
		}
		if !ag.Arrived() {
			allArrived = false
		}
	}

	r.elapsed += r.dt
	frame := r.Snapshot()

	if allArrived {
		r.status = core.RunStatusCompleted
		r.logger.Info("all agents arrived", "time", r.elapsed)
	} else if r.elapsed >= r.maxTime {
		r.status = core.RunStatusCompleted
		r.logger.Info("time budget exhausted", "time", r.elapsed)
	}
	return frame, nil
}

// Cancel marks the run cancelled; further steps return the terminal frame.
func (r *Run) Cancel() {
	if r.status == core.RunStatusRunning || r.status == core.RunStatusInitialized {
		r.status = core.RunStatusCancelled
	}
}

// excluding returns a copy of the neighbor slice without element i.
func excluding(all []motion.Neighbor, i int) []motion.Neighbor {
	out := make([]motion.Neighbor, 0, len(all)-1)
	out = append(out, all[:i]...)
	return append(out, all[i+1:]...)
}
