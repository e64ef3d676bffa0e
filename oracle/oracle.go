// Package oracle adapts an external native pedestrian-dynamics engine to the
// core.Simulator interface. The external engine is opaque: it owns the whole
// motion computation and this package only translates run lifecycle calls and
// frames. Selection between the oracle and the self-contained engine is an
// explicit configuration decision (core.ModelExternal), never an availability
// probe.
package oracle

import (
	"fmt"

	"github.com/hupe1980/crowdflow/core"
)

// Client is the minimal surface an external engine binding must provide.
// Implementations typically wrap an out-of-process simulator or a native
// library binding.
type Client interface {
	// StartRun initializes an external run and returns its handle.
	StartRun(scenario *core.Scenario, cfg core.RunConfig) (string, error)
	// StepRun advances the external run one time step and returns the frame.
	StepRun(handle string) (core.Frame, error)
	// CloseRun releases the external run's resources.
	CloseRun(handle string) error
}

// Simulator implements core.Simulator by delegating to a Client.
type Simulator struct {
	client Client
}

// New creates the adapter around an external engine client.
func New(client Client) *Simulator {
	return &Simulator{client: client}
}

// Kind implements core.Simulator.
func (s *Simulator) Kind() core.ModelKind { return core.ModelExternal }

// NewRun starts an external run and wraps it as a core.SimulationRun.
func (s *Simulator) NewRun(scenario *core.Scenario, cfg core.RunConfig) (core.SimulationRun, error) {
	handle, err := s.client.StartRun(scenario, cfg)
	if err != nil {
		return nil, fmt.Errorf("external engine failed to start run: %w", err)
	}
	agents := 0
	for _, src := range scenario.Sources {
		agents += src.AgentCount
	}
	agents += len(scenario.StartPoints)
	return &run{client: s.client, handle: handle, cfg: cfg, agentCount: agents, status: core.RunStatusInitialized}, nil
}

// run is one live external simulation run.
type run struct {
	client     Client
	handle     string
	cfg        core.RunConfig
	agentCount int
	elapsed    float64
	last       core.Frame
	status     core.RunStatus
	stepErr    error
}

// Step implements core.SimulationRun by delegating to the external engine.
// A client error is terminal for the run and releases the external handle.
func (r *run) Step() (core.Frame, error) {
	switch r.status {
	case core.RunStatusError:
		return r.last, r.stepErr
	case core.RunStatusCompleted, core.RunStatusCancelled:
		return r.last, nil
	}
	r.status = core.RunStatusRunning

	frame, err := r.client.StepRun(r.handle)
	if err != nil {
		r.stepErr = fmt.Errorf("external engine step failed: %w", err)
		r.status = core.RunStatusError
		r.close()
		return r.last, r.stepErr
	}
	r.elapsed = frame.Time
	r.last = frame

	if r.allArrived(frame) || r.elapsed >= r.cfg.TotalTime {
		r.status = core.RunStatusCompleted
		r.close()
	}
	return frame, nil
}

// Snapshot implements core.SimulationRun.
func (r *run) Snapshot() core.Frame { return r.last }

// Status implements core.SimulationRun.
func (r *run) Status() core.RunStatus { return r.status }

// Elapsed implements core.SimulationRun.
func (r *run) Elapsed() float64 { return r.elapsed }

// Result implements core.SimulationRun.
func (r *run) Result() core.RunResult {
	return core.RunResult{
		TotalTime:  r.elapsed,
		TimeStep:   r.cfg.TimeStep,
		Model:      core.ModelExternal,
		AgentCount: r.agentCount,
	}
}

func (r *run) allArrived(f core.Frame) bool {
	if len(f.Agents) == 0 {
		return false
	}
	for _, ag := range f.Agents {
		if ag.State != core.StateArrived {
			return false
		}
	}
	return true
}

// close releases the external handle, keeping the first fault if one is
// already recorded.
func (r *run) close() {
	if err := r.client.CloseRun(r.handle); err != nil && r.stepErr == nil {
		r.stepErr = fmt.Errorf("external engine close failed: %w", err)
	}
}
