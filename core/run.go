package core

import (
	"context"
	"fmt"
)

// RunStatus tracks the lifecycle of a simulation run.
type RunStatus string

const (
	// RunStatusInitialized marks a run that has agents placed but no steps taken.
	RunStatusInitialized RunStatus = "initialized"
	// RunStatusRunning marks a run that is being stepped.
	RunStatusRunning RunStatus = "running"
	// RunStatusCompleted marks a run that finished normally.
	RunStatusCompleted RunStatus = "completed"
	// RunStatusCancelled marks a run terminated early by its caller.
	RunStatusCancelled RunStatus = "cancelled"
	// RunStatusError marks a run halted by an unrecoverable fault. The frame
	// history produced up to the fault remains valid.
	RunStatusError RunStatus = "error"
)

// RunConfig carries the per-run simulation parameters.
type RunConfig struct {
	// TotalTime is the simulated time budget in seconds.
	TotalTime float64 `json:"simulationTime" yaml:"simulationTime"`
	// TimeStep is the fixed integration step Δt in seconds, 0 < Δt ≤ 1.
	TimeStep float64 `json:"timeStep" yaml:"timeStep"`
	// Seed drives all stochastic behavior of the run. Runs with equal seed,
	// scenario and parameters produce identical frame sequences.
	Seed int64 `json:"seed" yaml:"seed"`
	// Model selects and parameterizes the motion model.
	Model ModelConfig `json:"model" yaml:"model"`
}

// Validate checks the run parameters against their documented bounds.
func (c RunConfig) Validate() error {
	if c.TotalTime <= 0 {
		return fmt.Errorf("simulation time must be positive, got %v", c.TotalTime)
	}
	if c.TimeStep <= 0 || c.TimeStep > 1 {
		return fmt.Errorf("time step must be in (0, 1], got %v", c.TimeStep)
	}
	return c.Model.Validate()
}

// SimulationRun is one live simulation owned by a single caller. Step is not
// reentrant and must not be invoked concurrently with itself; independent
// runs share no mutable state and may execute fully in parallel.
type SimulationRun interface {
	// Step advances the run by exactly one time step and returns the
	// resulting frame. After the run leaves the running state Step keeps
	// returning the terminal frame together with a nil or terminal error.
	Step() (Frame, error)
	// Snapshot returns the current frame without advancing time.
	Snapshot() Frame
	// Status returns the run lifecycle status.
	Status() RunStatus
	// Elapsed returns the simulated time in seconds.
	Elapsed() float64
	// Result returns the final metadata record of the run.
	Result() RunResult
}

// Simulator creates simulation runs for one motion model kind. It is the
// capability interface behind which the self-contained motion engine and the
// external-engine adapter are interchangeable.
type Simulator interface {
	// Kind identifies the model this simulator implements.
	Kind() ModelKind
	// NewRun validates nothing; callers are expected to have validated the
	// scenario and config. It places agents, plans their initial paths and
	// returns a run ready to be stepped.
	NewRun(scenario *Scenario, cfg RunConfig) (SimulationRun, error)
}

// Engine orchestrates simulation runs: model selection, streaming, frame
// persistence and cancellation.
type Engine interface {
	// Run starts an asynchronous simulation returning the run ID plus frame
	// and error channels. The frame channel is closed when the run ends;
	// frames produced before an error or cancellation are always delivered.
	Run(ctx context.Context, scenario *Scenario, cfg RunConfig) (string, <-chan Frame, <-chan error, error)
	// StopRun cancels a specific active run.
	StopRun(runID string) error
}
