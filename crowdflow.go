// Package crowdflow provides a high-level façade over the core Engine and
// service abstractions (run store, logging) enabling rapid construction of
// pedestrian-crowd simulations. Most applications interact with this package
// by:
//  1. Creating a Crowdflow via New() (optionally overriding defaults)
//  2. Submitting a scenario via Simulate (streaming) or SimulateSync
//  3. Consuming the resulting frame sequence and final run result
//
// The façade delegates orchestration to engine.Engine while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a structured logger and a
// tuned engine configuration.
package crowdflow

import (
	"context"

	"github.com/hupe1980/crowdflow/core"
	"github.com/hupe1980/crowdflow/engine"
	"github.com/hupe1980/crowdflow/logging"
	"github.com/hupe1980/crowdflow/session"
)

// Options configures the Crowdflow instance.
type Options struct {
	// EngineConfig tunes concurrency and frame buffering.
	EngineConfig engine.Config

	// RunStore keeps run records and frame history (defaults to in-memory).
	RunStore core.RunStore

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger

	// Simulators to register beyond the built-in internal models, e.g. the
	// oracle adapter for an external pedestrian-dynamics engine.
	Simulators []core.Simulator
}

// Crowdflow is the high-level façade aggregating the underlying engine and
// services.
type Crowdflow struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new Crowdflow instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) *Crowdflow {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		RunStore:     session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	e := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.RunStore = opts.RunStore
		o.Logger = opts.Logger
		o.Simulators = opts.Simulators
	})

	return &Crowdflow{opts: opts, engine: e}
}

// RegisterSimulator adds a simulator to the underlying engine.
func (c *Crowdflow) RegisterSimulator(s core.Simulator) { c.engine.Register(s) }

// Simulate starts an asynchronous run returning frame & error channels.
func (c *Crowdflow) Simulate(
	ctx context.Context,
	sc *core.Scenario,
	cfg core.RunConfig,
) (string, <-chan core.Frame, <-chan error, error) {
	return c.engine.Run(ctx, sc, cfg)
}

// StopRun cancels a specific active run.
func (c *Crowdflow) StopRun(runID string) error { return c.engine.StopRun(runID) }

// Record returns the stored record (status, frames, result) for a run.
func (c *Crowdflow) Record(runID string) (*core.RunRecord, error) {
	return c.engine.Record(runID)
}

// SimulateSync is a synchronous helper that drains the async channels,
// accumulates frames and returns them with the final result. On a terminal
// fault the frames produced before it are returned alongside the error.
func (c *Crowdflow) SimulateSync(
	ctx context.Context,
	sc *core.Scenario,
	cfg core.RunConfig,
) (string, []core.Frame, core.RunResult, error) {
	runID, framesCh, errorsCh, err := c.engine.Run(ctx, sc, cfg)
	if err != nil {
		return "", nil, core.RunResult{}, err
	}

	var frames []core.Frame
	result := func() core.RunResult {
		rec, recErr := c.engine.Record(runID)
		if recErr != nil {
			return core.RunResult{}
		}
		return rec.Result
	}

	for {
		select {
		case <-ctx.Done():
			// Context cancelled - return frames collected so far.
			return runID, frames, result(), ctx.Err()

		case frame, ok := <-framesCh:
			if !ok {
				// Frame channel closed - check for terminal error.
				select {
				case err := <-errorsCh:
					return runID, frames, result(), err
				default:
					return runID, frames, result(), nil
				}
			}
			frames = append(frames, frame)

		case err := <-errorsCh:
			if err != nil {
				// Drain frames emitted before the fault so the partial
				// history is complete.
				for frame := range framesCh {
					frames = append(frames, frame)
				}
				return runID, frames, result(), err
			}
		}
	}
}
