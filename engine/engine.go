// Package engine orchestrates simulation runs: simulator selection by model
// kind, per-run goroutines streaming frames over channels, frame persistence
// to a RunStore and cooperative cancellation. The engine itself holds no
// simulation state; every run is an isolated session advanced by its own
// SimulationRun.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/hupe1980/crowdflow/core"
	"github.com/hupe1980/crowdflow/logging"
	"github.com/hupe1980/crowdflow/scenario"
	"github.com/hupe1980/crowdflow/session"
	"github.com/hupe1980/crowdflow/sim"
)

// Config defines tuning parameters for the engine's operational behavior.
type Config struct {
	// MaxConcurrentRuns limits the number of simulation runs that can
	// execute simultaneously. Set to 0 for unlimited.
	MaxConcurrentRuns int

	// FrameBufferSize sets the channel buffer size for frame streaming.
	// Larger buffers decouple the stepping loop from slow consumers at the
	// cost of memory.
	FrameBufferSize int
}

// DefaultConfig provides production-ready defaults.
var DefaultConfig = Config{
	MaxConcurrentRuns: 10,
	FrameBufferSize:   256,
}

// Options configures an Engine instance using the functional options pattern.
type Options struct {
	// Config contains operational parameters for the engine behavior.
	Config Config

	// RunStore persists run records and frame history. Defaults to an
	// in-memory implementation.
	RunStore core.RunStore

	// Logger provides structured logging. Defaults to NoOp.
	Logger logging.Logger

	// Simulators to register in addition to the built-in internal models.
	// A simulator registered here for an already-covered kind replaces the
	// built-in one.
	Simulators []core.Simulator
}

// Engine is the core.Engine implementation. It validates scenarios, selects
// the simulator matching the configured model kind and streams frames as the
// run advances. Multiple runs execute in parallel; each run is a single
// ownership domain stepped by exactly one goroutine.
type Engine struct {
	store  core.RunStore
	logger logging.Logger
	config Config

	simulators map[core.ModelKind]core.Simulator
	mu         sync.RWMutex

	activeRuns map[string]context.CancelFunc
	runsMu     sync.RWMutex
}

// New creates an Engine with the self-contained social-force and
// collision-free speed simulators pre-registered.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:   DefaultConfig,
		RunStore: session.NewInMemoryStore(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	e := &Engine{
		store:      opts.RunStore,
		logger:     opts.Logger,
		config:     opts.Config,
		simulators: make(map[core.ModelKind]core.Simulator),
		activeRuns: make(map[string]context.CancelFunc),
	}

	e.Register(sim.New(core.ModelSocialForce, func(o *sim.Options) { o.Logger = opts.Logger }))
	e.Register(sim.New(core.ModelCollisionFreeSpeed, func(o *sim.Options) { o.Logger = opts.Logger }))
	for _, s := range opts.Simulators {
		e.Register(s)
	}
	return e
}

// Register adds a simulator, replacing any previous one for the same kind.
func (e *Engine) Register(s core.Simulator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.simulators[s.Kind()] = s
}

// Simulator retrieves a registered simulator by model kind.
func (e *Engine) Simulator(kind core.ModelKind) (core.Simulator, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.simulators[kind]
	return s, ok
}

// Run starts an asynchronous simulation run.
//
// The scenario and config are validated first; validation failures are
// returned immediately and no run is created. On success the run ID, a frame
// channel and a one-slot error channel are returned. Frames stream in real
// time and are simultaneously appended to the RunStore. The frame channel is
// closed when the run completes, errors or is cancelled; frames produced
// before a fault are always delivered, and a terminal fault is surfaced on
// the error channel after the last valid frame.
func (e *Engine) Run(ctx context.Context, sc *core.Scenario, cfg core.RunConfig) (string, <-chan core.Frame, <-chan error, error) {
	if err := scenario.Validate(sc); err != nil {
		return "", nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, nil, err
	}

	simulator, ok := e.Simulator(cfg.Model.Kind)
	if !ok {
		return "", nil, nil, fmt.Errorf("%w: model %q", core.ErrSimulatorNotFound, cfg.Model.Kind)
	}

	runID := uuid.NewString()

	e.runsMu.Lock()
	if e.config.MaxConcurrentRuns > 0 && len(e.activeRuns) >= e.config.MaxConcurrentRuns {
		e.runsMu.Unlock()
		return "", nil, nil, fmt.Errorf("%w: %d active", core.ErrRunLimit, e.config.MaxConcurrentRuns)
	}
	runCtx, cancel := context.WithCancel(ctx)
	e.activeRuns[runID] = cancel
	e.runsMu.Unlock()

	run, err := simulator.NewRun(sc, cfg)
	if err != nil {
		e.unregisterRun(runID)
		cancel()
		return "", nil, nil, fmt.Errorf("failed to initialize run: %w", err)
	}

	if _, err := e.store.Create(runID); err != nil {
		e.unregisterRun(runID)
		cancel()
		return "", nil, nil, fmt.Errorf("failed to create run record: %w", err)
	}

	framesCh := make(chan core.Frame, e.config.FrameBufferSize)
	errorsCh := make(chan error, 1)

	e.logger.Info("run started", "run", runID, "model", string(cfg.Model.Kind))

	go func() {
		defer func() {
			close(framesCh)
			close(errorsCh)
			cancel()
			e.unregisterRun(runID)
		}()
		e.loop(runCtx, runID, run, framesCh, errorsCh)
	}()

	return runID, framesCh, errorsCh, nil
}

// loop drives one run to completion, streaming and persisting each frame.
// Cancellation is cooperative: the context is checked between steps, so all
// frames produced before cancellation are emitted.
func (e *Engine) loop(ctx context.Context, runID string, run core.SimulationRun, framesCh chan<- core.Frame, errorsCh chan<- error) {
	emit := func(f core.Frame) bool {
		if err := e.store.AppendFrame(runID, f); err != nil {
			e.logger.Error("failed to persist frame", "run", runID, "error", err)
		}
		select {
		case framesCh <- f:
			return true
		case <-ctx.Done():
			return false
		}
	}

	e.setStatus(runID, core.RunStatusRunning)

	// Initial frame at t=0, before the first step.
	if !emit(run.Snapshot()) {
		e.finish(runID, run, core.RunStatusCancelled)
		return
	}

	for run.Status() == core.RunStatusInitialized || run.Status() == core.RunStatusRunning {
		select {
		case <-ctx.Done():
			e.finish(runID, run, core.RunStatusCancelled)
			return
		default:
		}

		frame, err := run.Step()
		if err != nil {
			e.logger.Error("run failed", "run", runID, "error", err)
			if serr := e.store.SetError(runID, err.Error()); serr != nil {
				e.logger.Error("failed to record run error", "run", runID, "error", serr)
			}
			errorsCh <- err
			return
		}
		if !emit(frame) {
			e.finish(runID, run, core.RunStatusCancelled)
			return
		}
	}

	e.finish(runID, run, run.Status())
}

func (e *Engine) finish(runID string, run core.SimulationRun, status core.RunStatus) {
	if err := e.store.SetResult(runID, run.Result()); err != nil {
		e.logger.Error("failed to record run result", "run", runID, "error", err)
	}
	e.setStatus(runID, status)
	e.logger.Info("run finished", "run", runID, "status", string(status), "time", run.Elapsed())
}

func (e *Engine) setStatus(runID string, st core.RunStatus) {
	if err := e.store.SetStatus(runID, st); err != nil {
		e.logger.Error("failed to update run status", "run", runID, "error", err)
	}
}

// StopRun forcibly terminates a specific active run by its ID. Frames
// produced so far remain in the RunStore.
func (e *Engine) StopRun(runID string) error {
	e.runsMu.RLock()
	cancel, ok := e.activeRuns[runID]
	e.runsMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrRunNotFound, runID)
	}
	cancel()
	return nil
}

// Record returns the stored record (status, frames, result) for a run.
func (e *Engine) Record(runID string) (*core.RunRecord, error) {
	return e.store.Get(runID)
}

func (e *Engine) unregisterRun(runID string) {
	e.runsMu.Lock()
	delete(e.activeRuns, runID)
	e.runsMu.Unlock()
}
