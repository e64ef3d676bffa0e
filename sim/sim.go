// Package sim provides the self-contained simulation engine: agent spawning,
// initial path planning and the fixed-step clock that drives a motion model
// until every agent arrives or the time budget is spent. It implements
// core.Simulator for the internal model kinds; delegation to an external
// pedestrian-dynamics engine lives in the oracle package behind the same
// interface.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/hupe1980/crowdflow/core"
	"github.com/hupe1980/crowdflow/geo"
	"github.com/hupe1980/crowdflow/internal/util"
	"github.com/hupe1980/crowdflow/logging"
	"github.com/hupe1980/crowdflow/motion"
)

// Simulator builds runs for one of the self-contained motion models.
type Simulator struct {
	kind   core.ModelKind
	logger logging.Logger
}

// Options configures a Simulator.
type Options struct {
	// Logger receives per-run diagnostics (spawn counts, degraded paths).
	Logger logging.Logger
}

// New creates a Simulator for the given internal model kind
// (core.ModelSocialForce or core.ModelCollisionFreeSpeed).
func New(kind core.ModelKind, optFns ...func(o *Options)) *Simulator {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Simulator{kind: kind, logger: opts.Logger}
}

// Kind implements core.Simulator.
func (s *Simulator) Kind() core.ModelKind { return s.kind }

// NewRun places agents from the scenario's sources and start points, assigns
// each its nearest exit and an initial planned path, and returns a run ready
// to be stepped. Callers are expected to have validated scenario and config.
func (s *Simulator) NewRun(scenario *core.Scenario, cfg core.RunConfig) (core.SimulationRun, error) {
	index := geo.NewIndex(scenario)
	rng := util.NewRand(cfg.Seed)

	integrator, err := s.newIntegrator(cfg, index, rng)
	if err != nil {
		return nil, err
	}

	r := &Run{
		index:      index,
		integrator: integrator,
		dt:         cfg.TimeStep,
		maxTime:    cfg.TotalTime,
		status:     core.RunStatusInitialized,
		logger:     s.logger,
		rng:        rng,
	}
	if err := r.spawn(scenario, pedestrianSpeed(cfg.Model)); err != nil {
		return nil, err
	}

	s.logger.Info("simulation run initialized",
		"model", string(s.kind), "agents", len(r.agents), "dt", cfg.TimeStep, "maxTime", cfg.TotalTime)
	return r, nil
}

func (s *Simulator) newIntegrator(cfg core.RunConfig, index *geo.Index, rng *rand.Rand) (motion.Integrator, error) {
	switch s.kind {
	case core.ModelSocialForce:
		return motion.NewSocialForce(cfg.Model.SocialForceOrDefault(), index, rng), nil
	case core.ModelCollisionFreeSpeed:
		return motion.NewCollisionFreeSpeed(cfg.Model.CollisionFreeSpeedOrDefault(), index), nil
	default:
		return nil, fmt.Errorf("%w: sim does not implement model %q", core.ErrSimulatorNotFound, s.kind)
	}
}

// pedestrianSpeed extracts the desired walking speed for the configured model.
func pedestrianSpeed(m core.ModelConfig) float64 {
	if m.Kind == core.ModelCollisionFreeSpeed {
		return m.CollisionFreeSpeedOrDefault().DesiredSpeed
	}
	return m.SocialForceOrDefault().DesiredSpeed
}
