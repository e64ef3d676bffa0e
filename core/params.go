package core

import "fmt"

// ModelKind selects the motion model a run is driven by. Selection is always
// explicit configuration; there is no runtime availability probing.
type ModelKind string

const (
	// ModelSocialForce is the self-contained social-force integrator.
	ModelSocialForce ModelKind = "SocialForceModel"
	// ModelCollisionFreeSpeed is the self-contained collision-free speed model.
	ModelCollisionFreeSpeed ModelKind = "CollisionFreeSpeedModel"
	// ModelExternal delegates stepping to an external pedestrian-dynamics
	// engine through the oracle adapter.
	ModelExternal ModelKind = "ExternalModel"
)

// SocialForceParams are the coefficients of the social-force model. All
// values must be positive.
type SocialForceParams struct {
	DesiredSpeed              float64 `json:"desiredSpeed" yaml:"desiredSpeed"`
	RelaxationTime            float64 `json:"relaxationTime" yaml:"relaxationTime"`
	RepulsionStrength         float64 `json:"repulsionStrength" yaml:"repulsionStrength"`
	RepulsionRange            float64 `json:"repulsionRange" yaml:"repulsionRange"`
	ObstacleRepulsionStrength float64 `json:"obstacleRepulsionStrength" yaml:"obstacleRepulsionStrength"`
	ObstacleRepulsionRange    float64 `json:"obstacleRepulsionRange" yaml:"obstacleRepulsionRange"`
	RandomForce               float64 `json:"randomForce" yaml:"randomForce"`
}

// DefaultSocialForceParams returns the documented default coefficients.
func DefaultSocialForceParams() SocialForceParams {
	return SocialForceParams{
		DesiredSpeed:              1.4,
		RelaxationTime:            0.5,
		RepulsionStrength:         2.0,
		RepulsionRange:            0.4,
		ObstacleRepulsionStrength: 10.0,
		ObstacleRepulsionRange:    0.2,
		RandomForce:               0.1,
	}
}

// CollisionFreeSpeedParams are the parameters of the collision-free speed
// model. TimeGap is the headway kept to the closest frontal neighbor.
type CollisionFreeSpeedParams struct {
	DesiredSpeed float64 `json:"desiredSpeed" yaml:"desiredSpeed"`
	TimeGap      float64 `json:"timeGap" yaml:"timeGap"`
}

// DefaultCollisionFreeSpeedParams returns the documented defaults.
func DefaultCollisionFreeSpeedParams() CollisionFreeSpeedParams {
	return CollisionFreeSpeedParams{DesiredSpeed: 1.4, TimeGap: 1.0}
}

// ModelConfig is a tagged variant: Kind names the model and exactly the
// matching parameter struct is consulted. Unset parameter structs fall back
// to the model defaults.
type ModelConfig struct {
	Kind               ModelKind                 `json:"kind" yaml:"kind"`
	SocialForce        *SocialForceParams        `json:"socialForce,omitempty" yaml:"socialForce,omitempty"`
	CollisionFreeSpeed *CollisionFreeSpeedParams `json:"collisionFreeSpeed,omitempty" yaml:"collisionFreeSpeed,omitempty"`
}

// DefaultModelConfig selects the social-force model with default coefficients.
func DefaultModelConfig() ModelConfig {
	p := DefaultSocialForceParams()
	return ModelConfig{Kind: ModelSocialForce, SocialForce: &p}
}

// SocialForceOrDefault returns the configured social-force coefficients or
// the defaults when none were supplied.
func (m ModelConfig) SocialForceOrDefault() SocialForceParams {
	if m.SocialForce != nil {
		return *m.SocialForce
	}
	return DefaultSocialForceParams()
}

// CollisionFreeSpeedOrDefault returns the configured collision-free speed
// parameters or the defaults when none were supplied.
func (m ModelConfig) CollisionFreeSpeedOrDefault() CollisionFreeSpeedParams {
	if m.CollisionFreeSpeed != nil {
		return *m.CollisionFreeSpeed
	}
	return DefaultCollisionFreeSpeedParams()
}

// Validate checks the tagged variant for positive coefficients.
func (m ModelConfig) Validate() error {
	switch m.Kind {
	case ModelSocialForce:
		p := m.SocialForceOrDefault()
		for name, v := range map[string]float64{
			"desiredSpeed":              p.DesiredSpeed,
			"relaxationTime":            p.RelaxationTime,
			"repulsionStrength":         p.RepulsionStrength,
			"repulsionRange":            p.RepulsionRange,
			"obstacleRepulsionStrength": p.ObstacleRepulsionStrength,
			"obstacleRepulsionRange":    p.ObstacleRepulsionRange,
		} {
			if v <= 0 {
				return fmt.Errorf("social force parameter %s must be positive, got %v", name, v)
			}
		}
		if p.RandomForce < 0 {
			return fmt.Errorf("social force parameter randomForce must not be negative, got %v", p.RandomForce)
		}
	case ModelCollisionFreeSpeed:
		p := m.CollisionFreeSpeedOrDefault()
		if p.DesiredSpeed <= 0 || p.TimeGap <= 0 {
			return fmt.Errorf("collision free speed parameters must be positive, got v0=%v timeGap=%v", p.DesiredSpeed, p.TimeGap)
		}
	case ModelExternal:
		// Parameters are interpreted by the external engine.
	default:
		return fmt.Errorf("unknown model kind %q", m.Kind)
	}
	return nil
}
