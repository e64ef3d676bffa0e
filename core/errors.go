package core

import "fmt"

var (
	// ErrGeometryInvalid is returned before any simulation starts when the
	// scenario lacks required elements or contains malformed geometry.
	ErrGeometryInvalid = fmt.Errorf("geometry invalid")

	// ErrIntegrationFailure is returned when the integrator produces a
	// non-finite position or velocity. It is fatal for the run; frames
	// emitted before the failure remain valid.
	ErrIntegrationFailure = fmt.Errorf("integration failure")

	// ErrSimulatorNotFound is returned when no simulator is registered for
	// the requested model kind.
	ErrSimulatorNotFound = fmt.Errorf("simulator not found")

	// ErrRunNotFound is returned when a run ID does not identify an active
	// or recorded run.
	ErrRunNotFound = fmt.Errorf("run not found")

	// ErrRunLimit is returned when starting a run would exceed the engine's
	// concurrent run limit.
	ErrRunLimit = fmt.Errorf("concurrent run limit reached")
)
