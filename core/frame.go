package core

// AgentSnapshot is one agent's kinematic state inside a Frame.
type AgentSnapshot struct {
	ID     string     `json:"id"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Radius float64    `json:"radius"`
	VX     float64    `json:"vx"`
	VY     float64    `json:"vy"`
	State  AgentState `json:"state"`
}

// Frame is an immutable snapshot of every agent at one point in simulated
// time. Frames are append-only: once emitted they are never mutated, and
// their timestamps are strictly increasing within a run.
type Frame struct {
	Time   float64         `json:"time"`
	Agents []AgentSnapshot `json:"agents"`
}

// RunResult is the final metadata record of a simulation run.
type RunResult struct {
	TotalTime  float64   `json:"simulationTime"`
	TimeStep   float64   `json:"timeStep"`
	Model      ModelKind `json:"modelName"`
	AgentCount int       `json:"agentCount"`
}
