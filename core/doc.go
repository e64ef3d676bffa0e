// Package core defines the shared vocabulary of the crowdflow simulation
// engine: scenario geometry (polygons, waypoints, sources, exits), agents and
// their lifecycle states, frames, tagged model-parameter variants and the
// service interfaces (Engine, Simulator, RunStore) that the concrete packages
// implement. It intentionally contains no simulation logic so that every other
// package can depend on it without cycles.
package core
