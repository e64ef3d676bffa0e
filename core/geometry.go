package core

import (
	"github.com/jbeda/geom"
)

// Polygon is an ordered ring of vertices, implicitly closed (the last vertex
// connects back to the first). Rings with fewer than three vertices are
// tolerated everywhere and simply contribute no geometry; zero-length edges
// are skipped by VisitEdges.
type Polygon struct {
	Points []geom.Coord `json:"points" yaml:"points"`
}

// Valid reports whether the polygon has enough vertices to enclose area.
func (p Polygon) Valid() bool { return len(p.Points) >= 3 }

// VisitEdges calls fn for every non-degenerate edge of the closed ring.
// Degenerate polygons yield no edges.
func (p Polygon) VisitEdges(fn func(a, b geom.Coord)) {
	if !p.Valid() {
		return
	}
	n := len(p.Points)
	for i := 0; i < n; i++ {
		a := p.Points[i]
		b := p.Points[(i+1)%n]
		if a.X == b.X && a.Y == b.Y {
			continue
		}
		fn(a, b)
	}
}

// Bounds returns the axis-aligned bounding box of the polygon. The zero Rect
// is returned for an empty polygon.
func (p Polygon) Bounds() geom.Rect {
	if len(p.Points) == 0 {
		return geom.Rect{}
	}
	r := geom.Rect{Min: p.Points[0], Max: p.Points[0]}
	for _, pt := range p.Points[1:] {
		r.ExpandToContainCoord(pt)
	}
	return r
}

// Waypoint is a named routing node. Connections are directed: an agent may
// travel from this waypoint to a listed neighbor but not implicitly back.
type Waypoint struct {
	ID          string     `json:"id" yaml:"id"`
	Position    geom.Coord `json:"position" yaml:"position"`
	Connections []string   `json:"connections,omitempty" yaml:"connections,omitempty"`
}

// Source is an axis-aligned spawn rectangle described by two opposite
// corners. AgentCount agents are placed uniformly at random inside it.
type Source struct {
	A          geom.Coord `json:"a" yaml:"a"`
	B          geom.Coord `json:"b" yaml:"b"`
	AgentCount int        `json:"agentCount" yaml:"agentCount"`
}

// Rect returns the normalized bounding rectangle of the source, regardless of
// the order the two corners were declared in.
func (s Source) Rect() geom.Rect {
	r := geom.Rect{Min: s.A, Max: s.A}
	r.ExpandToContainCoord(s.B)
	return r
}

// ExitRegion is a line segment agents try to reach; the routing goal is its
// midpoint.
type ExitRegion struct {
	A geom.Coord `json:"a" yaml:"a"`
	B geom.Coord `json:"b" yaml:"b"`
}

// Midpoint returns the segment midpoint used as the agent goal.
func (e ExitRegion) Midpoint() geom.Coord {
	return e.A.Plus(e.B).Times(0.5)
}

// Scenario aggregates the static venue geometry a simulation runs against.
// It is treated as immutable once handed to an Engine.
type Scenario struct {
	WalkableAreas []Polygon    `json:"walkableAreas" yaml:"walkableAreas"`
	Obstacles     []Polygon    `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`
	Sources       []Source     `json:"sources,omitempty" yaml:"sources,omitempty"`
	StartPoints   []geom.Coord `json:"startPoints,omitempty" yaml:"startPoints,omitempty"`
	Exits         []ExitRegion `json:"exits" yaml:"exits"`
	Waypoints     []Waypoint   `json:"waypoints,omitempty" yaml:"waypoints,omitempty"`
}

// Path is an ordered sequence of points from an agent's position to its goal,
// both inclusive. Degraded marks a best-effort path that could not be proven
// obstacle-free; the simulation proceeds on it regardless.
type Path struct {
	Points   []geom.Coord
	Degraded bool
}

// Goal returns the final path point. Calling Goal on an empty path returns
// the zero coordinate.
func (p Path) Goal() geom.Coord {
	if len(p.Points) == 0 {
		return geom.Coord{}
	}
	return p.Points[len(p.Points)-1]
}
