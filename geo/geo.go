// Package geo implements the static geometry queries the planner and the
// integrators rely on: point-in-polygon, segment intersection, point-segment
// distance and obstacle blocking. Queries are O(edges); the Index satisfies
// the consumer-side interfaces in planner and motion, so a spatially
// accelerated implementation can be substituted without changing callers.
package geo

import (
	"math"

	"github.com/jbeda/geom"

	"github.com/hupe1980/crowdflow/core"
)

// parallelEps is the determinant magnitude below which two segments are
// treated as parallel and therefore non-intersecting.
const parallelEps = 1e-10

// PointInPolygon reports whether pt lies inside poly using a ray-casting
// parity test. Polygons with fewer than three vertices always return false.
// Points exactly on an edge may be reported on either side.
func PointInPolygon(pt geom.Coord, poly core.Polygon) bool {
	if !poly.Valid() {
		return false
	}
	inside := false
	n := len(poly.Points)
	j := n - 1
	for i := 0; i < n; i++ {
		pi, pj := poly.Points[i], poly.Points[j]
		if (pi.Y > pt.Y) != (pj.Y > pt.Y) &&
			pt.X < (pj.X-pi.X)*(pt.Y-pi.Y)/(pj.Y-pi.Y)+pi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// SegmentsIntersect reports whether the segments a1-a2 and b1-b2 cross.
// Parallel and near-parallel segments are treated as non-intersecting.
func SegmentsIntersect(a1, a2, b1, b2 geom.Coord) bool {
	d1 := a2.Minus(a1)
	d2 := b2.Minus(b1)

	det := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(det) < parallelEps {
		return false
	}

	t := ((b1.X-a1.X)*d2.Y - (b1.Y-a1.Y)*d2.X) / det
	u := ((b1.X-a1.X)*d1.Y - (b1.Y-a1.Y)*d1.X) / det
	return t >= 0 && t <= 1 && u >= 0 && u <= 1
}

// DistanceToSegment returns the distance from pt to the segment a-b, clamped
// to the endpoints. A zero-length segment degenerates to point distance.
func DistanceToSegment(pt, a, b geom.Coord) float64 {
	seg := b.Minus(a)
	lenSq := seg.X*seg.X + seg.Y*seg.Y
	if lenSq == 0 {
		return pt.Minus(a).Magnitude()
	}
	rel := pt.Minus(a)
	t := (rel.X*seg.X + rel.Y*seg.Y) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := a.Plus(seg.Times(t))
	return pt.Minus(closest).Magnitude()
}

// Index answers static-geometry queries for one scenario. It is immutable
// after construction and safe for concurrent reads.
type Index struct {
	walkable  []core.Polygon
	obstacles []core.Polygon
	exits     []core.ExitRegion
}

// NewIndex builds an Index over the scenario's static geometry. Malformed
// polygons (fewer than three vertices) are accepted and contribute nothing.
func NewIndex(sc *core.Scenario) *Index {
	ix := &Index{exits: sc.Exits}
	for _, p := range sc.WalkableAreas {
		if p.Valid() {
			ix.walkable = append(ix.walkable, p)
		}
	}
	for _, p := range sc.Obstacles {
		if p.Valid() {
			ix.obstacles = append(ix.obstacles, p)
		}
	}
	return ix
}

// SegmentBlocked reports whether the segment p1-p2 crosses any obstacle edge.
func (ix *Index) SegmentBlocked(p1, p2 geom.Coord) bool {
	blocked := false
	for _, obs := range ix.obstacles {
		obs.VisitEdges(func(a, b geom.Coord) {
			if !blocked && SegmentsIntersect(p1, p2, a, b) {
				blocked = true
			}
		})
		if blocked {
			return true
		}
	}
	return false
}

// VisitObstacleEdges calls fn for every non-degenerate obstacle edge.
func (ix *Index) VisitObstacleEdges(fn func(a, b geom.Coord)) {
	for _, obs := range ix.obstacles {
		obs.VisitEdges(fn)
	}
}

// Walkable reports whether pt lies inside any walkable-area polygon.
func (ix *Index) Walkable(pt geom.Coord) bool {
	for _, area := range ix.walkable {
		if PointInPolygon(pt, area) {
			return true
		}
	}
	return false
}

// NearestExit returns the exit whose midpoint is closest to pt. The boolean
// is false when the scenario declares no exits.
func (ix *Index) NearestExit(pt geom.Coord) (core.ExitRegion, bool) {
	if len(ix.exits) == 0 {
		return core.ExitRegion{}, false
	}
	best := ix.exits[0]
	bestDist := pt.Minus(best.Midpoint()).Magnitude()
	for _, e := range ix.exits[1:] {
		if d := pt.Minus(e.Midpoint()).Magnitude(); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, true
}

// Bounds returns the bounding box of all walkable areas and obstacles. The
// boolean is false when the index holds no polygons.
func (ix *Index) Bounds() (geom.Rect, bool) {
	var r geom.Rect
	found := false
	expand := func(p core.Polygon) {
		b := p.Bounds()
		if !found {
			r = b
			found = true
			return
		}
		r.ExpandToContainCoord(b.Min)
		r.ExpandToContainCoord(b.Max)
	}
	for _, p := range ix.walkable {
		expand(p)
	}
	for _, p := range ix.obstacles {
		expand(p)
	}
	return r, found
}
