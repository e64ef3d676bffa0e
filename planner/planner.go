// Package planner produces obstacle-avoiding routes from a start position to
// a goal, preferring waypoint-graph routes over geometric detours. The
// planner never fails: when no clear route exists it returns the obstructed
// direct segment flagged as degraded, and the caller decides how to treat
// that signal.
package planner

import (
	"math/rand"

	"github.com/jbeda/geom"

	"github.com/hupe1980/crowdflow/core"
)

// World answers the single geometry query the planner needs. *geo.Index
// satisfies it; tests substitute fakes.
type World interface {
	SegmentBlocked(p1, p2 geom.Coord) bool
}

// detourFractions are the perpendicular offsets, as fractions of the direct
// segment length, tried on each side of the midpoint before falling back to
// random perturbation.
var detourFractions = [...]float64{0.3, 0.5, 0.7}

// randomDetourAttempts bounds the random perturbation fallback.
const randomDetourAttempts = 20

// Planner routes agents across a fixed scenario. Waypoint connections are
// directed exactly as declared: an edge A→B is never traversed B→A unless B
// also declares A. The zero number of waypoints is valid and skips the graph
// entirely.
type Planner struct {
	world     World
	waypoints []core.Waypoint
	byID      map[string]core.Waypoint
	rng       *rand.Rand
}

// New creates a Planner over the given world and waypoint graph. The RNG
// drives only the random-detour fallback; a fixed seed makes planning
// deterministic across repeated calls on static geometry.
func New(world World, waypoints []core.Waypoint, rng *rand.Rand) *Planner {
	byID := make(map[string]core.Waypoint, len(waypoints))
	for _, wp := range waypoints {
		byID[wp.ID] = wp
	}
	return &Planner{world: world, waypoints: waypoints, byID: byID, rng: rng}
}

// Plan returns an ordered point sequence from start to goal, both inclusive.
// Waypoint routes are preferred; otherwise a direct segment, then a single
// perpendicular detour point, and finally the obstructed direct segment
// marked degraded.
func (p *Planner) Plan(start, goal geom.Coord) core.Path {
	if route, ok := p.waypointRoute(start, goal); ok {
		return core.Path{Points: route}
	}
	if !p.world.SegmentBlocked(start, goal) {
		return core.Path{Points: []geom.Coord{start, goal}}
	}
	if detour, ok := p.detour(start, goal); ok {
		return core.Path{Points: []geom.Coord{start, detour, goal}}
	}
	return core.Path{Points: []geom.Coord{start, goal}, Degraded: true}
}

// waypointRoute selects the nearest waypoint to start and to goal whose
// connecting segments are unobstructed, then BFS-routes between them across
// obstacle-clear declared edges. BFS yields the fewest-hop path with ties
// broken by declaration order; hop count, not Euclidean length, is the
// optimality criterion.
func (p *Planner) waypointRoute(start, goal geom.Coord) ([]geom.Coord, bool) {
	if len(p.waypoints) == 0 {
		return nil, false
	}

	startWp, okStart := p.nearestReachable(start)
	goalWp, okGoal := p.nearestReachable(goal)
	if !okStart || !okGoal {
		return nil, false
	}

	if startWp.ID == goalWp.ID {
		return []geom.Coord{start, startWp.Position, goal}, true
	}

	hops, ok := p.bfs(startWp, goalWp)
	if !ok {
		return nil, false
	}

	route := make([]geom.Coord, 0, len(hops)+2)
	route = append(route, start)
	for _, wp := range hops {
		route = append(route, wp.Position)
	}
	route = append(route, goal)
	return route, true
}

// nearestReachable picks the closest waypoint whose straight segment to pt is
// unobstructed.
func (p *Planner) nearestReachable(pt geom.Coord) (core.Waypoint, bool) {
	var best core.Waypoint
	bestDist := 0.0
	found := false
	for _, wp := range p.waypoints {
		if p.world.SegmentBlocked(pt, wp.Position) {
			continue
		}
		d := pt.Minus(wp.Position).Magnitude()
		if !found || d < bestDist {
			best, bestDist, found = wp, d, true
		}
	}
	return best, found
}

// bfs searches the directed waypoint graph from src to dst expanding only
// edges whose segment is obstacle-free.
func (p *Planner) bfs(src, dst core.Waypoint) ([]core.Waypoint, bool) {
	type node struct {
		wp   core.Waypoint
		path []core.Waypoint
	}
	queue := []node{{wp: src, path: []core.Waypoint{src}}}
	visited := map[string]bool{src.ID: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.wp.ID == dst.ID {
			return cur.path, true
		}

		for _, connID := range cur.wp.Connections {
			if visited[connID] {
				continue
			}
			next, ok := p.byID[connID]
			if !ok {
				continue
			}
			if p.world.SegmentBlocked(cur.wp.Position, next.Position) {
				continue
			}
			visited[connID] = true
			path := make([]core.Waypoint, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)
			queue = append(queue, node{wp: next, path: append(path, next)})
		}
	}
	return nil, false
}

// detour searches for a single intermediate point that splits the blocked
// direct segment into two unobstructed halves: first perpendicular offsets
// at fixed fractions of the segment length on either side of the midpoint,
// then a bounded number of random perturbations.
func (p *Planner) detour(start, goal geom.Coord) (geom.Coord, bool) {
	diff := goal.Minus(start)
	dist := diff.Magnitude()
	if dist == 0 {
		return geom.Coord{}, false
	}
	mid := start.Plus(diff.Times(0.5))
	perp := geom.Coord{X: -diff.Y / dist, Y: diff.X / dist}

	for _, frac := range detourFractions {
		for _, sign := range [...]float64{-1, 1} {
			cand := mid.Plus(perp.Times(sign * frac * dist))
			if p.clearVia(start, cand, goal) {
				return cand, true
			}
		}
	}

	for i := 0; i < randomDetourAttempts; i++ {
		cand := mid.Plus(geom.Coord{
			X: (p.rng.Float64() - 0.5) * dist,
			Y: (p.rng.Float64() - 0.5) * dist,
		})
		if p.clearVia(start, cand, goal) {
			return cand, true
		}
	}
	return geom.Coord{}, false
}

func (p *Planner) clearVia(start, via, goal geom.Coord) bool {
	return !p.world.SegmentBlocked(start, via) && !p.world.SegmentBlocked(via, goal)
}
