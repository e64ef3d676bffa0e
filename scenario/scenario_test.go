package scenario

import (
	"testing"

	"github.com/jbeda/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crowdflow/core"
)

func validScenario() *core.Scenario {
	return &core.Scenario{
		WalkableAreas: []core.Polygon{{Points: []geom.Coord{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
		}}},
		Sources: []core.Source{{A: geom.Coord{X: 1, Y: 1}, B: geom.Coord{X: 3, Y: 3}, AgentCount: 2}},
		Exits:   []core.ExitRegion{{A: geom.Coord{X: 9, Y: 4}, B: geom.Coord{X: 9, Y: 6}}},
	}
}

func TestValidate_Accepts(t *testing.T) {
	assert.NoError(t, Validate(validScenario()))
}

func TestValidate_StartPointsSatisfySpawnRequirement(t *testing.T) {
	sc := validScenario()
	sc.Sources = nil
	sc.StartPoints = []geom.Coord{{X: 2, Y: 2}}
	assert.NoError(t, Validate(sc))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(sc *core.Scenario)
		want   string
	}{
		{"no walkable area", func(sc *core.Scenario) { sc.WalkableAreas = nil }, "no walkable area"},
		{
			"malformed walkable area",
			func(sc *core.Scenario) {
				sc.WalkableAreas[0].Points = sc.WalkableAreas[0].Points[:2]
			},
			"walkable area 0",
		},
		{
			"malformed obstacle",
			func(sc *core.Scenario) {
				sc.Obstacles = []core.Polygon{{Points: []geom.Coord{{X: 5, Y: 5}}}}
			},
			"obstacle 0",
		},
		{
			"no spawn",
			func(sc *core.Scenario) { sc.Sources = nil },
			"no source or start point",
		},
		{
			"non-positive agent count",
			func(sc *core.Scenario) { sc.Sources[0].AgentCount = 0 },
			"non-positive agent count",
		},
		{"no exit", func(sc *core.Scenario) { sc.Exits = nil }, "no exit"},
		{
			"duplicate waypoint",
			func(sc *core.Scenario) {
				sc.Waypoints = []core.Waypoint{
					{ID: "a", Position: geom.Coord{X: 5, Y: 5}},
					{ID: "a", Position: geom.Coord{X: 6, Y: 6}},
				}
			},
			`duplicate waypoint id "a"`,
		},
		{
			"unknown connection",
			func(sc *core.Scenario) {
				sc.Waypoints = []core.Waypoint{
					{ID: "a", Position: geom.Coord{X: 5, Y: 5}, Connections: []string{"ghost"}},
				}
			},
			`unknown waypoint "ghost"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := validScenario()
			tt.mutate(sc)
			err := Validate(sc)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrGeometryInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	sc := &core.Scenario{}
	err := Validate(sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no walkable area")
	assert.Contains(t, err.Error(), "no source or start point")
	assert.Contains(t, err.Error(), "no exit")
}

func TestParse(t *testing.T) {
	doc := []byte(`
scenario:
  walkableAreas:
    - points:
        - {x: 0, y: 0}
        - {x: 50, y: 0}
        - {x: 50, y: 50}
        - {x: 0, y: 50}
  obstacles:
    - points:
        - {x: 20, y: 20}
        - {x: 30, y: 20}
        - {x: 30, y: 30}
        - {x: 20, y: 30}
  sources:
    - a: {x: 2, y: 2}
      b: {x: 8, y: 8}
      agentCount: 5
  exits:
    - a: {x: 48, y: 20}
      b: {x: 48, y: 30}
  waypoints:
    - id: mid
      position: {x: 25, y: 40}
run:
  simulationTime: 60
  timeStep: 0.1
  seed: 7
  model:
    kind: SocialForceModel
    socialForce:
      desiredSpeed: 1.2
`)

	f, err := Parse(doc)
	require.NoError(t, err)

	require.Len(t, f.Scenario.WalkableAreas, 1)
	assert.Len(t, f.Scenario.WalkableAreas[0].Points, 4)
	require.Len(t, f.Scenario.Sources, 1)
	assert.Equal(t, 5, f.Scenario.Sources[0].AgentCount)
	require.Len(t, f.Scenario.Waypoints, 1)
	assert.Equal(t, "mid", f.Scenario.Waypoints[0].ID)
	assert.Equal(t, geom.Coord{X: 25, Y: 40}, f.Scenario.Waypoints[0].Position)

	assert.Equal(t, 60.0, f.Run.TotalTime)
	assert.Equal(t, 0.1, f.Run.TimeStep)
	assert.Equal(t, int64(7), f.Run.Seed)
	assert.Equal(t, core.ModelSocialForce, f.Run.Model.Kind)
	require.NotNil(t, f.Run.Model.SocialForce)
	assert.Equal(t, 1.2, f.Run.Model.SocialForce.DesiredSpeed)

	assert.NoError(t, Validate(&f.Scenario))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("scenario: [not a mapping"))
	require.Error(t, err)
}
