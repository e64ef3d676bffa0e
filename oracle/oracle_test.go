package oracle

import (
	"errors"
	"testing"

	"github.com/jbeda/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/crowdflow/core"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) StartRun(sc *core.Scenario, cfg core.RunConfig) (string, error) {
	args := m.Called(sc, cfg)
	return args.String(0), args.Error(1)
}

func (m *mockClient) StepRun(handle string) (core.Frame, error) {
	args := m.Called(handle)
	return args.Get(0).(core.Frame), args.Error(1)
}

func (m *mockClient) CloseRun(handle string) error {
	args := m.Called(handle)
	return args.Error(0)
}

func testScenario() *core.Scenario {
	return &core.Scenario{
		Sources:     []core.Source{{A: geom.Coord{X: 0, Y: 0}, B: geom.Coord{X: 5, Y: 5}, AgentCount: 3}},
		StartPoints: []geom.Coord{{X: 1, Y: 1}},
	}
}

func testConfig() core.RunConfig {
	return core.RunConfig{
		TotalTime: 10,
		TimeStep:  0.1,
		Model:     core.ModelConfig{Kind: core.ModelExternal},
	}
}

func frameAt(t float64, state core.AgentState) core.Frame {
	return core.Frame{Time: t, Agents: []core.AgentSnapshot{{ID: "agent-0", State: state}}}
}

func TestSimulator_Kind(t *testing.T) {
	assert.Equal(t, core.ModelExternal, New(&mockClient{}).Kind())
}

func TestNewRun_StartsExternalRun(t *testing.T) {
	client := new(mockClient)
	sc, cfg := testScenario(), testConfig()
	client.On("StartRun", sc, cfg).Return("handle-1", nil)

	run, err := New(client).NewRun(sc, cfg)
	require.NoError(t, err)

	assert.Equal(t, core.RunStatusInitialized, run.Status())
	assert.Equal(t, 4, run.Result().AgentCount, "sources plus start points")
	client.AssertExpectations(t)
}

func TestNewRun_StartFailure(t *testing.T) {
	client := new(mockClient)
	sc, cfg := testScenario(), testConfig()
	client.On("StartRun", sc, cfg).Return("", errors.New("engine offline"))

	_, err := New(client).NewRun(sc, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine offline")
}

func TestStep_DelegatesAndCompletesOnArrival(t *testing.T) {
	client := new(mockClient)
	sc, cfg := testScenario(), testConfig()
	client.On("StartRun", sc, cfg).Return("h", nil)
	client.On("StepRun", "h").Return(frameAt(0.1, core.StateMoving), nil).Once()
	client.On("StepRun", "h").Return(frameAt(0.2, core.StateArrived), nil).Once()
	client.On("CloseRun", "h").Return(nil).Once()

	run, err := New(client).NewRun(sc, cfg)
	require.NoError(t, err)

	frame, err := run.Step()
	require.NoError(t, err)
	assert.Equal(t, 0.1, frame.Time)
	assert.Equal(t, core.RunStatusRunning, run.Status())

	frame, err = run.Step()
	require.NoError(t, err)
	assert.Equal(t, 0.2, frame.Time)
	assert.Equal(t, core.RunStatusCompleted, run.Status())
	assert.Equal(t, 0.2, run.Elapsed())

	// Terminal runs stop calling out and replay the last frame.
	again, err := run.Step()
	require.NoError(t, err)
	assert.Equal(t, frame, again)
	client.AssertExpectations(t)
}

func TestStep_TimeBudgetCompletes(t *testing.T) {
	client := new(mockClient)
	sc, cfg := testScenario(), testConfig()
	cfg.TotalTime = 0.1
	client.On("StartRun", sc, cfg).Return("h", nil)
	client.On("StepRun", "h").Return(frameAt(0.1, core.StateMoving), nil).Once()
	client.On("CloseRun", "h").Return(nil).Once()

	run, err := New(client).NewRun(sc, cfg)
	require.NoError(t, err)

	_, err = run.Step()
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusCompleted, run.Status())
	client.AssertExpectations(t)
}

func TestStep_ClientErrorIsTerminal(t *testing.T) {
	client := new(mockClient)
	sc, cfg := testScenario(), testConfig()
	client.On("StartRun", sc, cfg).Return("h", nil)
	client.On("StepRun", "h").Return(core.Frame{}, errors.New("step failed")).Once()
	client.On("CloseRun", "h").Return(nil).Once()

	run, err := New(client).NewRun(sc, cfg)
	require.NoError(t, err)

	_, err = run.Step()
	require.Error(t, err)
	assert.Equal(t, core.RunStatusError, run.Status())

	// The fault sticks without another external call.
	_, err2 := run.Step()
	assert.Equal(t, err, err2)
	client.AssertExpectations(t)
}

func TestStep_CloseErrorDoesNotMaskStepError(t *testing.T) {
	client := new(mockClient)
	sc, cfg := testScenario(), testConfig()
	client.On("StartRun", sc, cfg).Return("h", nil)
	client.On("StepRun", "h").Return(core.Frame{}, errors.New("step failed")).Once()
	client.On("CloseRun", "h").Return(errors.New("close failed")).Once()

	run, err := New(client).NewRun(sc, cfg)
	require.NoError(t, err)

	_, err = run.Step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step failed")
	client.AssertExpectations(t)
}
