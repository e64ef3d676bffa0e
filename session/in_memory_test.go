package session

import (
	"errors"
	"testing"

	"github.com/hupe1980/crowdflow/core"
)

func TestInMemoryStore_CreateAndGet(t *testing.T) {
	store := NewInMemoryStore()

	rec, err := store.Create("run-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.ID != "run-1" {
		t.Errorf("expected ID run-1, got %s", rec.ID)
	}
	if rec.GetStatus() != core.RunStatusInitialized {
		t.Errorf("expected initialized status, got %s", rec.GetStatus())
	}

	got, err := store.Get("run-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != "run-1" {
		t.Errorf("expected ID run-1, got %s", got.ID)
	}
}

func TestInMemoryStore_GetUnknown(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get("missing")
	if !errors.Is(err, core.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestInMemoryStore_AppendFrame(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Create("run-1"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.AppendFrame("run-1", core.Frame{Time: float64(i)}); err != nil {
			t.Fatalf("AppendFrame failed: %v", err)
		}
	}

	rec, err := store.Get("run-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	frames := rec.GetFrames()
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if frames[2].Time != 2 {
		t.Errorf("expected last frame at t=2, got %v", frames[2].Time)
	}

	if err := store.AppendFrame("missing", core.Frame{}); !errors.Is(err, core.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestInMemoryStore_StatusAndResult(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Create("run-1"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetStatus("run-1", core.RunStatusRunning); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if err := store.SetResult("run-1", core.RunResult{AgentCount: 4, TimeStep: 0.1}); err != nil {
		t.Fatalf("SetResult failed: %v", err)
	}

	rec, _ := store.Get("run-1")
	if rec.GetStatus() != core.RunStatusRunning {
		t.Errorf("expected running status, got %s", rec.GetStatus())
	}
	if rec.Result.AgentCount != 4 {
		t.Errorf("expected agent count 4, got %d", rec.Result.AgentCount)
	}
}

func TestInMemoryStore_SetError(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Create("run-1"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetError("run-1", "integration blew up"); err != nil {
		t.Fatalf("SetError failed: %v", err)
	}

	rec, _ := store.Get("run-1")
	if rec.GetStatus() != core.RunStatusError {
		t.Errorf("expected error status, got %s", rec.GetStatus())
	}
	if rec.Error != "integration blew up" {
		t.Errorf("unexpected error message: %q", rec.Error)
	}
}

func TestInMemoryStore_ReturnsClones(t *testing.T) {
	store := NewInMemoryStore()
	if _, err := store.Create("run-1"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.AppendFrame("run-1", core.Frame{Time: 1}); err != nil {
		t.Fatalf("AppendFrame failed: %v", err)
	}

	rec, _ := store.Get("run-1")
	rec.SetStatus(core.RunStatusCancelled)
	rec.Frames[0].Time = 99

	fresh, _ := store.Get("run-1")
	if fresh.GetStatus() == core.RunStatusCancelled {
		t.Error("mutating a returned record must not affect the store")
	}
	if fresh.Frames[0].Time != 1 {
		t.Error("mutating returned frames must not affect the store")
	}
}
