// Package session provides run-record storage for the engine. Records keep
// the append-only frame history and status of each simulation run while it
// streams and after it ends; the in-memory implementation is volatile by
// design, durable persistence of runs is out of scope.
package session

import (
	"fmt"
	"sync"

	"github.com/hupe1980/crowdflow/core"
)

// InMemoryStore is a volatile RunStore implementation storing run records in
// a process-local map. It is safe for concurrent access. Returned records are
// cloned to prevent external mutation of internal state.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*core.RunRecord
}

// NewInMemoryStore constructs an empty in-memory run store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[string]*core.RunRecord)}
}

// Create registers a new record for the given run ID, overwriting any
// previous record with the same ID.
func (s *InMemoryStore) Create(id string) (*core.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := core.NewRunRecord(id)
	s.runs[id] = rec
	return rec.Clone(), nil
}

// Get returns a clone of an existing record.
func (s *InMemoryStore) Get(id string) (*core.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	return rec.Clone(), nil
}

// AppendFrame adds a frame to the record's history.
func (s *InMemoryStore) AppendFrame(id string, f core.Frame) error {
	rec, err := s.lookup(id)
	if err != nil {
		return err
	}
	rec.AppendFrame(f)
	return nil
}

// SetStatus updates the record's lifecycle status.
func (s *InMemoryStore) SetStatus(id string, st core.RunStatus) error {
	rec, err := s.lookup(id)
	if err != nil {
		return err
	}
	rec.SetStatus(st)
	return nil
}

// SetResult records the run's final metadata.
func (s *InMemoryStore) SetResult(id string, res core.RunResult) error {
	rec, err := s.lookup(id)
	if err != nil {
		return err
	}
	rec.SetResult(res)
	return nil
}

// SetError records a terminal fault alongside the error status.
func (s *InMemoryStore) SetError(id string, msg string) error {
	rec, err := s.lookup(id)
	if err != nil {
		return err
	}
	rec.SetError(msg)
	return nil
}

func (s *InMemoryStore) lookup(id string) (*core.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	return rec, nil
}
