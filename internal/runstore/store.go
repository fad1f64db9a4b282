// Package runstore keeps an in-memory record of recent sync runs and their
// per-task-key outcomes for the operational endpoints. Nothing here survives
// a restart; the tracker's own comment store is the durable state.
package runstore

import (
	"sort"
	"sync"
	"time"
)

type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// KeyResult is the recorded outcome for one task key.
type KeyResult struct {
	TaskKey string `json:"task_key"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Run is one sync run triggered by a webhook delivery.
type Run struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	Repo      string      `json:"repo"`
	Number    int         `json:"number"`
	Actor     string      `json:"actor,omitempty"`
	Status    RunStatus   `json:"status"`
	Error     string      `json:"error,omitempty"`
	Results   []KeyResult `json:"results,omitempty"`
	Attempt   int         `json:"attempt"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Store is a concurrency-safe in-memory run store.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{runs: make(map[string]*Run)}
}

// Create registers a run. CreatedAt/UpdatedAt are set here.
func (s *Store) Create(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.Status == "" {
		run.Status = StatusPending
	}
	s.runs[run.ID] = run
}

// Get returns a copy of the run with the given id.
func (s *Store) Get(id string) (Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return Run{}, false
	}
	return *run, true
}

// List returns copies of all runs, newest first.
func (s *Store) List() []Run {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs
}

// MarkRunning flags a run as in progress and records the attempt number.
func (s *Store) MarkRunning(id string, attempt int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = StatusRunning
		run.Attempt = attempt
		run.UpdatedAt = time.Now()
	}
}

// Complete records the per-key results of a finished run.
func (s *Store) Complete(id string, results []KeyResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = StatusCompleted
		run.Results = results
		run.Error = ""
		run.UpdatedAt = time.Now()
	}
}

// Fail records a run-level failure (no per-key results were produced).
func (s *Store) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[id]; ok {
		run.Status = StatusFailed
		if err != nil {
			run.Error = err.Error()
		}
		run.UpdatedAt = time.Now()
	}
}
