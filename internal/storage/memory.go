package storage

import (
	"context"
	"sort"
	"sync"

	"sepnet/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	runs        map[string]model.Run
	evaluations map[string][]model.Evaluation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]model.Run)
	s.evaluations = make(map[string][]model.Evaluation)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})
	return runs, nil
}

func (s *MemoryStore) AppendEvaluation(_ context.Context, runID string, evaluation model.Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evaluations[runID] = append(s.evaluations[runID], evaluation)
	return nil
}

func (s *MemoryStore) GetEvaluations(_ context.Context, runID string) ([]model.Evaluation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	evaluations, ok := s.evaluations[runID]
	if !ok {
		return nil, false, nil
	}
	out := make([]model.Evaluation, len(evaluations))
	copy(out, evaluations)
	return out, true, nil
}
