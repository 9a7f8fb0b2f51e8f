package storage

import (
	"context"

	"sepnet/internal/model"
)

// Store persists the run journal: run metadata and per-round evaluation
// metrics. Model weights are never stored; the journal only records what a
// run measured.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (model.Run, bool, error)
	ListRuns(ctx context.Context) ([]model.Run, error)
	AppendEvaluation(ctx context.Context, runID string, evaluation model.Evaluation) error
	GetEvaluations(ctx context.Context, runID string) ([]model.Evaluation, bool, error)
}
