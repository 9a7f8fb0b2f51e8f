package storage

import (
	"context"
	"testing"
	"time"

	"sepnet/internal/model"
)

func testRun(id string, startedAt time.Time) model.Run {
	return model.Run{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              id,
		StartedAt:       startedAt,
		EventCount:      120,
		TrainingCount:   108,
		EvaluationCount: 12,
		FeatureCount:    4,
		Depth:           5,
		Workers:         3,
		Seed:            17,
	}
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := testRun("run-1", time.Unix(1000, 0))
	if err := store.SaveRun(ctx, input); err != nil {
		t.Fatalf("save run: %v", err)
	}

	output, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted run")
	}
	if output.ID != input.ID || output.TrainingCount != input.TrainingCount {
		t.Fatalf("unexpected run: %+v", output)
	}

	_, ok, err = store.GetRun(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing run: %v", err)
	}
	if ok {
		t.Fatal("expected missing run to report ok=false")
	}
}

func TestMemoryStoreListRunsOrderedByStart(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.SaveRun(ctx, testRun("later", time.Unix(2000, 0))); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := store.SaveRun(ctx, testRun("earlier", time.Unix(1000, 0))); err != nil {
		t.Fatalf("save run: %v", err)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "earlier" || runs[1].ID != "later" {
		t.Fatalf("runs not ordered by start time: %+v", runs)
	}
}

func TestMemoryStoreEvaluationsAppend(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.AppendEvaluation(ctx, "run-1", model.Evaluation{Round: 1, AUC: 0.62, Predictions: 12}); err != nil {
		t.Fatalf("append evaluation: %v", err)
	}
	if err := store.AppendEvaluation(ctx, "run-1", model.Evaluation{Round: 4, AUC: 0.81, Predictions: 12}); err != nil {
		t.Fatalf("append evaluation: %v", err)
	}

	evaluations, ok, err := store.GetEvaluations(ctx, "run-1")
	if err != nil {
		t.Fatalf("get evaluations: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted evaluations")
	}
	if len(evaluations) != 2 || evaluations[1].AUC != 0.81 {
		t.Fatalf("unexpected evaluations: %+v", evaluations)
	}

	_, ok, err = store.GetEvaluations(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing evaluations: %v", err)
	}
	if ok {
		t.Fatal("expected missing evaluations to report ok=false")
	}
}

func TestMemoryStoreGetEvaluationsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.AppendEvaluation(ctx, "run-1", model.Evaluation{Round: 1, AUC: 0.5}); err != nil {
		t.Fatalf("append evaluation: %v", err)
	}

	first, _, err := store.GetEvaluations(ctx, "run-1")
	if err != nil {
		t.Fatalf("get evaluations: %v", err)
	}
	first[0].AUC = 0.99

	second, _, err := store.GetEvaluations(ctx, "run-1")
	if err != nil {
		t.Fatalf("get evaluations: %v", err)
	}
	if second[0].AUC != 0.5 {
		t.Fatalf("stored evaluation mutated through returned slice: %+v", second)
	}
}
