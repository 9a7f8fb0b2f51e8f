//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sepnet/internal/model"
)

func TestSQLiteStoreRunAndEvaluationRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "sepnet.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	run := testRun("run-1", time.Unix(1000, 0).UTC())
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatalf("expected run %s", run.ID)
	}
	if loaded.ID != run.ID || loaded.EventCount != run.EventCount {
		t.Fatalf("unexpected run loaded: %+v", loaded)
	}

	if err := store.SaveRun(ctx, testRun("run-0", time.Unix(500, 0).UTC())); err != nil {
		t.Fatalf("save run: %v", err)
	}
	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-0" || runs[1].ID != "run-1" {
		t.Fatalf("runs not ordered by start time: %+v", runs)
	}

	if err := store.AppendEvaluation(ctx, run.ID, model.Evaluation{Round: 1, AUC: 0.6, Predictions: 12}); err != nil {
		t.Fatalf("append evaluation: %v", err)
	}
	if err := store.AppendEvaluation(ctx, run.ID, model.Evaluation{Round: 2, AUC: 0.7, Predictions: 12}); err != nil {
		t.Fatalf("append evaluation: %v", err)
	}

	evaluations, ok, err := store.GetEvaluations(ctx, run.ID)
	if err != nil {
		t.Fatalf("get evaluations: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted evaluations")
	}
	if len(evaluations) != 2 || evaluations[1].Round != 2 {
		t.Fatalf("unexpected evaluations loaded: %+v", evaluations)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "sepnet.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("first init: %v", err)
	}
	run := testRun("persisted-run", time.Unix(2000, 0).UTC())
	if err := first.SaveRun(ctx, run); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("second init: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	loaded, ok, err := second.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !ok || loaded.ID != run.ID {
		t.Fatalf("expected persisted run, got ok=%t value=%+v", ok, loaded)
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	store := NewSQLiteStore("")
	if err := store.Init(context.Background()); err == nil {
		t.Fatal("expected error for empty sqlite path")
	}
}
