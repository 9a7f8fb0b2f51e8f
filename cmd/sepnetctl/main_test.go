package main

import (
	"context"
	"strings"
	"testing"
)

func TestRunRejectsMissingCommand(t *testing.T) {
	err := run(context.Background(), nil)
	if err == nil {
		t.Fatal("expected usage error")
	}
	if !strings.Contains(err.Error(), "usage: sepnetctl") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"launch"})
	if err == nil || !strings.Contains(err.Error(), "unknown command: launch") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTrainRequiresConfig(t *testing.T) {
	err := run(context.Background(), []string{"train", "-store", "memory"})
	if err == nil || !strings.Contains(err.Error(), "train requires -config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunsEmptyMemoryStore(t *testing.T) {
	if err := run(context.Background(), []string{"runs", "-store", "memory"}); err != nil {
		t.Fatalf("runs on empty store: %v", err)
	}
}

func TestInspectRequiresConfig(t *testing.T) {
	err := run(context.Background(), []string{"inspect"})
	if err == nil || !strings.Contains(err.Error(), "inspect requires -config") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHistoryLatestWithoutRuns(t *testing.T) {
	err := run(context.Background(), []string{"history", "-store", "memory", "-latest"})
	if err == nil || !strings.Contains(err.Error(), "no runs available") {
		t.Fatalf("unexpected error: %v", err)
	}
}
