// Package sepnet is the public surface of the signal/background separation
// trainer: it assembles the dataset, the worker pool, the artifact reporter,
// and the run journal behind one client.
package sepnet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"sepnet/internal/dataset"
	"sepnet/internal/model"
	"sepnet/internal/nn"
	"sepnet/internal/report"
	"sepnet/internal/storage"
	"sepnet/internal/trainer"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "sepnet.db"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
}

type Client struct {
	store       storage.Store
	initialized bool

	artifactsDir string
}

type RunRequest struct {
	Data dataset.Config

	Depth   int
	Workers int
	Seed    int64

	// Commands supplies operator commands; an interactive console on
	// stdin/stdout when nil.
	Commands trainer.CommandSource
	// Out receives controller output such as weight dumps; stdout when nil.
	Out io.Writer
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	Stats        trainer.Stats
	Weights      *nn.Weights
}

type RunsRequest struct {
	Limit   int
	ShowAUC bool
}

type RunItem struct {
	RunID           string
	StartedAtUTC    string
	EventCount      int
	TrainingCount   int
	EvaluationCount int
	Depth           int
	Workers         int
	Seed            int64
	LastAUC         *float64
}

type InspectRequest struct {
	RunID  string
	Latest bool
}

type RunDetail struct {
	Run         model.Run
	Evaluations []model.Evaluation
}

type HistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

// Run ingests the configured dataset, drives one full trainer run, and
// journals the run record plus every evaluation round it performs.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Depth < 2 {
		req.Depth = 5
	}
	if req.Workers <= 0 {
		req.Workers = runtime.NumCPU() - 1
		if req.Workers < 1 {
			req.Workers = 1
		}
	}
	if req.Commands == nil {
		req.Commands = trainer.NewConsole(os.Stdin, os.Stdout)
	}
	if req.Out == nil {
		req.Out = os.Stdout
	}

	if err := c.ensureStore(ctx); err != nil {
		return RunSummary{}, err
	}

	data, err := dataset.Build(req.Data)
	if err != nil {
		return RunSummary{}, err
	}

	runID := uuid.NewString()
	now := time.Now().UTC()
	runDir := filepath.Join(c.artifactsDir, runID)

	run := model.Run{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:              runID,
		StartedAt:       now,
		EventCount:      len(data.Events),
		TrainingCount:   data.TrainingCutoff,
		EvaluationCount: len(data.Events) - data.TrainingCutoff,
		FeatureCount:    len(req.Data.FeatureNames),
		Depth:           req.Depth,
		Workers:         req.Workers,
		Seed:            req.Seed,
	}
	if err := c.store.SaveRun(ctx, run); err != nil {
		return RunSummary{}, err
	}

	reporter := &report.Artifacts{
		Dir: runDir,
		OnEvaluation: func(round int, auc float64, predictions int) error {
			return c.store.AppendEvaluation(ctx, runID, model.Evaluation{
				Round:       round,
				AUC:         auc,
				Predictions: predictions,
				RecordedAt:  time.Now().UTC(),
			})
		},
	}

	tr, err := trainer.New(trainer.Config{
		Data:     data,
		Depth:    req.Depth,
		Workers:  req.Workers,
		Seed:     req.Seed,
		Commands: req.Commands,
		Reporter: reporter,
		Out:      req.Out,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := tr.Run(); err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:        runID,
		ArtifactsDir: filepath.Clean(runDir),
		Stats:        tr.Stats(),
		Weights:      tr.Weights(),
	}, nil
}

// Runs lists journaled runs, newest first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}

	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RunItem, 0, len(runs))
	for i := len(runs) - 1; i >= 0 && len(out) < req.Limit; i-- {
		run := runs[i]
		item := RunItem{
			RunID:           run.ID,
			StartedAtUTC:    run.StartedAt.UTC().Format(time.RFC3339),
			EventCount:      run.EventCount,
			TrainingCount:   run.TrainingCount,
			EvaluationCount: run.EvaluationCount,
			Depth:           run.Depth,
			Workers:         run.Workers,
			Seed:            run.Seed,
		}
		if req.ShowAUC {
			evaluations, ok, err := c.store.GetEvaluations(ctx, run.ID)
			if err != nil {
				return nil, err
			}
			if ok && len(evaluations) > 0 {
				auc := evaluations[len(evaluations)-1].AUC
				item.LastAUC = &auc
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// Inspect returns one run record with its full evaluation history.
func (c *Client) Inspect(ctx context.Context, req InspectRequest) (RunDetail, error) {
	if err := c.ensureStore(ctx); err != nil {
		return RunDetail{}, err
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return RunDetail{}, err
	}

	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	if !ok {
		return RunDetail{}, fmt.Errorf("run not found: %s", runID)
	}

	evaluations, _, err := c.store.GetEvaluations(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	return RunDetail{Run: run, Evaluations: evaluations}, nil
}

// History returns the journaled evaluation rounds of one run.
func (c *Client) History(ctx context.Context, req HistoryRequest) ([]model.Evaluation, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}

	evaluations, ok, err := c.store.GetEvaluations(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("evaluation history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(evaluations) > req.Limit {
		evaluations = evaluations[len(evaluations)-req.Limit:]
	}
	return evaluations, nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", errors.New("a run id or latest is required")
	}

	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs available")
	}
	return runs[len(runs)-1].ID, nil
}

func (c *Client) ensureStore(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}
