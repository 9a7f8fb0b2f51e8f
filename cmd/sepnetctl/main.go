package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"sepnet/internal/dataset"
	"sepnet/internal/storage"
	"sepnet/pkg/sepnet"
)

const (
	defaultDBPath       = "sepnet.db"
	defaultArtifactsDir = "artifacts"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "train":
		return runTrain(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "inspect":
		return runInspect(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	configPath := fs.String("config", "", "dataset config JSON path")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	artifactsDir := fs.String("artifacts", defaultArtifactsDir, "artifacts output directory")
	depth := fs.Int("depth", 0, "network depth in node layers")
	workers := fs.Int("workers", 0, "worker pool size")
	seed := fs.Int64("seed", 0, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return usageError("train requires -config")
	}

	req, err := loadRunRequestFromConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["depth"] {
		req.Depth = *depth
	}
	if set["workers"] {
		req.Workers = *workers
	}
	if set["seed"] {
		req.Seed = *seed
		req.Data.Seed = *seed
	}

	client, err := sepnet.New(sepnet.Options{
		StoreKind:    *storeKind,
		DBPath:       *dbPath,
		ArtifactsDir: *artifactsDir,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s complete\n", summary.RunID)
	fmt.Printf("  rounds:            %s\n", humanize.Comma(summary.Stats.Rounds))
	fmt.Printf("  training claims:   %s\n", humanize.Comma(summary.Stats.TrainClaims))
	fmt.Printf("  evaluation rounds: %s\n", humanize.Comma(summary.Stats.EvaluationRounds))
	fmt.Printf("  artifacts:         %s\n", summary.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	limit := fs.Int("limit", 20, "maximum runs to list")
	showAUC := fs.Bool("auc", false, "include the last recorded AUC per run")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sepnet.New(sepnet.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	items, err := client.Runs(ctx, sepnet.RunsRequest{Limit: *limit, ShowAUC: *showAUC})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, item := range items {
		line := fmt.Sprintf("%s  %s  events=%s train=%s eval=%s depth=%d workers=%d seed=%d",
			item.RunID, item.StartedAtUTC,
			humanize.Comma(int64(item.EventCount)),
			humanize.Comma(int64(item.TrainingCount)),
			humanize.Comma(int64(item.EvaluationCount)),
			item.Depth, item.Workers, item.Seed)
		if item.LastAUC != nil {
			line += fmt.Sprintf(" auc=%.6f", *item.LastAUC)
		}
		fmt.Println(line)
	}
	return nil
}

func runInspect(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	configPath := fs.String("config", "", "dataset config JSON path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return usageError("inspect requires -config")
	}

	req, err := loadRunRequestFromConfig(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := dataset.Build(req.Data)
	if err != nil {
		return err
	}

	fmt.Printf("events:   %s (%s training, %s evaluation)\n",
		humanize.Comma(int64(len(data.Events))),
		humanize.Comma(int64(data.TrainingCutoff)),
		humanize.Comma(int64(len(data.Events)-data.TrainingCutoff)))
	fmt.Printf("signal:   %.4f\n", data.FractionSignal)
	fmt.Printf("background: %.4f\n", data.FractionBackground)
	for i, name := range req.Data.FeatureNames {
		fmt.Printf("max %-12s %g\n", name, data.FeatureMax[i])
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	runID := fs.String("run-id", "", "run id to show")
	latest := fs.Bool("latest", false, "show the most recent run")
	limit := fs.Int("limit", 0, "maximum evaluation rounds to show, 0 for all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := sepnet.New(sepnet.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.History(ctx, sepnet.HistoryRequest{RunID: *runID, Latest: *latest, Limit: *limit})
	if err != nil {
		return err
	}

	for _, evaluation := range history {
		fmt.Printf("round %d  auc=%.6f  predictions=%s  at=%s\n",
			evaluation.Round, evaluation.AUC,
			humanize.Comma(int64(evaluation.Predictions)),
			evaluation.RecordedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: sepnetctl <train|runs|inspect|history> [flags]", msg)
}
