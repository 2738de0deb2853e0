package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/qa-bench/internal/config"
	"github.com/stellarlinkco/qa-bench/internal/dataset"
	"github.com/stellarlinkco/qa-bench/internal/engine"
	"github.com/stellarlinkco/qa-bench/internal/leaderboard"
	"github.com/stellarlinkco/qa-bench/internal/llm"
	"github.com/stellarlinkco/qa-bench/internal/metrics"
	"github.com/stellarlinkco/qa-bench/internal/pricing"
	"github.com/stellarlinkco/qa-bench/internal/report"
)

type runOptions struct {
	datasets []string
	samples  int
	shuffle  bool
	output   string
	noSave   bool
	verbose  bool
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate every configured model on the selected datasets",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfigInto(st)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, st, &opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.datasets, "dataset", nil, "dataset names (overrides config)")
	cmd.Flags().IntVar(&opts.samples, "samples", 0, "examples per dataset (0 = config default)")
	cmd.Flags().BoolVar(&opts.shuffle, "shuffle", false, "shuffle examples before sampling")
	cmd.Flags().StringVar(&opts.output, "output", "", "artifact directory (overrides config)")
	cmd.Flags().BoolVar(&opts.noSave, "no-leaderboard", false, "skip saving summaries to the leaderboard")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "debug logging")

	return cmd
}

func runRun(cmd *cobra.Command, st *cliState, opts *runOptions) error {
	if st == nil || st.cfg == nil {
		return fmt.Errorf("run: missing config (internal error)")
	}
	if opts == nil {
		return fmt.Errorf("run: nil options")
	}
	cfg := st.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	datasets := opts.datasets
	if len(datasets) == 0 {
		datasets = cfg.Run.Datasets
	}
	samples := cfg.Run.MaxSamples
	if opts.samples > 0 {
		samples = opts.samples
	}
	outputDir := strings.TrimSpace(opts.output)
	if outputDir == "" {
		outputDir = cfg.Run.OutputDir
	}
	shuffle := opts.shuffle || cfg.Run.Shuffle

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderrWriter, &slog.HandlerOptions{Level: level}))

	factory, err := llm.NewClientFactory(cfg)
	if err != nil {
		return err
	}
	eng := &engine.Engine{
		Clients:   factory,
		WorkerCap: cfg.Run.Workers,
		Logger:    logger,
	}

	var lb *leaderboard.Store
	if !opts.noSave {
		lb, err = openLeaderboardStore(cfg)
		if err != nil {
			return err
		}
		defer lb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := dataset.DefaultRegistry()
	out := cmd.OutOrStdout()
	for _, name := range datasets {
		provider, err := registry.New(name, dataset.Options{
			MaxSamples: samples,
			Shuffle:    shuffle,
			Seed:       cfg.Run.ShuffleSeed,
		})
		if err != nil {
			return err
		}

		examples, err := provider.Load(ctx)
		if err != nil {
			return fmt.Errorf("run: load %s: %w", provider.Name(), err)
		}

		results, err := eng.Run(ctx, examples, cfg.Models)
		if err != nil {
			return err
		}

		records := report.FromResults(results)
		runID := report.NewRunID(time.Now())
		path, err := report.WriteJSONL(outputDir, provider.Name(), runID, records)
		if err != nil {
			return err
		}

		summary, err := metrics.Reduce(report.Observations(records), modelInfos(cfg.Models), pricing.Lookup)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n=== %s (%d examples) ===\n", provider.Name(), len(examples))
		report.PrintSummary(out, summary)
		fmt.Fprintf(out, "\nResults saved to %s\n", path)

		if lb != nil {
			if err := saveSummary(ctx, lb, runID, provider.Name(), summary); err != nil {
				return err
			}
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func modelInfos(models []config.ModelSpec) []metrics.ModelInfo {
	out := make([]metrics.ModelInfo, 0, len(models))
	for _, m := range models {
		out = append(out, metrics.ModelInfo{Name: m.Name, ModelID: m.ModelID, Isolated: m.Isolated})
	}
	return out
}

func saveSummary(ctx context.Context, lb *leaderboard.Store, runID, ds string, summary *metrics.RunSummary) error {
	now := time.Now().UTC()
	for _, m := range summary.Models {
		entry := &leaderboard.Entry{
			RunID:        runID,
			Model:        m.Name,
			ModelID:      m.ModelID,
			Dataset:      ds,
			ExactMatch:   m.ExactMatch,
			F1:           m.F1,
			AvgLatencyMS: m.AvgLatencyMS,
			AvgCalls:     m.AvgCalls,
			InputTokens:  int64(m.InputTokens),
			OutputTokens: int64(m.OutputTokens),
			CostUSD:      m.CostUSD,
			Errors:       int64(m.Errors),
			EvalDate:     now,
		}
		if err := lb.Save(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}
