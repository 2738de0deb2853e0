package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stellarlinkco/qa-bench/internal/metrics"
	"github.com/stellarlinkco/qa-bench/internal/pricing"
	"github.com/stellarlinkco/qa-bench/internal/report"
)

type reportOptions struct {
	out      string
	baseline string
}

func newReportCmd() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report <artifact.jsonl>",
		Short: "Render a saved run artifact as a markdown report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.out, "out", "", "write markdown to file instead of stdout")
	cmd.Flags().StringVar(&opts.baseline, "baseline", "", "baseline model name (default: first by name)")

	return cmd
}

func runReport(cmd *cobra.Command, path string, opts *reportOptions) error {
	if opts == nil {
		return fmt.Errorf("report: nil options")
	}

	records, err := report.ReadJSONL(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("report: %s: empty artifact", path)
	}

	// The artifact does not record configuration order, so model order is
	// alphabetical unless --baseline promotes one to the front.
	names := report.ModelNames(records)
	if b := strings.TrimSpace(opts.baseline); b != "" {
		i := -1
		for j, n := range names {
			if n == b {
				i = j
				break
			}
		}
		if i < 0 {
			return fmt.Errorf("report: baseline %q not in artifact (models: %s)", b, strings.Join(names, ", "))
		}
		names[0], names[i] = names[i], names[0]
	}
	models := make([]metrics.ModelInfo, 0, len(names))
	for _, n := range names {
		models = append(models, metrics.ModelInfo{Name: n})
	}

	summary, err := metrics.Reduce(report.Observations(records), models, pricing.Lookup)
	if err != nil {
		return err
	}

	task := taskFromPath(path)
	runID := report.RunIDFromPath(path)
	md := report.Markdown(summary, records, task, runID)

	out := strings.TrimSpace(opts.out)
	if out == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), md)
		return err
	}
	if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
		return fmt.Errorf("report: write %q: %w", out, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", out)
	return nil
}

func taskFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	if i := strings.LastIndex(base, "_results_"); i >= 0 {
		return base[:i]
	}
	return base
}
