package report

import (
	"fmt"
	"strings"

	"github.com/stellarlinkco/qa-bench/internal/metrics"
)

// Markdown renders a full report: the overall table, head-to-head record
// against the baseline, key insights, and one table per example. Error
// answers stay visible in the per-example cells so a failed task is never
// mistaken for an empty answer.
func Markdown(summary *metrics.RunSummary, records []Record, task, runID string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Benchmark Report: %s (%s)\n\n", task, runID)

	b.WriteString("## Overall\n\n")
	b.WriteString("| Model | EM | F1 | Avg Latency (ms) | Avg Calls | Tokens (in/out) | Cost (USD) | Errors |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, m := range summary.Models {
		name := m.Name
		if m.Name == summary.Baseline {
			name += " (baseline)"
		}
		fmt.Fprintf(&b, "| %s | %.1f%% | %.1f%% | %.0f | %.1f | %d/%d | $%.4f | %d |\n",
			name, m.ExactMatch*100, m.F1*100, m.AvgLatencyMS, m.AvgCalls,
			m.InputTokens, m.OutputTokens, m.CostUSD, m.Errors)
	}
	b.WriteString("\n")

	if len(summary.Models) > 1 {
		fmt.Fprintf(&b, "## Head-to-Head vs %s\n\n", summary.Baseline)
		b.WriteString("| Model | Wins | Losses | Ties | Win Rate |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, m := range summary.Models {
			if m.Name == summary.Baseline {
				continue
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %.1f%% |\n", m.Name, m.Wins, m.Losses, m.Ties, m.WinRate*100)
		}
		b.WriteString("\n")
	}

	writeInsights(&b, summary)
	writeExamples(&b, summary, records)
	return b.String()
}

func writeInsights(b *strings.Builder, summary *metrics.RunSummary) {
	if len(summary.Models) == 0 {
		return
	}
	best, cheapest, fastest := summary.Models[0], summary.Models[0], summary.Models[0]
	for _, m := range summary.Models[1:] {
		if m.F1 > best.F1 {
			best = m
		}
		if m.CostUSD < cheapest.CostUSD {
			cheapest = m
		}
		if m.AvgLatencyMS < fastest.AvgLatencyMS {
			fastest = m
		}
	}

	b.WriteString("## Key Insights\n\n")
	fmt.Fprintf(b, "- Best F1: **%s** (%.1f%%)\n", best.Name, best.F1*100)
	fmt.Fprintf(b, "- Cheapest: **%s** ($%.4f)\n", cheapest.Name, cheapest.CostUSD)
	fmt.Fprintf(b, "- Fastest: **%s** (%.0f ms avg)\n", fastest.Name, fastest.AvgLatencyMS)
	b.WriteString("\n")
}

func writeExamples(b *strings.Builder, summary *metrics.RunSummary, records []Record) {
	if len(records) == 0 {
		return
	}

	b.WriteString("## Per-Example Results\n\n")
	for i, rec := range records {
		fmt.Fprintf(b, "### Example %d: %s\n\n", i+1, rec.ExampleID)
		fmt.Fprintf(b, "**Question:** %s\n\n", mdEscape(rec.Question))
		fmt.Fprintf(b, "**Gold:** %s\n\n", mdEscape(rec.Gold))
		b.WriteString("| Model | Answer | F1 | Calls | Time (ms) |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, m := range summary.Models {
			mr, ok := rec.Models[m.Name]
			if !ok {
				fmt.Fprintf(b, "| %s | (missing) | | | |\n", m.Name)
				continue
			}
			fmt.Fprintf(b, "| %s | %s | %.2f | %d | %d |\n",
				m.Name, mdEscape(mr.Answer), mr.F1, mr.LLMCalls, mr.TimeMS)
		}
		b.WriteString("\n")
	}
}

// mdEscape keeps cell text on one line and out of the table syntax.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
