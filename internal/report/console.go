package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/stellarlinkco/qa-bench/internal/metrics"
)

// PrintSummary writes the overall table to w in a terminal-friendly form.
func PrintSummary(w io.Writer, summary *metrics.RunSummary) {
	if summary == nil {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tEM\tF1\tLATENCY\tCALLS\tCOST\tERRORS")
	for _, m := range summary.Models {
		name := m.Name
		if m.Name == summary.Baseline {
			name += " *"
		}
		fmt.Fprintf(tw, "%s\t%.1f%%\t%.1f%%\t%.0fms\t%.1f\t$%.4f\t%d\n",
			name, m.ExactMatch*100, m.F1*100, m.AvgLatencyMS, m.AvgCalls, m.CostUSD, m.Errors)
	}
	tw.Flush()

	if len(summary.Models) > 1 {
		fmt.Fprintf(w, "\nHead-to-head vs %s:\n", summary.Baseline)
		for _, m := range summary.Models {
			if m.Name == summary.Baseline {
				continue
			}
			fmt.Fprintf(w, "  %s: %dW %dL %dT (%.1f%% win rate)\n", m.Name, m.Wins, m.Losses, m.Ties, m.WinRate*100)
		}
	}
}
