package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

const defaultBoolQPath = "data/benchmarks/boolq.jsonl"

// BoolQ reads yes/no questions paired with Wikipedia passages.
type BoolQ struct {
	Options Options
}

type boolqRow struct {
	Idx      *int   `json:"idx,omitempty"`
	Question string `json:"question"`
	Passage  string `json:"passage"`
	Answer   bool   `json:"answer"`
}

func (d *BoolQ) Name() string { return "boolq" }

func (d *BoolQ) Description() string {
	return "BoolQ yes/no questions from natural search queries"
}

func (d *BoolQ) Load(ctx context.Context) ([]Example, error) {
	if ctx == nil {
		return nil, errors.New("boolq: nil context")
	}

	path := envPath("QA_BENCH_BOOLQ_PATH", defaultBoolQPath)
	rows, err := readJSONL[boolqRow](ctx, path)
	if err != nil {
		if os.IsNotExist(err) {
			return applySampling(defaultBoolQSample(), d.Options), nil
		}
		return nil, fmt.Errorf("boolq: load %q: %w", path, err)
	}

	out := make([]Example, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		q := strings.TrimSpace(row.Question)
		if q == "" {
			continue
		}

		gold := "no"
		if row.Answer {
			gold = "yes"
		}

		id := fmt.Sprintf("boolq-%d", i+1)
		if row.Idx != nil {
			id = fmt.Sprintf("boolq-%d", *row.Idx)
		}

		out = append(out, Example{
			ID:         id,
			Question:   q,
			Context:    strings.TrimSpace(row.Passage),
			GoldAnswer: gold,
		})
	}

	if len(out) == 0 {
		return applySampling(defaultBoolQSample(), d.Options), nil
	}
	return applySampling(out, d.Options), nil
}

func defaultBoolQSample() []Example {
	return []Example{
		{
			ID:         "boolq-sample-1",
			Question:   "is the harbor bridge older than the tunnel",
			Context:    "The harbor bridge opened in 1932. The harbor tunnel opened to traffic in 1992.",
			GoldAnswer: "yes",
		},
		{
			ID:         "boolq-sample-2",
			Question:   "does the park close in winter",
			Context:    "The park remains open year round, though some trails are inaccessible after heavy snowfall.",
			GoldAnswer: "no",
		},
	}
}
