package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

const defaultDROPPath = "data/benchmarks/drop.jsonl"

// DROP reads discrete-reasoning questions over paragraphs. Items can carry
// multiple valid answer spans; the first span is used as gold.
type DROP struct {
	Options Options
}

type dropRow struct {
	QueryID      string `json:"query_id"`
	Question     string `json:"question"`
	Passage      string `json:"passage"`
	AnswersSpans struct {
		Spans []string `json:"spans"`
	} `json:"answers_spans"`
}

func (d *DROP) Name() string { return "drop" }

func (d *DROP) Description() string {
	return "DROP numerical and discrete reasoning over text passages"
}

func (d *DROP) Load(ctx context.Context) ([]Example, error) {
	if ctx == nil {
		return nil, errors.New("drop: nil context")
	}

	path := envPath("QA_BENCH_DROP_PATH", defaultDROPPath)
	rows, err := readJSONL[dropRow](ctx, path)
	if err != nil {
		if os.IsNotExist(err) {
			return applySampling(defaultDROPSample(), d.Options), nil
		}
		return nil, fmt.Errorf("drop: load %q: %w", path, err)
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

		var gold string
		if len(row.AnswersSpans.Spans) > 0 {
			gold = strings.TrimSpace(row.AnswersSpans.Spans[0])
		}

		id := strings.TrimSpace(row.QueryID)
		if id == "" {
			id = fmt.Sprintf("drop-%d", i+1)
		}

		out = append(out, Example{
			ID:         id,
			Question:   q,
			Context:    strings.TrimSpace(row.Passage),
			GoldAnswer: gold,
		})
	}

	if len(out) == 0 {
		return applySampling(defaultDROPSample(), d.Options), nil
	}
	return applySampling(out, d.Options), nil
}

func defaultDROPSample() []Example {
	return []Example{
		{
			ID:         "drop-sample-1",
			Question:   "How many goals were scored in total?",
			Context:    "The home side scored 2 goals in the first half and 1 in the second, while the visitors scored 1 late goal.",
			GoldAnswer: "4",
		},
		{
			ID:         "drop-sample-2",
			Question:   "How many years after the first expedition did the second one depart?",
			Context:    "The first expedition departed in 1901. A second expedition followed in 1907.",
			GoldAnswer: "6",
		},
	}
}
