package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

const defaultSQuADv2Path = "data/benchmarks/squad_v2.jsonl"

// SQuADv2 reads SQuAD v2.0 reading-comprehension items. Roughly half of the
// raw split is unanswerable; AnswerableOnly filters those out, otherwise the
// gold answer for them is "unanswerable".
type SQuADv2 struct {
	Options        Options
	AnswerableOnly bool
}

type squadRow struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Context  string `json:"context"`
	Answers  struct {
		Text []string `json:"text"`
	} `json:"answers"`
}

func (d *SQuADv2) Name() string { return "squad_v2" }

func (d *SQuADv2) Description() string {
	return "SQuAD v2.0 reading comprehension over single Wikipedia passages"
}

func (d *SQuADv2) Load(ctx context.Context) ([]Example, error) {
	if ctx == nil {
		return nil, errors.New("squad_v2: nil context")
	}

	path := envPath("QA_BENCH_SQUAD_V2_PATH", defaultSQuADv2Path)
	rows, err := readJSONL[squadRow](ctx, path)
	if err != nil {
		if os.IsNotExist(err) {
			return applySampling(defaultSQuADv2Sample(), d.Options), nil
		}
		return nil, fmt.Errorf("squad_v2: load %q: %w", path, err)
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

		answerable := len(row.Answers.Text) > 0
		if d.AnswerableOnly && !answerable {
			continue
		}
		gold := "unanswerable"
		if answerable {
			gold = strings.TrimSpace(row.Answers.Text[0])
		}

		id := strings.TrimSpace(row.ID)
		if id == "" {
			id = fmt.Sprintf("squad_v2-%d", i+1)
		}

		out = append(out, Example{
			ID:         id,
			Question:   q,
			Context:    strings.TrimSpace(row.Context),
			GoldAnswer: gold,
		})
	}

	if len(out) == 0 {
		return applySampling(defaultSQuADv2Sample(), d.Options), nil
	}
	return applySampling(out, d.Options), nil
}

func defaultSQuADv2Sample() []Example {
	return []Example{
		{
			ID:         "squad-sample-1",
			Question:   "What river runs through the city?",
			Context:    "The city of Riverton sits on the banks of the Silver River, which powered its early mills.",
			GoldAnswer: "the Silver River",
		},
		{
			ID:         "squad-sample-2",
			Question:   "When was the observatory founded?",
			Context:    "Hillcrest Observatory was founded in 1889 by a group of amateur astronomers.",
			GoldAnswer: "1889",
		},
	}
}
