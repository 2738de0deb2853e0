package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

const defaultHotpotQAPath = "data/benchmarks/hotpotqa.jsonl"

// HotpotQA reads the multi-hop QA distractor split exported as JSONL.
type HotpotQA struct {
	Options Options
}

type hotpotRow struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Context  struct {
		Title     []string   `json:"title"`
		Sentences [][]string `json:"sentences"`
	} `json:"context"`
}

func (d *HotpotQA) Name() string { return "hotpotqa" }

func (d *HotpotQA) Description() string {
	return "HotpotQA multi-hop questions over titled Wikipedia paragraphs (distractor setting)"
}

func (d *HotpotQA) Load(ctx context.Context) ([]Example, error) {
	if ctx == nil {
		return nil, errors.New("hotpotqa: nil context")
	}

	path := envPath("QA_BENCH_HOTPOTQA_PATH", defaultHotpotQAPath)
	rows, err := readJSONL[hotpotRow](ctx, path)
	if err != nil {
		if os.IsNotExist(err) {
			return applySampling(defaultHotpotQASample(), d.Options), nil
		}
		return nil, fmt.Errorf("hotpotqa: load %q: %w", path, err)
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

		id := strings.TrimSpace(row.ID)
		if id == "" {
			id = fmt.Sprintf("hotpotqa-%d", i+1)
		}

		out = append(out, Example{
			ID:         id,
			Question:   q,
			Context:    joinTitledParagraphs(row.Context.Title, row.Context.Sentences),
			GoldAnswer: strings.TrimSpace(row.Answer),
		})
	}

	if len(out) == 0 {
		return applySampling(defaultHotpotQASample(), d.Options), nil
	}
	return applySampling(out, d.Options), nil
}

// joinTitledParagraphs renders [title, sentences] pairs as the original
// distractor context format: "Title: <t>\n<paragraph>\n\n".
func joinTitledParagraphs(titles []string, sentences [][]string) string {
	var sb strings.Builder
	for i, title := range titles {
		var paragraph string
		if i < len(sentences) {
			paragraph = strings.Join(sentences[i], "")
		}
		sb.WriteString("Title: ")
		sb.WriteString(title)
		sb.WriteByte('\n')
		sb.WriteString(paragraph)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

func defaultHotpotQASample() []Example {
	return []Example{
		{
			ID:         "hotpotqa-sample-1",
			Question:   "Which city hosts the university where the author of the linked paper teaches?",
			Context:    "Title: Example University\nExample University is located in Springfield.\n\nTitle: The Paper\nThe paper was written by a professor at Example University.",
			GoldAnswer: "Springfield",
		},
		{
			ID:         "hotpotqa-sample-2",
			Question:   "What color is the flower named after the mountain?",
			Context:    "Title: Mount Bloom\nMount Bloom is a peak in the Cascades.\n\nTitle: Bloom Lily\nThe Bloom Lily, named after Mount Bloom, is a white flower.",
			GoldAnswer: "white",
		},
		{
			ID:         "hotpotqa-sample-3",
			Question:   "In which decade was the bridge connecting the two towns built?",
			Context:    "Title: Twin Bridge\nTwin Bridge was completed in 1952.\n\nTitle: Eastport\nEastport is connected to Westport by Twin Bridge.",
			GoldAnswer: "1950s",
		},
	}
}
