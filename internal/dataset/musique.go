package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultMusiquePath = "data/benchmarks/musique_validation.jsonl"
	musiqueURL         = "https://raw.githubusercontent.com/stonybrooknlp/musique/main/data/musique_ans_v1.0_dev.jsonl"
)

// Musique reads the MuSiQue answerable dev split. Unlike the other
// adapters it downloads and caches the public JSONL when the local file is
// missing, since the split is not commonly pre-exported.
type Musique struct {
	Options Options

	// URL overrides the download source, mainly for tests.
	URL string
}

type musiqueRow struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Paragraphs []struct {
		Title         string `json:"title"`
		ParagraphText string `json:"paragraph_text"`
		IsSupporting  bool   `json:"is_supporting"`
	} `json:"paragraphs"`
}

func (d *Musique) Name() string { return "musique" }

func (d *Musique) Description() string {
	return "MuSiQue multi-hop questions composed from single-hop sub-questions"
}

func (d *Musique) Load(ctx context.Context) ([]Example, error) {
	if ctx == nil {
		return nil, errors.New("musique: nil context")
	}

	path := envPath("QA_BENCH_MUSIQUE_PATH", defaultMusiquePath)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := d.download(ctx, path); err != nil {
			return nil, fmt.Errorf("musique: download: %w", err)
		}
	}

	rows, err := readJSONL[musiqueRow](ctx, path)
	if err != nil {
		return nil, fmt.Errorf("musique: load %q: %w", path, err)
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

		var sb strings.Builder
		for _, p := range row.Paragraphs {
			sb.WriteString("Title: ")
			sb.WriteString(p.Title)
			sb.WriteByte('\n')
			sb.WriteString(p.ParagraphText)
			sb.WriteString("\n\n")
		}

		id := strings.TrimSpace(row.ID)
		if id == "" {
			id = fmt.Sprintf("musique-%d", i+1)
		}

		out = append(out, Example{
			ID:         id,
			Question:   q,
			Context:    strings.TrimSpace(sb.String()),
			GoldAnswer: strings.TrimSpace(row.Answer),
		})
	}

	return applySampling(out, d.Options), nil
}

func (d *Musique) download(ctx context.Context, path string) error {
	url := strings.TrimSpace(d.URL)
	if url == "" {
		url = musiqueURL
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
