// Package report persists run results as JSONL artifacts and renders them
// as markdown reports and console summaries.
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/stellarlinkco/qa-bench/internal/engine"
	"github.com/stellarlinkco/qa-bench/internal/llm"
	"github.com/stellarlinkco/qa-bench/internal/metrics"
)

// ModelRecord is one model's saved outcome for one example, with scores
// precomputed so a viewer never has to rescore.
type ModelRecord struct {
	Answer   string     `json:"answer"`
	TimeMS   int64      `json:"time_ms"`
	LLMCalls int        `json:"llm_calls"`
	Error    string     `json:"error,omitempty"`
	Usage    *llm.Usage `json:"usage,omitempty"`
	EM       bool       `json:"em"`
	F1       float64    `json:"f1"`
}

// Record is one JSONL line: an example and every model's outcome on it.
type Record struct {
	ExampleID string                 `json:"example_id"`
	Question  string                 `json:"question"`
	Gold      string                 `json:"gold"`
	Models    map[string]ModelRecord `json:"results"`
}

// FromResults groups flat task results into one record per example,
// preserving first-seen example order, and scores each answer.
func FromResults(results []engine.TaskResult) []Record {
	index := make(map[string]int, len(results))
	var out []Record
	for _, r := range results {
		i, ok := index[r.ExampleID]
		if !ok {
			i = len(out)
			index[r.ExampleID] = i
			out = append(out, Record{
				ExampleID: r.ExampleID,
				Question:  r.Question,
				Gold:      r.Gold,
				Models:    make(map[string]ModelRecord),
			})
		}
		out[i].Models[r.ModelName] = ModelRecord{
			Answer:   r.Answer,
			TimeMS:   r.LatencyMS,
			LLMCalls: r.Calls,
			Error:    r.Err,
			Usage:    r.Usage,
			EM:       metrics.ExactMatch(r.Answer, r.Gold),
			F1:       metrics.F1(r.Answer, r.Gold),
		}
	}
	return out
}

// Observations flattens records back into scorer input. Model names absent
// from a record are simply not emitted; the reducer's per-model counts
// surface the gap.
func Observations(records []Record) []metrics.Observation {
	var out []metrics.Observation
	for _, rec := range records {
		for name, m := range rec.Models {
			o := metrics.Observation{
				ExampleID: rec.ExampleID,
				ModelName: name,
				Gold:      rec.Gold,
				Answer:    m.Answer,
				Calls:     m.LLMCalls,
				LatencyMS: m.TimeMS,
				Failed:    m.Error != "",
			}
			if m.Usage != nil {
				o.InputTokens = m.Usage.InputTokens
				o.OutputTokens = m.Usage.OutputTokens
			}
			out = append(out, o)
		}
	}
	return out
}

// ModelNames returns the sorted distinct model names across records.
func ModelNames(records []Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		for name := range rec.Models {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// NewRunID returns the timestamp id embedded in artifact filenames.
func NewRunID(now time.Time) string {
	return now.Format("20060102_150405")
}

// ArtifactPath builds "<dir>/<task>_results_<runID>.jsonl".
func ArtifactPath(dir, task, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_results_%s.jsonl", task, runID))
}

// RunIDFromPath extracts the run id from an artifact filename, or "" when
// the name does not follow the artifact convention.
func RunIDFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	i := strings.LastIndex(base, "_results_")
	if i < 0 {
		return ""
	}
	return base[i+len("_results_"):]
}

// WriteJSONL writes one record per line, creating dir if needed, and
// returns the artifact path.
func WriteJSONL(dir, task, runID string, records []Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: mkdir %q: %w", dir, err)
	}
	path := ArtifactPath(dir, task, runID)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return "", fmt.Errorf("report: encode %q: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("report: flush %q: %w", path, err)
	}
	return path, nil
}

// ReadJSONL loads an artifact written by WriteJSONL. Blank lines are
// skipped; a malformed line fails the whole read.
func ReadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("report: open %q: %w", path, err)
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("report: %s:%d: %w", path, line, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("report: scan %q: %w", path, err)
	}
	return out, nil
}
