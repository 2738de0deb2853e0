package metrics

import (
	"errors"
	"fmt"
)

// Observation is one scored-input row: the raw outcome of evaluating one
// example with one model, independent of where it came from (a live run or
// a saved artifact).
type Observation struct {
	ExampleID    string
	ModelName    string
	Gold         string
	Answer       string
	Calls        int
	LatencyMS    int64
	InputTokens  int
	OutputTokens int
	Failed       bool
}

// ModelInfo carries the per-model attributes a summary needs beyond the
// name. Order matters: the first model is the comparison baseline.
type ModelInfo struct {
	Name     string
	ModelID  string
	Isolated bool
}

// PriceLookup returns USD prices per million input and output tokens for a
// model id.
type PriceLookup func(modelID string) (inPerM, outPerM float64)

// ModelSummary aggregates one model's results across all examples.
type ModelSummary struct {
	Name         string
	ModelID      string
	Isolated     bool
	Examples     int
	Errors       int
	ExactMatch   float64 // mean over examples
	F1           float64 // mean over examples
	AvgLatencyMS float64
	AvgCalls     float64
	InputTokens  int
	OutputTokens int
	CostUSD      float64

	// Head-to-head per-example F1 record against the baseline model.
	// WinRate is wins over all scored examples. Zero for the baseline
	// itself.
	Wins    int
	Losses  int
	Ties    int
	WinRate float64
}

// RunSummary is the reduced view of a complete run.
type RunSummary struct {
	Baseline string
	Models   []ModelSummary
}

// Reduce aggregates observations into one summary per model, in model
// order, with head-to-head F1 comparisons against the first model.
// Failed observations score like wrong answers; they are counted, never
// skipped, so every model's denominator is the same.
func Reduce(obs []Observation, models []ModelInfo, price PriceLookup) (*RunSummary, error) {
	if len(models) == 0 {
		return nil, errors.New("metrics: no models to summarize")
	}
	if price == nil {
		return nil, errors.New("metrics: nil price lookup")
	}

	type key struct{ example, model string }
	f1ByKey := make(map[key]float64, len(obs))
	byModel := make(map[string][]Observation, len(models))
	for _, o := range obs {
		k := key{o.ExampleID, o.ModelName}
		if _, ok := f1ByKey[k]; ok {
			return nil, fmt.Errorf("metrics: duplicate observation for example %q model %q", o.ExampleID, o.ModelName)
		}
		f1ByKey[k] = F1(o.Answer, o.Gold)
		byModel[o.ModelName] = append(byModel[o.ModelName], o)
	}

	baseline := models[0].Name
	out := &RunSummary{Baseline: baseline, Models: make([]ModelSummary, 0, len(models))}
	for _, m := range models {
		rows := byModel[m.Name]
		s := ModelSummary{Name: m.Name, ModelID: m.ModelID, Isolated: m.Isolated, Examples: len(rows)}

		var emSum, f1Sum, latSum, callSum float64
		for _, o := range rows {
			if o.Failed {
				s.Errors++
			}
			if ExactMatch(o.Answer, o.Gold) {
				emSum++
			}
			f1Sum += f1ByKey[key{o.ExampleID, o.ModelName}]
			latSum += float64(o.LatencyMS)
			callSum += float64(o.Calls)
			s.InputTokens += o.InputTokens
			s.OutputTokens += o.OutputTokens

			if m.Name != baseline {
				base, ok := f1ByKey[key{o.ExampleID, baseline}]
				if !ok {
					continue
				}
				mine := f1ByKey[key{o.ExampleID, o.ModelName}]
				switch {
				case mine > base:
					s.Wins++
				case mine < base:
					s.Losses++
				default:
					s.Ties++
				}
			}
		}
		if len(rows) > 0 {
			n := float64(len(rows))
			s.ExactMatch = emSum / n
			s.F1 = f1Sum / n
			s.AvgLatencyMS = latSum / n
			s.AvgCalls = callSum / n
			if m.Name != baseline {
				s.WinRate = float64(s.Wins) / n
			}
		}

		inPerM, outPerM := price(m.ModelID)
		s.CostUSD = (float64(s.InputTokens)*inPerM + float64(s.OutputTokens)*outPerM) / 1e6

		out.Models = append(out.Models, s)
	}
	return out, nil
}
