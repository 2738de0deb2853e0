package leaderboard

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func entry(run, model, dataset string, f1 float64) *Entry {
	return &Entry{
		RunID:        run,
		Model:        model,
		ModelID:      "vendor/" + model,
		Dataset:      dataset,
		ExactMatch:   f1,
		F1:           f1,
		AvgLatencyMS: 100,
		AvgCalls:     1,
		InputTokens:  1000,
		OutputTokens: 100,
		CostUSD:      0.01,
	}
}

func TestStore_SaveAndLeaderboard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, e := range []*Entry{
		entry("r1", "alpha", "hotpotqa", 0.6),
		entry("r1", "beta", "hotpotqa", 0.8),
		entry("r2", "gamma", "boolq", 0.9),
	} {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if e.ID == 0 {
			t.Fatalf("id not assigned")
		}
		if e.EvalDate.IsZero() {
			t.Fatalf("eval date not set")
		}
	}

	got, err := s.GetLeaderboard(ctx, "hotpotqa", 10)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries=%d", len(got))
	}
	if got[0].Model != "beta" || got[1].Model != "alpha" {
		t.Fatalf("order: %s, %s", got[0].Model, got[1].Model)
	}
	if got[0].ModelID != "vendor/beta" || got[0].InputTokens != 1000 {
		t.Fatalf("entry=%#v", got[0])
	}
}

func TestStore_ModelHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := entry("r1", "alpha", "hotpotqa", 0.5)
	old.EvalDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := entry("r2", "alpha", "hotpotqa", 0.7)
	recent.EvalDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, e := range []*Entry{old, recent} {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := s.GetModelHistory(ctx, "alpha", "hotpotqa")
	if err != nil {
		t.Fatalf("GetModelHistory: %v", err)
	}
	if len(got) != 2 || got[0].RunID != "r2" {
		t.Fatalf("history=%v", got)
	}
}

func TestStore_Datasets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, e := range []*Entry{
		entry("r1", "alpha", "squad_v2", 0.5),
		entry("r1", "alpha", "boolq", 0.5),
		entry("r2", "beta", "boolq", 0.6),
	} {
		if err := s.Save(ctx, e); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	got, err := s.Datasets(ctx)
	if err != nil {
		t.Fatalf("Datasets: %v", err)
	}
	if len(got) != 2 || got[0] != "boolq" || got[1] != "squad_v2" {
		t.Fatalf("datasets=%v", got)
	}
}

func TestStore_Validation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, nil); err == nil {
		t.Fatalf("nil entry: expected error")
	}
	if err := s.Save(ctx, &Entry{Model: "m", Dataset: "d"}); err == nil {
		t.Fatalf("missing run_id: expected error")
	}
	if _, err := s.GetLeaderboard(ctx, "", 10); err == nil {
		t.Fatalf("empty dataset: expected error")
	}
	if _, err := s.GetModelHistory(ctx, "", "d"); err == nil {
		t.Fatalf("empty model: expected error")
	}
	if _, err := NewStore(""); err == nil {
		t.Fatalf("empty path: expected error")
	}
}
