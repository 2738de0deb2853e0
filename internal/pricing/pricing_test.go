package pricing

import (
	"math"
	"testing"
)

func TestLookup_Known(t *testing.T) {
	in, out := Lookup("openai/gpt-4o-mini")
	if in != 0.15 || out != 0.60 {
		t.Fatalf("in=%v out=%v", in, out)
	}
}

func TestLookup_FallsBackToDefault(t *testing.T) {
	in, out := Lookup("vendor/never-heard-of-it")
	if in != Default.InputPerM || out != Default.OutputPerM {
		t.Fatalf("in=%v out=%v", in, out)
	}
}

func TestCost(t *testing.T) {
	// 2M input at $1.25/M plus 1M output at $10/M.
	got := Cost("openai/gpt-5.1", 2_000_000, 1_000_000)
	if math.Abs(got-12.5) > 1e-9 {
		t.Fatalf("cost=%v", got)
	}
	if got := Cost("openai/gpt-5.1", 0, 0); got != 0 {
		t.Fatalf("zero tokens cost=%v", got)
	}
}
