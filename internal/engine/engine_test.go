package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stellarlinkco/qa-bench/internal/config"
	"github.com/stellarlinkco/qa-bench/internal/dataset"
	"github.com/stellarlinkco/qa-bench/internal/llm"
)

type fakeClient struct {
	fn func(ctx context.Context, spec config.ModelSpec, question, contextText string) (*llm.Result, error)
}

func (c *fakeClient) Evaluate(ctx context.Context, spec config.ModelSpec, question, contextText string) (*llm.Result, error) {
	return c.fn(ctx, spec, question, contextText)
}

type fakeFactory struct {
	shared      llm.Client
	sharedErr   error
	isolated    func(spec config.ModelSpec) (llm.Client, error)
	isolatedGot []string
	mu          sync.Mutex
}

func (f *fakeFactory) NewShared() (llm.Client, error) {
	return f.shared, f.sharedErr
}

func (f *fakeFactory) NewIsolated(spec config.ModelSpec) (llm.Client, error) {
	f.mu.Lock()
	f.isolatedGot = append(f.isolatedGot, spec.Name)
	f.mu.Unlock()
	if f.isolated != nil {
		return f.isolated(spec)
	}
	return echoClient(), nil
}

func echoClient() llm.Client {
	return &fakeClient{fn: func(ctx context.Context, spec config.ModelSpec, q, c string) (*llm.Result, error) {
		return &llm.Result{Answer: "answer for " + q, Calls: 1, Usage: &llm.Usage{InputTokens: 3, OutputTokens: 1}}, nil
	}}
}

func makeExamples(n int) []dataset.Example {
	out := make([]dataset.Example, n)
	for i := range out {
		out[i] = dataset.Example{
			ID:         fmt.Sprintf("ex-%d", i),
			Question:   fmt.Sprintf("question %d", i),
			Context:    "some context",
			GoldAnswer: fmt.Sprintf("gold %d", i),
		}
	}
	return out
}

func TestRun_Completeness(t *testing.T) {
	examples := makeExamples(3)
	models := []config.ModelSpec{
		{Name: "shared-a", ModelID: "a", Backend: config.BackendOpenRouter},
		{Name: "iso-b", ModelID: "b", Backend: config.BackendOpenRouter, Isolated: true},
	}

	e := New(&fakeFactory{shared: echoClient()})
	results, err := e.Run(context.Background(), examples, models)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(examples)*len(models) {
		t.Fatalf("results=%d want %d", len(results), len(examples)*len(models))
	}

	// One result per pair, ordered example-major.
	i := 0
	for _, ex := range examples {
		for _, m := range models {
			r := results[i]
			if r.ExampleID != ex.ID || r.ModelName != m.Name {
				t.Fatalf("result %d: (%s, %s) want (%s, %s)", i, r.ExampleID, r.ModelName, ex.ID, m.Name)
			}
			if r.Err != "" {
				t.Fatalf("result %d: unexpected error %q", i, r.Err)
			}
			if r.Gold != ex.GoldAnswer {
				t.Fatalf("result %d: gold=%q", i, r.Gold)
			}
			i++
		}
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	e := New(&fakeFactory{shared: echoClient()})
	ok := []config.ModelSpec{{Name: "m", ModelID: "id", Backend: config.BackendOpenAI}}

	cases := []struct {
		name     string
		examples []dataset.Example
		models   []config.ModelSpec
	}{
		{"no models", makeExamples(1), nil},
		{"duplicate model", makeExamples(1), []config.ModelSpec{
			{Name: "m", ModelID: "a", Backend: config.BackendOpenAI},
			{Name: "m", ModelID: "b", Backend: config.BackendOpenAI},
		}},
		{"empty model name", makeExamples(1), []config.ModelSpec{{ModelID: "a", Backend: config.BackendOpenAI}}},
		{"duplicate example id", []dataset.Example{{ID: "x", Question: "q"}, {ID: "x", Question: "q2"}}, ok},
	}
	for _, tc := range cases {
		_, err := e.Run(context.Background(), tc.examples, tc.models)
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: err=%v, want ConfigError", tc.name, err)
		}
	}
}

func TestRun_NoExamplesYieldsEmptyRun(t *testing.T) {
	e := New(&fakeFactory{shared: echoClient()})
	models := []config.ModelSpec{{Name: "m", ModelID: "id", Backend: config.BackendOpenAI}}
	results, err := e.Run(context.Background(), nil, models)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results=%d", len(results))
	}
}

func TestRun_BackendFailureIsData(t *testing.T) {
	failing := &fakeClient{fn: func(ctx context.Context, spec config.ModelSpec, q, c string) (*llm.Result, error) {
		return nil, errors.New("rate limited")
	}}
	e := New(&fakeFactory{shared: failing})

	examples := makeExamples(2)
	models := []config.ModelSpec{{Name: "m", ModelID: "id", Backend: config.BackendOpenAI}}
	results, err := e.Run(context.Background(), examples, models)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results=%d", len(results))
	}
	for _, r := range results {
		if r.Err != "rate limited" {
			t.Fatalf("Err=%q", r.Err)
		}
		if !strings.HasPrefix(r.Answer, "Error: ") {
			t.Fatalf("Answer=%q", r.Answer)
		}
		if r.Calls != 0 || r.LatencyMS != 0 {
			t.Fatalf("error result carries calls=%d latency=%d", r.Calls, r.LatencyMS)
		}
	}
}

func TestRun_IsolatedClientNeverConcurrent(t *testing.T) {
	// A client that fails on concurrent entry. Each isolated model gets
	// its own instance, so per-model serial execution keeps the busy
	// flag clean.
	newStrict := func() llm.Client {
		var busy atomic.Bool
		return &fakeClient{fn: func(ctx context.Context, spec config.ModelSpec, q, c string) (*llm.Result, error) {
			if !busy.CompareAndSwap(false, true) {
				return nil, errors.New("concurrent entry")
			}
			time.Sleep(time.Millisecond)
			busy.Store(false)
			return &llm.Result{Answer: "ok", Calls: 1}, nil
		}}
	}

	f := &fakeFactory{
		shared:   echoClient(),
		isolated: func(spec config.ModelSpec) (llm.Client, error) { return newStrict(), nil },
	}
	e := New(f)

	examples := makeExamples(5)
	models := []config.ModelSpec{
		{Name: "iso-1", ModelID: "a", Backend: config.BackendOpenRouter, Isolated: true},
		{Name: "iso-2", ModelID: "b", Backend: config.BackendOpenRouter, Isolated: true},
	}
	results, err := e.Run(context.Background(), examples, models)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range results {
		if r.Err != "" {
			t.Fatalf("(%s, %s): %q", r.ExampleID, r.ModelName, r.Err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.isolatedGot) != 2 {
		t.Fatalf("isolated clients constructed: %v", f.isolatedGot)
	}
}

func TestRun_SharedPoolRunsConcurrently(t *testing.T) {
	var inFlight, peak atomic.Int64
	release := make(chan struct{})
	slow := &fakeClient{fn: func(ctx context.Context, spec config.ModelSpec, q, c string) (*llm.Result, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
		return &llm.Result{Answer: "ok", Calls: 1}, nil
	}}

	e := New(&fakeFactory{shared: slow})
	e.WorkerCap = 4

	examples := makeExamples(8)
	models := []config.ModelSpec{{Name: "m", ModelID: "id", Backend: config.BackendOpenAI}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := e.Run(context.Background(), examples, models); err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	// Wait until the pool saturates, then let everything finish.
	deadline := time.After(2 * time.Second)
	for inFlight.Load() < 4 {
		select {
		case <-deadline:
			t.Fatalf("pool never saturated, in flight=%d", inFlight.Load())
		case <-time.After(time.Millisecond):
		}
	}
	close(release)
	<-done

	if peak.Load() < 2 {
		t.Fatalf("peak concurrency=%d", peak.Load())
	}
	if peak.Load() > 4 {
		t.Fatalf("worker cap exceeded: %d", peak.Load())
	}
}

func TestRun_WorkerCapNeverExceedsTasks(t *testing.T) {
	e := New(&fakeFactory{shared: echoClient()})
	if got := e.workerCap(); got != DefaultWorkerCap {
		t.Fatalf("default cap=%d", got)
	}
	e.WorkerCap = 3
	if got := e.workerCap(); got != 3 {
		t.Fatalf("cap=%d", got)
	}
}

func TestRun_IsolatedInitFailureIsContained(t *testing.T) {
	f := &fakeFactory{
		shared: echoClient(),
		isolated: func(spec config.ModelSpec) (llm.Client, error) {
			if spec.Name == "iso-bad" {
				return nil, errors.New("missing api key")
			}
			return echoClient(), nil
		},
	}
	e := New(f)

	examples := makeExamples(2)
	models := []config.ModelSpec{
		{Name: "shared-ok", ModelID: "a", Backend: config.BackendOpenAI},
		{Name: "iso-bad", ModelID: "b", Backend: config.BackendOpenRouter, Isolated: true},
		{Name: "iso-ok", ModelID: "c", Backend: config.BackendOpenRouter, Isolated: true},
	}
	results, err := e.Run(context.Background(), examples, models)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("results=%d", len(results))
	}
	for _, r := range results {
		switch r.ModelName {
		case "iso-bad":
			if r.Err != "missing api key" {
				t.Fatalf("iso-bad Err=%q", r.Err)
			}
		default:
			if r.Err != "" {
				t.Fatalf("(%s, %s): %q", r.ExampleID, r.ModelName, r.Err)
			}
		}
	}
}

func TestRun_SharedInitFailureIsContained(t *testing.T) {
	f := &fakeFactory{
		sharedErr: errors.New("no provider"),
		isolated:  func(spec config.ModelSpec) (llm.Client, error) { return echoClient(), nil },
	}
	e := New(f)

	examples := makeExamples(1)
	models := []config.ModelSpec{
		{Name: "shared-m", ModelID: "a", Backend: config.BackendOpenAI},
		{Name: "iso-m", ModelID: "b", Backend: config.BackendOpenRouter, Isolated: true},
	}
	results, err := e.Run(context.Background(), examples, models)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range results {
		if r.ModelName == "shared-m" && r.Err != "no provider" {
			t.Fatalf("shared-m Err=%q", r.Err)
		}
		if r.ModelName == "iso-m" && r.Err != "" {
			t.Fatalf("iso-m Err=%q", r.Err)
		}
	}
}

func TestRun_CancellationFillsGaps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var served atomic.Int64
	slow := &fakeClient{fn: func(ctx context.Context, spec config.ModelSpec, q, c string) (*llm.Result, error) {
		if served.Add(1) == 1 {
			cancel()
			return &llm.Result{Answer: "first", Calls: 1}, nil
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	e := New(&fakeFactory{shared: slow})
	e.WorkerCap = 1

	examples := makeExamples(4)
	models := []config.ModelSpec{{Name: "m", ModelID: "id", Backend: config.BackendOpenAI}}
	results, err := e.Run(ctx, examples, models)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("results=%d", len(results))
	}

	var okCount, cancelled int
	for _, r := range results {
		if r.Err == "" {
			okCount++
			continue
		}
		if !strings.Contains(r.Err, context.Canceled.Error()) {
			t.Fatalf("Err=%q", r.Err)
		}
		cancelled++
	}
	if okCount < 1 || okCount+cancelled != 4 {
		t.Fatalf("ok=%d cancelled=%d", okCount, cancelled)
	}
}

func TestResultSet_InsertOnce(t *testing.T) {
	rs := NewResultSet(nil)
	r1 := TaskResult{ExampleID: "x", ModelName: "m", Answer: "first"}
	r2 := TaskResult{ExampleID: "x", ModelName: "m", Answer: "second"}

	if !rs.Put(r1) {
		t.Fatalf("first Put rejected")
	}
	if rs.Put(r2) {
		t.Fatalf("duplicate Put accepted")
	}
	got, ok := rs.Get("x", "m")
	if !ok || got.Answer != "first" {
		t.Fatalf("got=%#v ok=%v", got, ok)
	}
	if rs.Len() != 1 || rs.Duplicates() != 1 {
		t.Fatalf("len=%d dups=%d", rs.Len(), rs.Duplicates())
	}
}

func TestBuildPlan_Partition(t *testing.T) {
	examples := makeExamples(2)
	models := []config.ModelSpec{
		{Name: "s1", ModelID: "a", Backend: config.BackendOpenAI},
		{Name: "i1", ModelID: "b", Backend: config.BackendOpenRouter, Isolated: true},
		{Name: "s2", ModelID: "c", Backend: config.BackendClaude},
	}

	p, err := BuildPlan(examples, models)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if p.Total != 6 {
		t.Fatalf("total=%d", p.Total)
	}
	if len(p.Shared) != 4 {
		t.Fatalf("shared=%d", len(p.Shared))
	}
	if len(p.IsolatedOrder) != 1 || p.IsolatedOrder[0] != "i1" {
		t.Fatalf("isolated order=%v", p.IsolatedOrder)
	}
	if len(p.Isolated["i1"]) != 2 {
		t.Fatalf("isolated tasks=%d", len(p.Isolated["i1"]))
	}
}
