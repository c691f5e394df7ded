package datadog

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"ecomdata/internal/metrics"
)

// fakeSubmitter captures payloads submitted by Backend.Flush().
type fakeSubmitter struct {
	mu       sync.Mutex
	payloads []datadogV2.MetricPayload
	err      error
}

func (f *fakeSubmitter) SubmitMetrics(ctx context.Context, body datadogV2.MetricPayload, params ...datadogV2.SubmitMetricsOptionalParameters) (datadogV2.IntakePayloadAccepted, *http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, body)
	return datadogV2.IntakePayloadAccepted{}, nil, f.err
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeSubmitter) last() (datadogV2.MetricPayload, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return datadogV2.MetricPayload{}, false
	}
	return f.payloads[len(f.payloads)-1], true
}

func quietTicker(time.Duration) *time.Ticker { return time.NewTicker(24 * time.Hour) }

func newTestBackend(t *testing.T, fs *fakeSubmitter) *Backend {
	t.Helper()
	b, err := NewBackend(context.Background(), Options{
		JobName:   "job1",
		submitter: fs,
		now:       func() time.Time { return time.Unix(1000, 0) },
		newTicker: quietTicker,
	})
	if err != nil {
		t.Fatalf("NewBackend() err=%v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// TestResolveEnvTag verifies ENV wins over DD_ENV and blank values are ignored.
func TestResolveEnvTag(t *testing.T) {
	tests := []struct {
		name string
		env  string
		dd   string
		want string
	}{
		{name: "ENV_wins", env: "prod", dd: "stage", want: "env:prod"},
		{name: "DD_ENV_fallback", env: "", dd: "stage", want: "env:stage"},
		{name: "whitespace_ignored", env: "   ", dd: "\n\t", want: "env:unknown"},
		{name: "default_unknown", want: "env:unknown"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ENV", tc.env)
			t.Setenv("DD_ENV", tc.dd)
			if got := resolveEnvTag(); got != tc.want {
				t.Fatalf("resolveEnvTag()=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestStepStatusKeyRoundTrip(t *testing.T) {
	t.Parallel()

	step, status := splitStepStatusKey(stepStatusKey("repair.identifiers", "ok"))
	if step != "repair.identifiers" || status != "ok" {
		t.Fatalf("round trip = (%q,%q)", step, status)
	}
	step, status = splitStepStatusKey("bare")
	if step != "bare" || status != "unknown" {
		t.Fatalf("bare key = (%q,%q), want (bare,unknown)", step, status)
	}
}

func TestPercentileNearestRank(t *testing.T) {
	t.Parallel()

	s := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1}, {0.5, 6}, {0.9, 9}, {1, 10}, {-1, 1}, {2, 10},
	}
	for _, tc := range tests {
		if got := percentileNearestRank(s, tc.p); got != tc.want {
			t.Errorf("p=%v got %v, want %v", tc.p, got, tc.want)
		}
	}
	if got := percentileNearestRank(nil, 0.5); got != 0 {
		t.Errorf("empty got %v, want 0", got)
	}
}

func TestNewBackend_Defaults(t *testing.T) {
	fs := &fakeSubmitter{}
	b, err := NewBackend(context.Background(), Options{
		Tags:      []string{"team:data"},
		submitter: fs,
		newTicker: quietTicker,
	})
	if err != nil {
		t.Fatalf("NewBackend() err=%v", err)
	}
	defer func() { _ = b.Close() }()

	if !contains(b.baseTags, "job:ecomdata") || !contains(b.baseTags, "team:data") {
		t.Fatalf("baseTags=%v", b.baseTags)
	}
	if b.flushEvery != 60*time.Second {
		t.Fatalf("flushEvery=%s, want 60s", b.flushEvery)
	}
}

// TestFlush_SubmitsAndResets checks the series names that dashboards depend on.
func TestFlush_SubmitsAndResets(t *testing.T) {
	fs := &fakeSubmitter{}
	b := newTestBackend(t, fs)

	metrics.SetBackend(b)
	t.Cleanup(func() { metrics.SetBackend(nil) })

	metrics.AddRows("generated", 25)
	metrics.AddRepairedCells("identifiers", 3)
	metrics.AddRepairedCells("identifiers", 0)
	metrics.ObserveStep("repair", time.Now(), nil)
	metrics.ObserveStep("repair", time.Now(), errors.New("boom"))

	if err := metrics.Flush(); err != nil {
		t.Fatalf("Flush() err=%v", err)
	}
	if fs.count() != 1 {
		t.Fatalf("submit calls=%d, want 1", fs.count())
	}
	if len(b.rows) != 0 || len(b.cells) != 0 || len(b.durations) != 0 {
		t.Fatalf("buffers not reset after Flush")
	}

	payload, _ := fs.last()
	var names []string
	for _, s := range payload.Series {
		names = append(names, s.Metric)
		if len(s.Points) != 1 || s.Points[0].GetTimestamp() != 1000 {
			t.Fatalf("series %s points=%v", s.Metric, s.Points)
		}
	}
	sort.Strings(names)

	for _, w := range []string{
		"ecomdata.rows.total",
		"ecomdata.cells_repaired.total",
		"ecomdata.step.duration_seconds.p50",
		"ecomdata.step.duration_seconds.samples",
	} {
		if !contains(names, w) {
			t.Fatalf("payload missing %q; got=%v", w, names)
		}
	}
	// ok and error durations are tagged separately.
	var samples int
	for _, s := range payload.Series {
		if s.Metric == "ecomdata.step.duration_seconds.samples" {
			samples++
		}
	}
	if samples != 2 {
		t.Fatalf("samples series=%d, want 2", samples)
	}
}

func TestFlush_NoDataDoesNotSubmit(t *testing.T) {
	fs := &fakeSubmitter{}
	b := newTestBackend(t, fs)

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() err=%v", err)
	}
	if fs.count() != 0 {
		t.Fatalf("submissions=%d, want 0", fs.count())
	}
}

func TestFlush_ReturnsSubmitError(t *testing.T) {
	fs := &fakeSubmitter{err: errors.New("403")}
	b := newTestBackend(t, fs)

	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"kind": "loaded"})
	if err := b.Flush(); err == nil {
		t.Fatalf("Flush() err=nil, want submit error")
	}
	fs.mu.Lock()
	fs.err = nil
	fs.mu.Unlock()
	if err := b.Flush(); err != nil || fs.count() != 1 {
		t.Fatalf("second Flush err=%v count=%d; buffers should have been dropped", err, fs.count())
	}
}

func TestLoopAndClose(t *testing.T) {
	fs := &fakeSubmitter{}
	b, err := NewBackend(context.Background(), Options{
		FlushEvery: 5 * time.Millisecond,
		submitter:  fs,
	})
	if err != nil {
		t.Fatalf("NewBackend() err=%v", err)
	}

	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"kind": "generated"})
	deadline := time.Now().Add(250 * time.Millisecond)
	for time.Now().Before(deadline) && fs.count() < 1 {
		time.Sleep(2 * time.Millisecond)
	}
	if fs.count() < 1 {
		_ = b.Close()
		t.Fatalf("expected a background flush; got %d", fs.count())
	}

	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"kind": "generated"})
	if err := b.Close(); err != nil {
		t.Fatalf("Close() err=%v", err)
	}
	if fs.count() < 2 {
		t.Fatalf("expected final flush on Close; got %d submissions", fs.count())
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close() err=%v", err)
	}
}

func TestBackend_ConcurrentAccess(t *testing.T) {
	fs := &fakeSubmitter{}
	b := newTestBackend(t, fs)

	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"kind": "repaired"})
				b.IncCounter(metrics.CellsRepairedTotal, 1, metrics.Labels{"step": "numeric"})
				b.ObserveHistogram(metrics.StepDurationSeconds, 0.01, metrics.Labels{"step": "numeric", "status": "ok"})
			}
		}()
	}
	wg.Wait()

	b.mu.Lock()
	got := b.rows["repaired"]
	b.mu.Unlock()
	if want := float64(workers * 1000); got != want {
		t.Fatalf("rows[repaired]=%v, want %v", got, want)
	}
	if err := b.Flush(); err != nil || fs.count() != 1 {
		t.Fatalf("Flush err=%v count=%d", err, fs.count())
	}
}

func TestIgnoredMeasurements(t *testing.T) {
	fs := &fakeSubmitter{}
	b := newTestBackend(t, fs)

	b.IncCounter(metrics.RowsTotal, 0, metrics.Labels{"kind": "x"})
	b.IncCounter(metrics.RowsTotal, -2, metrics.Labels{"kind": "x"})
	b.IncCounter("unknown_total", 5, nil)
	b.ObserveHistogram(metrics.StepDurationSeconds, -1, nil)
	b.ObserveHistogram("unknown_seconds", 1, nil)
	b.IncCounter(metrics.CellsRepairedTotal, 1, nil)

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.rows) != 0 || len(b.durations) != 0 {
		t.Fatalf("rows=%v durations=%v, want empty", b.rows, b.durations)
	}
	if b.cells["unknown"] != 1 {
		t.Fatalf("missing step label should bucket as unknown, got %v", b.cells)
	}
}

func contains[T comparable](xs []T, v T) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func TestParseTagsCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"env:prod", []string{"env:prod"}},
		{" env:prod , ,team:data ", []string{"env:prod", "team:data"}},
	}
	for _, tc := range tests {
		got := ParseTagsCSV(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("ParseTagsCSV(%q)=%v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("ParseTagsCSV(%q)=%v, want %v", tc.in, got, tc.want)
			}
		}
	}
}
