package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/solix-energy/solix/internal/form"
)

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   int
	results []*Result
	errs    []error
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req form.AnalysisRequest) (*Result, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	var res *Result
	var err error
	if i < len(f.results) {
		res = f.results[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return res, err
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func report(url string) *Result {
	return &Result{Status: "success", FinancialReport: &FinancialReport{RecommendedSystemKW: 3}, ReportURL: url}
}

func okBuild(t *testing.T, withImage bool) BuildFunc {
	req := buildRequest(t, withImage)
	return func() (form.AnalysisRequest, error) { return req, nil }
}

func TestSubmitSuccess(t *testing.T) {
	a := &fakeAnalyzer{results: []*Result{report("r1.pdf")}}
	c := NewController(a)

	res, err := c.Submit(context.Background(), okBuild(t, false))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap := c.Snapshot()
	if snap.Status != StatusSucceeded || snap.Result != res || snap.Error != "" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.SubmissionID == "" {
		t.Error("missing submission id")
	}
	if snap.PreviewRef != "" {
		t.Error("no image was supplied, preview must be absent")
	}
}

func TestSubmitBuildFailureMakesNoCall(t *testing.T) {
	a := &fakeAnalyzer{}
	c := NewController(a)

	_, err := c.Submit(context.Background(), func() (form.AnalysisRequest, error) {
		return form.AnalysisRequest{}, form.ErrLocationNotConfirmed
	})
	if !errors.Is(err, form.ErrLocationNotConfirmed) {
		t.Fatalf("Submit = %v", err)
	}
	if a.Calls() != 0 {
		t.Errorf("analyzer called %d times", a.Calls())
	}
	snap := c.Snapshot()
	if snap.Status != StatusIdle || snap.Error != form.ErrLocationNotConfirmed.Message {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSubmitIsSingleFlight(t *testing.T) {
	a := &fakeAnalyzer{
		results: []*Result{report("r1.pdf")},
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c := NewController(a)

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), okBuild(t, false))
		done <- err
	}()
	<-a.started

	before := c.Snapshot()
	if before.Status != StatusSubmitting {
		t.Fatalf("status = %s, want submitting", before.Status)
	}

	built := false
	_, err := c.Submit(context.Background(), func() (form.AnalysisRequest, error) {
		built = true
		return form.AnalysisRequest{}, nil
	})
	if !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("second Submit = %v, want ErrSubmissionInFlight", err)
	}
	if built {
		t.Error("re-entrant Submit must not build a request")
	}
	if after := c.Snapshot(); after != before {
		t.Errorf("re-entrant Submit changed state: %+v -> %+v", before, after)
	}

	close(a.gate)
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if a.Calls() != 1 {
		t.Errorf("analyzer called %d times, want 1", a.Calls())
	}
	if c.Snapshot().Status != StatusSucceeded {
		t.Errorf("status = %s", c.Snapshot().Status)
	}
}

func TestFailedResubmitKeepsPriorResult(t *testing.T) {
	first := report("r1.pdf")
	a := &fakeAnalyzer{
		results: []*Result{first, nil},
		errs:    []error{nil, &BackendError{StatusCode: 400, Detail: "Invalid GPS Coordinates."}},
	}
	c := NewController(a)

	if _, err := c.Submit(context.Background(), okBuild(t, false)); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Submit(context.Background(), okBuild(t, false)); err == nil {
		t.Fatal("expected second Submit to fail")
	}

	snap := c.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("status = %s", snap.Status)
	}
	if snap.Result != first {
		t.Error("failed re-analysis erased the previous report")
	}
	if snap.Error != "Invalid GPS Coordinates." {
		t.Errorf("error = %q", snap.Error)
	}
}

func TestNetworkFailureMessage(t *testing.T) {
	a := &fakeAnalyzer{errs: []error{&NetworkError{Err: errors.New("dial tcp: connection refused")}}}
	c := NewController(a)
	c.Submit(context.Background(), okBuild(t, false))
	if got := c.Snapshot().Error; got != DefaultFailureMessage {
		t.Errorf("error = %q", got)
	}
}

func TestSuccessReplacesResultWholesale(t *testing.T) {
	a := &fakeAnalyzer{results: []*Result{report("r1.pdf"), {Status: "success", FinancialReport: &FinancialReport{}, ReportURL: "r2.pdf"}}}
	c := NewController(a)
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	c.Submit(context.Background(), okBuild(t, false))
	c.Submit(context.Background(), okBuild(t, false))

	snap := c.Snapshot()
	if snap.Result.ReportURL != "r2.pdf" || snap.Result.FinancialReport.RecommendedSystemKW != 0 {
		t.Errorf("result not replaced: %+v", snap.Result)
	}
	if !snap.UpdatedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("updated_at = %v", snap.UpdatedAt)
	}
}

func TestPreviewLifetime(t *testing.T) {
	a := &fakeAnalyzer{results: []*Result{report("r1.pdf"), report("r2.pdf")}}
	c := NewController(a)

	c.Submit(context.Background(), okBuild(t, true))
	ref := c.Snapshot().PreviewRef
	if !strings.HasPrefix(ref, "preview/") {
		t.Fatalf("preview ref = %q", ref)
	}
	p, ok := c.Preview(ref)
	if !ok || p.ContentType != "image/png" || len(p.Data) == 0 {
		t.Errorf("preview = %+v, %v", p, ok)
	}

	// The next submission without an image revokes the old preview.
	c.Submit(context.Background(), okBuild(t, false))
	if c.Snapshot().PreviewRef != "" {
		t.Error("preview should be absent without an image")
	}
	if _, ok := c.Preview(ref); ok {
		t.Error("old preview ref still resolves")
	}
}
