// Package analysis submits validated analysis requests to the backend and
// holds the outcome for presentation.
package analysis

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/solix-energy/solix/internal/form"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Status is the controller's state machine position.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Analyzer runs one analysis. *Client satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req form.AnalysisRequest) (*Result, error)
}

// BuildFunc produces the request to submit, or the validation error that
// stops it.
type BuildFunc func() (form.AnalysisRequest, error)

// Preview is the locally uploaded roof photo, shown next to the annotated
// image for the submission that carried it.
type Preview struct {
	Ref         string `json:"ref"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

// Snapshot is a read-only view of the controller.
type Snapshot struct {
	Status       Status    `json:"status"`
	SubmissionID string    `json:"submission_id,omitempty"`
	Result       *Result   `json:"result,omitempty"`
	Error        string    `json:"error,omitempty"`
	PreviewRef   string    `json:"preview_ref,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Controller owns single-flight execution of analysis requests.
type Controller struct {
	analyzer Analyzer

	mu           sync.Mutex
	status       Status
	submissionID string
	result       *Result
	errMsg       string
	preview      *Preview
	updatedAt    time.Time
	now          func() time.Time
}

// NewController creates an idle controller.
func NewController(a Analyzer) *Controller {
	return &Controller{analyzer: a, status: StatusIdle, now: time.Now}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Status:       c.status,
		SubmissionID: c.submissionID,
		Result:       c.result,
		Error:        c.errMsg,
		UpdatedAt:    c.updatedAt,
	}
	if c.preview != nil {
		s.PreviewRef = c.preview.Ref
	}
	return s
}

// Preview returns the photo behind ref if ref belongs to the current
// submission.
func (c *Controller) Preview(ref string) (Preview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.preview == nil || c.preview.Ref != ref {
		return Preview{}, false
	}
	return *c.preview, true
}

// Submit builds and runs one analysis.
//
// While another submission is running it returns ErrSubmissionInFlight and
// changes nothing. A build failure returns the controller to Idle with the
// validation message and makes no network call. A failed analysis keeps the
// previous result; a successful one replaces it.
func (c *Controller) Submit(ctx context.Context, build BuildFunc) (*Result, error) {
	c.mu.Lock()
	if c.status == StatusSubmitting {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}

	req, err := build()
	if err != nil {
		c.status = StatusIdle
		c.errMsg = err.Error()
		c.updatedAt = c.now()
		c.mu.Unlock()
		return nil, err
	}

	id := uuid.NewString()
	c.status = StatusSubmitting
	c.submissionID = id
	c.errMsg = ""
	c.preview = newPreview(req)
	c.updatedAt = c.now()
	c.mu.Unlock()

	ctx, span := otel.Tracer("solix/analysis").Start(ctx, "analysis.submit",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("submission.id", id),
			attribute.String("district", string(req.District())),
			attribute.Bool("image", req.HasImage()),
		),
	)
	defer span.End()

	result, err := c.analyzer.Analyze(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.updatedAt = c.now()

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.status = StatusFailed
		c.errMsg = UserMessage(err)
		var ne *NetworkError
		if errors.As(err, &ne) {
			log.Printf("[analysis] submission %s network failure: %v", id, err)
		} else {
			log.Printf("[analysis] submission %s failed: %v", id, err)
		}
		return nil, err
	}

	c.status = StatusSucceeded
	c.result = result
	log.Printf("[analysis] submission %s succeeded", id)
	return result, nil
}

func newPreview(req form.AnalysisRequest) *Preview {
	img, ok := req.RoofImage()
	if !ok {
		return nil
	}
	return &Preview{
		Ref:         "preview/" + uuid.NewString(),
		Name:        img.Name,
		ContentType: http.DetectContentType(img.Data),
		Data:        img.Data,
	}
}
