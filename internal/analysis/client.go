package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/solix-energy/solix/internal/form"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout covers satellite fetch, vision and PDF rendering on the backend.
const DefaultTimeout = 2 * time.Minute

// maxErrorBody bounds how much of a failed response is read for its detail.
const maxErrorBody = 64 << 10

// Client posts analysis requests to the backend.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the full-analysis endpoint URL.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Analyze submits req as a multipart form and decodes the report.
func (c *Client) Analyze(ctx context.Context, req form.AnalysisRequest) (*Result, error) {
	body, contentType, err := encodeRequest(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	log.Printf("[analysis] POST %s district=%s point=%s image=%t",
		c.endpoint, req.District(), req.Point(), req.HasImage())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Printf("[analysis] request error: %v", err)
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	log.Printf("[analysis] response status=%d duration=%dms", resp.StatusCode, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &BackendError{StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("decoding response: %w", err)}
	}
	if err := checkResult(resp.StatusCode, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// checkResult rejects 2xx bodies that carry no report.
func checkResult(status int, r *Result) error {
	if r.Status == "error" {
		return &BackendError{StatusCode: status, Detail: strings.TrimSpace(r.Message)}
	}
	if r.FinancialReport == nil || r.ReportURL == "" {
		return &BackendError{StatusCode: status, Detail: "Analysis response is missing the report."}
	}
	return nil
}

// errorDetail extracts FastAPI's {"detail": "..."}; list-shaped validation
// details and non-JSON bodies yield "".
func errorDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeRequest(req form.AnalysisRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"district", string(req.District())},
		{"lat", req.Point().LatString()},
		{"lon", req.Point().LonString()},
		{"bill", strconv.FormatFloat(req.MonthlyBillLKR(), 'f', -1, 64)},
		{"loan_years", strconv.Itoa(req.LoanTermYears())},
		{"loan_rate", strconv.FormatFloat(req.LoanRateAnnualPct(), 'f', -1, 64)},
		{"phase", string(req.Phase())},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if img, ok := req.RoofImage(); ok {
		name := img.Name
		if name == "" {
			name = "roof.jpg"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
		h.Set("Content-Type", http.DetectContentType(img.Data))
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
