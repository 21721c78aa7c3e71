package analysis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/form"
	"github.com/solix-energy/solix/internal/geo"
)

const okBody = `{
	"status":"success",
	"roof_analysis":{"total_area_m2":82.5,"detection_count":3,"annotated_image":"aGVsbG8=","is_estimated":false,"estimation_reason":"Based on precise satellite analysis."},
	"financial_report":{"recommended_system_kw":5,"monthly_generation_kwh":506.25,"tariff_rate":20.9,"total_investment_lkr":1400000,"payback_period":11.0,"loan_installment":30780.4,"net_monthly_result":-20200.1,"note":"Success: System meets your full needs."},
	"pdf_url":"http://127.0.0.1:8000/static/Solar_Report_Kandy.pdf"
}`

func buildRequest(t *testing.T, withImage bool) form.AnalysisRequest {
	t.Helper()
	snap := form.Snapshot{
		Confirmed: true,
		Point:     geo.Point{Lat: 7.2906, Lon: 80.6337},
		District:  district.NuwaraEliya,
		Bill:      "15,000 LKR",
		Phase:     form.PhaseThree,
	}
	if withImage {
		snap.Image = &form.Image{Name: "my \"roof\".png", Data: []byte("\x89PNG\r\n\x1a\nrest")}
	}
	req, err := form.Validate(snap, form.DefaultRules())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return req
}

func TestAnalyzeSendsMultipartForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		want := map[string]string{
			"district":   "Nuwara Eliya",
			"lat":        "7.29060",
			"lon":        "80.63370",
			"bill":       "15000",
			"loan_years": "5",
			"loan_rate":  "11.5",
			"phase":      "Three",
		}
		for k, v := range want {
			if got := r.FormValue(k); got != v {
				t.Errorf("field %s = %q, want %q", k, got, v)
			}
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
		} else {
			defer f.Close()
			data, _ := io.ReadAll(f)
			if string(data) != "\x89PNG\r\n\x1a\nrest" {
				t.Errorf("file body = %q", data)
			}
			if hdr.Filename != `my "roof".png` {
				t.Errorf("filename = %q", hdr.Filename)
			}
			if ct := hdr.Header.Get("Content-Type"); ct != "image/png" {
				t.Errorf("file content type = %q", ct)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(okBody))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), buildRequest(t, true))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.FinancialReport.RecommendedSystemKW != 5 || res.RoofAnalysis.DetectionCount != 3 {
		t.Errorf("decoded result = %+v", res)
	}
	if res.ReportURL == "" {
		t.Error("missing report url")
	}
}

func TestAnalyzeWithoutImageOmitsFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		if _, _, err := r.FormFile("file"); err == nil {
			t.Error("file part must be absent")
		}
		w.Write([]byte(okBody))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), buildRequest(t, false)); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
}

func TestAnalyzeBackendErrors(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"Invalid GPS Coordinates. Please select a location on the map."}`, "Invalid GPS Coordinates. Please select a location on the map."},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","lat"],"msg":"field required"}]}`, ""},
		{"html", http.StatusBadGateway, `<html>bad gateway</html>`, ""},
		{"status error", http.StatusOK, `{"status":"error","message":"Could not fetch satellite image for this location."}`, "Could not fetch satellite image for this location."},
		{"missing report", http.StatusOK, `{"status":"success","roof_analysis":{}}`, "Analysis response is missing the report."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Analyze(context.Background(), buildRequest(t, false))
			var be *BackendError
			if !errors.As(err, &be) {
				t.Fatalf("expected BackendError, got %v", err)
			}
			if be.Detail != tc.wantDetail {
				t.Errorf("detail = %q, want %q", be.Detail, tc.wantDetail)
			}
		})
	}
}

func TestAnalyzeNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Analyze(context.Background(), buildRequest(t, false))
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if UserMessage(err) != DefaultFailureMessage {
		t.Errorf("UserMessage = %q", UserMessage(err))
	}
}
