package form

import (
	"math"
	"strconv"

	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/geo"
)

// Rules are the tunable thresholds and defaults applied by Validate.
type Rules struct {
	// MinBillLKR rejects obviously wrong entries below it.
	MinBillLKR      float64
	LoanTermYears   int
	LoanRatePct     float64
	DefaultDistrict district.District
}

// DefaultRules mirror the backend's own defaults.
func DefaultRules() Rules {
	return Rules{
		MinBillLKR:      500,
		LoanTermYears:   5,
		LoanRatePct:     11.5,
		DefaultDistrict: district.Colombo,
	}
}

// Snapshot is everything Validate reads, captured at one instant.
type Snapshot struct {
	Confirmed bool
	Point     geo.Point
	District  district.District
	Bill      string
	Phase     Phase
	Image     *Image
}

// Validate checks s in fixed order (location, bill presence, bill format,
// bill threshold) and builds the request. The error, if any, is a
// *ValidationError.
func Validate(s Snapshot, rules Rules) (AnalysisRequest, error) {
	if !s.Confirmed {
		return AnalysisRequest{}, ErrLocationNotConfirmed
	}

	clean := SanitizeBill(s.Bill)
	if clean == "" {
		return AnalysisRequest{}, ErrBillMissing
	}
	bill, err := strconv.ParseFloat(clean, 64)
	if err != nil || bill <= 0 || math.IsInf(bill, 0) {
		return AnalysisRequest{}, ErrBillMalformed
	}
	if bill < rules.MinBillLKR {
		return AnalysisRequest{}, billTooLow(rules.MinBillLKR)
	}

	d := s.District
	if !d.Valid() {
		d = rules.DefaultDistrict
	}
	phase := s.Phase
	if phase == "" {
		phase = PhaseSingle
	}

	req := AnalysisRequest{
		district:  d,
		point:     s.Point,
		bill:      bill,
		billText:  clean,
		phase:     phase,
		loanYears: rules.LoanTermYears,
		loanRate:  rules.LoanRatePct,
	}
	if s.Image != nil && len(s.Image.Data) > 0 {
		data := make([]byte, len(s.Image.Data))
		copy(data, s.Image.Data)
		req.image = &Image{Name: s.Image.Name, Data: data}
	}
	return req, nil
}
