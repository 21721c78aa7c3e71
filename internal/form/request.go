package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/geo"
)

// Phase is the household grid connection type.
type Phase string

const (
	PhaseSingle Phase = "Single"
	PhaseThree  Phase = "Three"
)

var ErrInvalidPhase = errors.New("phase must be Single or Three")

// ParsePhase accepts "Single" or "Three", case-insensitively.
func ParsePhase(s string) (Phase, error) {
	switch {
	case strings.EqualFold(strings.TrimSpace(s), string(PhaseSingle)):
		return PhaseSingle, nil
	case strings.EqualFold(strings.TrimSpace(s), string(PhaseThree)):
		return PhaseThree, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPhase, s)
}

// Image is an uploaded roof photo.
type Image struct {
	Name string
	Data []byte
}

// AnalysisRequest is a validated, immutable analysis submission.
type AnalysisRequest struct {
	district  district.District
	point     geo.Point
	bill      float64
	billText  string
	phase     Phase
	loanYears int
	loanRate  float64
	image     *Image
}

func (r AnalysisRequest) District() district.District { return r.district }
func (r AnalysisRequest) Point() geo.Point            { return r.point }

// MonthlyBillLKR is the parsed bill amount.
func (r AnalysisRequest) MonthlyBillLKR() float64 { return r.bill }

// BillText is the sanitized bill exactly as the user typed its digits.
func (r AnalysisRequest) BillText() string { return r.billText }

func (r AnalysisRequest) Phase() Phase               { return r.phase }
func (r AnalysisRequest) LoanTermYears() int         { return r.loanYears }
func (r AnalysisRequest) LoanRateAnnualPct() float64 { return r.loanRate }

// HasImage reports whether a roof photo is attached.
func (r AnalysisRequest) HasImage() bool { return r.image != nil }

// RoofImage returns a copy of the attached photo, if any.
func (r AnalysisRequest) RoofImage() (Image, bool) {
	if r.image == nil {
		return Image{}, false
	}
	data := make([]byte, len(r.image.Data))
	copy(data, r.image.Data)
	return Image{Name: r.image.Name, Data: data}, true
}
