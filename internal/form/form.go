// Package form holds the analysis input form, its validation rules and the
// builder that turns a valid form into an AnalysisRequest.
package form

import (
	"errors"
	"sync"

	"github.com/solix-energy/solix/internal/location"
)

// Fields is a read-only view of the form for display.
type Fields struct {
	Bill      string           `json:"bill"`
	Phase     Phase            `json:"phase"`
	ImageName string           `json:"image_name,omitempty"`
	HasImage  bool             `json:"has_image"`
	Error     *ValidationError `json:"error,omitempty"`
}

// Form is the mutable user input plus the currently surfaced validation error.
type Form struct {
	mu    sync.Mutex
	rules Rules
	bill  string
	phase Phase
	image *Image
	err   *ValidationError
}

// New creates an empty form with Single phase selected.
func New(rules Rules) *Form {
	return &Form{rules: rules, phase: PhaseSingle}
}

// Rules returns the validation rules in effect.
func (f *Form) Rules() Rules { return f.rules }

// SetBill stores the raw bill text and drops any surfaced error, so a stale
// message never sits next to fresh input.
func (f *Form) SetBill(raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bill = raw
	f.err = nil
}

// SetPhase selects the connection phase.
func (f *Form) SetPhase(p Phase) error {
	if p != PhaseSingle && p != PhaseThree {
		return ErrInvalidPhase
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phase = p
	return nil
}

// SetImage attaches a roof photo; data is copied.
func (f *Form) SetImage(name string, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = &Image{Name: name, Data: buf}
}

// ClearImage removes the attached photo.
func (f *Form) ClearImage() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = nil
}

// ClearError drops the surfaced validation error. It satisfies
// location.ErrorClearer.
func (f *Form) ClearError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = nil
}

// Error returns the surfaced validation error, if any.
func (f *Form) Error() *ValidationError {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Fields returns the display view of the form.
func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := Fields{Bill: f.bill, Phase: f.phase, Error: f.err}
	if f.image != nil {
		out.HasImage = true
		out.ImageName = f.image.Name
	}
	return out
}

// Build validates the form against the location state and returns the
// request. A failure is also surfaced via Error; success clears it.
func (f *Form) Build(loc location.State) (AnalysisRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, err := Validate(Snapshot{
		Confirmed: loc.Confirmed,
		Point:     loc.Point,
		District:  loc.District,
		Bill:      f.bill,
		Phase:     f.phase,
		Image:     f.image,
	}, f.rules)

	var verr *ValidationError
	if errors.As(err, &verr) {
		f.err = verr
		return AnalysisRequest{}, err
	}
	f.err = nil
	return req, err
}

var _ location.ErrorClearer = (*Form)(nil)
