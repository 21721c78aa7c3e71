package location

import (
	"sync"

	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/geo"
)

// Classification is the status of the district lookup for the current point.
type Classification string

const (
	ClassificationPending  Classification = "pending"
	ClassificationUnknown  Classification = "unknown"
	ClassificationResolved Classification = "resolved"
)

// State is a snapshot of the location the user has picked so far.
type State struct {
	Point geo.Point `json:"point"`
	// Confirmed is set by an explicit pin drag, accepted search or GPS fix,
	// never by the default point.
	Confirmed      bool           `json:"confirmed"`
	Classification Classification `json:"classification"`
	// District is the form's district field: the last classifier suggestion
	// or manual selection. An Unknown classification leaves it alone.
	District   district.District `json:"district"`
	Generation uint64            `json:"generation"`
}

// Store holds the single current candidate location. Only the Resolver
// mutates it.
type Store struct {
	mu    sync.Mutex
	state State
	// manualGen is the generation at which the user last picked a district.
	// A classification for that same generation keeps the user's pick.
	manualGen uint64
	manual    bool
}

// NewStore creates an unconfirmed store resting at initial.
func NewStore(initial geo.Point, initialDistrict district.District) *Store {
	return &Store{state: State{
		Point:          initial,
		Classification: ClassificationUnknown,
		District:       initialDistrict,
	}}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// confirm records a user-driven location event and returns its generation.
func (s *Store) confirm(p geo.Point) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Point = p
	s.state.Confirmed = true
	s.state.Generation++
	s.state.Classification = ClassificationPending
	return s.state.Generation
}

// applyClassification stores d if gen is still current. A manual district
// choice made after gen was confirmed wins over the classifier: only the
// status is updated. It reports whether the result was applied.
func (s *Store) applyClassification(gen uint64, d district.District) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.state.Generation {
		return false
	}
	if d == district.Unknown {
		s.state.Classification = ClassificationUnknown
		return true
	}
	s.state.Classification = ClassificationResolved
	if !s.manual || s.manualGen != gen {
		s.state.District = d
	}
	return true
}

func (s *Store) selectDistrict(d district.District) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.District = d
	s.manual = true
	s.manualGen = s.state.Generation
}
