package location

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/geo"
	"github.com/solix-energy/solix/internal/geocoding/provider"
)

type fakeSearcher struct {
	candidates []provider.Candidate
	err        error
	calls      int
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]provider.Candidate, error) {
	f.calls++
	return f.candidates, f.err
}

// gatedClassifier answers per point and can hold a point's answer until released.
type gatedClassifier struct {
	mu      sync.Mutex
	answers map[geo.Point]district.District
	gates   map[geo.Point]chan struct{}
	err     error
}

func (g *gatedClassifier) Classify(ctx context.Context, p geo.Point) (district.District, error) {
	g.mu.Lock()
	gate := g.gates[p]
	d := g.answers[p]
	err := g.err
	g.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return district.Unknown, ctx.Err()
		}
	}
	return d, err
}

type countingClearer struct{ n int }

func (c *countingClearer) ClearError() { c.n++ }

var (
	kandyPoint = geo.Point{Lat: 7.2906, Lon: 80.6337}
	gallePoint = geo.Point{Lat: 6.0535, Lon: 80.221}
)

func newResolver(c DistrictClassifier, s Searcher, l DeviceLocator, e ErrorClearer) *Resolver {
	return NewResolver(NewStore(geo.Colombo, district.Colombo), Deps{
		Geocoder:   s,
		Classifier: c,
		Locator:    l,
		Errors:     e,
	})
}

func TestDefaultPointIsNotConfirmed(t *testing.T) {
	r := newResolver(nil, &fakeSearcher{}, nil, nil)
	st := r.Store().Snapshot()
	if st.Confirmed {
		t.Error("default point must not be confirmed")
	}
	if st.Point != geo.Colombo || st.Generation != 0 {
		t.Errorf("unexpected initial state %+v", st)
	}
}

func TestOnManualPinConfirmsAndClassifies(t *testing.T) {
	clf := &gatedClassifier{answers: map[geo.Point]district.District{kandyPoint: district.Kandy}}
	clr := &countingClearer{}
	r := newResolver(clf, &fakeSearcher{}, nil, clr)

	st, err := r.OnManualPin(context.Background(), kandyPoint.Lat, kandyPoint.Lon)
	if err != nil {
		t.Fatalf("OnManualPin: %v", err)
	}
	if !st.Confirmed || st.Generation != 1 || st.Classification != ClassificationPending {
		t.Errorf("state after pin = %+v", st)
	}
	if clr.n != 1 {
		t.Errorf("expected validation error cleared once, got %d", clr.n)
	}

	r.Wait()
	st = r.Store().Snapshot()
	if st.District != district.Kandy || st.Classification != ClassificationResolved {
		t.Errorf("after classification: %+v", st)
	}
}

func TestOnManualPinRejectsOutOfRange(t *testing.T) {
	r := newResolver(nil, &fakeSearcher{}, nil, nil)
	_, err := r.OnManualPin(context.Background(), 91, 0)
	if !errors.Is(err, ErrInvalidPoint) {
		t.Fatalf("expected ErrInvalidPoint, got %v", err)
	}
	if r.Store().Snapshot().Confirmed {
		t.Error("rejected pin must not confirm")
	}
}

func TestStaleClassificationIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	clf := &gatedClassifier{
		answers: map[geo.Point]district.District{kandyPoint: district.Kandy, gallePoint: district.Galle},
		gates:   map[geo.Point]chan struct{}{kandyPoint: release},
	}
	r := newResolver(clf, &fakeSearcher{}, nil, nil)
	ctx := context.Background()

	// E1 at Kandy is held; E2 at Galle resolves immediately.
	if _, err := r.OnManualPin(ctx, kandyPoint.Lat, kandyPoint.Lon); err != nil {
		t.Fatal(err)
	}
	if _, err := r.OnManualPin(ctx, gallePoint.Lat, gallePoint.Lon); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for r.Store().Snapshot().Classification != ClassificationResolved {
		if time.Now().After(deadline) {
			t.Fatal("E2 classification never landed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	close(release)
	r.Wait()

	st := r.Store().Snapshot()
	if st.District != district.Galle {
		t.Errorf("district = %s, want Galle (E1 must be discarded)", st.District)
	}
	if st.Generation != 2 || st.Point != gallePoint {
		t.Errorf("state = %+v", st)
	}
}

func TestUnknownClassificationKeepsPriorDistrict(t *testing.T) {
	clf := &gatedClassifier{err: errors.New("reverse lookup timed out")}
	r := newResolver(clf, &fakeSearcher{}, nil, nil)
	if err := r.SelectDistrict(district.Matara); err != nil {
		t.Fatal(err)
	}

	if _, err := r.OnManualPin(context.Background(), 5.95, 80.54); err != nil {
		t.Fatal(err)
	}
	r.Wait()

	st := r.Store().Snapshot()
	if st.District != district.Matara {
		t.Errorf("district = %s, manual choice must survive Unknown", st.District)
	}
	if st.Classification != ClassificationUnknown {
		t.Errorf("classification = %s", st.Classification)
	}
}

func TestOnSearch(t *testing.T) {
	s := &fakeSearcher{candidates: []provider.Candidate{{Point: kandyPoint}, {Point: gallePoint}}}
	r := newResolver(nil, s, nil, nil)

	st, err := r.OnSearch(context.Background(), "Kandy")
	if err != nil {
		t.Fatalf("OnSearch: %v", err)
	}
	if st.Point != kandyPoint || !st.Confirmed {
		t.Errorf("state = %+v", st)
	}
}

func TestOnSearchNotFoundKeepsPoint(t *testing.T) {
	s := &fakeSearcher{}
	r := newResolver(nil, s, nil, nil)
	if _, err := r.OnManualPin(context.Background(), gallePoint.Lat, gallePoint.Lon); err != nil {
		t.Fatal(err)
	}

	_, err := r.OnSearch(context.Background(), "xyzzy")
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
	st := r.Store().Snapshot()
	if st.Point != gallePoint || st.Generation != 1 {
		t.Errorf("prior point must be untouched: %+v", st)
	}
}

func TestOnSearchBlankQuerySkipsGeocoder(t *testing.T) {
	s := &fakeSearcher{}
	r := newResolver(nil, s, nil, nil)
	if _, err := r.OnSearch(context.Background(), "   "); !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("expected ErrLocationNotFound, got %v", err)
	}
	if s.calls != 0 {
		t.Errorf("geocoder called %d times for blank query", s.calls)
	}
}

func TestOnSearchTransportError(t *testing.T) {
	s := &fakeSearcher{err: errors.New("connection refused")}
	r := newResolver(nil, s, nil, nil)
	_, err := r.OnSearch(context.Background(), "Galle")
	if err == nil || errors.Is(err, ErrLocationNotFound) {
		t.Errorf("expected a transport error, got %v", err)
	}
	if r.Store().Snapshot().Confirmed {
		t.Error("failed search must not confirm")
	}
}

func TestOnUseDeviceGPS(t *testing.T) {
	r := newResolver(nil, &fakeSearcher{}, StaticLocator{Point: kandyPoint}, nil)
	st, err := r.OnUseDeviceGPS(context.Background())
	if err != nil {
		t.Fatalf("OnUseDeviceGPS: %v", err)
	}
	if st.Point != kandyPoint || !st.Confirmed {
		t.Errorf("state = %+v", st)
	}
}

func TestOnUseDeviceGPSUnavailable(t *testing.T) {
	cases := map[string]DeviceLocator{
		"no capability": nil,
		"denied": LocatorFunc(func(context.Context) (geo.Point, error) {
			return geo.Point{}, ErrPermissionDenied
		}),
	}
	for name, loc := range cases {
		t.Run(name, func(t *testing.T) {
			r := newResolver(nil, &fakeSearcher{}, loc, nil)
			_, err := r.OnUseDeviceGPS(context.Background())
			if !errors.Is(err, ErrLocationUnavailable) {
				t.Errorf("expected ErrLocationUnavailable, got %v", err)
			}
			if r.Store().Snapshot().Confirmed {
				t.Error("GPS failure must not confirm")
			}
		})
	}
}

func TestSelectDistrictRejectsInvalid(t *testing.T) {
	r := newResolver(nil, &fakeSearcher{}, nil, nil)
	if err := r.SelectDistrict("Atlantis"); !errors.Is(err, district.ErrInvalidDistrict) {
		t.Errorf("expected ErrInvalidDistrict, got %v", err)
	}
}

func TestNoClassifierMeansUnknown(t *testing.T) {
	r := newResolver(nil, &fakeSearcher{}, nil, nil)
	st, err := r.OnManualPin(context.Background(), 6.0535, 80.2210)
	if err != nil {
		t.Fatal(err)
	}
	if st.Classification != ClassificationUnknown {
		t.Errorf("classification = %s, want unknown", st.Classification)
	}
	if st.District != district.Colombo {
		t.Errorf("district = %s, want the initial district", st.District)
	}
}

func TestManualDistrictBeatsLateClassification(t *testing.T) {
	release := make(chan struct{})
	clf := &gatedClassifier{
		answers: map[geo.Point]district.District{kandyPoint: district.Kandy, gallePoint: district.Galle},
		gates:   map[geo.Point]chan struct{}{kandyPoint: release},
	}
	r := newResolver(clf, &fakeSearcher{}, nil, nil)
	ctx := context.Background()

	if _, err := r.OnManualPin(ctx, kandyPoint.Lat, kandyPoint.Lon); err != nil {
		t.Fatal(err)
	}
	if err := r.SelectDistrict(district.Matale); err != nil {
		t.Fatal(err)
	}
	close(release)
	r.Wait()

	st := r.Store().Snapshot()
	if st.District != district.Matale {
		t.Errorf("district = %s, want the user's pick Matale", st.District)
	}
	if st.Classification != ClassificationResolved {
		t.Errorf("classification = %s, want resolved", st.Classification)
	}

	// A new location event is newer intent than the earlier pick.
	if _, err := r.OnManualPin(ctx, gallePoint.Lat, gallePoint.Lon); err != nil {
		t.Fatal(err)
	}
	r.Wait()
	if st := r.Store().Snapshot(); st.District != district.Galle {
		t.Errorf("district = %s, want Galle after a new pin", st.District)
	}
}
