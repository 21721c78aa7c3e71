// Package location reconciles the three ways a user can place the roof pin
// (map drag, place search, device GPS) into a single confirmed point, and
// keeps the district suggestion in step with the latest of them.
package location

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/solix-energy/solix/internal/district"
	"github.com/solix-energy/solix/internal/geo"
	"github.com/solix-energy/solix/internal/geocoding/provider"
)

var (
	ErrLocationNotFound    = errors.New("location not found, try a broader search")
	ErrLocationUnavailable = errors.New("could not get location, allow GPS access or use the search bar")
	ErrInvalidPoint        = errors.New("invalid coordinates")
)

// DefaultClassifyTimeout bounds a single background district lookup.
const DefaultClassifyTimeout = 10 * time.Second

// Searcher is the forward half of provider.Geocoder.
type Searcher interface {
	Search(ctx context.Context, query string) ([]provider.Candidate, error)
}

// DistrictClassifier is satisfied by *district.Classifier.
type DistrictClassifier interface {
	Classify(ctx context.Context, p geo.Point) (district.District, error)
}

// ErrorClearer is notified whenever a new location is confirmed, so a stale
// "pick a location" error does not outlive the fix.
type ErrorClearer interface {
	ClearError()
}

// Deps are the collaborators a Resolver needs. Classifier, Locator and Errors
// may be nil; without a Classifier every point classifies as Unknown.
type Deps struct {
	Geocoder        Searcher
	Classifier      DistrictClassifier
	Locator         DeviceLocator
	Errors          ErrorClearer
	ClassifyTimeout time.Duration
}

// Resolver mediates the location input channels and writes into the Store.
type Resolver struct {
	store *Store
	deps  Deps
	wg    sync.WaitGroup
}

// NewResolver wires a Resolver around store.
func NewResolver(store *Store, deps Deps) *Resolver {
	if deps.Locator == nil {
		deps.Locator = UnavailableLocator{}
	}
	if deps.ClassifyTimeout <= 0 {
		deps.ClassifyTimeout = DefaultClassifyTimeout
	}
	return &Resolver{store: store, deps: deps}
}

// Store returns the store the resolver writes to.
func (r *Resolver) Store() *Store { return r.store }

// OnManualPin confirms a point dropped on the map.
func (r *Resolver) OnManualPin(ctx context.Context, lat, lon float64) (State, error) {
	p, err := geo.NewPoint(lat, lon)
	if err != nil {
		return r.store.Snapshot(), fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return r.accept(ctx, p, "pin"), nil
}

// OnSearch forward-geocodes query and confirms the best ranked candidate.
// The prior point is kept on any failure.
func (r *Resolver) OnSearch(ctx context.Context, query string) (State, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.store.Snapshot(), ErrLocationNotFound
	}

	candidates, err := r.deps.Geocoder.Search(ctx, query)
	if err != nil {
		log.Printf("[location] search %q failed: %v", query, err)
		return r.store.Snapshot(), fmt.Errorf("search %q: %w", query, err)
	}
	if len(candidates) == 0 {
		return r.store.Snapshot(), ErrLocationNotFound
	}

	return r.accept(ctx, candidates[0].Point, "search"), nil
}

// OnUseDeviceGPS waits for a device fix and confirms it.
func (r *Resolver) OnUseDeviceGPS(ctx context.Context) (State, error) {
	p, err := r.deps.Locator.Locate(ctx)
	if err != nil {
		log.Printf("[location] gps error: %v", err)
		return r.store.Snapshot(), fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	if err := p.Validate(); err != nil {
		return r.store.Snapshot(), fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	return r.accept(ctx, p, "gps"), nil
}

// SelectDistrict records a manual district choice from the form.
func (r *Resolver) SelectDistrict(d district.District) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %q", district.ErrInvalidDistrict, string(d))
	}
	r.store.selectDistrict(d)
	return nil
}

// Wait blocks until every background classification started so far has
// finished or been discarded.
func (r *Resolver) Wait() { r.wg.Wait() }

func (r *Resolver) accept(ctx context.Context, p geo.Point, source string) State {
	gen := r.store.confirm(p)
	if r.deps.Errors != nil {
		r.deps.Errors.ClearError()
	}
	log.Printf("[location] %s confirmed %s generation=%d", source, p, gen)

	if r.deps.Classifier == nil {
		r.store.applyClassification(gen, district.Unknown)
		return r.store.Snapshot()
	}

	st := r.store.Snapshot()
	r.wg.Add(1)
	go r.classify(context.WithoutCancel(ctx), gen, p)
	return st
}

func (r *Resolver) classify(ctx context.Context, gen uint64, p geo.Point) {
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, r.deps.ClassifyTimeout)
	defer cancel()

	d, err := r.deps.Classifier.Classify(ctx, p)
	if err != nil {
		log.Printf("[location] classify generation=%d: %v", gen, err)
		d = district.Unknown
	}

	if !r.store.applyClassification(gen, d) {
		log.Printf("[location] dropped stale classification generation=%d district=%s", gen, d)
	}
}
