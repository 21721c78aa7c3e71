package district

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/solix-energy/solix/internal/geo"
	"github.com/solix-energy/solix/internal/geocoding/provider"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/text/cases"
)

// ErrClassificationUnavailable wraps reverse-geocoding failures. Callers
// treat it as Unknown; it never blocks submission.
var ErrClassificationUnavailable = errors.New("district classification unavailable")

// Reverser is the slice of provider.Geocoder the classifier needs.
type Reverser interface {
	Reverse(ctx context.Context, p geo.Point) (provider.Address, error)
}

// Classifier turns a point into a best-guess District.
type Classifier struct {
	geocoder Reverser
}

// NewClassifier creates a Classifier backed by the given reverse geocoder.
func NewClassifier(g Reverser) *Classifier {
	return &Classifier{geocoder: g}
}

// Classify reverse-geocodes p and matches the returned names against the
// enumeration. A lookup failure yields Unknown and an error wrapping
// ErrClassificationUnavailable; no match yields Unknown and a nil error.
func (c *Classifier) Classify(ctx context.Context, p geo.Point) (District, error) {
	ctx, span := otel.Tracer("solix/district").Start(ctx, "district.classify")
	defer span.End()
	span.SetAttributes(attribute.Float64("lat", p.Lat), attribute.Float64("lon", p.Lon))

	addr, err := c.geocoder.Reverse(ctx, p)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Unknown, fmt.Errorf("%w: %v", ErrClassificationUnavailable, err)
	}

	d := Match(addr.Names())
	span.SetAttributes(attribute.String("district", d.String()))
	return d, nil
}

// Match returns the first district, in enumeration order, whose canonical
// name is contained in any candidate after Unicode case folding.
//
// A candidate that contains more than one district name resolves to the
// earlier district in the enumeration.
func Match(candidates []string) District {
	// A Caser is stateful, so each call gets its own.
	fold := cases.Fold()
	folded := make([]string, len(candidates))
	for i, s := range candidates {
		folded[i] = fold.String(s)
	}

	for _, d := range all {
		needle := fold.String(string(d))
		for _, hay := range folded {
			if strings.Contains(hay, needle) {
				return d
			}
		}
	}
	return Unknown
}
