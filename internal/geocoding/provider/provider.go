package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/solix-energy/solix/internal/geo"
)

// Common errors
var (
	ErrMissingGoogleKey = errors.New("GOOGLE_MAPS_API_KEY environment variable is required for google provider")
	ErrUnknownProvider  = errors.New("unknown provider type")
	ErrNoResults        = errors.New("geocoder returned no results")
)

// Geocoder is the forward/reverse geocoding capability the location resolver
// and district classifier consume. Implementations must be safe for
// concurrent use.
type Geocoder interface {
	// Name returns the provider name for logging purposes.
	Name() string

	// Search resolves free text to ranked candidates, best first.
	// An empty slice with a nil error means nothing matched.
	Search(ctx context.Context, query string) ([]Candidate, error)

	// Reverse looks up the administrative names for a point.
	Reverse(ctx context.Context, p geo.Point) (Address, error)
}

// providerRegistry holds registered provider constructors.
var providerRegistry = make(map[ProviderType]func(Config) (Geocoder, error))

// RegisterProvider registers a provider constructor for a given provider type.
// This should be called from init() in each provider package.
func RegisterProvider(providerType ProviderType, constructor func(Config) (Geocoder, error)) {
	providerRegistry[providerType] = constructor
}

// NewProvider creates a Geocoder based on the configuration.
// It returns an error if the configuration is invalid or the provider is unknown.
func NewProvider(cfg Config) (Geocoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	constructor, ok := providerRegistry[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	return constructor(cfg)
}
