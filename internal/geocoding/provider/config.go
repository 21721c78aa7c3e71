package provider

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ProviderType identifies which geocoding provider to use.
type ProviderType string

const (
	ProviderNominatim ProviderType = "nominatim"
	ProviderGoogle    ProviderType = "google"
)

// DefaultNominatimEndpoint is the public OpenStreetMap Nominatim instance.
const DefaultNominatimEndpoint = "https://nominatim.openstreetmap.org"

// DefaultUserAgent identifies us to Nominatim, which rejects anonymous clients.
const DefaultUserAgent = "solix-dashboard/1.0"

// Config holds configuration for the geocoding provider.
type Config struct {
	// Provider type: "nominatim" or "google"
	Provider ProviderType

	// Nominatim-specific config
	NominatimEndpoint  string
	NominatimUserAgent string
	// RequestsPerSecond throttles outgoing calls; public Nominatim allows 1.
	RequestsPerSecond float64

	// Google-specific config
	GoogleKey string

	Timeout time.Duration
}

// LoadFromEnv loads provider configuration from environment variables.
//
// Environment variables:
//   - GEOCODER_PROVIDER: "nominatim" or "google" (default: "nominatim")
//   - NOMINATIM_URL: Nominatim base URL (default: https://nominatim.openstreetmap.org)
//   - NOMINATIM_USER_AGENT: User-Agent sent to Nominatim (default: solix-dashboard/1.0)
//   - GEOCODER_RPS: request rate limit (default: 1)
//   - GEOCODER_TIMEOUT: per-request timeout, Go duration (default: 5s)
//   - GOOGLE_MAPS_API_KEY: API key for Google (required if using google)
func LoadFromEnv() Config {
	var provider ProviderType
	switch strings.ToLower(strings.TrimSpace(os.Getenv("GEOCODER_PROVIDER"))) {
	case "google":
		provider = ProviderGoogle
	default:
		provider = ProviderNominatim
	}

	endpoint := strings.TrimRight(strings.TrimSpace(os.Getenv("NOMINATIM_URL")), "/")
	if endpoint == "" {
		endpoint = DefaultNominatimEndpoint
	}

	ua := strings.TrimSpace(os.Getenv("NOMINATIM_USER_AGENT"))
	if ua == "" {
		ua = DefaultUserAgent
	}

	rps := 1.0
	if v, err := strconv.ParseFloat(os.Getenv("GEOCODER_RPS"), 64); err == nil && v > 0 {
		rps = v
	}

	timeout := 5 * time.Second
	if v, err := time.ParseDuration(os.Getenv("GEOCODER_TIMEOUT")); err == nil && v > 0 {
		timeout = v
	}

	return Config{
		Provider:           provider,
		NominatimEndpoint:  endpoint,
		NominatimUserAgent: ua,
		RequestsPerSecond:  rps,
		GoogleKey:          os.Getenv("GOOGLE_MAPS_API_KEY"),
		Timeout:            timeout,
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGoogle:
		if c.GoogleKey == "" {
			return ErrMissingGoogleKey
		}
	}
	return nil
}
