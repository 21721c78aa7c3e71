package nominatim

import "github.com/solix-energy/solix/internal/geocoding/provider"

func init() {
	provider.RegisterProvider(provider.ProviderNominatim, func(cfg provider.Config) (provider.Geocoder, error) {
		return NewClient(cfg.NominatimEndpoint, cfg.NominatimUserAgent, cfg.RequestsPerSecond, cfg.Timeout), nil
	})
}

var _ provider.Geocoder = (*Client)(nil)
