package google

import "github.com/solix-energy/solix/internal/geocoding/provider"

func init() {
	provider.RegisterProvider(provider.ProviderGoogle, func(cfg provider.Config) (provider.Geocoder, error) {
		return NewClient(cfg.GoogleKey, cfg.Timeout), nil
	})
}

var _ provider.Geocoder = (*Client)(nil)
