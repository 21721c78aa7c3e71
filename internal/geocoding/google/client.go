package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/solix-energy/solix/internal/geo"
	"github.com/solix-energy/solix/internal/geocoding/provider"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const name = "google"

// BaseURL is the Google Maps Geocoding API endpoint.
const BaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Client wraps the Google Maps Geocoding API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a geocoding client for the given API key.
func NewClient(apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
	Status  string          `json:"status"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          geometry           `json:"geometry"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Name implements provider.Geocoder.
func (c *Client) Name() string { return name }

// Search converts a free-form place name into ranked candidates, biased to Sri Lanka.
func (c *Client) Search(ctx context.Context, query string) ([]provider.Candidate, error) {
	params := url.Values{}
	params.Set("address", query)
	params.Set("region", "lk")

	resp, err := c.do(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]provider.Candidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		p, err := geo.NewPoint(r.Geometry.Location.Lat, r.Geometry.Location.Lng)
		if err != nil {
			continue
		}
		out = append(out, provider.Candidate{Point: p, DisplayName: r.FormattedAddress})
	}
	return out, nil
}

// Reverse looks up administrative area names for a point.
func (c *Client) Reverse(ctx context.Context, p geo.Point) (provider.Address, error) {
	params := url.Values{}
	params.Set("latlng", p.String())

	resp, err := c.do(ctx, params)
	if err != nil {
		return provider.Address{}, err
	}
	if len(resp.Results) == 0 {
		return provider.Address{}, provider.ErrNoResults
	}

	result := resp.Results[0]
	out := provider.Address{Formatted: result.FormattedAddress}

	for _, comp := range result.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "locality", "sublocality":
				if out.Locality == "" {
					out.Locality = comp.LongName
				}
			case "administrative_area_level_2":
				out.County = comp.LongName
			case "administrative_area_level_1":
				out.Region = comp.LongName
			}
		}
	}

	return out, nil
}

func (c *Client) do(ctx context.Context, params url.Values) (*geocodeResponse, error) {
	params.Set("key", c.apiKey)
	u := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	start := time.Now()
	provider.LogRequest(name, http.MethodGet, c.baseURL, map[string]interface{}{
		"address": params.Get("address"),
		"latlng":  params.Get("latlng"),
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		provider.LogError(name, "geocode", err)
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status first
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned HTTP %d: check that Geocoding API is enabled in Google Cloud Console", resp.StatusCode)
	}

	var geoResp geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return nil, fmt.Errorf("decoding response (HTTP %d): %w", resp.StatusCode, err)
	}
	provider.LogResponse(name, resp.StatusCode, time.Since(start), len(geoResp.Results))

	switch geoResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		geoResp.Results = nil
	default:
		return nil, fmt.Errorf("geocoding failed: status=%s", geoResp.Status)
	}

	return &geoResp, nil
}
