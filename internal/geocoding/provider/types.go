package provider

import "github.com/solix-energy/solix/internal/geo"

// Candidate is one ranked forward-geocoding hit.
type Candidate struct {
	Point       geo.Point `json:"point"`
	DisplayName string    `json:"display_name"`
}

// Address is a reverse-geocoding result normalized across providers.
// Any field may be empty; providers fill what their data has.
type Address struct {
	// Fine-grained area: city, town, village or suburb.
	Locality string `json:"locality"`
	// County or state district ("Colombo District").
	County string `json:"county"`
	// Broad region ("Western Province").
	Region string `json:"region"`

	Formatted string `json:"formatted"`
}

// Names returns the non-empty name fields ordered by specificity,
// fine-grained area first.
func (a Address) Names() []string {
	var out []string
	for _, n := range []string{a.Locality, a.County, a.Region} {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
