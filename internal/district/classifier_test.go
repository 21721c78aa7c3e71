package district

import (
	"context"
	"errors"
	"testing"

	"github.com/solix-energy/solix/internal/geo"
	"github.com/solix-energy/solix/internal/geocoding/provider"
)

type fakeReverser struct {
	addr provider.Address
	err  error
}

func (f fakeReverser) Reverse(ctx context.Context, p geo.Point) (provider.Address, error) {
	return f.addr, f.err
}

func TestMatch(t *testing.T) {
	cases := []struct {
		name       string
		candidates []string
		want       District
	}{
		{"county field", []string{"Fort", "Colombo District", "Western Province"}, Colombo},
		{"case insensitive", []string{"KANDY"}, Kandy},
		{"two words", []string{"nuwara eliya municipal council"}, NuwaraEliya},
		{"no match", []string{"Western Province", "Sri Lanka"}, Unknown},
		{"empty", nil, Unknown},
		// Gampaha precedes Kandy in the enumeration, so it wins even though
		// Kandy is the more specific candidate.
		{"enumeration order wins", []string{"Kandy", "Gampaha District"}, Gampaha},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match(tc.candidates); got != tc.want {
				t.Errorf("Match(%v) = %s, want %s", tc.candidates, got, tc.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(fakeReverser{addr: provider.Address{
		Locality: "Mount Lavinia",
		County:   "Colombo District",
		Region:   "Western Province",
	}})

	got, err := c.Classify(context.Background(), geo.Colombo)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got != Colombo {
		t.Errorf("got %s, want Colombo", got)
	}
}

func TestClassifyLookupFailure(t *testing.T) {
	c := NewClassifier(fakeReverser{err: errors.New("timeout")})

	got, err := c.Classify(context.Background(), geo.Colombo)
	if got != Unknown {
		t.Errorf("got %s, want Unknown", got)
	}
	if !errors.Is(err, ErrClassificationUnavailable) {
		t.Errorf("expected ErrClassificationUnavailable, got %v", err)
	}
}
