package geo

import (
	"errors"
	"math"
	"testing"
)

func TestNewPoint(t *testing.T) {
	cases := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"colombo", 6.9271, 79.8612, false},
		{"north pole", 90, 0, false},
		{"antimeridian", 0, -180, false},
		{"lat too high", 90.0001, 0, true},
		{"lon too low", 0, -180.5, true},
		{"nan", math.NaN(), 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPoint(tc.lat, tc.lon)
			if tc.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("expected ErrOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParsePoint(t *testing.T) {
	p, err := ParsePoint("7.2906", "80.6337")
	if err != nil {
		t.Fatalf("ParsePoint: %v", err)
	}
	if p.Lat != 7.2906 || p.Lon != 80.6337 {
		t.Errorf("got %+v", p)
	}

	if _, err := ParsePoint("abc", "80"); err == nil {
		t.Error("expected parse error for non-numeric lat")
	}
}

func TestPointStrings(t *testing.T) {
	p := Point{Lat: 6.927079, Lon: 79.861244}
	if got := p.LatString(); got != "6.92708" {
		t.Errorf("LatString = %s", got)
	}
	if got := p.String(); got != "6.92708,79.86124" {
		t.Errorf("String = %s", got)
	}
}
