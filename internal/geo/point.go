package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrOutOfRange is returned when a coordinate falls outside WGS 84 bounds.
var ErrOutOfRange = errors.New("coordinate out of range")

// Point is a WGS 84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Colombo is the map's resting position before the user picks a roof.
var Colombo = Point{Lat: 6.9271, Lon: 79.8612}

// NewPoint validates lat/lon and returns a Point.
func NewPoint(lat, lon float64) (Point, error) {
	p := Point{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// ParsePoint parses decimal strings as returned by geocoders ("6.9271").
func ParsePoint(lat, lon string) (Point, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse lat %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("parse lon %q: %w", lon, err)
	}
	return NewPoint(la, lo)
}

// Validate reports whether the point lies within [-90,90] x [-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: lat=%v", ErrOutOfRange, p.Lat)
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: lon=%v", ErrOutOfRange, p.Lon)
	}
	return nil
}

// LatString formats the latitude with five decimals (~1m), the precision the
// map pin works at.
func (p Point) LatString() string { return strconv.FormatFloat(p.Lat, 'f', 5, 64) }

// LonString formats the longitude with five decimals.
func (p Point) LonString() string { return strconv.FormatFloat(p.Lon, 'f', 5, 64) }

func (p Point) String() string { return p.LatString() + "," + p.LonString() }
