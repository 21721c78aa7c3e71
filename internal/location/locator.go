package location

import (
	"context"
	"errors"

	"github.com/solix-energy/solix/internal/geo"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrNoCapability     = errors.New("geolocation is not supported on this device")
)

// DeviceLocator is the platform's location capability. Locate blocks until a
// fix is available, permission is refused or ctx ends.
type DeviceLocator interface {
	Locate(ctx context.Context) (geo.Point, error)
}

// StaticLocator reports a fixed position, for kiosks and fixed installs.
type StaticLocator struct {
	Point geo.Point
}

func (l StaticLocator) Locate(ctx context.Context) (geo.Point, error) {
	if err := ctx.Err(); err != nil {
		return geo.Point{}, err
	}
	return l.Point, nil
}

// UnavailableLocator stands in when the host has no location capability.
type UnavailableLocator struct{}

func (UnavailableLocator) Locate(context.Context) (geo.Point, error) {
	return geo.Point{}, ErrNoCapability
}

// LocatorFunc adapts a function to DeviceLocator.
type LocatorFunc func(ctx context.Context) (geo.Point, error)

func (f LocatorFunc) Locate(ctx context.Context) (geo.Point, error) { return f(ctx) }
