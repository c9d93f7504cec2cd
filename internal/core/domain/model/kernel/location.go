package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// MinLatitude is the southern bound of a valid latitude in degrees.
	MinLatitude = -90.0
	// MaxLatitude is the northern bound of a valid latitude in degrees.
	MaxLatitude = 90.0
	// MinLongitude is the western bound of a valid longitude in degrees.
	MinLongitude = -180.0
	// MaxLongitude is the eastern bound of a valid longitude in degrees.
	MaxLongitude = 180.0
)

// Provenance tells whether a Location was observed or synthesized.
type Provenance string

const (
	// Measured marks a location reported by the geolocation provider or supplied by a caller.
	Measured Provenance = "measured"
	// Simulated marks a fallback location generated when the provider could not answer.
	Simulated Provenance = "simulated"
)

// ErrLocationIsNotConstructed is returned when a zero-value Location is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation, NewSimulatedLocation or NewJitteredLocation constructors")

// Location is an immutable geographic point in decimal degrees together with its provenance.
// The zero value is invalid and fails Validate.
//
// Example:
//
//	pickup, err := kernel.NewLocation(6.5244, 3.3792)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(pickup) // Location(6.524400,3.379200,measured)
type Location struct { //nolint:recvcheck //using for validation
	latitude   float64
	longitude  float64
	provenance Provenance
	guard      guard.ConstructorGuard
}

// NewLocation creates a measured Location.
//
// Parameters:
//   - latitude: degrees in [MinLatitude..MaxLatitude]
//   - longitude: degrees in [MinLongitude..MaxLongitude]
//
// Returns:
//   - Location: a valid measured location
//   - error: joined out-of-range errors for every invalid axis
func NewLocation(latitude, longitude float64) (Location, error) {
	return newLocation(latitude, longitude, Measured)
}

// NewSimulatedLocation creates a Location tagged as Simulated.
func NewSimulatedLocation(latitude, longitude float64) (Location, error) {
	return newLocation(latitude, longitude, Simulated)
}

// NewJitteredLocation creates a Simulated location around center, offset on each axis
// by a uniformly distributed value in [-jitterDegrees, +jitterDegrees].
// rnd must return values in [0, 1); the result is clamped to the valid coordinate range.
//
// Example:
//
//	lagos, _ := kernel.NewLocation(6.5244, 3.3792)
//	loc, err := kernel.NewJitteredLocation(lagos, 0.05, rand.Float64)
func NewJitteredLocation(center Location, jitterDegrees float64, rnd func() float64) (Location, error) {
	if err := center.Validate(); err != nil {
		return Location{}, err
	}
	if jitterDegrees < 0 || math.IsNaN(jitterDegrees) {
		return Location{}, errs.NewValueIsInvalidError("jitterDegrees")
	}

	lat := center.latitude + (rnd()*2-1)*jitterDegrees
	lon := center.longitude + (rnd()*2-1)*jitterDegrees

	return NewSimulatedLocation(
		clamp(lat, MinLatitude, MaxLatitude),
		clamp(lon, MinLongitude, MaxLongitude),
	)
}

func newLocation(latitude, longitude float64, provenance Provenance) (Location, error) {
	loc := Location{
		provenance: provenance,
		guard:      guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// Validate reports ErrLocationIsNotConstructed for a zero-value Location.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Latitude returns the latitude in degrees.
func (l Location) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in degrees.
func (l Location) Longitude() float64 {
	return l.longitude
}

// Provenance returns whether the location was measured or simulated.
func (l Location) Provenance() Provenance {
	return l.provenance
}

// IsSimulated reports whether the location is a fallback.
func (l Location) IsSimulated() bool {
	return l.provenance == Simulated
}

// String returns "Location(lat,lon,provenance)".
func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f,%s)", l.latitude, l.longitude, l.provenance)
}

// IsEqual reports whether both locations point at the same coordinates.
// Provenance is not compared. Both locations must be constructed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.latitude == other.latitude && l.longitude == other.longitude, nil
}

// DistanceTo returns the great-circle distance to other in kilometres.
// See Haversine.
func (l Location) DistanceTo(other Location) float64 {
	return Haversine(l, other)
}

func (l *Location) setLatitude(latitude float64) error {
	if math.IsNaN(latitude) || latitude < MinLatitude || latitude > MaxLatitude {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, MinLatitude, MaxLatitude)
	}

	l.latitude = latitude
	return nil
}

func (l *Location) setLongitude(longitude float64) error {
	if math.IsNaN(longitude) || longitude < MinLongitude || longitude > MaxLongitude {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, MinLongitude, MaxLongitude)
	}

	l.longitude = longitude
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
