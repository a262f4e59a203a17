package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Bounds is an axis-aligned latitude/longitude box, inclusive on all edges.
type Bounds struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// Contains treats MinLon > MaxLon as a box crossing the antimeridian.
func (b Bounds) Contains(lat, lon float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	if b.CrossesAntimeridian() {
		return lon >= b.MinLon || lon <= b.MaxLon
	}
	return lon >= b.MinLon && lon <= b.MaxLon
}

func (b Bounds) CrossesAntimeridian() bool {
	return b.MinLon > b.MaxLon
}

// Parts splits a box crossing the antimeridian into its eastern and western
// halves so each can be matched with a plain range. Other boxes come back as is.
func (b Bounds) Parts() []Bounds {
	if !b.CrossesAntimeridian() {
		return []Bounds{b}
	}
	east, west := b, b
	east.MaxLon = 180
	west.MinLon = -180
	return []Bounds{east, west}
}

func (b Bounds) Validate() error {
	if err := ValidateCoordinates(b.MinLat, b.MinLon); err != nil {
		return err
	}
	if err := ValidateCoordinates(b.MaxLat, b.MaxLon); err != nil {
		return err
	}
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return fmt.Errorf("bounding box minimum exceeds maximum: %w", ErrInvalidInput)
	}
	return nil
}

// RadiusBounds returns the box that encloses the circle of the given radius
// around a point. It is a cheap prefilter; use DistanceMeters for the exact test.
// Near the antimeridian the box wraps and MinLon > MaxLon; see Parts.
func RadiusBounds(lat, lon, meters float64) Bounds {
	b := geo.NewBoundAroundPoint(orb.Point{lon, lat}, meters)
	return Bounds{
		MinLat: math.Max(b.Min.Lat(), -90),
		MinLon: b.Min.Lon(),
		MaxLat: math.Min(b.Max.Lat(), 90),
		MaxLon: b.Max.Lon(),
	}
}

// DistanceMeters returns the great-circle distance between two points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.DistanceHaversine(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]: %w", lat, ErrInvalidInput)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]: %w", lon, ErrInvalidInput)
	}
	return nil
}

// LocationQuery selects buildings either within RadiusMeters of the center
// point or inside a bounding box. When a radius is set the box is ignored.
type LocationQuery struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters *float64
	MinLat       *float64
	MinLon       *float64
	MaxLat       *float64
	MaxLon       *float64
}

func (q LocationQuery) HasRadius() bool {
	return q.RadiusMeters != nil
}

func (q LocationQuery) hasBox() bool {
	return q.MinLat != nil && q.MinLon != nil && q.MaxLat != nil && q.MaxLon != nil
}

// Box returns the bounding box of a box query.
func (q LocationQuery) Box() Bounds {
	if !q.hasBox() {
		return Bounds{}
	}
	return Bounds{MinLat: *q.MinLat, MinLon: *q.MinLon, MaxLat: *q.MaxLat, MaxLon: *q.MaxLon}
}

func (q LocationQuery) Validate() error {
	switch {
	case q.HasRadius():
		if *q.RadiusMeters <= 0 || math.IsNaN(*q.RadiusMeters) {
			return fmt.Errorf("radius must be positive: %w", ErrInvalidInput)
		}
		return ValidateCoordinates(q.Latitude, q.Longitude)
	case q.hasBox():
		return q.Box().Validate()
	default:
		return fmt.Errorf("either a radius or a complete bounding box is required: %w", ErrInvalidInput)
	}
}
