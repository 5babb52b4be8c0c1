// Package geo decides which locations are close enough to be worth crawling.
package geo

import "math"

// EarthRadiusKm is the approximate Earth radius used by Distance.
const EarthRadiusKm = 6373.0

// Coordinate is a point in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Finite reports whether both components are real numbers.
func (c Coordinate) Finite() bool {
	return finite(c.Latitude) && finite(c.Longitude)
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Coordinate) float64 {
	return haversine(a, b)
}

// Policy is the admission rule applied to every catalog location before it is crawled.
type Policy struct {
	CategoryCode  int
	Reference     Coordinate
	MaxDistanceKm float64

	// LegacyAbsCoordinates drops the hemisphere sign of every coordinate
	// before measuring, matching the output of older deployments.
	LegacyAbsCoordinates bool
}

// Distance measures from the policy reference point to c.
func (p Policy) Distance(c Coordinate) float64 {
	ref := p.Reference
	if p.LegacyAbsCoordinates {
		c = abs(c)
		ref = abs(ref)
	}
	return haversine(c, ref)
}

// Admit reports whether a location at pos offering categories passes the policy.
// Non-finite coordinates are never admitted.
func (p Policy) Admit(pos Coordinate, categories []int) bool {
	if !pos.Finite() || !p.Reference.Finite() || math.IsNaN(p.MaxDistanceKm) {
		return false
	}
	if !hasCategory(categories, p.CategoryCode) {
		return false
	}
	d := p.Distance(pos)
	return !math.IsNaN(d) && d <= p.MaxDistanceKm
}

// IsAdmitted is Admit for callers that do not keep a Policy around.
func IsAdmitted(pos Coordinate, categories []int, categoryCode int, ref Coordinate, maxDistanceKm float64) bool {
	return Policy{CategoryCode: categoryCode, Reference: ref, MaxDistanceKm: maxDistanceKm}.Admit(pos, categories)
}

func haversine(a, b Coordinate) float64 {
	lat1 := radians(a.Latitude)
	lon1 := radians(a.Longitude)
	lat2 := radians(b.Latitude)
	lon2 := radians(b.Longitude)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

func hasCategory(categories []int, code int) bool {
	for _, c := range categories {
		if c == code {
			return true
		}
	}
	return false
}

func abs(c Coordinate) Coordinate {
	return Coordinate{Latitude: math.Abs(c.Latitude), Longitude: math.Abs(c.Longitude)}
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
