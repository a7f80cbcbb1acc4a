// Package geo implements the spherical geometry primitives the geofence
// engine is built on: points, vertices, edges, oriented areas, circles,
// axis-aligned bounds, and grid cells. Distances use an equirectangular
// approximation (with a haversine variant for cross-checking); projection
// and bearing use standard great-circle formulas.
package geo

import "math"

const (
	// earthRadiusM is the equatorial Earth radius in meters (the WGS-84
	// semi-major axis), matching the reference loader's spherical model.
	earthRadiusM = 6378137.0

	// Epsilon is the absolute tolerance used by every coordinate
	// comparison in this package: 100x the float64 machine epsilon.
	Epsilon = 100 * 2.220446049250313e-16
)

// Point is a decimal-degree coordinate: Lat in [-90,90], Lon in [-180,180].
type Point struct {
	Lat float64
	Lon float64
}

// NewPoint constructs a Point without validating range; callers that parse
// untrusted input should call Valid.
func NewPoint(lat, lon float64) Point {
	return Point{Lat: lat, Lon: lon}
}

// Valid reports whether the point's coordinates lie within their ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Equal compares two points within Epsilon on each axis.
func (p Point) Equal(o Point) bool {
	return math.Abs(p.Lat-o.Lat) <= Epsilon && math.Abs(p.Lon-o.Lon) <= Epsilon
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// normalizeLon maps a longitude in degrees to (-180,180].
func normalizeLon(lon float64) float64 {
	for lon <= -180 {
		lon += 360
	}
	for lon > 180 {
		lon -= 360
	}
	return lon
}

// normalizeBearing maps a bearing in degrees to [0,360).
func normalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	if b < 0 {
		b += 360
	}
	return b
}

// Distance computes the equirectangular-approximation distance in meters
// between a and b: x=(Δlon)·cos(meanLat), y=Δlat, d=√(x²+y²)·R. Cheap and
// accurate enough at the scales shapes are defined over (road segments,
// local geofences); not valid across long distances or near the poles.
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)
	meanLat := toRadians((a.Lat + b.Lat) / 2)
	x := dLon * math.Cos(meanLat)
	y := dLat
	return math.Sqrt(x*x+y*y) * earthRadiusM
}

// DistanceHaversine computes the great-circle distance in meters between
// a and b using the haversine formula. Used by tests to cross-check
// Distance and by callers that need precision over longer spans.
func DistanceHaversine(a, b Point) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	sinDLat2 := math.Sin(dLat / 2)
	sinDLon2 := math.Sin(dLon / 2)
	h := sinDLat2*sinDLat2 + math.Cos(lat1)*math.Cos(lat2)*sinDLon2*sinDLon2
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusM * c
}

// Bearing computes the initial great-circle bearing in degrees [0,360)
// from a to b.
func Bearing(a, b Point) float64 {
	lat1, lat2 := toRadians(a.Lat), toRadians(b.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	return normalizeBearing(toDegrees(math.Atan2(y, x)))
}

// Project returns the point reached by traveling distanceM meters from p
// along the great-circle bearing bearingDeg (degrees). Longitude is
// normalized to (-180,180].
func Project(p Point, bearingDeg, distanceM float64) Point {
	delta := distanceM / earthRadiusM
	theta := toRadians(bearingDeg)
	phi1 := toRadians(p.Lat)
	lambda1 := toRadians(p.Lon)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)
	return Point{Lat: toDegrees(phi2), Lon: normalizeLon(toDegrees(lambda2))}
}

// Midpoint returns the great-circle midpoint of a and b.
func Midpoint(a, b Point) Point {
	lat1, lon1 := toRadians(a.Lat), toRadians(a.Lon)
	lat2 := toRadians(b.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	bx := math.Cos(lat2) * math.Cos(dLon)
	by := math.Cos(lat2) * math.Sin(dLon)

	latm := math.Atan2(math.Sin(lat1)+math.Sin(lat2), math.Sqrt((math.Cos(lat1)+bx)*(math.Cos(lat1)+bx)+by*by))
	lonm := lon1 + math.Atan2(by, math.Cos(lat1)+bx)
	return Point{Lat: toDegrees(latm), Lon: normalizeLon(toDegrees(lonm))}
}
