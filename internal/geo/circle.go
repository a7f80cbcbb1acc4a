package geo

import "fmt"

// Circle is a center point and radius in meters, plus the four cardinal
// points on its perimeter (computed on demand, not stored, since they
// are cheap and the center/radius are the only real state).
type Circle struct {
	Center Point
	Radius float64
}

// NewCircle constructs a Circle. Radius must be >= 0.
func NewCircle(center Point, radiusM float64) Circle {
	return Circle{Center: center, Radius: radiusM}
}

// North returns the cardinal point radius meters due north of center.
func (c Circle) North() Point { return Project(c.Center, 0, c.Radius) }

// South returns the cardinal point radius meters due south of center.
func (c Circle) South() Point { return Project(c.Center, 180, c.Radius) }

// East returns the cardinal point radius meters due east of center.
func (c Circle) East() Point { return Project(c.Center, 90, c.Radius) }

// West returns the cardinal point radius meters due west of center.
func (c Circle) West() Point { return Project(c.Center, 270, c.Radius) }

// Contains reports whether p lies within the circle (distance <= radius).
func (c Circle) Contains(p Point) bool {
	return Distance(c.Center, p) <= c.Radius
}

// Touches reports whether c overlaps bounds b, per spec §4.1: true iff
// (a) the center or any cardinal point of c is inside b, or (b) any
// corner of b lies inside c.
func (c Circle) Touches(b Bounds) bool {
	if b.Contains(c.Center) || b.Contains(c.North()) || b.Contains(c.South()) ||
		b.Contains(c.East()) || b.Contains(c.West()) {
		return true
	}
	for _, corner := range b.corners() {
		if c.Contains(corner) {
			return true
		}
	}
	return false
}

// Equal reports whether c and o have the same center (within Epsilon)
// and radius.
func (c Circle) Equal(o Circle) bool {
	return c.Center.Equal(o.Center) && c.Radius == o.Radius
}

// KML renders the circle as an approximating 32-gon polygon, for the
// admin geofence export endpoint.
func (c Circle) KML() string {
	const sides = 32
	s := "<Polygon><outerBoundaryIs><LinearRing><coordinates>"
	for i := 0; i <= sides; i++ {
		bearing := float64(i%sides) * (360.0 / sides)
		p := Project(c.Center, bearing, c.Radius)
		s += fmt.Sprintf("%f,%f,0 ", p.Lon, p.Lat)
	}
	s += "</coordinates></LinearRing></outerBoundaryIs></Polygon>"
	return s
}
