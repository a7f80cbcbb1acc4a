package geo

// Bounds is an axis-aligned rectangle, stored as its SW and NE corners.
// Invariant: SW.Lat <= NE.Lat and SW.Lon <= NE.Lon.
type Bounds struct {
	SW Point
	NE Point
}

// NewBounds constructs Bounds from southwest and northeast corners.
func NewBounds(sw, ne Point) Bounds {
	return Bounds{SW: sw, NE: ne}
}

// NW returns the northwest corner.
func (b Bounds) NW() Point { return Point{Lat: b.NE.Lat, Lon: b.SW.Lon} }

// SE returns the southeast corner.
func (b Bounds) SE() Point { return Point{Lat: b.SW.Lat, Lon: b.NE.Lon} }

// Width returns the rectangle's extent in degrees of longitude.
func (b Bounds) Width() float64 { return b.NE.Lon - b.SW.Lon }

// Height returns the rectangle's extent in degrees of latitude.
func (b Bounds) Height() float64 { return b.NE.Lat - b.SW.Lat }

// Center returns the rectangle's midpoint.
func (b Bounds) Center() Point {
	return Point{Lat: (b.SW.Lat + b.NE.Lat) / 2, Lon: (b.SW.Lon + b.NE.Lon) / 2}
}

// NorthMidpoint returns the midpoint of the northern edge.
func (b Bounds) NorthMidpoint() Point { return Point{Lat: b.NE.Lat, Lon: b.Center().Lon} }

// SouthMidpoint returns the midpoint of the southern edge.
func (b Bounds) SouthMidpoint() Point { return Point{Lat: b.SW.Lat, Lon: b.Center().Lon} }

// EastMidpoint returns the midpoint of the eastern edge.
func (b Bounds) EastMidpoint() Point { return Point{Lat: b.Center().Lat, Lon: b.NE.Lon} }

// WestMidpoint returns the midpoint of the western edge.
func (b Bounds) WestMidpoint() Point { return Point{Lat: b.Center().Lat, Lon: b.SW.Lon} }

// Contains is the axis-aligned interval test.
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.SW.Lat && p.Lat <= b.NE.Lat && p.Lon >= b.SW.Lon && p.Lon <= b.NE.Lon
}

// corners returns the four corners in clockwise order from NW, matching
// the Area corner convention.
func (b Bounds) corners() [4]Point {
	return [4]Point{b.NW(), b.NE, b.SE(), b.SW}
}

// segments returns the four boundary segments, in the same order as corners.
func (b Bounds) segments() [4][2]Point {
	c := b.corners()
	return [4][2]Point{{c[0], c[1]}, {c[1], c[2]}, {c[2], c[3]}, {c[3], c[0]}}
}

// IntersectsSegment tests whether segment (a,b) crosses any of the four
// boundary segments of b, using the parametric intersection test.
func (b Bounds) IntersectsSegment(a, c Point) bool {
	for _, seg := range b.segments() {
		if segmentsIntersect(a, c, seg[0], seg[1]) {
			return true
		}
	}
	return false
}

// ContainsOrIntersectsSegment is true if either endpoint lies inside b or
// the segment crosses a boundary.
func (b Bounds) ContainsOrIntersectsSegment(a, c Point) bool {
	return b.Contains(a) || b.Contains(c) || b.IntersectsSegment(a, c)
}

// ContainsCircle reports whether a circle is wholly contained: center and
// all four cardinal points lie inside b.
func (b Bounds) ContainsCircle(c Circle) bool {
	return b.Contains(c.Center) && b.Contains(c.North()) && b.Contains(c.South()) &&
		b.Contains(c.East()) && b.Contains(c.West())
}

// IntersectsCircle mirrors Circle.Touches(Bounds): true iff the center or
// any cardinal point of c is inside b, or any corner of b is inside c.
func (b Bounds) IntersectsCircle(c Circle) bool {
	return c.Touches(b)
}

// ContainsOrIntersectsCircle is true if the circle overlaps b in any way.
func (b Bounds) ContainsOrIntersectsCircle(c Circle) bool {
	return b.ContainsCircle(c) || b.IntersectsCircle(c)
}

// segmentsIntersect is the parametric segment-intersection test from
// spec §4.1: for segments AB and CD compute d = -ΔlatAB·ΔlonCD +
// ΔlatCD·ΔlonAB; |d| < ε means parallel or coincident, reported as no
// intersection (coincident segments are deliberately treated as
// non-intersecting — see DESIGN.md Open Questions).
func segmentsIntersect(a, bPt, c, d Point) bool {
	dLatAB := bPt.Lat - a.Lat
	dLonAB := bPt.Lon - a.Lon
	dLatCD := d.Lat - c.Lat
	dLonCD := d.Lon - c.Lon

	denom := -dLatAB*dLonCD + dLatCD*dLonAB
	if denom > -Epsilon && denom < Epsilon {
		return false
	}

	dLatAC := a.Lat - c.Lat
	dLonAC := a.Lon - c.Lon

	s := (-dLatAB*dLonAC + dLonAB*dLatAC) / denom
	t := (dLonCD*dLatAC - dLatCD*dLonAC) / denom
	return s >= 0 && s <= 1 && t >= 0 && t <= 1
}
