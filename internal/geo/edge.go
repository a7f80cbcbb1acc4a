package geo

import (
	"errors"
	"math"

	"github.com/usdot-its/ppm/internal/highway"
)

// ErrZeroArea is returned by Edge.ToArea when the derived rectangle would
// have zero or negative width.
var ErrZeroArea = errors.New("geo: edge produces a zero-area rectangle")

// Edge is a road segment between two shared vertices, tagged with a
// highway type. Explicit edges come from a shape file line (the loader
// marks every edge it keeps as explicit, with or without a way_type
// attribute); implicit edges are synthesized (e.g. by a future loader
// extension) and default to Other.
type Edge struct {
	V1, V2   *Vertex
	UID      uint64
	WayType  highway.Type
	Explicit bool
}

// NewEdge constructs an Edge and records it as incident on both vertices.
func NewEdge(uid uint64, v1, v2 *Vertex, wayType highway.Type, explicit bool) *Edge {
	e := &Edge{V1: v1, V2: v2, UID: uid, WayType: wayType, Explicit: explicit}
	v1.AddEdge(uid)
	v2.AddEdge(uid)
	return e
}

// IsExplicit reports whether the edge carries an explicit, non-blacklisted
// way type from the shape file.
func (e *Edge) IsExplicit() bool { return e.Explicit }

// IsImplicit is the complement of IsExplicit.
func (e *Edge) IsImplicit() bool { return !e.Explicit }

// DLatitude is the signed latitude delta from V1 to V2.
func (e *Edge) DLatitude() float64 { return e.V2.Lat - e.V1.Lat }

// DLongitude is the signed longitude delta from V1 to V2.
func (e *Edge) DLongitude() float64 { return e.V2.Lon - e.V1.Lon }

// Length is the equirectangular-approximation length of the edge, meters.
func (e *Edge) Length() float64 { return Distance(e.V1.Point, e.V2.Point) }

// LengthHaversine is the haversine length of the edge, meters.
func (e *Edge) LengthHaversine() float64 { return DistanceHaversine(e.V1.Point, e.V2.Point) }

// Bearing is the initial bearing from V1 to V2, degrees [0,360).
func (e *Edge) Bearing() float64 { return Bearing(e.V1.Point, e.V2.Point) }

// WayWidth is the highway-table default width, in meters, for e's type.
func (e *Edge) WayWidth() float64 { return highway.Width(e.WayType) }

// DistanceFromPoint returns the shortest distance from p to the segment
// V1-V2, meters, using a local equirectangular flattening: longitude
// deltas are scaled by cos(meanLat) so that both axes are in comparable
// units before the segment-projection arithmetic.
func (e *Edge) DistanceFromPoint(p Point) float64 {
	meanLat := toRadians((e.V1.Lat + e.V2.Lat + p.Lat) / 3)
	scale := math.Cos(meanLat)

	x1, y1 := e.V1.Lon*scale, e.V1.Lat
	x2, y2 := e.V2.Lon*scale, e.V2.Lat
	px, py := p.Lon*scale, p.Lat

	dx, dy := x2-x1, y2-y1
	segLenSq := dx*dx + dy*dy

	var t float64
	if segLenSq > 0 {
		t = ((px-x1)*dx + (py-y1)*dy) / segLenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	closest := Point{Lat: y1 + t*dy, Lon: (x1 + t*dx) / scale}
	return Distance(p, closest)
}

// IntersectsSegment reports whether the segment a-b crosses e.
func (e *Edge) IntersectsSegment(a, b Point) bool {
	return segmentsIntersect(e.V1.Point, e.V2.Point, a, b)
}

// IntersectsEdge reports whether e and o cross as line segments.
func (e *Edge) IntersectsEdge(o *Edge) bool {
	return e.IntersectsSegment(o.V1.Point, o.V2.Point)
}

// ToArea derives the oriented rectangle around e per spec §3's
// edge-to-area formula: bearing β = bearing(V1,V2), half-width from the
// highway width table, and an optional longitudinal extension applied
// to both endpoints before the side corners are projected. Returns
// ErrZeroArea if the highway type's width is non-positive.
func (e *Edge) ToArea(extensionM float64) (Area, error) {
	width := e.WayWidth()
	if width <= 0 {
		return Area{}, ErrZeroArea
	}
	halfWidth := width / 2
	bearing := e.Bearing()

	v1, v2 := e.V1.Point, e.V2.Point
	if extensionM > 0 {
		v1 = Project(v1, normalizeBearing(bearing+180), extensionM)
		v2 = Project(v2, bearing, extensionM)
	}

	corners := [4]Point{
		Project(v1, normalizeBearing(bearing-90), halfWidth),
		Project(v2, normalizeBearing(bearing-90), halfWidth),
		Project(v2, normalizeBearing(bearing+90), halfWidth),
		Project(v1, normalizeBearing(bearing+90), halfWidth),
	}
	return Area{Corners: corners}, nil
}
