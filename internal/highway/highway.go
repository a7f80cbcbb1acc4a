// Package highway holds the road-type enumeration the geofence engine
// consults when deriving an oriented rectangle from a map edge: each
// type maps to a default width in meters, and a small blacklist of types
// is excluded from the geofence entirely.
package highway

import "strings"

// Type enumerates OpenStreetMap-style highway classifications. The zero
// value is Unknown, which never matches a blacklist entry and carries
// the "Other" width.
type Type int

const (
	Unknown Type = iota
	Motorway
	MotorwayLink
	Trunk
	TrunkLink
	Primary
	PrimaryLink
	Secondary
	SecondaryLink
	Tertiary
	TertiaryLink
	Residential
	Service
	Unclassified
	Living_Street
	Pedestrian
	Track
	Bus_Guideway
	Raceway
	Road
	Footway
	Bridleway
	Steps
	Path
	Cycleway
	Proposed
	Construction
	Emergency_Access_Point
	Escape
	Elevator
	Rest_Area
	Services
	Bus_Stop
	Crossing
	Give_Way
	Mini_Roundabout
	Motorway_Junction
	Passing_Place
	Speed_Camera
	Street_Lamp
	Stop
	Traffic_Signals
	Turning_Circle
	Other
)

var nameToType = map[string]Type{
	"motorway":                Motorway,
	"motorway_link":           MotorwayLink,
	"trunk":                   Trunk,
	"trunk_link":              TrunkLink,
	"primary":                 Primary,
	"primary_link":            PrimaryLink,
	"secondary":               Secondary,
	"secondary_link":          SecondaryLink,
	"tertiary":                Tertiary,
	"tertiary_link":           TertiaryLink,
	"residential":             Residential,
	"service":                 Service,
	"unclassified":            Unclassified,
	"living_street":           Living_Street,
	"pedestrian":              Pedestrian,
	"track":                   Track,
	"bus_guideway":            Bus_Guideway,
	"raceway":                 Raceway,
	"road":                    Road,
	"footway":                 Footway,
	"bridleway":               Bridleway,
	"steps":                   Steps,
	"path":                    Path,
	"cycleway":                Cycleway,
	"proposed":                Proposed,
	"construction":            Construction,
	"emergency_access_point":  Emergency_Access_Point,
	"escape":                  Escape,
	"elevator":                Elevator,
	"rest_area":               Rest_Area,
	"services":                Services,
	"bus_stop":                Bus_Stop,
	"crossing":                Crossing,
	"give_way":                Give_Way,
	"mini_roundabout":         Mini_Roundabout,
	"motorway_junction":       Motorway_Junction,
	"passing_place":           Passing_Place,
	"speed_camera":            Speed_Camera,
	"street_lamp":             Street_Lamp,
	"stop":                    Stop,
	"traffic_signals":         Traffic_Signals,
	"turning_circle":          Turning_Circle,
	"user_defined":            Other,
}

// widthM holds the default oriented-rectangle width, in meters, for each
// type, transcribed from the reference highway_width_map (indexed by
// the Highway enumeration order in osm.hpp/osm.cpp). Other (and any
// unrecognized name) gets the widest default, 80m, matching
// Highway::OTHER there. Types the reference table has no distinct
// value for (most minor/point features) share its 16m default.
var widthM = map[Type]float64{
	Motorway:               22.0,
	Trunk:                  16.0,
	Primary:                30.0,
	Secondary:              17.0,
	Tertiary:               16.0,
	Unclassified:           22.0,
	Residential:            17.0,
	Service:                16.0,
	MotorwayLink:           16.0,
	TrunkLink:              16.0,
	PrimaryLink:            30.0,
	SecondaryLink:          18.0,
	TertiaryLink:           16.0,
	Living_Street:          16.0,
	Pedestrian:             10.0,
	Track:                  16.0,
	Bus_Guideway:           16.0,
	Raceway:                16.0,
	Road:                   16.0,
	Footway:                16.0,
	Bridleway:              16.0,
	Steps:                  16.0,
	Path:                   16.0,
	Cycleway:               16.0,
	Proposed:               16.0,
	Construction:           16.0,
	Bus_Stop:               16.0,
	Crossing:               16.0,
	Elevator:               16.0,
	Emergency_Access_Point: 16.0,
	Escape:                 16.0,
	Give_Way:               16.0,
	Mini_Roundabout:        16.0,
	Motorway_Junction:      16.0,
	Passing_Place:          16.0,
	Rest_Area:              16.0,
	Speed_Camera:           16.0,
	Street_Lamp:            16.0,
	Services:               16.0,
	Stop:                   16.0,
	Traffic_Signals:        16.0,
	Turning_Circle:         16.0,
	Unknown:                80.0,
	Other:                  80.0,
}

// Blacklist is the set of types skipped entirely at shape-load time.
var Blacklist = map[Type]bool{
	Pedestrian: true,
	Service:    true,
}

// blacklistHits counts edges skipped because their type was blacklisted,
// surfaced on the admin HTTP surface's /stats endpoint. Mirrors the
// reference loader's invalid_way_exception occurrence counter.
var blacklistHits int64

// ParseType maps a way_type name (case-insensitive) to a Type. Unknown
// names map to Other, never to an error — the loader logs a warning and
// moves on.
func ParseType(name string) Type {
	t, ok := nameToType[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Other
	}
	return t
}

// Width returns the default oriented-rectangle width, in meters, for t.
func Width(t Type) float64 {
	if w, ok := widthM[t]; ok {
		return w
	}
	return widthM[Other]
}

// IsBlacklisted reports whether edges of type t are excluded from the
// geofence at load time.
func IsBlacklisted(t Type) bool { return Blacklist[t] }

// RecordBlacklistHit increments the process-wide blacklisted-edge counter.
func RecordBlacklistHit() { blacklistHits++ }

// BlacklistHits returns the number of edges skipped for a blacklisted
// way type since process start.
func BlacklistHits() int64 { return blacklistHits }

// Name returns the canonical lower-case name for t, or "other" if t has
// no canonical name (used for diagnostics and the KML export).
func Name(t Type) string {
	for name, typ := range nameToType {
		if typ == t {
			return name
		}
	}
	return "other"
}
