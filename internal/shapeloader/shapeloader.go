// Package shapeloader parses the geofence CSV shape file into geometry
// entities ready for insertion into the quad index: circles, road-edge
// oriented rectangles (via geo.Edge.ToArea), and grid cells. Vertex
// identifiers are deduplicated across edges so that two edges sharing a
// vertex uid share the same *geo.Vertex.
package shapeloader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/usdot-its/ppm/internal/geo"
	"github.com/usdot-its/ppm/internal/highway"
)

// GeofenceShape pairs a geo.Shape with the metadata an operator needs
// for diagnostics (which loaded line produced it).
type GeofenceShape struct {
	geo.Shape
	UID      uint64
	WayType  highway.Type
	Explicit bool
}

// LineError describes a single bad shape-file line. The loader collects
// these and continues, per spec §7 kind 3/the shape loader's per-line
// error tolerance.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("shapeloader: line %d: %v (%q)", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error { return e.Err }

// Result is everything a successful (possibly partial) load produced.
type Result struct {
	Shapes  []GeofenceShape
	Edges   []*geo.Edge
	Vertex  map[uint64]*geo.Vertex
	Errors  []*LineError
}

// BoxExtensionM is the longitudinal extension applied to every loaded
// edge's derived area, taken from `privacy.filter.geofence.extension`
// and threaded through by the caller (internal/ppm), not by the loader
// itself — the loader only produces the raw geo.Edge slice; area
// derivation with the configured extension happens in ppm.NewEngine so
// that a later config change can re-derive areas without re-parsing CSV.
const BoxExtensionM = 10.0

// Load parses a shape CSV (header `type,id,geography,attributes`) from r.
// Blacklisted way types are skipped (recorded via highway.RecordBlacklistHit)
// with a LineError rather than aborting the load.
func Load(r io.Reader) (*Result, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("shapeloader: reading header: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("shapeloader: malformed header %v", header)
	}

	res := &Result{Vertex: make(map[uint64]*geo.Vertex)}
	lineNo := 1

	for {
		lineNo++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, &LineError{Line: lineNo, Err: err})
			continue
		}
		if len(record) < 3 {
			res.Errors = append(res.Errors, &LineError{Line: lineNo, Text: strings.Join(record, ","), Err: fmt.Errorf("expected at least 3 fields")})
			continue
		}

		var parseErr error
		switch record[0] {
		case "circle":
			parseErr = res.loadCircle(record)
		case "edge":
			parseErr = res.loadEdge(record)
		case "grid":
			parseErr = res.loadGrid(record)
		default:
			parseErr = fmt.Errorf("unknown shape type %q", record[0])
		}
		if parseErr != nil {
			res.Errors = append(res.Errors, &LineError{Line: lineNo, Text: strings.Join(record, ","), Err: parseErr})
		}
	}
	return res, nil
}

func (res *Result) loadCircle(record []string) error {
	uid, err := strconv.ParseUint(record[1], 10, 64)
	if err != nil {
		return fmt.Errorf("bad circle id: %w", err)
	}
	parts := strings.Split(record[2], ":")
	if len(parts) != 3 {
		return fmt.Errorf("expected lat:lon:radius, got %q", record[2])
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return fmt.Errorf("bad latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return fmt.Errorf("bad longitude: %w", err)
	}
	radius, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return fmt.Errorf("bad radius: %w", err)
	}
	if lat < -84 || lat > 80 {
		return fmt.Errorf("latitude %f out of range [-84,80]", lat)
	}
	if lon <= -180 || lon >= 180 {
		return fmt.Errorf("longitude %f out of range (-180,180)", lon)
	}
	if radius < 0 {
		return fmt.Errorf("radius %f must be >= 0", radius)
	}

	circle := geo.NewCircle(geo.NewPoint(lat, lon), radius)
	res.Shapes = append(res.Shapes, GeofenceShape{Shape: circle, UID: uid})
	return nil
}

func (res *Result) loadEdge(record []string) error {
	uid, err := strconv.ParseUint(record[1], 10, 64)
	if err != nil {
		return fmt.Errorf("bad edge id: %w", err)
	}

	endpoints := strings.Split(record[2], ":")
	if len(endpoints) != 2 {
		return fmt.Errorf("expected v1:v2, got %q", record[2])
	}
	v1, err := res.resolveVertex(endpoints[0])
	if err != nil {
		return err
	}
	v2, err := res.resolveVertex(endpoints[1])
	if err != nil {
		return err
	}
	if v1.UID == v2.UID {
		return fmt.Errorf("edge %d: vertices must have distinct uids", uid)
	}

	wayType := highway.Other
	if len(record) > 3 {
		attrs := parseAttributes(record[3])
		if name, ok := attrs["way_type"]; ok {
			wayType = highway.ParseType(name)
		}
	}
	if highway.IsBlacklisted(wayType) {
		highway.RecordBlacklistHit()
		return fmt.Errorf("edge %d: way type %q is blacklisted, skipping", uid, highway.Name(wayType))
	}

	edge := geo.NewEdge(uid, v1, v2, wayType, true)
	res.Edges = append(res.Edges, edge)
	return nil
}

// resolveVertex parses a `uid;lat;lon` endpoint spec, returning the
// canonical *geo.Vertex for that uid (reusing one already seen, and
// verifying coordinate reuse matches).
func (res *Result) resolveVertex(spec string) (*geo.Vertex, error) {
	parts := strings.Split(spec, ";")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected uid;lat;lon, got %q", spec)
	}
	uid, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad vertex uid: %w", err)
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("bad vertex latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return nil, fmt.Errorf("bad vertex longitude: %w", err)
	}
	p := geo.NewPoint(lat, lon)

	if existing, ok := res.Vertex[uid]; ok {
		if !existing.Point.Equal(p) {
			return nil, fmt.Errorf("vertex %d reused with a different coordinate", uid)
		}
		return existing, nil
	}
	v := geo.NewVertex(uid, p)
	res.Vertex[uid] = v
	return v, nil
}

func (res *Result) loadGrid(record []string) error {
	idParts := strings.Split(record[1], "_")
	if len(idParts) != 2 {
		return fmt.Errorf("expected row_col, got %q", record[1])
	}
	row, err := strconv.ParseUint(idParts[0], 10, 32)
	if err != nil {
		return fmt.Errorf("bad row: %w", err)
	}
	col, err := strconv.ParseUint(idParts[1], 10, 32)
	if err != nil {
		return fmt.Errorf("bad col: %w", err)
	}

	coords := strings.Split(record[2], ":")
	if len(coords) != 4 {
		return fmt.Errorf("expected swLat:swLon:neLat:neLon, got %q", record[2])
	}
	vals := make([]float64, 4)
	for i, s := range coords {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("bad coordinate %q: %w", s, err)
		}
		vals[i] = v
	}
	bounds := geo.NewBounds(geo.NewPoint(vals[0], vals[1]), geo.NewPoint(vals[2], vals[3]))
	cell := geo.NewGridCell(uint32(row), uint32(col), bounds)
	res.Shapes = append(res.Shapes, GeofenceShape{Shape: cell, UID: row<<32 | col})
	return nil
}

// parseAttributes splits a colon-separated `key=value` attribute list.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, kv := range strings.Split(s, ":") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		attrs[parts[0]] = parts[1]
	}
	return attrs
}

// DeriveAreas converts every loaded edge into a GeofenceShape using the
// given longitudinal extension, skipping (and reporting) edges whose
// highway width would produce a zero-area rectangle.
func (res *Result) DeriveAreas(extensionM float64) []GeofenceShape {
	shapes := make([]GeofenceShape, 0, len(res.Edges))
	for _, e := range res.Edges {
		area, err := e.ToArea(extensionM)
		if err != nil {
			res.Errors = append(res.Errors, &LineError{Line: 0, Text: fmt.Sprintf("edge %d", e.UID), Err: err})
			continue
		}
		shapes = append(shapes, GeofenceShape{Shape: area, UID: e.UID, WayType: e.WayType, Explicit: e.Explicit})
	}
	return shapes
}
