// Package ppm implements the BSM/TIM message handler: parse, validate,
// consult the geofence and velocity filters, redact, and re-serialize —
// spec §4.3 — wired to the shared, read-only resources (quad index,
// velocity filter, partII field list) a pipeline of worker goroutines
// all consult concurrently.
package ppm

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/usdot-its/ppm/internal/config"
	"github.com/usdot-its/ppm/internal/geo"
	"github.com/usdot-its/ppm/internal/quadindex"
	"github.com/usdot-its/ppm/internal/redact"
	"github.com/usdot-its/ppm/internal/shapeloader"
	"github.com/usdot-its/ppm/internal/velocity"
)

// ErrStartup wraps a configuration or map-file problem detected while
// building the Engine — spec §7 kind 3, which aborts startup with a
// diagnostic rather than running degraded.
var ErrStartup = errors.New("ppm: startup configuration error")

// Engine holds every resource shared read-only across worker handlers
// once built: the quad index, the velocity filter, the box extension,
// the partII field list, and the process-wide Stats. It carries no
// per-message or per-worker state — see Handler for that.
type Engine struct {
	Quad             *quadindex.Tree
	GeofenceActive   bool
	BoxExtensionM    float64
	Velocity         velocity.Filter
	SizeRedactActive bool
	PartIIActive     bool
	PartIIFields     *redact.PartIIFields
	Stats            *Stats
}

// NewEngine builds the Engine from the privacy ConfigMap, a loaded shape
// file, and a partII field list. If the geofence filter is active, a
// missing or malformed world-bounds configuration is an ErrStartup.
func NewEngine(cfg config.ConfigMap, loaded *shapeloader.Result, partII *redact.PartIIFields) (*Engine, error) {
	e := &Engine{
		GeofenceActive:   cfg.Bool("privacy.filter.geofence"),
		BoxExtensionM:    cfg.Float("privacy.filter.geofence.extension", shapeloader.BoxExtensionM),
		SizeRedactActive: cfg.Bool("privacy.redaction.size"),
		PartIIActive:     cfg.Bool("privacy.redaction.partII"),
		PartIIFields:     partII,
		Stats:            &Stats{},
	}

	if cfg.Bool("privacy.filter.velocity") {
		e.Velocity = velocity.New(
			cfg.Float("privacy.filter.velocity.min", velocity.DefaultMinMPS),
			cfg.Float("privacy.filter.velocity.max", velocity.DefaultMaxMPS),
		)
	}

	if e.GeofenceActive {
		world, err := worldBounds(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStartup, err)
		}
		if loaded == nil {
			return nil, fmt.Errorf("%w: geofence filter active but no shape file was loaded", ErrStartup)
		}
		tree := quadindex.New(world, quadindex.DefaultConfig())
		for _, s := range loaded.Shapes {
			tree.Insert(shapeID(s.UID, false), s.Shape)
		}
		for _, s := range loaded.DeriveAreas(e.BoxExtensionM) {
			tree.Insert(shapeID(s.UID, true), s.Shape)
		}
		e.Quad = tree
	}

	return e, nil
}

// shapeID disambiguates raw shape uids (circles/grids) from edge-derived
// area uids, which are drawn from the same CSV id space and would
// otherwise collide inside the single quad index.
func shapeID(uid uint64, fromEdge bool) uint64 {
	if fromEdge {
		return uid | (1 << 63)
	}
	return uid
}

func worldBounds(cfg config.ConfigMap) (geo.Bounds, error) {
	keys := []string{
		"privacy.filter.geofence.sw.lat", "privacy.filter.geofence.sw.lon",
		"privacy.filter.geofence.ne.lat", "privacy.filter.geofence.ne.lon",
	}
	vals := make([]float64, 4)
	for i, k := range keys {
		raw, ok := cfg[k]
		if !ok {
			return geo.Bounds{}, fmt.Errorf("missing required config key %q", k)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return geo.Bounds{}, fmt.Errorf("config key %q: invalid float %q", k, raw)
		}
		vals[i] = v
	}
	sw := geo.NewPoint(vals[0], vals[1])
	ne := geo.NewPoint(vals[2], vals[3])
	if sw.Lat > ne.Lat || sw.Lon > ne.Lon {
		return geo.Bounds{}, fmt.Errorf("world bounds sw=%v must be southwest of ne=%v", sw, ne)
	}
	return geo.NewBounds(sw, ne), nil
}
