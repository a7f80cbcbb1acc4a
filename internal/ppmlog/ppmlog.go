// Package ppmlog is a thin zap wrapper every component takes by
// injection instead of reaching for a package-level global. Decision
// logging carries only derived fields (result, speed, coordinate
// buckets, id presence) — never the message body — so the engine that
// exists to protect vehicle privacy doesn't itself become a retention
// risk.
package ppmlog

import (
	"math"

	"go.uber.org/zap"
)

// Logger wraps a *zap.SugaredLogger with the decision-record helper the
// pipeline driver and handler use on every message.
type Logger struct {
	*zap.SugaredLogger
}

// New builds a production zap logger at the given level ("debug",
// "info", "warn", "error"); an unrecognized level falls back to info.
func New(level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	base, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: base.Sugar()}, nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Decision logs one message's outcome as structured fields. Coordinates
// are bucketed to ~1.1km (two decimal degrees) so the log itself cannot
// be used to reconstruct a precise trajectory.
func (l *Logger) Decision(traceID, topic, result string, speed, lat, lon float64, hadID bool) {
	l.Infow("decision",
		"traceId", traceID,
		"topic", topic,
		"result", result,
		"speed", speed,
		"latBucket", bucket(lat),
		"lonBucket", bucket(lon),
		"hadId", hadID,
	)
}

func bucket(v float64) float64 {
	return math.Round(v*100) / 100
}
