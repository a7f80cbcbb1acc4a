// Package config defines the ConfigMap the core privacy engine reads its
// policy from (spec §6), plus the ambient service Settings struct that
// cmd/ppm assembles from the environment — Kafka brokers, HTTP port, log
// level, and the optional Postgres DSN. The two are deliberately
// separate: ConfigMap is privacy policy (mutable surface, unknown keys
// ignored); Settings is infrastructure wiring (strict, validated once at
// startup).
package config

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// ConfigMap is the key/value configuration surface described in spec
// §6. Unknown keys are ignored by every reader.
type ConfigMap map[string]string

// Bool reads key as ON/OFF (case-insensitive), defaulting to false for
// any other value including an absent key.
func (c ConfigMap) Bool(key string) bool {
	return strings.EqualFold(c[key], "ON")
}

// String returns the raw value for key, or def if absent.
func (c ConfigMap) String(key, def string) string {
	if v, ok := c[key]; ok {
		return v
	}
	return def
}

// Float returns key parsed as a float64, or def if absent or malformed.
func (c ConfigMap) Float(key string, def float64) float64 {
	v, ok := c[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// CommaList splits a comma-separated value into trimmed, non-empty
// elements.
func (c ConfigMap) CommaList(key string) []string {
	raw, ok := c[key]
	if !ok || raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Settings is the ambient service configuration assembled from the
// environment by cmd/ppm via envconfig, distinct from the privacy-policy
// ConfigMap above.
type Settings struct {
	KafkaBrokers    []string `envconfig:"KAFKA_BROKERS" required:"true" validate:"min=1,dive,required"`
	ConsumerTopic   string   `envconfig:"CONSUMER_TOPIC" required:"true" validate:"required"`
	ProducerTopic   string   `envconfig:"PRODUCER_TOPIC" required:"true" validate:"required"`
	ConsumerGroup   string   `envconfig:"CONSUMER_GROUP" default:"ppm" validate:"required"`
	HTTPPort        int      `envconfig:"HTTP_PORT" default:"8080" validate:"gt=0,lt=65536"`
	LogLevel        string   `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	MapFilePath     string   `envconfig:"GEOFENCE_MAPFILE" validate:"omitempty"`
	PostgresDSN     string   `envconfig:"AUDIT_POSTGRES_DSN" validate:"omitempty"`
	WorkerCount     int      `envconfig:"WORKER_COUNT" default:"4" validate:"gt=0"`
}

// LoadSettings reads Settings from the process environment (prefix PPM_)
// and validates the result, returning the envconfig or validator error
// as is, which callers should treat as a spec §7 kind-3 startup configuration error.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process("ppm", &s); err != nil {
		return s, err
	}
	if err := validator.New().Struct(s); err != nil {
		return s, err
	}
	return s, nil
}

// FromEnvironment assembles a privacy-policy ConfigMap from a fixed set
// of PPM_POLICY_* environment variables, following the teacher's
// requireEnv/getEnvOrDefault pattern for the keys spec §6 defines.
// Config-file loading itself stays out of scope, per spec §1.
func FromEnvironment(getenv func(string) string) ConfigMap {
	cm := ConfigMap{}
	set := func(key, env string) {
		if v := getenv(env); v != "" {
			cm[key] = v
		}
	}
	set("privacy.filter.velocity", "PPM_POLICY_VELOCITY")
	set("privacy.filter.velocity.min", "PPM_POLICY_VELOCITY_MIN")
	set("privacy.filter.velocity.max", "PPM_POLICY_VELOCITY_MAX")
	set("privacy.filter.geofence", "PPM_POLICY_GEOFENCE")
	set("privacy.filter.geofence.extension", "PPM_POLICY_GEOFENCE_EXTENSION")
	set("privacy.filter.geofence.mapfile", "PPM_POLICY_GEOFENCE_MAPFILE")
	set("privacy.filter.geofence.sw.lat", "PPM_POLICY_GEOFENCE_SW_LAT")
	set("privacy.filter.geofence.sw.lon", "PPM_POLICY_GEOFENCE_SW_LON")
	set("privacy.filter.geofence.ne.lat", "PPM_POLICY_GEOFENCE_NE_LAT")
	set("privacy.filter.geofence.ne.lon", "PPM_POLICY_GEOFENCE_NE_LON")
	set("privacy.redaction.id", "PPM_POLICY_REDACT_ID")
	set("privacy.redaction.id.inclusions", "PPM_POLICY_REDACT_ID_INCLUSIONS")
	set("privacy.redaction.id.included", "PPM_POLICY_REDACT_ID_INCLUDED")
	set("privacy.redaction.size", "PPM_POLICY_REDACT_SIZE")
	set("privacy.redaction.partII", "PPM_POLICY_REDACT_PARTII")
	set("privacy.topic.consumer", "PPM_POLICY_TOPIC_CONSUMER")
	set("privacy.topic.producer", "PPM_POLICY_TOPIC_PRODUCER")
	set("privacy.kafka.partition", "PPM_POLICY_KAFKA_PARTITION")
	return cm
}
