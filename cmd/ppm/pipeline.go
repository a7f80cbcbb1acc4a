package main

import (
	"context"
	"encoding/json"
	"math"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/usdot-its/ppm/internal/adminapi"
	"github.com/usdot-its/ppm/internal/audit"
	"github.com/usdot-its/ppm/internal/bus"
	"github.com/usdot-its/ppm/internal/ppm"
	"github.com/usdot-its/ppm/internal/ppmlog"
	"github.com/usdot-its/ppm/pkg/models"
)

// pipelineHandler is the Go equivalent of spec component 9, the
// pipeline driver: consume -> handler.Process -> publish accepted
// messages -> log/audit statistics. One instance per worker goroutine,
// wrapping that worker's own *ppm.Handler (its own id redactor and
// scratch state, per spec §5).
type pipelineHandler struct {
	handler       *ppm.Handler
	producer      bus.Producer
	producerTopic string
	log           *ppmlog.Logger
	hub           *adminapi.Hub
	audit         *audit.Store
}

// HandleMessage implements bus.MessageHandler.
func (p *pipelineHandler) HandleMessage(ctx context.Context, msg *bus.Message) error {
	traceID := uuid.NewString()

	out, result := p.handler.Process(string(msg.Value))

	speed := decisionSpeed(out)
	lat, lon := decisionLatLon(out)
	hadID := decisionHasID(out)

	p.log.Decision(traceID, msg.Topic, result.String(), speed, lat, lon, hadID)

	if p.audit != nil {
		if err := p.audit.RecordResult(ctx, msg.Topic, msg.Partition, result.String()); err != nil {
			p.log.Warnw("audit persistence failed", "error", err, "traceId", traceID)
		}
	}

	if p.hub != nil {
		if feedMsg, err := json.Marshal(models.Decision{
			TraceID: traceID, Result: result.String(), Topic: msg.Topic, Partition: msg.Partition,
			Speed: speed, LatBucket: math.Round(lat*100) / 100, LonBucket: math.Round(lon*100) / 100, HadID: hadID,
		}); err == nil {
			p.hub.Broadcast(feedMsg)
		}
	}

	if result != ppm.Success {
		return nil
	}

	return p.producer.Publish(ctx, p.producerTopic, msg.Key, []byte(out))
}

func decisionSpeed(doc string) float64 {
	return firstExistingFloat(doc, models.PathBSMSpeed, models.PathTIMSpeed)
}

func decisionLatLon(doc string) (float64, float64) {
	return firstExistingFloat(doc, models.PathBSMLatitude, models.PathTIMLatitude),
		firstExistingFloat(doc, models.PathBSMLongitude, models.PathTIMLongitude)
}

func decisionHasID(doc string) bool {
	return gjsonExists(doc, models.PathBSMID)
}

// firstExistingFloat returns the numeric value at the first of paths
// that exists in doc, or 0 if none do (TIM and BSM documents keep speed
// and position under different paths).
func firstExistingFloat(doc string, paths ...string) float64 {
	for _, p := range paths {
		if v := gjson.Get(doc, p); v.Exists() {
			return v.Float()
		}
	}
	return 0
}

func gjsonExists(doc, path string) bool {
	return gjson.Get(doc, path).Exists()
}
