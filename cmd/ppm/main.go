// Command ppm is the privacy protection module's pipeline driver: it
// loads configuration and the geofence map, builds the engine, and runs
// a pool of worker goroutines that consume inbound BSM/TIM telemetry,
// run it through the handler, and publish accepted messages onward.
// Structurally grounded on the teacher's cmd/engine/main.go wiring
// order (load config -> build core services -> start HTTP -> start
// workers -> wait for shutdown signal).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/usdot-its/ppm/internal/adminapi"
	"github.com/usdot-its/ppm/internal/audit"
	"github.com/usdot-its/ppm/internal/bus"
	"github.com/usdot-its/ppm/internal/config"
	"github.com/usdot-its/ppm/internal/geo"
	"github.com/usdot-its/ppm/internal/highway"
	"github.com/usdot-its/ppm/internal/ppm"
	"github.com/usdot-its/ppm/internal/ppmlog"
	"github.com/usdot-its/ppm/internal/redact"
	"github.com/usdot-its/ppm/internal/shapeloader"
)

const statsLogInterval = time.Minute

type kmlShape interface{ KML() string }

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("ppm: loading settings: %v", err)
	}

	logger, err := ppmlog.New(settings.LogLevel)
	if err != nil {
		log.Fatalf("ppm: building logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	policy := config.FromEnvironment(os.Getenv)
	partIIFields := redact.LoadPartIIFields(redact.DefaultEnvVar, os.Getenv)

	var loaded *shapeloader.Result
	if settings.MapFilePath != "" {
		loaded, err = loadShapeFile(settings.MapFilePath)
		if err != nil {
			logger.Fatalw("loading geofence map file", "path", settings.MapFilePath, "error", err)
		}
		for _, lerr := range loaded.Errors {
			logger.Warnw("geofence map file line skipped", "error", lerr.Error())
		}
	}

	engine, err := ppm.NewEngine(policy, loaded, partIIFields)
	if err != nil {
		logger.Fatalw("engine startup", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditStore, err := audit.Connect(ctx, settings.PostgresDSN)
	if err != nil {
		logger.Fatalw("connecting audit store", "error", err)
	}
	defer auditStore.Close()

	hub := adminapi.NewHub(logger)
	go hub.Run()

	adminHandler := &adminapi.Handler{
		Engine:   engine,
		Settings: settings,
		Hub:      hub,
		Shapes:   buildGeofenceKML(loaded, engine.BoxExtensionM),
		Log:      logger,
	}
	router := adminapi.NewRouter(adminHandler)
	go func() {
		addr := fmt.Sprintf(":%d", settings.HTTPPort)
		if err := router.Run(addr); err != nil {
			logger.Errorw("admin http server stopped", "error", err)
		}
	}()

	producer, err := bus.NewKafkaProducer(settings.KafkaBrokers)
	if err != nil {
		logger.Fatalw("connecting kafka producer", "error", err)
	}
	defer producer.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infow("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	go logStatsPeriodically(ctx, engine, logger)

	var wg sync.WaitGroup
	for i := 0; i < settings.WorkerCount; i++ {
		wg.Add(1)
		go runWorker(ctx, &wg, i, settings, engine, producer, auditStore, hub, logger)
	}
	wg.Wait()
	logger.Infow("all workers stopped, exiting")
}

// logStatsPeriodically reports the running result-code counts and
// blacklisted-way-edge count on a fixed interval, mirroring the
// reference implementation's end-of-run summary log but emitted
// continuously since this process runs indefinitely.
func logStatsPeriodically(ctx context.Context, engine *ppm.Engine, logger *ppmlog.Logger) {
	ticker := time.NewTicker(statsLogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Infow("periodic stats",
				"results", engine.Stats.Snapshot(),
				"total", engine.Stats.Total(),
				"blacklistedWayEdges", highway.BlacklistHits(),
			)
		}
	}
}

// runWorker owns one consumer-group member and one handler with its own
// id redactor, per spec §5: each worker processes one message at a
// time, checking the shared cancellation context between messages and
// finishing any in-flight message before exiting.
func runWorker(ctx context.Context, wg *sync.WaitGroup, id int, settings config.Settings, engine *ppm.Engine, producer bus.Producer, auditStore *audit.Store, hub *adminapi.Hub, logger *ppmlog.Logger) {
	defer wg.Done()

	idRedactor := redact.NewIDRedactor(config.FromEnvironment(os.Getenv))
	handler := ppm.NewHandler(engine, idRedactor)

	consumer, err := bus.NewKafkaConsumer(settings.KafkaBrokers, settings.ConsumerGroup, settings.ConsumerTopic, logger)
	if err != nil {
		logger.Errorw("worker failed to start consumer", "worker", id, "error", err)
		return
	}
	defer consumer.Close()

	pipeline := &pipelineHandler{
		handler:       handler,
		producer:      producer,
		producerTopic: settings.ProducerTopic,
		log:           logger,
		hub:           hub,
		audit:         auditStore,
	}

	if err := consumer.Start(ctx, pipeline); err != nil {
		logger.Errorw("worker consumer stopped", "worker", id, "error", err)
		return
	}

	<-ctx.Done()
}

func loadShapeFile(path string) (*shapeloader.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return shapeloader.Load(f)
}

// buildGeofenceKML renders every loaded shape (raw circles/grids plus
// edge-derived areas) as a KML fragment for the /geofence.kml admin
// endpoint. Grid cells do not implement kmlShape and are skipped.
func buildGeofenceKML(loaded *shapeloader.Result, extensionM float64) []adminapi.GeofenceKML {
	if loaded == nil {
		return nil
	}
	var out []adminapi.GeofenceKML
	appendShape := func(uid uint64, s geo.Shape) {
		if k, ok := s.(kmlShape); ok {
			out = append(out, adminapi.GeofenceKML{UID: uid, KML: k.KML()})
		}
	}
	for _, s := range loaded.Shapes {
		appendShape(s.UID, s.Shape)
	}
	for _, s := range loaded.DeriveAreas(extensionM) {
		appendShape(s.UID, s.Shape)
	}
	return out
}
