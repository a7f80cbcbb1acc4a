package ppm

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/usdot-its/ppm/internal/geo"
	"github.com/usdot-its/ppm/internal/redact"
	"github.com/usdot-its/ppm/pkg/models"
)

// Handler processes one message at a time against a shared Engine, with
// its own id redactor — the per-worker state spec §5 requires. A
// Handler is not safe for concurrent use; the pipeline driver gives
// each worker its own.
type Handler struct {
	engine *Engine
	id     *redact.IDRedactor
}

// NewHandler builds a Handler bound to engine, with its own id redactor.
func NewHandler(engine *Engine, id *redact.IDRedactor) *Handler {
	return &Handler{engine: engine, id: id}
}

// fields is the set of JSON paths the handler needs for one payload
// type, resolved once per Process call by payloadPaths.
type fields struct {
	speed, lat, lon, id, size, partII string
	hasID, hasSize, hasPartII         bool
}

func payloadPaths(payloadType string) fields {
	switch payloadType {
	case models.PayloadTypeTIM:
		return fields{speed: models.PathTIMSpeed, lat: models.PathTIMLatitude, lon: models.PathTIMLongitude}
	default:
		return fields{
			speed: models.PathBSMSpeed, lat: models.PathBSMLatitude, lon: models.PathBSMLongitude,
			id: models.PathBSMID, size: models.PathBSMSize, partII: models.PathBSMPartII,
			hasID: true, hasSize: true, hasPartII: true,
		}
	}
}

// Process runs the full parse -> validate -> decide -> redact ->
// serialize pipeline of spec §4.3 over one JSON message, returning the
// (possibly rewritten) document and the diagnostic result code. The
// rewritten string is always whatever was produced up to the point of
// failure; for Parse, Missing, and an Other found while validating the
// input, the original input is returned unchanged, since no decision
// pass ran.
func (h *Handler) Process(doc string) (string, Result) {
	if !gjson.Valid(doc) {
		h.engine.Stats.Record(Parse)
		return doc, Parse
	}

	payloadType := gjson.Get(doc, models.PathPayloadType)
	if !payloadType.Exists() {
		h.engine.Stats.Record(Missing)
		return doc, Missing
	}
	if payloadType.Type != gjson.String {
		h.engine.Stats.Record(Other)
		return doc, Other
	}

	sanitized := gjson.Get(doc, models.PathSanitized)
	if !sanitized.Exists() {
		h.engine.Stats.Record(Missing)
		return doc, Missing
	}
	if sanitized.Type != gjson.True && sanitized.Type != gjson.False {
		h.engine.Stats.Record(Other)
		return doc, Other
	}

	f := payloadPaths(payloadType.String())

	speedVal := gjson.Get(doc, f.speed)
	if !speedVal.Exists() {
		h.engine.Stats.Record(Missing)
		return doc, Missing
	}
	if speedVal.Type != gjson.Number {
		h.engine.Stats.Record(Other)
		return doc, Other
	}

	latVal := gjson.Get(doc, f.lat)
	lonVal := gjson.Get(doc, f.lon)
	if !latVal.Exists() || !lonVal.Exists() {
		h.engine.Stats.Record(Missing)
		return doc, Missing
	}
	if latVal.Type != gjson.Number || lonVal.Type != gjson.Number {
		h.engine.Stats.Record(Other)
		return doc, Other
	}

	var idVal gjson.Result
	if f.hasID {
		idVal = gjson.Get(doc, f.id)
		if !idVal.Exists() {
			h.engine.Stats.Record(Missing)
			return doc, Missing
		}
		if idVal.Type != gjson.String {
			h.engine.Stats.Record(Other)
			return doc, Other
		}
	}

	// Decision order, spec §4.3:
	result := Success

	// 1. Set metadata.sanitized = true unconditionally. Idempotent: doing
	// this again on an already-sanitized document is a no-op observably.
	var err error
	doc, err = sjson.Set(doc, models.PathSanitized, true)
	if err != nil {
		h.engine.Stats.Record(Other)
		return doc, Other
	}

	// 2. Velocity filter.
	speed := speedVal.Float()
	if h.engine.Velocity.Suppress(speed) {
		result = Speed
	}

	// 3. Geofence filter.
	point := geo.NewPoint(latVal.Float(), lonVal.Float())
	if h.engine.GeofenceActive && h.engine.Quad != nil {
		if !h.engine.Quad.AnyContains(point) {
			result = Geoposition
		}
	}

	// 4. Id redaction.
	if f.hasID && h.id.ShouldRedact(idVal.String()) {
		doc, err = sjson.Set(doc, f.id, h.id.RandomID())
		if err != nil {
			h.engine.Stats.Record(Other)
			return doc, Other
		}
	}

	// 5. Size redaction.
	if f.hasSize && h.engine.SizeRedactActive {
		doc, err = redact.ZeroSize(doc, f.size)
		if err != nil {
			h.engine.Stats.Record(Other)
			return doc, Other
		}
	}

	// 6. PartII field removal.
	if f.hasPartII && h.engine.PartIIActive && h.engine.PartIIFields != nil {
		doc, err = h.engine.PartIIFields.Strip(doc, f.partII)
		if err != nil {
			h.engine.Stats.Record(Other)
			return doc, Other
		}
	}

	// 7. Serialize — doc is already the live rewritten string at every
	// step above, so there's nothing further to do here.
	h.engine.Stats.Record(result)
	return doc, result
}
