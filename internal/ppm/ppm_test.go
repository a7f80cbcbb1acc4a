package ppm

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/usdot-its/ppm/internal/config"
	"github.com/usdot-its/ppm/internal/geo"
	"github.com/usdot-its/ppm/internal/redact"
	"github.com/usdot-its/ppm/internal/shapeloader"
)

var hex8 = regexp.MustCompile(`^[0-9a-f]{8}$`)

func bsmDoc(speed, lat, lon interface{}, id string) string {
	doc := `{"metadata":{"payloadType":"us.dot.its.jpo.ode.model.OdeBsmPayload","sanitized":false},"payload":{"data":{"coreData":{}}}}`
	if speed != nil {
		doc, _ = sjson.Set(doc, "payload.data.coreData.speed", speed)
	}
	if lat != nil {
		doc, _ = sjson.Set(doc, "payload.data.coreData.position.latitude", lat)
	}
	if lon != nil {
		doc, _ = sjson.Set(doc, "payload.data.coreData.position.longitude", lon)
	}
	if id != "" {
		doc, _ = sjson.Set(doc, "payload.data.coreData.id", id)
	}
	return doc
}

func geofencedEngine(t *testing.T) *Engine {
	t.Helper()
	loaded := &shapeloader.Result{
		Shapes: []shapeloader.GeofenceShape{
			{Shape: geo.NewCircle(geo.NewPoint(40.5, -83.5), 2000), UID: 1},
		},
	}
	e, err := NewEngine(config.ConfigMap{
		"privacy.filter.geofence":        "ON",
		"privacy.filter.geofence.sw.lat": "40",
		"privacy.filter.geofence.sw.lon": "-84",
		"privacy.filter.geofence.ne.lat": "41",
		"privacy.filter.geofence.ne.lon": "-83",
		"privacy.filter.velocity":        "ON",
		"privacy.redaction.id":           "ON",
	}, loaded, redact.NewPartIIFields())
	require.NoError(t, err)
	return e
}

func TestScenarioA_InsideGeofenceInRangeSpeedSuccess(t *testing.T) {
	e := geofencedEngine(t)
	h := NewHandler(e, redact.NewIDRedactor(config.ConfigMap{"privacy.redaction.id": "ON"}))

	doc := bsmDoc(10.0, 40.5, -83.5, "abc123")
	out, result := h.Process(doc)

	assert.Equal(t, Success, result)
	newID := gjson.Get(out, "payload.data.coreData.id").String()
	assert.NotEqual(t, "abc123", newID)
	assert.Regexp(t, hex8, newID)
}

func TestScenarioB_SpeedOutOfRange(t *testing.T) {
	e := geofencedEngine(t)
	h := NewHandler(e, redact.NewIDRedactor(config.ConfigMap{}))

	doc := bsmDoc(1.0, 40.5, -83.5, "abc123")
	_, result := h.Process(doc)
	assert.Equal(t, Speed, result)
}

func TestScenarioC_OutsideGeofence(t *testing.T) {
	e := geofencedEngine(t)
	h := NewHandler(e, redact.NewIDRedactor(config.ConfigMap{}))

	doc := bsmDoc(10.0, 0.0, 0.0, "abc123")
	_, result := h.Process(doc)
	assert.Equal(t, Geoposition, result)
}

func TestScenarioD_MissingSpeedIsMissing(t *testing.T) {
	e := geofencedEngine(t)
	h := NewHandler(e, redact.NewIDRedactor(config.ConfigMap{}))

	doc := bsmDoc(nil, 40.5, -83.5, "abc123")
	out, result := h.Process(doc)
	assert.Equal(t, Missing, result)
	assert.Equal(t, doc, out, "no decision pass should run, so the document is returned unchanged")
}

func TestScenarioE_PartIIFieldRemoval(t *testing.T) {
	e, err := NewEngine(config.ConfigMap{
		"privacy.redaction.partII": "ON",
	}, nil, redact.NewPartIIFields("pathHistory"))
	require.NoError(t, err)
	h := NewHandler(e, redact.NewIDRedactor(config.ConfigMap{}))

	doc := bsmDoc(10.0, 40.5, -83.5, "abc123")
	doc, _ = sjson.Set(doc, "payload.data.partII", []interface{}{
		map[string]interface{}{"pathHistory": map[string]interface{}{"a": 1}, "other": 1},
		map[string]interface{}{"x": map[string]interface{}{"pathHistory": 0}},
	})

	out, result := h.Process(doc)
	require.Equal(t, Success, result)
	assert.False(t, gjson.Get(out, "payload.data.partII.0.pathHistory").Exists())
	assert.False(t, gjson.Get(out, "payload.data.partII.1.x.pathHistory").Exists())
	assert.True(t, gjson.Get(out, "payload.data.partII.0.other").Exists())
}

func TestScenarioF_SizeRedaction(t *testing.T) {
	e, err := NewEngine(config.ConfigMap{
		"privacy.redaction.size": "ON",
	}, nil, redact.NewPartIIFields())
	require.NoError(t, err)
	h := NewHandler(e, redact.NewIDRedactor(config.ConfigMap{}))

	doc := bsmDoc(10.0, 40.5, -83.5, "abc123")
	doc, _ = sjson.Set(doc, "payload.data.coreData.size", map[string]interface{}{"length": 500, "width": 200})

	out, result := h.Process(doc)
	require.Equal(t, Success, result)
	assert.Equal(t, int64(0), gjson.Get(out, "payload.data.coreData.size.length").Int())
	assert.Equal(t, int64(0), gjson.Get(out, "payload.data.coreData.size.width").Int())
}

func TestSanitizedIsIdempotent(t *testing.T) {
	e, err := NewEngine(config.ConfigMap{}, nil, redact.NewPartIIFields())
	require.NoError(t, err)
	h := NewHandler(e, redact.NewIDRedactor(config.ConfigMap{}))

	doc := bsmDoc(10.0, 40.5, -83.5, "abc123")
	out1, _ := h.Process(doc)
	out2, _ := h.Process(out1)
	assert.True(t, gjson.Get(out1, "metadata.sanitized").Bool())
	assert.True(t, gjson.Get(out2, "metadata.sanitized").Bool())
}

func TestMalformedJSONIsParseError(t *testing.T) {
	e, err := NewEngine(config.ConfigMap{}, nil, redact.NewPartIIFields())
	require.NoError(t, err)
	h := NewHandler(e, redact.NewIDRedactor(config.ConfigMap{}))

	out, result := h.Process(`{not valid json`)
	assert.Equal(t, Parse, result)
	assert.Equal(t, `{not valid json`, out)
}

func TestWrongTypeIsOtherError(t *testing.T) {
	e, err := NewEngine(config.ConfigMap{}, nil, redact.NewPartIIFields())
	require.NoError(t, err)
	h := NewHandler(e, redact.NewIDRedactor(config.ConfigMap{}))

	doc := `{"metadata":{"payloadType":"us.dot.its.jpo.ode.model.OdeBsmPayload","sanitized":false},"payload":{"data":{"coreData":{"speed":"fast","position":{"latitude":40.5,"longitude":-83.5},"id":"abc"}}}}`
	_, result := h.Process(doc)
	assert.Equal(t, Other, result)
}

func TestEngineStartupRequiresWorldBoundsWhenGeofenceActive(t *testing.T) {
	_, err := NewEngine(config.ConfigMap{"privacy.filter.geofence": "ON"}, nil, redact.NewPartIIFields())
	assert.ErrorIs(t, err, ErrStartup)
}

func TestTIMPayloadUsesLocationDataPaths(t *testing.T) {
	e := geofencedEngine(t)
	h := NewHandler(e, redact.NewIDRedactor(config.ConfigMap{}))

	doc := `{"metadata":{"payloadType":"us.dot.its.jpo.ode.model.OdeTimPayload","sanitized":false,"receivedMessageDetails":{"locationData":{"latitude":40.5,"longitude":-83.5,"speed":10.0}}}}`
	_, result := h.Process(doc)
	assert.Equal(t, Success, result)
}
