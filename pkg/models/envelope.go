// Package models holds the wire-level JSON shapes the engine, the bus
// layer, and the admin API share: the BSM/TIM envelope path constants
// and the decision record emitted for audit/logging.
package models

// Payload type strings carried in metadata.payloadType, dispatching the
// handler to the BSM or TIM field-path set (spec §4.3, SPEC_FULL §4.1).
const (
	PayloadTypeBSM = "us.dot.its.jpo.ode.model.OdeBsmPayload"
	PayloadTypeTIM = "us.dot.its.jpo.ode.model.OdeTimPayload"
)

// JSON paths into a BSM envelope.
const (
	PathPayloadType  = "metadata.payloadType"
	PathSanitized    = "metadata.sanitized"
	PathBSMSpeed     = "payload.data.coreData.speed"
	PathBSMLatitude  = "payload.data.coreData.position.latitude"
	PathBSMLongitude = "payload.data.coreData.position.longitude"
	PathBSMID        = "payload.data.coreData.id"
	PathBSMSize      = "payload.data.coreData.size"
	PathBSMPartII    = "payload.data.partII"
)

// JSON paths into a TIM envelope. TIM carries no identifier or partII
// substructure in the distilled model, so id/size/partII redaction are
// no-ops for TIM messages — only the velocity and geofence filters
// apply.
const (
	PathTIMLatitude = "metadata.receivedMessageDetails.locationData.latitude"
	PathTIMLongitude = "metadata.receivedMessageDetails.locationData.longitude"
	PathTIMSpeed    = "metadata.receivedMessageDetails.locationData.speed"
)

// Decision is the per-message audit/logging record: the derived inputs
// and outcome of one handler.Process call, never the message body
// itself (see internal/ppmlog's no-payload-logging policy).
type Decision struct {
	TraceID   string  `json:"traceId"`
	Result    string  `json:"result"`
	Topic     string  `json:"topic"`
	Partition int32   `json:"partition"`
	Speed     float64 `json:"speed,omitempty"`
	LatBucket float64 `json:"latBucket,omitempty"`
	LonBucket float64 `json:"lonBucket,omitempty"`
	HadID     bool    `json:"hadId"`
	TimestampUnix int64 `json:"timestampUnix"`
}
