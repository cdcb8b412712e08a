package models

// Recognition status values. The external service reports SUCCESS/FAILED in
// its response body; StatusError marks results synthesized locally when the
// service could not be reached or its response could not be parsed.
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// VehicleData holds the vehicle attributes extracted by the recognition
// service. Field names mirror the service's response schema; encoding/json
// matches them case-insensitively.
type VehicleData struct {
	License   string `json:"license"`
	Province  string `json:"province"`
	VehBrand  string `json:"vehBrand"`
	VehClass  string `json:"vehClass"`
	VehColor  string `json:"vehColor"`
	Remaining int    `json:"remaining"`
}

// RecognitionResult is produced exactly once per staged image. A degraded
// result (Status = ERROR, diagnostic in Message) is still a valid result:
// the pipeline archives and records the upload regardless.
type RecognitionResult struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    *VehicleData `json:"data,omitempty"`
}

// Failed reports whether this result encodes a recognition failure.
func (r *RecognitionResult) Failed() bool {
	return r == nil || r.Status != StatusSuccess
}
