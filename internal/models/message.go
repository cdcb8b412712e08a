package models

// StorageData carries the canonical locator of an archived image,
// e.g. "s3://vehicle-images/org1/2024010110/car.jpg".
type StorageData struct {
	StoragePath string `json:"storage_path"`
}

// RequestContext is the snapshot of caller identity taken by the upload
// handler. It is immutable for the duration of one pipeline run.
type RequestContext struct {
	OrgID        string            `json:"org_id"`
	IdentityType string            `json:"identity_type"`
	UploaderID   string            `json:"uploader_id"`
	UploadedAPI  string            `json:"uploaded_api"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// UploadMessage is the composite payload assembled once per pipeline run and
// handed to both the Kafka producer and the record store. Both sinks must see
// data derived from the same staged image; the orchestrator builds this value
// exactly once to guarantee that.
type UploadMessage struct {
	Recognition *RecognitionResult `json:"recognition"`
	Storage     *StorageData       `json:"storage"`
	Request     RequestContext     `json:"request"`
}
