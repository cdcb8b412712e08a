package models

import (
	"time"

	"github.com/google/uuid"
)

// FileUpload is the durable row written for every completed pipeline run,
// including runs where recognition failed but archival succeeded.
type FileUpload struct {
	ID                 uuid.UUID
	OrgID              string
	IdentityType       string
	UploaderID         string
	UploadedAPI        string
	StoragePath        string
	RecognitionStatus  string
	RecognitionMessage string
	VehicleLicense     string
	VehicleProvince    string
	VehicleBrand       string
	VehicleClass       string
	VehicleColor       string
	QuotaLeft          int
	FileSize           int64
	CreatedAt          time.Time
}

// UploadQuery holds the filter criteria accepted by the list/count endpoints.
// Zero values mean "no filter".
type UploadQuery struct {
	License string
	Status  string
	From    time.Time
	To      time.Time
	Offset  int
	Limit   int
}
