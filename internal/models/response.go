package models

import "time"

// Upload response status values.
const (
	UploadStatusOK       = "OK"
	UploadStatusNotFound = "NOTFOUND"
	UploadStatusError    = "ERROR"
)

type UploadResponse struct {
	Status      string             `json:"status"`
	Description string             `json:"description"`
	Recognition *RecognitionResult `json:"recognition,omitempty"`
	Storage     *StorageData       `json:"storage,omitempty"`
}

type UploadListResponse struct {
	Uploads []UploadSummary `json:"uploads"`
}

type UploadSummary struct {
	ID                 string    `json:"id"`
	OrgID              string    `json:"org_id"`
	UploaderID         string    `json:"uploader_id"`
	StoragePath        string    `json:"storage_path"`
	RecognitionStatus  string    `json:"recognition_status"`
	RecognitionMessage string    `json:"recognition_message,omitempty"`
	VehicleLicense     string    `json:"vehicle_license,omitempty"`
	VehicleProvince    string    `json:"vehicle_province,omitempty"`
	VehicleBrand       string    `json:"vehicle_brand,omitempty"`
	VehicleClass       string    `json:"vehicle_class,omitempty"`
	VehicleColor       string    `json:"vehicle_color,omitempty"`
	FileSize           int64     `json:"file_size"`
	CreatedAt          time.Time `json:"created_at"`
}

type UploadCountResponse struct {
	Count int `json:"count"`
}

type SignedURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in_seconds"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
