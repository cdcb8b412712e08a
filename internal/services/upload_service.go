// Package services contains the ingestion orchestration: the sequence that
// turns one uploaded vehicle image into a recognition result, an archived
// object, a published message, and a durable upload row.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"lpr-ingest-backend/internal/models"
	"lpr-ingest-backend/internal/staging"
)

// Analyzer obtains a recognition result for a staged image. Implementations
// never fail: a degraded result stands in for any transport or parse error.
type Analyzer interface {
	AnalyzeFile(ctx context.Context, imagePath, filename string) *models.RecognitionResult
}

// Archiver uploads a staged image to durable object storage and returns the
// canonical locator.
type Archiver interface {
	Archive(ctx context.Context, localPath, orgID, filename string) (string, error)
}

// Publisher sends the composite message to the message bus.
type Publisher interface {
	Publish(ctx context.Context, msg *models.UploadMessage) error
}

// RecordStore persists the upload row.
type RecordStore interface {
	InsertFileUpload(ctx context.Context, rec *models.FileUpload) error
}

// UploadService sequences staging, recognition, archival, publish, and
// record insert for one upload, and owns the staged file's lifecycle.
// All dependencies arrive pre-configured; safe for concurrent requests.
type UploadService struct {
	analyzer  Analyzer
	archiver  Archiver
	publisher Publisher
	store     RecordStore
	log       *zap.Logger
}

func NewUploadService(analyzer Analyzer, archiver Archiver, publisher Publisher, store RecordStore, log *zap.Logger) *UploadService {
	return &UploadService{
		analyzer:  analyzer,
		archiver:  archiver,
		publisher: publisher,
		store:     store,
		log:       log,
	}
}

// UploadVehicleImage runs the pipeline for one request.
//
// Per-step failure policy:
//   - empty/absent stream: returns a NOTFOUND response, no side effects
//   - recognition: never aborts, degraded result travels on
//   - archival: aborts, nothing is published or recorded
//   - publish: logged as data loss, pipeline continues
//   - record insert: aborts, surfaced to the caller
//
// The staged file is released exactly once on every exit path.
func (s *UploadService) UploadVehicleImage(ctx context.Context, reqCtx models.RequestContext, image io.Reader, filename string) (*models.UploadResponse, error) {
	staged, err := staging.Stage(image, filename)
	if err != nil {
		if errors.Is(err, staging.ErrEmptyStream) {
			s.log.Info("no uploaded file available", zap.String("org", reqCtx.OrgID))
			return &models.UploadResponse{
				Status:      models.UploadStatusNotFound,
				Description: "uploaded file not found",
			}, nil
		}
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer staged.Release(s.log)

	s.log.Info("staged uploaded file",
		zap.String("org", reqCtx.OrgID),
		zap.String("filename", filename),
		zap.String("staged", staged.Path),
		zap.Int64("size", staged.Size))

	// Recognition may come back degraded; the image and its bookkeeping
	// keep their value either way.
	lpr := s.analyzer.AnalyzeFile(ctx, staged.Path, staged.Filename)

	locator, err := s.archiver.Archive(ctx, staged.Path, reqCtx.OrgID, staged.Filename)
	if err != nil {
		return nil, fmt.Errorf("archival failed: %w", err)
	}

	// The composite message is assembled once; both sinks below must see
	// data derived from this same value.
	msg := &models.UploadMessage{
		Recognition: lpr,
		Storage:     &models.StorageData{StoragePath: locator},
		Request:     reqCtx,
	}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		// Data loss for downstream consumers, not a request failure.
		s.log.Error("publish failed, downstream consumers will not see this upload",
			zap.String("org", reqCtx.OrgID),
			zap.String("storage_path", locator),
			zap.Error(err))
	}

	if err := s.store.InsertFileUpload(ctx, buildRecord(msg, staged.Size)); err != nil {
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	return &models.UploadResponse{
		Status:      models.UploadStatusOK,
		Description: "Success",
		Recognition: msg.Recognition,
		Storage:     msg.Storage,
	}, nil
}

// buildRecord flattens the composite message into the durable row.
func buildRecord(msg *models.UploadMessage, fileSize int64) *models.FileUpload {
	rec := &models.FileUpload{
		OrgID:              msg.Request.OrgID,
		IdentityType:       msg.Request.IdentityType,
		UploaderID:         msg.Request.UploaderID,
		UploadedAPI:        msg.Request.UploadedAPI,
		StoragePath:        msg.Storage.StoragePath,
		RecognitionStatus:  msg.Recognition.Status,
		RecognitionMessage: msg.Recognition.Message,
		FileSize:           fileSize,
	}
	if data := msg.Recognition.Data; data != nil {
		rec.VehicleLicense = data.License
		rec.VehicleProvince = data.Province
		rec.VehicleBrand = data.VehBrand
		rec.VehicleClass = data.VehClass
		rec.VehicleColor = data.VehColor
		rec.QuotaLeft = data.Remaining
	}
	return rec
}
