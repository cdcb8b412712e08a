package services_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"lpr-ingest-backend/internal/models"
	"lpr-ingest-backend/internal/services"
)

type fakeAnalyzer struct {
	result *models.RecognitionResult
	calls  int
}

func (f *fakeAnalyzer) AnalyzeFile(ctx context.Context, imagePath, filename string) *models.RecognitionResult {
	f.calls++
	return f.result
}

type fakeArchiver struct {
	locator   string
	err       error
	calls     int
	lastLocal string
}

func (f *fakeArchiver) Archive(ctx context.Context, localPath, orgID, filename string) (string, error) {
	f.calls++
	f.lastLocal = localPath
	if f.err != nil {
		return "", f.err
	}
	return f.locator, nil
}

type fakePublisher struct {
	err     error
	calls   int
	lastMsg *models.UploadMessage
}

func (f *fakePublisher) Publish(ctx context.Context, msg *models.UploadMessage) error {
	f.calls++
	f.lastMsg = msg
	return f.err
}

type fakeStore struct {
	err     error
	calls   int
	lastRec *models.FileUpload
}

func (f *fakeStore) InsertFileUpload(ctx context.Context, rec *models.FileUpload) error {
	f.calls++
	f.lastRec = rec
	return f.err
}

func successResult() *models.RecognitionResult {
	return &models.RecognitionResult{
		Status:  models.StatusSuccess,
		Message: "ok",
		Data: &models.VehicleData{
			License:   "ABC-123",
			Province:  "Bangkok",
			VehBrand:  "Toyota",
			VehClass:  "sedan",
			VehColor:  "white",
			Remaining: 10,
		},
	}
}

func testRequestContext() models.RequestContext {
	return models.RequestContext{
		OrgID:        "org1",
		IdentityType: "user",
		UploaderID:   "user-123",
		UploadedAPI:  "/api/v1/org/:org_id/action/UploadVehicleImage",
	}
}

func newService(a *fakeAnalyzer, ar *fakeArchiver, p *fakePublisher, s *fakeStore) *services.UploadService {
	return services.NewUploadService(a, ar, p, s, zap.NewNop())
}

func TestUpload_Success(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	archiver := &fakeArchiver{locator: "s3://bucket/org1/2024010110/car.jpg"}
	publisher := &fakePublisher{}
	store := &fakeStore{}
	svc := newService(analyzer, archiver, publisher, store)

	resp, err := svc.UploadVehicleImage(context.Background(), testRequestContext(),
		bytes.NewReader([]byte("fake image")), "car.jpg")
	require.NoError(t, err)

	assert.Equal(t, models.UploadStatusOK, resp.Status)
	assert.Equal(t, "s3://bucket/org1/2024010110/car.jpg", resp.Storage.StoragePath)
	assert.Equal(t, models.StatusSuccess, resp.Recognition.Status)

	require.Equal(t, 1, store.calls)
	assert.Equal(t, "ABC-123", store.lastRec.VehicleLicense)
	assert.Equal(t, "org1", store.lastRec.OrgID)
	assert.Equal(t, "user-123", store.lastRec.UploaderID)
	assert.Equal(t, "s3://bucket/org1/2024010110/car.jpg", store.lastRec.StoragePath)
	assert.Equal(t, int64(len("fake image")), store.lastRec.FileSize)

	require.Equal(t, 1, publisher.calls)
	// Both sinks must see data from the same composite message.
	assert.Equal(t, publisher.lastMsg.Storage.StoragePath, store.lastRec.StoragePath)
	assert.Equal(t, publisher.lastMsg.Recognition.Status, store.lastRec.RecognitionStatus)
}

func TestUpload_NoImage(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	archiver := &fakeArchiver{locator: "s3://bucket/x"}
	publisher := &fakePublisher{}
	store := &fakeStore{}
	svc := newService(analyzer, archiver, publisher, store)

	resp, err := svc.UploadVehicleImage(context.Background(), testRequestContext(), nil, "")
	require.NoError(t, err)

	assert.Equal(t, models.UploadStatusNotFound, resp.Status)
	assert.Zero(t, analyzer.calls)
	assert.Zero(t, archiver.calls)
	assert.Zero(t, publisher.calls)
	assert.Zero(t, store.calls)
}

func TestUpload_EmptyStream(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	archiver := &fakeArchiver{locator: "s3://bucket/x"}
	publisher := &fakePublisher{}
	store := &fakeStore{}
	svc := newService(analyzer, archiver, publisher, store)

	resp, err := svc.UploadVehicleImage(context.Background(), testRequestContext(),
		bytes.NewReader(nil), "car.jpg")
	require.NoError(t, err)

	assert.Equal(t, models.UploadStatusNotFound, resp.Status)
	assert.Zero(t, archiver.calls)
	assert.Zero(t, store.calls)
}

func TestUpload_RecognitionDegraded(t *testing.T) {
	analyzer := &fakeAnalyzer{result: &models.RecognitionResult{
		Status:  models.StatusError,
		Message: "recognition endpoint timed out",
	}}
	archiver := &fakeArchiver{locator: "s3://bucket/org1/2024010110/car.jpg"}
	publisher := &fakePublisher{}
	store := &fakeStore{}
	svc := newService(analyzer, archiver, publisher, store)

	resp, err := svc.UploadVehicleImage(context.Background(), testRequestContext(),
		bytes.NewReader([]byte("fake image")), "car.jpg")
	require.NoError(t, err)

	// Degraded recognition still yields a successful upload.
	assert.Equal(t, models.UploadStatusOK, resp.Status)
	assert.Equal(t, models.StatusError, resp.Recognition.Status)
	assert.NotEmpty(t, resp.Recognition.Message)
	assert.Equal(t, "s3://bucket/org1/2024010110/car.jpg", resp.Storage.StoragePath)

	require.Equal(t, 1, store.calls)
	assert.Equal(t, models.StatusError, store.lastRec.RecognitionStatus)
	assert.Empty(t, store.lastRec.VehicleLicense)
}

func TestUpload_ArchivalFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	archiver := &fakeArchiver{err: errors.New("permission denied")}
	publisher := &fakePublisher{}
	store := &fakeStore{}
	svc := newService(analyzer, archiver, publisher, store)

	resp, err := svc.UploadVehicleImage(context.Background(), testRequestContext(),
		bytes.NewReader([]byte("fake image")), "car.jpg")
	require.Error(t, err)
	assert.Nil(t, resp)

	// Nothing downstream of archival may run.
	assert.Zero(t, publisher.calls)
	assert.Zero(t, store.calls)

	// The staged file is still removed.
	_, statErr := os.Stat(archiver.lastLocal)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUpload_PublishFailureDoesNotFailRequest(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	archiver := &fakeArchiver{locator: "s3://bucket/org1/2024010110/car.jpg"}
	publisher := &fakePublisher{err: errors.New("broker unreachable")}
	store := &fakeStore{}
	svc := newService(analyzer, archiver, publisher, store)

	resp, err := svc.UploadVehicleImage(context.Background(), testRequestContext(),
		bytes.NewReader([]byte("fake image")), "car.jpg")
	require.NoError(t, err)

	assert.Equal(t, models.UploadStatusOK, resp.Status)
	// Insert is still attempted after the failed publish.
	assert.Equal(t, 1, store.calls)
}

func TestUpload_PersistenceFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	archiver := &fakeArchiver{locator: "s3://bucket/org1/2024010110/car.jpg"}
	publisher := &fakePublisher{}
	store := &fakeStore{err: errors.New("connection lost")}
	svc := newService(analyzer, archiver, publisher, store)

	resp, err := svc.UploadVehicleImage(context.Background(), testRequestContext(),
		bytes.NewReader([]byte("fake image")), "car.jpg")
	require.Error(t, err)
	assert.Nil(t, resp)

	// The staged file is released on the failure path too.
	_, statErr := os.Stat(archiver.lastLocal)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUpload_StagedFileReleasedOnSuccess(t *testing.T) {
	analyzer := &fakeAnalyzer{result: successResult()}
	archiver := &fakeArchiver{locator: "s3://bucket/org1/2024010110/car.jpg"}
	publisher := &fakePublisher{}
	store := &fakeStore{}
	svc := newService(analyzer, archiver, publisher, store)

	_, err := svc.UploadVehicleImage(context.Background(), testRequestContext(),
		bytes.NewReader([]byte("fake image")), "car.jpg")
	require.NoError(t, err)

	require.NotEmpty(t, archiver.lastLocal)
	_, statErr := os.Stat(archiver.lastLocal)
	assert.True(t, os.IsNotExist(statErr))
}
