package storage_test

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"lpr-ingest-backend/internal/storage"
)

func newTestArchiver() *storage.Archiver {
	client := s3.NewFromConfig(aws.Config{Region: "us-east-1"})
	return storage.NewArchiver(client, "vehicle-images", zap.NewNop())
}

func TestObjectPath_Deterministic(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 30, 45, 0, time.UTC)

	path := storage.ObjectPath("org1", "car.jpg", at)
	assert.Equal(t, "org1/2024010110/car.jpg", path)

	// Same org, filename, and hour: same path. The overwrite is the
	// documented behavior for same-hour re-uploads.
	later := time.Date(2024, 1, 1, 10, 59, 59, 0, time.UTC)
	assert.Equal(t, path, storage.ObjectPath("org1", "car.jpg", later))
}

func TestObjectPath_HourBucketBoundary(t *testing.T) {
	before := time.Date(2024, 1, 1, 10, 59, 59, 0, time.UTC)
	after := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)

	assert.NotEqual(t,
		storage.ObjectPath("org1", "car.jpg", before),
		storage.ObjectPath("org1", "car.jpg", after))
}

func TestLocator_Format(t *testing.T) {
	a := newTestArchiver()
	assert.Equal(t, "s3://vehicle-images/org1/2024010110/car.jpg",
		a.Locator("org1/2024010110/car.jpg"))
}

func TestObjectKey_RoundTrip(t *testing.T) {
	a := newTestArchiver()

	key, err := a.ObjectKey("s3://vehicle-images/org1/2024010110/car.jpg")
	require.NoError(t, err)
	assert.Equal(t, "org1/2024010110/car.jpg", key)
}

func TestObjectKey_WrongBucket(t *testing.T) {
	a := newTestArchiver()

	_, err := a.ObjectKey("s3://other-bucket/org1/2024010110/car.jpg")
	assert.Error(t, err)
}
