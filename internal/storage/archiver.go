// Package storage archives uploaded images to S3-compatible object storage.
// Works against AWS S3 and MinIO (configurable endpoint and path style).
package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Archived objects are partitioned by upload hour.
const hourBucketFormat = "2006010215"

// Config holds the S3 connection settings.
type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	ForcePathStyle  bool
}

// NewS3Client builds an S3 client from cfg. A custom endpoint switches the
// client to that base URL (MinIO and other S3-compatible services).
func NewS3Client(ctx context.Context, cfg Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts = append(opts, awsconfig.WithRegion(region))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			scheme := "https"
			if !cfg.UseSSL {
				scheme = "http"
			}
			o.BaseEndpoint = aws.String(fmt.Sprintf("%s://%s", scheme, cfg.Endpoint))
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return client, nil
}

// Archiver uploads staged images under a deterministic per-organization path
// and can mint pre-signed read URLs for archived objects.
type Archiver struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	log     *zap.Logger
}

func NewArchiver(client *s3.Client, bucket string, log *zap.Logger) *Archiver {
	return &Archiver{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		log:     log,
	}
}

// ObjectPath returns the deterministic object key for an upload:
// {org}/{hourBucket}/{filename}. Two same-hour uploads of an identically
// named file by the same organization map to the same key; the later archive
// overwrites the earlier object. That collision is accepted, not disambiguated.
func ObjectPath(orgID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s", orgID, now.Format(hourBucketFormat), filename)
}

// Archive uploads the staged file as one whole object and returns the
// canonical locator s3://{bucket}/{path}.
func (a *Archiver) Archive(ctx context.Context, localPath, orgID, filename string) (string, error) {
	objectPath := ObjectPath(orgID, filename, time.Now())
	locator := a.Locator(objectPath)

	a.log.Info("archiving image",
		zap.String("local", localPath),
		zap.String("target", locator))

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open staged file: %w", err)
	}
	defer f.Close()

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectPath),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive image to %s: %w", locator, err)
	}

	return locator, nil
}

// Locator returns the canonical locator string for an object key.
func (a *Archiver) Locator(objectPath string) string {
	return fmt.Sprintf("s3://%s/%s", a.bucket, objectPath)
}

// ObjectKey converts a locator produced by this archiver back to its object
// key. Locators for another bucket are rejected.
func (a *Archiver) ObjectKey(locator string) (string, error) {
	prefix := fmt.Sprintf("s3://%s/", a.bucket)
	if !strings.HasPrefix(locator, prefix) {
		return "", fmt.Errorf("locator %q does not belong to bucket %s", locator, a.bucket)
	}
	return strings.TrimPrefix(locator, prefix), nil
}

// SignedURL mints a time-limited pre-signed GET URL for an archived object.
// This is a side capability for read endpoints; the ingestion pipeline never
// depends on it, and a signing failure here aborts nothing upstream.
func (a *Archiver) SignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	req, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectPath),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", objectPath, err)
	}
	return req.URL, nil
}
