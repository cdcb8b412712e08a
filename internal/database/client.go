package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"lpr-ingest-backend/internal/models"
)

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

// InsertFileUpload persists one upload row. Failures pass through wrapped;
// there is no local recovery, the caller decides what an insert failure means.
func (c *Client) InsertFileUpload(ctx context.Context, rec *models.FileUpload) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO file_uploads (
			id, org_id, identity_type, uploader_id, uploaded_api,
			storage_path, recognition_status, recognition_message,
			vehicle_license, vehicle_province, vehicle_brand, vehicle_class, vehicle_color,
			quota_left, file_size, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, rec.ID, rec.OrgID, rec.IdentityType, rec.UploaderID, rec.UploadedAPI,
		rec.StoragePath, rec.RecognitionStatus, rec.RecognitionMessage,
		rec.VehicleLicense, rec.VehicleProvince, rec.VehicleBrand, rec.VehicleClass, rec.VehicleColor,
		rec.QuotaLeft, rec.FileSize, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert file upload: %w", err)
	}

	return nil
}

func (c *Client) GetFileUpload(ctx context.Context, orgID string, id uuid.UUID) (*models.FileUpload, error) {
	var rec models.FileUpload
	err := c.db.QueryRowContext(ctx, `
		SELECT id, org_id, identity_type, uploader_id, uploaded_api,
		       storage_path, recognition_status, recognition_message,
		       vehicle_license, vehicle_province, vehicle_brand, vehicle_class, vehicle_color,
		       quota_left, file_size, created_at
		FROM file_uploads
		WHERE id = $1 AND org_id = $2
	`, id, orgID).Scan(
		&rec.ID, &rec.OrgID, &rec.IdentityType, &rec.UploaderID, &rec.UploadedAPI,
		&rec.StoragePath, &rec.RecognitionStatus, &rec.RecognitionMessage,
		&rec.VehicleLicense, &rec.VehicleProvince, &rec.VehicleBrand, &rec.VehicleClass, &rec.VehicleColor,
		&rec.QuotaLeft, &rec.FileSize, &rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get file upload: %w", err)
	}

	return &rec, nil
}

// ListFileUploads returns the organization's uploads matching q, newest first.
func (c *Client) ListFileUploads(ctx context.Context, orgID string, q models.UploadQuery) ([]models.FileUpload, error) {
	where, args := buildFilter(orgID, q)

	query := `
		SELECT id, org_id, identity_type, uploader_id, uploaded_api,
		       storage_path, recognition_status, recognition_message,
		       vehicle_license, vehicle_province, vehicle_brand, vehicle_class, vehicle_color,
		       quota_left, file_size, created_at
		FROM file_uploads
		WHERE ` + where + `
		ORDER BY created_at DESC`

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list file uploads: %w", err)
	}
	defer rows.Close()

	var uploads []models.FileUpload
	for rows.Next() {
		var rec models.FileUpload
		err := rows.Scan(
			&rec.ID, &rec.OrgID, &rec.IdentityType, &rec.UploaderID, &rec.UploadedAPI,
			&rec.StoragePath, &rec.RecognitionStatus, &rec.RecognitionMessage,
			&rec.VehicleLicense, &rec.VehicleProvince, &rec.VehicleBrand, &rec.VehicleClass, &rec.VehicleColor,
			&rec.QuotaLeft, &rec.FileSize, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file upload: %w", err)
		}
		uploads = append(uploads, rec)
	}

	return uploads, rows.Err()
}

func (c *Client) CountFileUploads(ctx context.Context, orgID string, q models.UploadQuery) (int, error) {
	where, args := buildFilter(orgID, q)

	var count int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM file_uploads WHERE "+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count file uploads: %w", err)
	}

	return count, nil
}

// buildFilter translates q into a WHERE clause scoped to one organization.
func buildFilter(orgID string, q models.UploadQuery) (string, []interface{}) {
	conditions := []string{"org_id = $1"}
	args := []interface{}{orgID}

	if q.License != "" {
		args = append(args, "%"+q.License+"%")
		conditions = append(conditions, fmt.Sprintf("vehicle_license ILIKE $%d", len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		conditions = append(conditions, fmt.Sprintf("recognition_status = $%d", len(args)))
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	return strings.Join(conditions, " AND "), args
}

func (c *Client) Close() error {
	return c.db.Close()
}
