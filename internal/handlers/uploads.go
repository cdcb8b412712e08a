package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lpr-ingest-backend/internal/database"
	"lpr-ingest-backend/internal/models"
	"lpr-ingest-backend/internal/storage"
)

const signedURLExpiry = 15 * time.Minute

// UploadsHandler serves the read side: upload history queries and pre-signed
// read URLs for archived images.
type UploadsHandler struct {
	dbClient *database.Client
	archiver *storage.Archiver
	log      *zap.Logger
}

func NewUploadsHandler(dbClient *database.Client, archiver *storage.Archiver, log *zap.Logger) *UploadsHandler {
	return &UploadsHandler{dbClient: dbClient, archiver: archiver, log: log}
}

// ListUploads godoc
// @Summary     List uploads
// @Description Returns the organization's uploads matching the filter criteria, newest first
// @Tags        uploads
// @Produce     json
// @Security    Bearer
// @Param       org_id path string true "Organization ID"
// @Param       license query string false "License substring filter"
// @Param       status query string false "Recognition status filter"
// @Param       from query string false "Earliest created_at (RFC 3339)"
// @Param       to query string false "Latest created_at (RFC 3339)"
// @Param       limit query int false "Page size"
// @Param       offset query int false "Page offset"
// @Success     200 {object} models.UploadListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /org/{org_id}/uploads [get]
func (h *UploadsHandler) ListUploads(c *gin.Context) {
	orgID := c.Param("org_id")
	query, err := parseUploadQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid query", Message: err.Error()})
		return
	}

	uploads, err := h.dbClient.ListFileUploads(c.Request.Context(), orgID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list uploads",
			Message: err.Error(),
		})
		return
	}

	summaries := make([]models.UploadSummary, len(uploads))
	for i, u := range uploads {
		summaries[i] = models.UploadSummary{
			ID:                 u.ID.String(),
			OrgID:              u.OrgID,
			UploaderID:         u.UploaderID,
			StoragePath:        u.StoragePath,
			RecognitionStatus:  u.RecognitionStatus,
			RecognitionMessage: u.RecognitionMessage,
			VehicleLicense:     u.VehicleLicense,
			VehicleProvince:    u.VehicleProvince,
			VehicleBrand:       u.VehicleBrand,
			VehicleClass:       u.VehicleClass,
			VehicleColor:       u.VehicleColor,
			FileSize:           u.FileSize,
			CreatedAt:          u.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, models.UploadListResponse{Uploads: summaries})
}

// CountUploads godoc
// @Summary     Count uploads
// @Description Returns the number of uploads matching the filter criteria
// @Tags        uploads
// @Produce     json
// @Security    Bearer
// @Param       org_id path string true "Organization ID"
// @Param       license query string false "License substring filter"
// @Param       status query string false "Recognition status filter"
// @Param       from query string false "Earliest created_at (RFC 3339)"
// @Param       to query string false "Latest created_at (RFC 3339)"
// @Success     200 {object} models.UploadCountResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /org/{org_id}/uploads/count [get]
func (h *UploadsHandler) CountUploads(c *gin.Context) {
	orgID := c.Param("org_id")
	query, err := parseUploadQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid query", Message: err.Error()})
		return
	}

	count, err := h.dbClient.CountFileUploads(c.Request.Context(), orgID, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to count uploads",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.UploadCountResponse{Count: count})
}

// GetSignedURL godoc
// @Summary     Pre-signed read URL
// @Description Returns a time-limited URL for fetching the archived image
// @Tags        uploads
// @Produce     json
// @Security    Bearer
// @Param       org_id path string true "Organization ID"
// @Param       upload_id path string true "Upload ID (UUID)"
// @Success     200 {object} models.SignedURLResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /org/{org_id}/uploads/{upload_id}/signed-url [get]
func (h *UploadsHandler) GetSignedURL(c *gin.Context) {
	orgID := c.Param("org_id")

	uploadID, err := uuid.Parse(c.Param("upload_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid upload id"})
		return
	}

	rec, err := h.dbClient.GetFileUpload(c.Request.Context(), orgID, uploadID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "upload not found",
			Message: err.Error(),
		})
		return
	}

	key, err := h.archiver.ObjectKey(rec.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "invalid storage locator",
			Message: err.Error(),
		})
		return
	}

	url, err := h.archiver.SignedURL(c.Request.Context(), key, signedURLExpiry)
	if err != nil {
		h.log.Warn("signing unavailable",
			zap.String("storage_path", rec.StoragePath),
			zap.Error(err))
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "signed url unavailable",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SignedURLResponse{
		URL:       url,
		ExpiresIn: int(signedURLExpiry.Seconds()),
	})
}

func parseUploadQuery(c *gin.Context) (models.UploadQuery, error) {
	q := models.UploadQuery{
		License: c.Query("license"),
		Status:  c.Query("status"),
	}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, err
		}
		q.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, err
		}
		q.To = t
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, err
		}
		q.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return q, err
		}
		q.Offset = n
	}

	return q, nil
}
