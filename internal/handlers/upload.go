package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lpr-ingest-backend/internal/middleware"
	"lpr-ingest-backend/internal/models"
	"lpr-ingest-backend/internal/services"
)

// Request headers snapshotted into the composite message.
var snapshotHeaders = []string{"User-Agent", "X-Request-Id", "X-Forwarded-For"}

type UploadHandler struct {
	service *services.UploadService
	log     *zap.Logger
}

func NewUploadHandler(service *services.UploadService, log *zap.Logger) *UploadHandler {
	return &UploadHandler{service: service, log: log}
}

// UploadVehicleImage godoc
// @Summary     Upload a vehicle image
// @Description Stages the image, obtains a license-plate recognition result,
// @Description archives the original to object storage, publishes the composite
// @Description message, and records the upload. Recognition failure degrades the
// @Description result but does not fail the request.
// @Tags        upload
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       org_id path string true "Organization ID"
// @Param       image formData file true "Vehicle image"
// @Success     200 {object} models.UploadResponse
// @Failure     404 {object} models.UploadResponse
// @Failure     500 {object} models.UploadResponse
// @Router      /org/{org_id}/action/UploadVehicleImage [post]
func (h *UploadHandler) UploadVehicleImage(c *gin.Context) {
	orgID := c.Param("org_id")
	if orgID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing organization id"})
		return
	}

	reqCtx := models.RequestContext{
		OrgID:        orgID,
		IdentityType: c.GetString(middleware.IdentityTypeKey),
		UploaderID:   c.GetString(middleware.UploaderIDKey),
		UploadedAPI:  c.FullPath(),
		Headers:      headerSnapshot(c),
	}

	var (
		file     multipart.File
		filename string
	)
	if f, header, err := c.Request.FormFile("image"); err == nil {
		defer f.Close()
		file = f
		filename = header.Filename
	}

	resp, err := h.service.UploadVehicleImage(c.Request.Context(), reqCtx, file, filename)
	if err != nil {
		h.log.Error("upload pipeline failed",
			zap.String("org", orgID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.UploadResponse{
			Status:      models.UploadStatusError,
			Description: err.Error(),
		})
		return
	}

	if resp.Status == models.UploadStatusNotFound {
		c.JSON(http.StatusNotFound, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func headerSnapshot(c *gin.Context) map[string]string {
	snapshot := make(map[string]string, len(snapshotHeaders))
	for _, name := range snapshotHeaders {
		if v := c.GetHeader(name); v != "" {
			snapshot[name] = v
		}
	}
	return snapshot
}
