package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fitmyear-backend/internal/models"
	"fitmyear-backend/internal/uploader"
)

type UploadHandler struct {
	pipeline *uploader.Pipeline
	log      *logrus.Logger
}

func NewUploadHandler(pipeline *uploader.Pipeline, log *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		pipeline: pipeline,
		log:      log,
	}
}

// Upload godoc
// @Summary     Upload the captured photo set
// @Description Uploads every locally stored photo to object storage, one at a time in capture order, creates an upload record per photo, requests a reconstruction job, and clears the local set. On failure the already-uploaded records remain and the local photos are left untouched for a retry.
// @Tags        upload
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	lastProgress := 0
	uploadIDs, err := h.pipeline.Upload(c.Request.Context(), userID, func(pct int) {
		lastProgress = pct
		h.log.WithFields(logrus.Fields{
			"user":     userID,
			"progress": pct,
		}).Debug("upload progress")
	})
	if err != nil {
		if errors.Is(err, uploader.ErrTooFewPhotos) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "more photos needed",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "upload failed, please try again",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		UploadIDs: uploadIDs,
		Progress:  lastProgress,
	})
}
