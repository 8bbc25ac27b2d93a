package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitmyear-backend/internal/models"
	"fitmyear-backend/internal/reconstruction"
)

type ReconstructionHandler struct {
	watcher *reconstruction.Watcher
}

func NewReconstructionHandler(watcher *reconstruction.Watcher) *ReconstructionHandler {
	return &ReconstructionHandler{watcher: watcher}
}

// Status godoc
// @Summary     Current reconstruction status
// @Description Projects the user's latest upload record into the client-facing job status. Returns 204 when the user has no uploads.
// @Tags        reconstruction
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ReconstructionStatusResponse
// @Success     204 "no uploads"
// @Failure     401 {object} models.ErrorResponse
// @Router      /reconstruction/status [get]
func (h *ReconstructionHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	job, err := h.watcher.Current(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to fetch reconstruction status",
			Message: err.Error(),
		})
		return
	}
	if job == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, statusResponse(job))
}

// Stream godoc
// @Summary     Live reconstruction status stream
// @Description Server-sent events: emits the current projection immediately and again whenever the user's upload records change. The subscription is released when the client disconnects.
// @Tags        reconstruction
// @Produce     text/event-stream
// @Security    Bearer
// @Success     200 {object} models.ReconstructionStatusResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /reconstruction/stream [get]
func (h *ReconstructionHandler) Stream(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	updates := make(chan *reconstruction.Job, 4)
	unsubscribe := h.watcher.Subscribe(c.Request.Context(), userID, func(job *reconstruction.Job) {
		select {
		case updates <- job:
		case <-c.Request.Context().Done():
		}
	})
	defer unsubscribe()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case job := <-updates:
			if job == nil {
				c.SSEvent("status", gin.H{"status": "none"})
			} else {
				c.SSEvent("status", statusResponse(job))
			}
			return true
		}
	})
}

func statusResponse(job *reconstruction.Job) models.ReconstructionStatusResponse {
	return models.ReconstructionStatusResponse{
		JobID:        job.ID,
		Status:       string(job.Status),
		Progress:     job.Progress,
		CompletedAt:  job.CompletedAt,
		ErrorMessage: job.ErrorMessage,
	}
}
