package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitmyear-backend/internal/capture"
	"fitmyear-backend/internal/classifier"
	"fitmyear-backend/internal/models"
	"fitmyear-backend/internal/photostore"
)

type CaptureHandler struct {
	orchestrator *capture.Orchestrator
	store        *photostore.Store
}

func NewCaptureHandler(orchestrator *capture.Orchestrator, store *photostore.Store) *CaptureHandler {
	return &CaptureHandler{
		orchestrator: orchestrator,
		store:        store,
	}
}

// multipartFrames feeds uploaded frame files to the auto-scan loop in
// request order.
type multipartFrames struct {
	files []*multipart.FileHeader
	next  int
}

func (m *multipartFrames) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.next >= len(m.files) {
		return nil, io.EOF
	}
	file := m.files[m.next]
	m.next++
	return readFormFile(file)
}

// CaptureOne godoc
// @Summary     Capture a single guided photo
// @Description Crops the raw frame to the centered ear region, validates it against the ear classifier, and persists it only when accepted. A rejected frame returns accepted=false without persisting anything.
// @Tags        capture
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       frame formData file true "Raw camera frame"
// @Success     200 {object} models.CaptureResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /capture [post]
func (h *CaptureHandler) CaptureOne(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("frame")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing frame file"})
		return
	}

	frame, err := readFormFile(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read frame",
			Message: err.Error(),
		})
		return
	}

	res, err := h.orchestrator.CaptureOne(c.Request.Context(), userID.String(), frame)
	if err != nil {
		h.captureError(c, err)
		return
	}

	count, _ := h.store.Count(userID.String())
	resp := models.CaptureResponse{
		Accepted:       res.Accepted,
		PredictedClass: res.PredictedClass,
		EarConfidence:  res.EarConfidence,
		Count:          count,
		Target:         h.orchestrator.Target(),
	}
	if res.Photo != nil {
		resp.PhotoID = res.Photo.ID
	}

	c.JSON(http.StatusOK, resp)
}

// AutoScan godoc
// @Summary     Run an auto-scan over a frame sequence
// @Description Captures toward the target count with the configured inter-shot delay, halting on the first rejected frame or classifier failure. Photos captured before the halt stay persisted.
// @Tags        capture
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       frames formData file true "Raw camera frames, in order"
// @Success     200 {object} models.AutoScanResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /capture/scan [post]
func (h *CaptureHandler) AutoScan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(64 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	files := formFiles(c.Request.MultipartForm, "frames", "frame", "images")
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no frames uploaded"})
		return
	}

	res, err := h.orchestrator.StartAutoScan(c.Request.Context(), userID.String(), &multipartFrames{files: files})
	if err != nil {
		switch {
		case errors.Is(err, capture.ErrScanInProgress), errors.Is(err, capture.ErrTargetReached):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
		case errors.Is(err, capture.ErrCameraNotReady):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "auto-scan failed",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, models.AutoScanResponse{
		Captured: res.Captured,
		Count:    res.Count,
		Target:   res.Target,
		Complete: res.Count >= res.Target,
	})
}

// Done godoc
// @Summary     Finish the capture flow
// @Description Verifies the target photo count has been reached. Fails with the current/target tally otherwise.
// @Tags        capture
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.PhotoListResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /capture/done [post]
func (h *CaptureHandler) Done(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.orchestrator.MarkDone(userID.String()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, capture.ErrIncomplete) {
			status = http.StatusConflict
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "capture incomplete",
			Message: err.Error(),
		})
		return
	}

	count, _ := h.store.Count(userID.String())
	c.JSON(http.StatusOK, models.PhotoListResponse{
		Count:  count,
		Target: h.orchestrator.Target(),
	})
}

func (h *CaptureHandler) captureError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, classifier.ErrUnavailable):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "could not verify the photo",
			Message: "Check your internet connection and try again.",
		})
	case errors.Is(err, photostore.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "photo store is full",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to capture photo",
			Message: err.Error(),
		})
	}
}
