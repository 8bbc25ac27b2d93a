package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitmyear-backend/internal/capture"
	"fitmyear-backend/internal/models"
	"fitmyear-backend/internal/photostore"
)

type PhotosHandler struct {
	store        *photostore.Store
	orchestrator *capture.Orchestrator
}

func NewPhotosHandler(store *photostore.Store, orchestrator *capture.Orchestrator) *PhotosHandler {
	return &PhotosHandler{
		store:        store,
		orchestrator: orchestrator,
	}
}

// List godoc
// @Summary     List stored photos
// @Description Returns the user's locally persisted photos in capture order.
// @Tags        photos
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.PhotoListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /photos [get]
func (h *PhotosHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	photos, err := h.store.List(userID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list photos",
			Message: err.Error(),
		})
		return
	}

	resp := models.PhotoListResponse{
		Photos: make([]models.PhotoResponse, 0, len(photos)),
		Count:  len(photos),
		Target: h.orchestrator.Target(),
	}
	for _, p := range photos {
		resp.Photos = append(resp.Photos, models.PhotoResponse{
			ID:        p.ID,
			URI:       p.URI,
			Timestamp: p.Timestamp,
			Angle:     string(p.Angle),
		})
	}

	c.JSON(http.StatusOK, resp)
}

// Import godoc
// @Summary     Import photos from the gallery
// @Description Persists gallery-sourced images directly, without an ear-validation check. An optional angle form field tags the slot.
// @Tags        photos
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       images formData file true "Image files"
// @Param       angle formData string false "Angle slot for a single image"
// @Success     200 {object} models.PhotoListResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /photos [post]
func (h *PhotosHandler) Import(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	files := formFiles(c.Request.MultipartForm, "images", "image", "photos", "photo")
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no images uploaded"})
		return
	}

	angle := models.EarAngle(c.PostForm("angle"))
	if angle != "" && len(files) > 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "angle applies to a single image"})
		return
	}

	for _, file := range files {
		data, err := readFormFile(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "failed to read image",
				Message: err.Error(),
			})
			return
		}

		if _, err := h.orchestrator.PickFromGallery(userID.String(), data, angle); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, photostore.ErrCapacityExceeded) ||
				errors.Is(err, photostore.ErrDuplicateAngle) ||
				errors.Is(err, photostore.ErrInvalidAngle) {
				status = http.StatusConflict
			}
			c.JSON(status, models.ErrorResponse{
				Error:   "failed to save photo",
				Message: err.Error(),
			})
			return
		}
	}

	h.List(c)
}

// Delete godoc
// @Summary     Delete one photo
// @Description Removes the photo with the given id. Deleting an unknown id is a no-op.
// @Tags        photos
// @Produce     json
// @Security    Bearer
// @Param       photo_id path string true "Photo ID"
// @Success     204 "deleted"
// @Failure     401 {object} models.ErrorResponse
// @Router      /photos/{photo_id} [delete]
func (h *PhotosHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.store.Delete(userID.String(), c.Param("photo_id")); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete photo",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// Clear godoc
// @Summary     Clear all photos
// @Description Removes every locally stored photo for the user.
// @Tags        photos
// @Produce     json
// @Security    Bearer
// @Success     204 "cleared"
// @Failure     401 {object} models.ErrorResponse
// @Router      /photos [delete]
func (h *PhotosHandler) Clear(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.store.Clear(userID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to clear photos",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
