package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fitmyear-backend/internal/models"
	"fitmyear-backend/internal/photostore"
	"fitmyear-backend/internal/supabase"
)

// AccountHandler covers account-scoped maintenance operations.
type AccountHandler struct {
	photos  *photostore.Store
	storage *supabase.StorageClient
	log     *logrus.Logger
}

func NewAccountHandler(photos *photostore.Store, storage *supabase.StorageClient, log *logrus.Logger) *AccountHandler {
	return &AccountHandler{photos: photos, storage: storage, log: log}
}

// ResetData godoc
// @Summary     Delete the user's captured and uploaded images
// @Description Clears the local photo set and removes every stored object under the user's upload prefix. Upload records and orders are kept for history.
// @Tags        account
// @Produce     json
// @Security    Bearer
// @Success     204 "reset"
// @Failure     401 {object} models.ErrorResponse
// @Router      /account/data [delete]
func (h *AccountHandler) ResetData(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.photos.Clear(userID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to clear local photos",
			Message: err.Error(),
		})
		return
	}

	if err := h.storage.DeleteUserUploads(userID.String()); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete stored uploads",
			Message: err.Error(),
		})
		return
	}

	h.log.WithField("user", userID).Info("account image data reset")
	c.Status(http.StatusNoContent)
}
