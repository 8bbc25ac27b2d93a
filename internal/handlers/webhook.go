package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fitmyear-backend/internal/database"
	"fitmyear-backend/internal/models"
	"fitmyear-backend/internal/reconstruction"
)

const signatureHeader = "X-Reconstruction-Signature"

// WebhookHandler receives status callbacks from the reconstruction backend.
// Requests are authenticated by an HMAC-SHA256 signature over the raw body.
type WebhookHandler struct {
	db     *database.Client
	hub    *reconstruction.Hub
	secret []byte
	log    *logrus.Logger
}

func NewWebhookHandler(db *database.Client, hub *reconstruction.Hub, secret string, log *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{db: db, hub: hub, secret: []byte(secret), log: log}
}

// Reconstruction godoc
// @Summary     Reconstruction status callback
// @Description Advances an upload record's status. Regressions (e.g. done back to processing) are rejected.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       X-Reconstruction-Signature header string true "hex HMAC-SHA256 of the request body"
// @Param       request body models.ReconstructionWebhookRequest true "Status update"
// @Success     200 {object} map[string]string
// @Failure     401 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /webhooks/reconstruction [post]
func (h *WebhookHandler) Reconstruction(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read body"})
		return
	}

	if !h.verifySignature(body, c.GetHeader(signatureHeader)) {
		h.log.Warn("Rejected reconstruction webhook with bad signature")
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid signature"})
		return
	}

	var req models.ReconstructionWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid payload", Message: err.Error()})
		return
	}

	uploadID, err := uuid.Parse(req.UploadID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid upload id"})
		return
	}

	status := models.UploadStatus(req.Status)
	if status.Rank() == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unknown status", Message: req.Status})
		return
	}

	record, err := h.db.AdvanceUploadStatus(c.Request.Context(), uploadID, status, req.ModelURL)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "upload not found"})
		case errors.Is(err, database.ErrStatusRegression):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "status regression rejected",
				Message: err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to update upload",
				Message: err.Error(),
			})
		}
		return
	}

	h.log.WithFields(logrus.Fields{
		"upload_id": record.ID,
		"status":    record.Status,
	}).Info("Reconstruction status advanced")

	h.hub.Notify(record.UserID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	if len(h.secret) == 0 || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
