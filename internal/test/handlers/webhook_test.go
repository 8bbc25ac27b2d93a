package handlers_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"fitmyear-backend/internal/handlers"
	"fitmyear-backend/internal/reconstruction"
)

const webhookSecret = "webhook-test-secret"

// The signature and payload checks run before any database access, so a nil
// database client is fine for these cases.
func webhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewWebhookHandler(nil, reconstruction.NewHub(), webhookSecret, logrus.New())
	router := gin.New()
	router.POST("/api/v1/webhooks/reconstruction", handler.Reconstruction)
	return router
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/api/v1/webhooks/reconstruction", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Reconstruction-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhook_MissingSignature(t *testing.T) {
	router := webhookRouter()

	w := postWebhook(router, []byte(`{"upload_id":"x","status":"done"}`), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_WrongSignature(t *testing.T) {
	router := webhookRouter()

	body := []byte(`{"upload_id":"x","status":"done"}`)
	w := postWebhook(router, body, sign("some-other-secret", body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_TamperedBody(t *testing.T) {
	router := webhookRouter()

	original := []byte(`{"upload_id":"x","status":"done"}`)
	tampered := []byte(`{"upload_id":"y","status":"done"}`)
	w := postWebhook(router, tampered, sign(webhookSecret, original))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_MalformedPayload(t *testing.T) {
	router := webhookRouter()

	body := []byte(`not json`)
	w := postWebhook(router, body, sign(webhookSecret, body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_InvalidUploadID(t *testing.T) {
	router := webhookRouter()

	body := []byte(`{"upload_id":"not-a-uuid","status":"done"}`)
	w := postWebhook(router, body, sign(webhookSecret, body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_UnknownStatus(t *testing.T) {
	router := webhookRouter()

	body := []byte(`{"upload_id":"7b2a3f9e-9c1d-4f6a-8e2b-1c5d7a9f3b20","status":"archived"}`)
	w := postWebhook(router, body, sign(webhookSecret, body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
