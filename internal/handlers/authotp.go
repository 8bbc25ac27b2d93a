package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fitmyear-backend/internal/auth"
	"fitmyear-backend/internal/models"
)

type AuthHandler struct {
	otp *auth.OTPService
}

func NewAuthHandler(otp *auth.OTPService) *AuthHandler {
	return &AuthHandler{otp: otp}
}

// SendOTP godoc
// @Summary     Send a one-time code
// @Description Generates a 6-digit code for the phone number. Codes expire after five minutes.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.SendOTPRequest true "Phone number"
// @Success     200 {object} models.OTPSendResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /auth/otp/send [post]
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req models.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	if err := h.otp.Send(c.Request.Context(), req.PhoneNumber); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to send code",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.OTPSendResponse{Success: true})
}

// VerifyOTP godoc
// @Summary     Verify a one-time code
// @Description Exchanges a valid code for a JWT. A successful verification consumes the code.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.VerifyOTPRequest true "Phone number and code"
// @Success     200 {object} models.OTPVerifyResponse
// @Failure     401 {object} models.OTPVerifyResponse
// @Router      /auth/otp/verify [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req models.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	token, err := h.otp.Verify(c.Request.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNoChallenge):
			c.JSON(http.StatusUnauthorized, models.OTPVerifyResponse{
				Success: false,
				Message: "No code was requested for this number, or it has expired.",
			})
		case errors.Is(err, auth.ErrCodeMismatch):
			c.JSON(http.StatusUnauthorized, models.OTPVerifyResponse{
				Success: false,
				Message: "The code you entered is incorrect.",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "verification failed",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, models.OTPVerifyResponse{
		Success: true,
		Message: "Verified.",
		Token:   token,
	})
}
