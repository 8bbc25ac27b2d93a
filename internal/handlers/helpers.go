package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fitmyear-backend/internal/middleware"
	"fitmyear-backend/internal/models"
)

// currentUserID pulls the authenticated user id out of the gin context.
// Writes the error response itself and returns ok=false on failure.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}

	userID, err := uuid.Parse(raw.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}

	return userID, true
}

func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return io.ReadAll(src)
}

// formFiles finds uploaded files under any of the given field names.
func formFiles(form *multipart.Form, fieldNames ...string) []*multipart.FileHeader {
	for _, name := range fieldNames {
		if f := form.File[name]; len(f) > 0 {
			return f
		}
	}
	return nil
}
