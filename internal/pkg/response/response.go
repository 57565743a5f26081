package response

import (
	"errors"
	"net/http"

	"hotelcore/internal/domain"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError writes the envelope for a service error and records it on the
// gin context so the error logger middleware sees it.
func FromError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		if len(verr.Fields) > 0 {
			ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message, verr.Fields)
			return
		}
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message)
	case errors.Is(err, domain.ErrValidation):
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrNoRoomAvailable):
		Error(c, http.StatusNotFound, "NO_ROOM_AVAILABLE", "No free room of this category for the requested dates")
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, domain.ErrConflict):
		Error(c, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, domain.ErrConcurrency):
		Error(c, http.StatusServiceUnavailable, "CONCURRENT_UPDATE", "Concurrent update, please retry")
	default:
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
