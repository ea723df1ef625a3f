package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/syriashof/shof/pkg/errors"
)

// The wire format predates this server: the web and admin clients consume
// flat JSON payloads and expect failures as {"error": "<message>"}. Handlers
// therefore emit action-specific objects rather than a generic envelope.

// JSON writes a success payload verbatim.
func JSON(c *gin.Context, statusCode int, payload any) {
	c.JSON(statusCode, payload)
}

// OK writes a 200 success payload.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Error writes the legacy error shape derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": appErr.Message})
}
