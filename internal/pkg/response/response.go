// internal/pkg/response/response.go
package response

import (
	"net/http"

	xerrors "bookly-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	// Abort first so later handlers never write over the error body
	c.Abort()

	response := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	if len(data) > 0 {
		response.Data = data[0]
	}

	c.JSON(code, response)
}

// FromError maps err onto its failure kind and writes the matching status.
// Errors outside the taxonomy become a bare 500 so internal details stay
// server side.
func FromError(c *gin.Context, err error) {
	kind := xerrors.Kind(err)

	c.Abort()
	c.JSON(kind.Status, Response{
		Success:   false,
		Message:   kind.Message,
		ErrorCode: kind.Code,
	})
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	c.Abort()
	c.JSON(http.StatusBadRequest, Response{
		Success:   false,
		Message:   message,
		Error:     xerrors.MessageOrDefault(err, ""),
		ErrorCode: xerrors.ErrBadRequest.Code,
	})
}
