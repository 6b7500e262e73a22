package response

import "github.com/gin-gonic/gin"

// RespondJSON writes the envelope the seat, hold, and booking endpoints
// answer with. status is "success" or "error"; errors carries validation
// details or the seat-conflict list and is dropped from the body when nil.
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}
