package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The navigator API speaks the same envelopes as the hospital-data service
// the web client was written against: errors carry a single "detail"
// string, lists come wrapped in {"status","data"}.

// ErrorBody is the error envelope.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// ListBody is the envelope for list results.
type ListBody struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// MessageBody is the envelope for command results such as uploads.
type MessageBody struct {
	Message string `json:"message"`
	Rows    int    `json:"rows"`
}

// List sends a successful list response.
func List(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, ListBody{
		Status: "success",
		Data:   data,
	})
}

// Message sends a successful command response.
func Message(c *gin.Context, message string, rows int) {
	c.JSON(http.StatusOK, MessageBody{
		Message: message,
		Rows:    rows,
	})
}

// Error sends an error response.
func Error(c *gin.Context, statusCode int, detail string) {
	c.JSON(statusCode, ErrorBody{Detail: detail})
}

// BadRequest sends a 400 error response.
func BadRequest(c *gin.Context, detail string) {
	Error(c, http.StatusBadRequest, detail)
}

// InternalError sends a 500 error response.
func InternalError(c *gin.Context, detail string) {
	Error(c, http.StatusInternalServerError, detail)
}
