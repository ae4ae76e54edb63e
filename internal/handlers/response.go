package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every internal endpoint answers with
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: status < 400,
		Message: message,
		Data:    data,
	})
}

// respondNoProducts reports a run that finished cleanly but matched nothing.
// The status stays 200 since the request itself was valid, but the envelope
// marks the run unsuccessful: the source returned no products and nothing
// was persisted.
func respondNoProducts(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: false,
		Message: "No products found",
		Data:    data,
	})
}
