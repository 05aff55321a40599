// Package httputils provides HTTP utility functions.
package httputils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vivekpraj/website-to-chatbot/pkg/errors"
)

// Response is the unified HTTP response envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteResponse writes the response to the client.
// It handles both success and error cases, ensuring consistent response format.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		errno := errors.FromError(err)
		c.JSON(errno.HTTPStatus(), Response{
			Code:    errno.Code,
			Message: errno.Message,
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code:    errors.OK.Code,
		Message: errors.OK.Message,
		Data:    data,
	})
}
