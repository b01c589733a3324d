package errorx

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// Respond writes an error response to the client. Unrecognized errors are
// surfaced as a generic internal failure so storage details never leak.
func Respond(c *gin.Context, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = ErrInternal
	}
	c.JSON(apiErr.HTTPStatus, apiErr)
}

// Abort writes an error response and aborts the middleware chain
func Abort(c *gin.Context, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = ErrInternal
	}
	c.AbortWithStatusJSON(apiErr.HTTPStatus, apiErr)
}
