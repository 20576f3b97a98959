package ctx

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/shopctl/pkg/apperr"
	"github.com/shashiranjanraj/shopctl/pkg/logger"
)

// Fail maps a service error to its HTTP response. Tagged errors keep their
// message and details; anything untagged is logged and becomes an opaque 500.
func (c *Context) Fail(err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		logger.WithCtx(c.R.Context()).Error("unhandled error", "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
		return
	}

	status := apperr.StatusCode(err)
	if e.Details != nil {
		c.JSON(status, envelope{Status: status, Message: e.Message, Errors: e.Details})
		return
	}
	c.Error(status, e.Message)
}

// Message sends a JSON envelope with both a message and a data payload.
func (c *Context) Message(code int, message string, data any) {
	c.JSON(code, envelope{Status: code, Message: message, Data: data})
}
