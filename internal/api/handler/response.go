package handler

import (
	"errors"

	"swarajdesk/backend/internal/complaint"

	"github.com/gin-gonic/gin"
)

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"success": true, "message": message, "data": data})
}

// respondError renders err as the failure envelope. Anything that is not a
// *complaint.Error is treated as internal.
func (h *Handler) respondError(c *gin.Context, err error) {
	var derr *complaint.Error
	if !errors.As(err, &derr) {
		derr = complaint.Internal(err)
	}

	body := gin.H{"success": false, "message": derr.Message}
	if derr.Details != nil {
		body["details"] = derr.Details
	}

	if derr.Kind == complaint.KindInternal {
		h.log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Msg("request failed")
		body["message"] = "Internal server error"
		if !h.production {
			body["error"] = err.Error()
		}
	} else {
		body["error"] = derr.Kind.String()
	}

	c.AbortWithStatusJSON(derr.Kind.HTTPStatus(), body)
}

// bindJSON decodes the request body into dst and reports a 400 on failure.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.respondError(c, complaint.Validation("Invalid request body", []complaint.FieldError{
			{Field: "body", Message: err.Error()},
		}))
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		h.respondError(c, complaint.Validation("Invalid query parameters", []complaint.FieldError{
			{Field: "query", Message: err.Error()},
		}))
		return false
	}
	return true
}
