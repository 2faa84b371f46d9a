package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/dmitrijs2005/linkkeeper/internal/validatex"
	"github.com/gin-gonic/gin"
)

// envelope is the body of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Expired bool   `json:"expired,omitempty"`
}

// messages overrides the default message for an error class.
type messages map[error]string

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func abortWith(c *gin.Context, status int, body envelope) {
	body.Success = false
	c.AbortWithStatusJSON(status, body)
}

// statusFor maps an error onto an HTTP status and a client-facing message.
func statusFor(err error) (int, string) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, common.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many login attempts. Please try again later."
	case errors.Is(err, common.ErrLinkInactive):
		return http.StatusForbidden, "Link is inactive"
	case errors.Is(err, common.ErrLinkExpired):
		return http.StatusForbidden, "Link has expired"
	case errors.Is(err, common.ErrLinkMaxUses):
		return http.StatusForbidden, "Link has reached maximum uses"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "Authentication failed"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// fail writes the error envelope for err. Unexpected errors are logged and
// their text is exposed only in development.
func (h *handler) fail(c *gin.Context, err error, overrides messages) {
	status, msg := statusFor(err)

	// validation messages are specific; never override them
	if status != http.StatusBadRequest {
		for target, m := range overrides {
			if errors.Is(err, target) {
				msg = m
				break
			}
		}
	}

	body := envelope{Message: msg}
	if status == http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		if h.development {
			body.Error = err.Error()
		}
	}

	abortWith(c, status, body)
}

// rejectBody answers a failed bind. Field rule violations name the field,
// anything else (malformed JSON, wrong types) is reported generically.
func rejectBody(c *gin.Context, err error) {
	var ve *common.ValidationError
	if errors.As(validatex.Translate(err), &ve) {
		abortWith(c, http.StatusBadRequest, envelope{Message: ve.Message})
		return
	}
	abortWith(c, http.StatusBadRequest, envelope{Message: "Invalid request body"})
}
