package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-portfolio-tracker/internal/domain/apperror"
	"github.com/oksasatya/go-portfolio-tracker/pkg/response"
	"github.com/oksasatya/go-portfolio-tracker/pkg/validation"
)

// Errors renders the first error pushed with c.Error as the response envelope.
//   - expired request deadline: 504
//   - binding and validator errors: 400 with per-field details
//   - apperror.Error: its kind's status, message and details
//   - anything else: 500 with a generic message; the cause is only logged
func Errors(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors[0].Err

		status, message, details := classify(err)
		if status >= http.StatusInternalServerError {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     status,
			}).Error("request failed")
		}

		resp := response.Error[any](c, status, message, details)
		c.AbortWithStatusJSON(resp.Status, resp)
	}
}

func classify(err error) (int, string, any) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "request timed out", nil
	}

	var ve validator.ValidationErrors
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ve) || errors.As(err, &se) || errors.As(err, &ute) {
		return http.StatusBadRequest, "validation error", validation.ToDetails(err)
	}

	if ae, ok := apperror.As(err); ok {
		status := ae.Status()
		if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
			return status, "internal error", nil
		}
		return status, ae.Message, ae.Details
	}

	var bind *bindError
	if errors.As(err, &bind) {
		return http.StatusBadRequest, "validation error", validation.ToDetails(bind.err)
	}

	return http.StatusInternalServerError, "internal error", nil
}

// bindError marks a request decoding failure that is not a validator or json error,
// such as a malformed decimal or an empty body.
type bindError struct{ err error }

func (e *bindError) Error() string { return e.err.Error() }
func (e *bindError) Unwrap() error { return e.err }

// BindError wraps an error returned by c.ShouldBind* so Errors reports it as 400.
func BindError(err error) error {
	if err == nil {
		return nil
	}
	return &bindError{err: err}
}
