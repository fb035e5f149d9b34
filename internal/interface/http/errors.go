package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/internal/application"
	"github.com/oksasatya/salon-connect/pkg/response"
)

// CtxUserIDKey is where the auth middleware stores the caller id.
const CtxUserIDKey = "userID"

type errorBody struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// statusFor maps service error kinds to an HTTP status and a stable kind name.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, application.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, application.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, application.ErrInconsistent):
		return http.StatusInternalServerError, "inconsistent"
	case errors.Is(err, application.ErrStore):
		return http.StatusInternalServerError, "store"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError renders err in the response envelope. Server-side failures are
// logged and their detail is not echoed to the client.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status, kind := statusFor(err)
	body := errorBody{Kind: kind}
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"kind":       kind,
				"path":       c.FullPath(),
				"request_id": c.GetString("request_id"),
			}).Error("request failed")
		}
		msg = http.StatusText(status)
		if kind == "inconsistent" {
			msg = "operation partially applied"
		}
	} else {
		body.Detail = msg
	}
	response.Error[any](c, status, msg, body)
}

func currentUserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}
