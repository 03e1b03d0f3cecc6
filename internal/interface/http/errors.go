package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daniellescalera/user-management/internal/application"
	"github.com/daniellescalera/user-management/pkg/response"
	"github.com/daniellescalera/user-management/pkg/validation"
)

// statusTable is checked in order; the first match wins.
var statusTable = []struct {
	err    error
	status int
}{
	{application.ErrMissingField, http.StatusUnprocessableEntity},
	{application.ErrValidation, http.StatusBadRequest},
	{application.ErrDuplicateEmail, http.StatusBadRequest},
	{application.ErrDuplicateNickname, http.StatusBadRequest},
	{application.ErrNotFound, http.StatusNotFound},
	{application.ErrInvalidCredentials, http.StatusUnauthorized},
	{application.ErrEmailNotVerified, http.StatusUnauthorized},
	{application.ErrAccountLocked, http.StatusBadRequest},
	{application.ErrUnauthenticated, http.StatusUnauthorized},
	{application.ErrForbidden, http.StatusForbidden},
	{application.ErrInvalidVerificationToken, http.StatusBadRequest},
	{application.ErrAlreadyVerified, http.StatusBadRequest},
	{application.ErrStorageUnavailable, http.StatusServiceUnavailable},
}

func statusFromError(err error) int {
	for _, m := range statusTable {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

// writeError renders err as an error envelope. Unmapped errors are logged
// and reported as a bare 500.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(response.RequestIDKey),
			"path":       c.FullPath(),
		}).Error("request failed")
		response.Error[any](c, status, "internal server error", nil)
		return
	}
	if errors.Is(err, application.ErrUnauthenticated) || errors.Is(err, application.ErrInvalidCredentials) {
		c.Header("WWW-Authenticate", "Bearer")
	}

	var details any
	if field, msg, ok := application.FieldOf(err); ok {
		details = map[string]string{field: msg}
	}
	response.Error[any](c, status, err.Error(), details)
}

// writeBindError reports a request that could not be decoded or failed struct
// validation. Missing required fields and undecodable bodies are 422, other rule violations 400.
func writeBindError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	details := validation.ToDetails(err)
	if validation.IsMissingField(err) || details["payload"] != "" {
		status = http.StatusUnprocessableEntity
	}
	response.Error[any](c, status, "invalid payload", details)
}
