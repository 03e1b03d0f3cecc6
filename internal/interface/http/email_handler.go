package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daniellescalera/user-management/internal/application"
	"github.com/daniellescalera/user-management/pkg/response"
)

type EmailHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewEmailHandler(svc *application.Service, logger *logrus.Logger) *EmailHandler {
	return &EmailHandler{Svc: svc, Logger: logger}
}

// ResendVerification POST /users/:user_id/verification-email
// re-sends the pending verification email of an unverified user.
func (h *EmailHandler) ResendVerification(c *gin.Context) {
	if err := h.Svc.ResendVerification(c.Request.Context(), c.Param("user_id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusAccepted, map[string]any{"enqueued": true}, "verification email enqueued", nil)
}
