package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daniellescalera/user-management/internal/application"
	"github.com/daniellescalera/user-management/pkg/response"
)

type AnalyticsHandler struct {
	Svc    *application.AnalyticsService
	Logger *logrus.Logger
}

func NewAnalyticsHandler(svc *application.AnalyticsService, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{Svc: svc, Logger: logger}
}

// Retention GET /analytics/retention
func (h *AnalyticsHandler) Retention(c *gin.Context) {
	r, err := h.Svc.Retention(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, r, "retention", nil)
}
