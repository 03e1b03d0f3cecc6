package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daniellescalera/user-management/internal/application"
	"github.com/daniellescalera/user-management/pkg/helpers"
	"github.com/daniellescalera/user-management/pkg/response"
)

// AuthHandler serves the public account endpoints: signup, login, logout and email verification.
type AuthHandler struct {
	Svc     *application.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger, cookies *helpers.Manager) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: cookies}
}

// Register POST /register/
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(u), "user registered, check your email to verify the account", nil)
}

// Login POST /login/ (form: username, password)
func (h *AuthHandler) Login(c *gin.Context) {
	res, err := h.Svc.Login(c.Request.Context(), c.PostForm("username"), c.PostForm("password"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if h.Cookies != nil {
		h.Cookies.SetAccess(c, res.AccessToken, res.ExpiresAt)
	}
	response.Success(c, http.StatusOK,
		tokenResponse{AccessToken: res.AccessToken, TokenType: res.TokenType},
		"login successful",
		map[string]any{"access_expires_at": res.ExpiresAt},
	)
}

// Logout POST /logout/. Tokens are stateless; this only drops the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// VerifyEmail GET /verify-email/:user_id/:token
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.Svc.VerifyEmail(c.Request.Context(), c.Param("user_id"), c.Param("token")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"verified": true}, "email verified successfully", nil)
}
