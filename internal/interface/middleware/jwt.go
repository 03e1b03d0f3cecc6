package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/daniellescalera/user-management/pkg/helpers"
)

// BearerToken reads the access token from "Authorization: Bearer <jwt>",
// falling back to the access_token cookie set by login.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, err := c.Cookie(helpers.AccessCookieName)
	if err != nil {
		return ""
	}
	return token
}
