package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daniellescalera/user-management/pkg/response"
)

// AllowPrivateIP returns an AllowFunc that is true for loopback and
// private-range clients (10/8, 172.16/12, 192.168/16, fc00::/7).
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// Only lets requests through when allow reports true; others get a 404.
func Only(allow AllowFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow(c) {
			response.Error[any](c, http.StatusNotFound, "not found", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
