package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	RealIPKey = "real_ip"
	// TrustProxyKey reports whether forwarding headers on this request may be believed.
	TrustProxyKey = "trust_proxy"
)

// RealIP sets the client IP into Gin context (key: "real_ip").
// Proxy headers are only honoured when trustProxy is set.
// Priority:
// 1) CF-Connecting-IP (Cloudflare)
// 2) X-Forwarded-For (left-most)
// 3) fallback to c.ClientIP()
// Untrusted requests use the TCP peer address.
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(TrustProxyKey, trustProxy)
		c.Set(RealIPKey, realIP(c, trustProxy))
		c.Next()
	}
}

func realIP(c *gin.Context, trustProxy bool) string {
	if trustProxy {
		if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
			if ip := net.ParseIP(cf); ip != nil {
				return ip.String()
			}
		}
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
		return c.ClientIP()
	}
	return c.RemoteIP()
}
