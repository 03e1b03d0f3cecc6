package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daniellescalera/user-management/internal/application"
	"github.com/daniellescalera/user-management/internal/domain/entity"
	"github.com/daniellescalera/user-management/pkg/response"
)

// Gin context keys populated by RequireRoles.
const (
	CtxUserIDKey    = "userID"
	CtxUserRoleKey  = "userRole"
	ctxPrincipalKey = "principal"
)

// Authorizer is satisfied by *application.Service.
type Authorizer interface {
	Authorize(token string, allowed entity.RoleSet) (*application.Principal, error)
}

// RequireRoles rejects requests whose bearer token is missing, invalid, or
// carries a role outside allowed. On success it stores the principal in the context.
func RequireRoles(a Authorizer, allowed entity.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.Authorize(BearerToken(c), allowed)
		switch {
		case errors.Is(err, application.ErrForbidden):
			response.Error[any](c, http.StatusForbidden, application.ErrForbidden.Error(), nil)
			c.Abort()
			return
		case err != nil:
			c.Header("WWW-Authenticate", `Bearer`)
			response.Error[any](c, http.StatusUnauthorized, "could not validate credentials", nil)
			c.Abort()
			return
		}

		c.Set(ctxPrincipalKey, *p)
		c.Set(CtxUserIDKey, p.UserID)
		c.Set(CtxUserRoleKey, p.Role.String())
		c.Next()
	}
}

// PrincipalFrom returns the caller stored by RequireRoles.
func PrincipalFrom(c *gin.Context) (application.Principal, bool) {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return application.Principal{}, false
	}
	p, ok := v.(application.Principal)
	return p, ok
}
