package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatehouse-dev/gatehouse/internal/auth"
	"github.com/gatehouse-dev/gatehouse/internal/rbac"
)

// RequireAdmin ensures the caller is a system operator. Tenant-scoped
// authorization (workspace ownership, team permission grants) is handled in
// the service layer, not here.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := auth.IdentityFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		isAdmin, err := rbac.IsAdmin(identity.User.ID)
		if err != nil || !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
