package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ownerCookie  = "email"
	ownerHeader  = "X-Owner"
	ownerContext = "owner"
)

// RequireOwner resolves the caller's identity from the email cookie or the
// X-Owner header and rejects requests that carry neither.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := strings.TrimSpace(c.GetHeader(ownerHeader))
		if owner == "" {
			if cookie, err := c.Cookie(ownerCookie); err == nil {
				owner = strings.TrimSpace(cookie)
			}
		}
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Set(ownerContext, owner)
		c.Next()
	}
}

// OwnerFrom returns the identity stored by RequireOwner.
func OwnerFrom(c *gin.Context) string {
	return c.GetString(ownerContext)
}
