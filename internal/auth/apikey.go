package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// adminCtxKey is the Gin context key used to store the authenticated admin name.
const adminCtxKey = "admin_name"

// APIKeyMiddleware guards staff-only routes by mapping X-API-Key → admin name.
func APIKeyMiddleware(keys map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := strings.TrimSpace(c.GetHeader("X-API-Key"))
		name, ok := lookup(keys, apiKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(adminCtxKey, name)
		c.Next()
	}
}

// AdminName returns the authenticated admin name from the request context.
func AdminName(c *gin.Context) string {
	v, _ := c.Get(adminCtxKey)
	s, _ := v.(string)
	return s
}

// lookup compares every configured key in constant time.
func lookup(keys map[string]string, apiKey string) (string, bool) {
	if apiKey == "" {
		return "", false
	}
	var (
		name  string
		found bool
	)
	for k, n := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(apiKey)) == 1 {
			name, found = n, true
		}
	}
	return name, found
}
