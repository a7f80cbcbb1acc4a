package adminapi

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/usdot-its/ppm/internal/ppmlog"
)

// AuthMiddleware validates a bearer token against ADMIN_AUTH_TOKEN.
// Adapted from the teacher's internal/api/auth.go bearer-token
// middleware for the operator-facing admin surface. If the token is
// unset, every request is allowed — a deployment behind its own
// network boundary can opt out, but a release build logs a warning so
// the gap isn't silent.
func AuthMiddleware(log *ppmlog.Logger) gin.HandlerFunc {
	token := os.Getenv("ADMIN_AUTH_TOKEN")
	if token == "" && os.Getenv("GIN_MODE") == "release" {
		log.Warnw("ADMIN_AUTH_TOKEN is not set in release mode; admin endpoints are unauthenticated")
	}

	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed Authorization header"})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
