package v1

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// bearerAuth requires "Authorization: Bearer <token>". An empty token leaves the group open.
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			errorResponse(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		got := strings.TrimPrefix(header, bearerPrefix)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			errorResponse(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Next()
	}
}
