package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// openPaths are reachable without a token so liveness probes and
// Prometheus scrapers keep working when authentication is enabled.
var openPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// Authentication guards the operational API with a static bearer token.
// An empty token disables the check entirely.
func Authentication(token string) gin.HandlerFunc {
	if token == "" {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if openPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		presented, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || presented != token {
			log.Warn().
				Str("path", c.Request.URL.Path).
				Str("remote", c.ClientIP()).
				Msg("rejected unauthenticated API request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, map[string]any{
				"error": map[string]any{"code": "UNAUTHORIZED", "message": "missing or invalid bearer token"},
			})
			return
		}
		c.Next()
	}
}
