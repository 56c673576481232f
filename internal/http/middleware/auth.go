// README: Credential extraction for gated operations.
package middleware

import "github.com/gin-gonic/gin"

// HeaderAPIKey carries the actor's secret token on gated operations.
const HeaderAPIKey = "X-API-Key"

// Credential returns the presented credential, or "" when absent. Whether a
// missing credential is an error is decided by the engine, not the transport.
func Credential(c *gin.Context) string {
	return c.GetHeader(HeaderAPIKey)
}
