// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"payana/internal/apperrors"
)

type errorResponse struct {
	Error string `json:"error"`
}

type idResponse struct {
	ID string `json:"id"`
}

type registrationResponse struct {
	ID         string `json:"id"`
	Credential string `json:"credential"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeDomainError maps a service error onto the taxonomy. Infrastructure
// failures are logged but never echoed to the caller.
func writeDomainError(c *gin.Context, log *slog.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", c.Request.URL.Path, "error", err)
		writeError(c, status, "internal error")
		return
	}
	writeError(c, status, err.Error())
}
