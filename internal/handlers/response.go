package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/blinder/internal/errors"
)

// RespondError writes {"error": msg} with the status mapped from err.
// Server-side failures are logged; their detail never reaches the client.
func RespondError(c *gin.Context, log *slog.Logger, err error) {
	status := svcErr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": svcErr.Message(err)})
}

func RespondBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
