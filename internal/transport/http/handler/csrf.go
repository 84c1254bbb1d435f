package handler

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/swinggity/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

type CSRFHandler struct {
	secureCookies bool
	logger        *slog.Logger
}

func NewCSRFHandler(secureCookies bool, logger *slog.Logger) *CSRFHandler {
	return &CSRFHandler{secureCookies: secureCookies, logger: logger.With("component", "csrf_handler")}
}

// GET /api/csrf-token
// Returns the value the client must echo in X-CSRF-Token.
func (h *CSRFHandler) Token(c *gin.Context) {
	value, err := middleware.EnsureCSRFCookie(c, h.secureCookies)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "issue csrf token", "error", err)
		fail(c, http.StatusInternalServerError, errServer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"csrfToken": value})
}
