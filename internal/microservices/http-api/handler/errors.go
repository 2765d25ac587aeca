package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"anilog/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

// Guards are the middlewares handlers wrap their routes in.
type Guards struct {
	Auth     gin.HandlerFunc // valid token required
	Optional gin.HandlerFunc // token read when present
	Limit    gin.HandlerFunc // write rate limit
	Admin    gin.HandlerFunc // admin role required, after Auth
}

var errorKinds = []struct {
	kind   error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
}

// respondError maps a service error onto a status. Unknown errors are logged
// and answered with a generic 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			msg := strings.TrimPrefix(err.Error(), k.kind.Error()+": ")
			c.JSON(k.status, gin.H{"error": msg})
			return
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
		return
	}
	logger.Error("request failed", "method", c.Request.Method, "route", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// pathID parses a positive int64 path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil {
		return v
	}
	return def
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
