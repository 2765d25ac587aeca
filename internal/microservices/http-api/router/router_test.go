package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"anilog/internal/config"
	"anilog/internal/microservices/http-api/handler"
	"anilog/internal/microservices/http-api/middleware"
	"anilog/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type rejectAll struct{}

func (rejectAll) ValidateToken(string) (*service.Claims, error) {
	return nil, service.ErrInvalidToken
}

func (rejectAll) CurrentRole(context.Context, string) (string, error) {
	return "", service.ErrInvalidToken
}

type pingHandler struct{}

func (pingHandler) RegisterRoutes(rg *gin.RouterGroup, g handler.Guards) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	rg.GET("/private", g.Auth, func(c *gin.Context) { c.String(http.StatusOK, "secret") })
}

func newTestRouter(health HealthCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{GoEnv: "test", CORSOrigins: []string{"*"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, logger, rejectAll{}, middleware.NewRateLimiter(100, 100), health, pingHandler{})
}

func TestRouter_MountsHandlersUnderAPI(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Health(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(func(context.Context) error { return nil }).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	newTestRouter(func(context.Context) error { return errors.New("db down") }).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
