package handler

import (
	"log/slog"
	"net/http"

	"anilog/internal/microservices/http-api/dto"
	"anilog/internal/microservices/http-api/middleware"
	"anilog/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	svc    service.CommentService
	logger *slog.Logger
}

func NewCommentHandler(svc service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{svc: svc, logger: logger}
}

func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	rg.GET("/reviews/:id/comments", g.Optional, h.List)
	rg.POST("/reviews/:id/comments", g.Auth, g.Limit, h.Create)
	rg.GET("/reviews/:id/user-anon-status", g.Auth, h.AnonStatus)
	rg.POST("/comments/:id/vote", g.Auth, g.Limit, h.Vote)
	rg.DELETE("/comments/:id", g.Auth, h.Delete)
}

// List: GET /reviews/:id/comments?sort=popular|recent&order=asc|desc
func (h *CommentHandler) List(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.svc.List(ctx, reviewID, c.Query("sort"), c.Query("order"), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Create(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.svc.Create(ctx, reviewID, middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CommentHandler) AnonStatus(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.svc.AnonStatus(ctx, reviewID, middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Vote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := h.svc.ToggleVote(ctx, id, middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, id, middleware.UserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
