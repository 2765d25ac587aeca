package handler

import (
	"log/slog"
	"net/http"

	"anilog/internal/microservices/http-api/dto"
	"anilog/internal/microservices/http-api/middleware"
	"anilog/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the curation surface. Every route requires the admin role.
type AdminHandler struct {
	admin   service.AdminService
	catalog service.CatalogService
	anime   service.AnimeService
	logger  *slog.Logger
}

func NewAdminHandler(admin service.AdminService, catalog service.CatalogService, anime service.AnimeService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, catalog: catalog, anime: anime, logger: logger}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	admin := rg.Group("/admin", g.Auth, g.Admin)
	admin.GET("/stats", h.Stats)

	admin.GET("/anime", h.ListAnime)
	admin.POST("/anime", h.CreateAnime)
	admin.PUT("/anime/:id", h.UpdateAnime)
	admin.DELETE("/anime/:id", h.DeleteAnime)

	admin.GET("/series", h.ListSeries)
	admin.POST("/series", h.CreateSeries)
	admin.PUT("/series/:id", h.UpdateSeries)
	admin.DELETE("/series/:id", h.DeleteSeries)

	admin.GET("/categories", h.ListCategories)
	admin.POST("/categories", h.CreateCategory)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)

	admin.POST("/featured", h.PutFeatured)
	admin.DELETE("/featured/:animeId", h.RemoveFeatured)

	admin.GET("/users", h.ListUsers)
	admin.PUT("/users/:id", h.SetAdmin)
	admin.DELETE("/users/:id", h.DeleteUser)

	admin.GET("/reviews", h.ListReviews)
	admin.DELETE("/reviews/:id", h.DeleteReview)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.admin.Stats(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Anime

func (h *AdminHandler) ListAnime(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	cards, err := h.anime.List(ctx, nil, string(service.AnimeByRecent))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *AdminHandler) CreateAnime(c *gin.Context) {
	var req dto.AnimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	card, err := h.catalog.CreateAnime(ctx, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, card)
}

func (h *AdminHandler) UpdateAnime(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AnimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	card, err := h.catalog.UpdateAnime(ctx, id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (h *AdminHandler) DeleteAnime(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.DeleteAnime(ctx, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Series

func (h *AdminHandler) ListSeries(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	series, err := h.anime.Series(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *AdminHandler) CreateSeries(c *gin.Context) {
	var req dto.SeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	series, err := h.catalog.CreateSeries(ctx, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, series)
}

func (h *AdminHandler) UpdateSeries(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	series, err := h.catalog.UpdateSeries(ctx, id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *AdminHandler) DeleteSeries(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.DeleteSeries(ctx, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Categories

func (h *AdminHandler) ListCategories(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	cats, err := h.catalog.ListCategories(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cat, err := h.catalog.CreateCategory(ctx, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *AdminHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cat, err := h.catalog.UpdateCategory(ctx, id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.DeleteCategory(ctx, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Featured

func (h *AdminHandler) PutFeatured(c *gin.Context) {
	var req dto.FeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.PutFeatured(ctx, req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) RemoveFeatured(c *gin.Context) {
	animeID, ok := pathID(c, "animeId")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.catalog.RemoveFeatured(ctx, animeID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Users

func (h *AdminHandler) ListUsers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.admin.ListUsers(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) SetAdmin(c *gin.Context) {
	var req dto.SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.admin.SetAdmin(ctx, middleware.UserID(c), c.Param("id"), *req.IsAdmin); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.admin.DeleteUser(ctx, middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reviews

func (h *AdminHandler) ListReviews(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.admin.ListReviews(ctx, queryInt(c, "page", 1), queryInt(c, "pageSize", 20))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminHandler) DeleteReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.admin.DeleteReview(ctx, middleware.UserID(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
