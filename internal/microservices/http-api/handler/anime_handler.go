package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"anilog/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AnimeHandler struct {
	svc    service.AnimeService
	logger *slog.Logger
}

func NewAnimeHandler(svc service.AnimeService, logger *slog.Logger) *AnimeHandler {
	return &AnimeHandler{svc: svc, logger: logger}
}

func (h *AnimeHandler) RegisterRoutes(rg *gin.RouterGroup, _ Guards) {
	rg.GET("/anime", h.List)
	rg.GET("/anime/:id", h.Get)
	rg.GET("/anime-list", h.Picker)
	rg.GET("/featured", h.Featured)
	rg.GET("/categories", h.Categories)
	rg.GET("/series", h.Series)
	rg.GET("/rankings/top-rated", h.TopRated)
}

// List: GET /anime?category=<id>&sort=rating|recent
func (h *AnimeHandler) List(c *gin.Context) {
	var categoryID *int64
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}
		categoryID = &id
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	cards, err := h.svc.List(ctx, categoryID, c.Query("sort"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *AnimeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	anime, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, anime)
}

func (h *AnimeHandler) Picker(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.svc.Picker(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AnimeHandler) Featured(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	cards, err := h.svc.Featured(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *AnimeHandler) Categories(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	cats, err := h.svc.Categories(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *AnimeHandler) Series(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	series, err := h.svc.Series(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *AnimeHandler) TopRated(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	cards, err := h.svc.TopRated(ctx, queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}
