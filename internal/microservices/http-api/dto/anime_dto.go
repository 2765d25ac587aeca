package dto

import (
	"anilog/internal/microservices/http-api/models"
	"anilog/internal/review"
)

type CategoryBrief struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// AnimeCard is an anime with its review aggregate, as shown in lists.
type AnimeCard struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	CoverImage  string          `json:"coverImage"`
	SeriesID    *int64          `json:"seriesId,omitempty"`
	Tier        review.Tier     `json:"tier"`
	Rating      float64         `json:"rating"`
	ReviewCount int             `json:"reviewCount"`
	OneLiner    string          `json:"oneLiner,omitempty"`
	Categories  []CategoryBrief `json:"categories"`
}

type SeriesBrief struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// AnimeDetailResponse: one anime, its series and the other seasons of it
type AnimeDetailResponse struct {
	AnimeCard
	Series  *SeriesBrief `json:"series,omitempty"`
	Related []AnimeCard  `json:"related"`
}

type CategoryResponse struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Icon      string      `json:"icon"`
	SortOrder int         `json:"sortOrder"`
	Anime     []AnimeCard `json:"anime,omitempty"`
}

type SeriesResponse struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	AnimeIDs []int64 `json:"animeIds"`
}

// Admin catalog payloads

type AnimeRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	CoverImage  *string `json:"coverImage" binding:"omitempty,max=500"`
	SeriesID    *int64  `json:"seriesId"`
	CategoryIDs []int64 `json:"categoryIds"`
}

type CategoryRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=50"`
	Icon      string `json:"icon" binding:"max=16"`
	SortOrder int    `json:"sortOrder"`
}

type SeriesRequest struct {
	Title    string  `json:"title" binding:"required,min=1,max=200"`
	AnimeIDs []int64 `json:"animeIds"`
}

type FeaturedRequest struct {
	AnimeID   int64 `json:"animeId" binding:"required"`
	SortOrder int   `json:"sortOrder"`
}

func (in AnimeRequest) ToModel() models.Anime {
	return models.Anime{
		Title:      in.Title,
		CoverImage: in.CoverImage,
		SeriesID:   in.SeriesID,
	}
}

func FromModelToCategoryBriefs(cats []models.Category) []CategoryBrief {
	out := make([]CategoryBrief, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryBrief{ID: c.ID, Name: c.Name, Icon: c.Icon})
	}
	return out
}

// FromModelToAnimeCard fills the static part of a card; the aggregate is
// added by the caller.
func FromModelToAnimeCard(a *models.Anime, agg review.Aggregate) AnimeCard {
	card := AnimeCard{
		ID:          a.ID,
		Title:       a.Title,
		SeriesID:    a.SeriesID,
		Tier:        agg.Tier,
		Rating:      agg.Rating,
		ReviewCount: agg.ReviewCount,
		Categories:  FromModelToCategoryBriefs(a.Categories),
	}
	if a.CoverImage != nil {
		card.CoverImage = *a.CoverImage
	}
	return card
}

func FromModelToSeriesResponse(s *models.Series) SeriesResponse {
	ids := make([]int64, 0, len(s.Anime))
	for _, a := range s.Anime {
		ids = append(ids, a.ID)
	}
	return SeriesResponse{ID: s.ID, Title: s.Title, AnimeIDs: ids}
}
