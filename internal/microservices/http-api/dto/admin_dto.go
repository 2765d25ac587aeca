package dto

type StatsResponse struct {
	UserCount    int64 `json:"userCount"`
	AnimeCount   int64 `json:"animeCount"`
	ReviewCount  int64 `json:"reviewCount"`
	CommentCount int64 `json:"commentCount"`
}

type AdminUserResponse struct {
	UserResponse
	ReviewCount  int64 `json:"reviewCount"`
	CommentCount int64 `json:"commentCount"`
}

type SetAdminRequest struct {
	IsAdmin *bool `json:"isAdmin" binding:"required"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// PaginatedReviewResponse: admin review listing
type PaginatedReviewResponse struct {
	Data       []ReviewResponse `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

func NewPagination(page, pageSize int, total int64) Pagination {
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}
