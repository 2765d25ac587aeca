package models

// All lists every entity in migration order.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Series{},
		&Category{},
		&Anime{},
		&AnimeCategory{},
		&Featured{},
		&Review{},
		&ReviewVote{},
		&Comment{},
		&CommentVote{},
	}
}
