package review

import "strconv"

const (
	AnonymousLabel = "익명"
	UnknownLabel   = "알 수 없음"
	AuthorSuffix   = " (작성자)"
)

// Commenter is what a comment's display label is built from. Nickname is nil
// when the user no longer exists.
type Commenter struct {
	Anonymous      bool
	Ordinal        *int
	Nickname       *string
	IsReviewAuthor bool
}

// CommentLabel renders "익명N" for anonymous comments, the nickname
// otherwise, and marks the review's author.
func CommentLabel(c Commenter) string {
	var name string
	switch {
	case c.Anonymous:
		name = AnonymousLabel
		if c.Ordinal != nil {
			name += strconv.Itoa(*c.Ordinal)
		}
	case c.Nickname != nil && *c.Nickname != "":
		name = *c.Nickname
	default:
		name = UnknownLabel
	}
	if c.IsReviewAuthor {
		name += AuthorSuffix
	}
	return name
}

// ReviewerLabel is the author name shown on a review.
func ReviewerLabel(anonymous bool, nickname *string) string {
	if anonymous {
		return AnonymousLabel
	}
	if nickname == nil || *nickname == "" {
		return UnknownLabel
	}
	return *nickname
}
