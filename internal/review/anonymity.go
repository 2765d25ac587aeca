package review

// AnonymitySource records which rule fixed a commenter's anonymity.
type AnonymitySource string

const (
	SourceReviewAuthor AnonymitySource = "review_author"
	SourcePriorComment AnonymitySource = "prior_comment"
	SourceNone         AnonymitySource = "none"
)

// AnonymityInput is everything known about a user before they comment on a
// review. PriorAnonymous is nil when the user has not commented there yet.
type AnonymityInput struct {
	IsReviewAuthor  bool
	ReviewAnonymous bool
	PriorAnonymous  *bool
	Requested       bool
}

// AnonymityDecision is the effective anonymity of the next comment.
// Forced means the user's request was not consulted.
type AnonymityDecision struct {
	Anonymous bool
	Forced    bool
	Source    AnonymitySource
}

// ResolveAnonymity applies, in order: the review author follows the review's
// own anonymity, a returning commenter keeps their first choice, anyone else
// gets what they asked for.
func ResolveAnonymity(in AnonymityInput) AnonymityDecision {
	switch {
	case in.IsReviewAuthor:
		return AnonymityDecision{Anonymous: in.ReviewAnonymous, Forced: true, Source: SourceReviewAuthor}
	case in.PriorAnonymous != nil:
		return AnonymityDecision{Anonymous: *in.PriorAnonymous, Forced: true, Source: SourcePriorComment}
	default:
		return AnonymityDecision{Anonymous: in.Requested, Forced: false, Source: SourceNone}
	}
}

// AssignOrdinal returns the anonymous number for a user on one review:
// their existing number if any, otherwise one past the highest in use.
// maxInUse is 0 when no anonymous comment exists yet.
func AssignOrdinal(existing *int, maxInUse int) int {
	if existing != nil && *existing > 0 {
		return *existing
	}
	if maxInUse < 0 {
		maxInUse = 0
	}
	return maxInUse + 1
}
