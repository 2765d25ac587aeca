package review

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"
)

var ErrParentNotFound = errors.New("parent comment not found")

// ParentRef is the part of a stored comment that parent resolution needs.
type ParentRef struct {
	ID       int64
	ReviewID int64
	ParentID *int64
}

// ResolveParent maps a requested parent to the top-level comment a new reply
// attaches to. A nil requested id means a top-level comment. parent is the
// looked-up comment, nil if it does not exist.
func ResolveParent(reviewID int64, requested *int64, parent *ParentRef) (*int64, error) {
	if requested == nil {
		return nil, nil
	}
	if parent == nil || parent.ReviewID != reviewID {
		return nil, ErrParentNotFound
	}
	if parent.ParentID != nil {
		id := *parent.ParentID
		return &id, nil
	}
	id := parent.ID
	return &id, nil
}

// CommentSort is the order of top-level comments.
type CommentSort string

const (
	CommentsPopular CommentSort = "popular"
	CommentsRecent  CommentSort = "recent"
)

// CommentOrder combines a sort with a direction for the recent sort.
type CommentOrder struct {
	Sort      CommentSort
	Ascending bool
}

// ParseCommentOrder defaults to recent, newest first.
func ParseCommentOrder(sort, order string) (CommentOrder, error) {
	var o CommentOrder
	switch CommentSort(sort) {
	case "", CommentsRecent:
		o.Sort = CommentsRecent
	case CommentsPopular:
		o.Sort = CommentsPopular
	default:
		return o, fmt.Errorf("%w: %q", ErrInvalidSort, sort)
	}
	switch order {
	case "", "desc":
	case "asc":
		o.Ascending = true
	default:
		return o, fmt.Errorf("%w: order %q", ErrInvalidSort, order)
	}
	return o, nil
}

// ThreadKey carries the fields comment ordering depends on.
type ThreadKey struct {
	ID        int64
	ParentID  *int64
	VoteCount int64
	CreatedAt time.Time
}

// FlattenThread orders top-level comments by o, places each one's replies
// right after it oldest first, and returns the flattened list. Replies whose
// parent is missing are appended at the end, oldest first.
func FlattenThread[T any](items []T, o CommentOrder, key func(T) ThreadKey) []T {
	var tops []T
	replies := make(map[int64][]T)
	for _, it := range items {
		k := key(it)
		if k.ParentID == nil {
			tops = append(tops, it)
			continue
		}
		replies[*k.ParentID] = append(replies[*k.ParentID], it)
	}

	slices.SortStableFunc(tops, func(a, b T) int {
		ka, kb := key(a), key(b)
		if o.Sort == CommentsPopular {
			if c := cmp.Compare(kb.VoteCount, ka.VoteCount); c != 0 {
				return c
			}
			if c := kb.CreatedAt.Compare(ka.CreatedAt); c != 0 {
				return c
			}
			return cmp.Compare(kb.ID, ka.ID)
		}
		c := ka.CreatedAt.Compare(kb.CreatedAt)
		if c == 0 {
			c = cmp.Compare(ka.ID, kb.ID)
		}
		if o.Ascending {
			return c
		}
		return -c
	})

	chronological := func(a, b T) int {
		ka, kb := key(a), key(b)
		if c := ka.CreatedAt.Compare(kb.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(ka.ID, kb.ID)
	}

	out := make([]T, 0, len(items))
	for _, top := range tops {
		out = append(out, top)
		id := key(top).ID
		children := replies[id]
		slices.SortStableFunc(children, chronological)
		out = append(out, children...)
		delete(replies, id)
	}

	var orphans []T
	for _, children := range replies {
		orphans = append(orphans, children...)
	}
	slices.SortStableFunc(orphans, chronological)
	return append(out, orphans...)
}
