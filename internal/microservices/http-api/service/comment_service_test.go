package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"anilog/internal/content"
	"anilog/internal/microservices/http-api/dto"
	"anilog/internal/microservices/http-api/models"
	"anilog/internal/microservices/http-api/repository"
	"anilog/internal/review"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryComments is a CommentRepository over a slice, deriving AnonState the
// same way the SQL implementation does.
type memoryComments struct {
	reviews  map[int64]models.Review
	comments []models.Comment
	votes    map[int64]map[string]bool
	clock    time.Time

	// beforeCreate runs at the start of Create, standing in for a writer that
	// commits between the service's checks and the insert.
	beforeCreate func()
}

func newMemoryComments(reviews ...models.Review) *memoryComments {
	m := &memoryComments{
		reviews: map[int64]models.Review{},
		votes:   map[int64]map[string]bool{},
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, rv := range reviews {
		m.reviews[rv.ID] = rv
	}
	return m
}

func (m *memoryComments) AnonState(_ context.Context, reviewID int64, userID string) (*repository.AnonState, error) {
	rv, ok := m.reviews[reviewID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	state := &repository.AnonState{ReviewAuthorID: rv.UserID, ReviewAnonymous: rv.IsAnonymous}
	for _, c := range m.comments {
		if c.ReviewID != reviewID {
			continue
		}
		if c.AnonNumber != nil && *c.AnonNumber > state.MaxOrdinal {
			state.MaxOrdinal = *c.AnonNumber
		}
		if c.UserID != userID {
			continue
		}
		if state.PriorAnonymous == nil {
			anon := c.IsAnonymous
			state.PriorAnonymous = &anon
		}
		if state.ExistingOrdinal == nil && c.AnonNumber != nil {
			n := *c.AnonNumber
			state.ExistingOrdinal = &n
		}
	}
	return state, nil
}

func (m *memoryComments) Create(ctx context.Context, reviewID int64, userID string, build func(repository.AnonState) (*models.Comment, error)) (*models.Comment, error) {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	state, err := m.AnonState(ctx, reviewID, userID)
	if err != nil {
		return nil, err
	}
	c, err := build(*state)
	if err != nil {
		return nil, err
	}
	if c.ParentID != nil {
		if _, err := m.FindByID(ctx, *c.ParentID); err != nil {
			return nil, repository.ErrInvalidReference
		}
	}
	m.clock = m.clock.Add(time.Minute)
	c.ID = int64(len(m.comments) + 1)
	c.CreatedAt = m.clock
	m.comments = append(m.comments, *c)
	return c, nil
}

func (m *memoryComments) FindByID(_ context.Context, id int64) (*models.Comment, error) {
	for _, c := range m.comments {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryComments) ListByReview(_ context.Context, reviewID int64) ([]repository.CommentRow, error) {
	var rows []repository.CommentRow
	for _, c := range m.comments {
		if c.ReviewID != reviewID {
			continue
		}
		nickname := "nick-" + c.UserID
		rows = append(rows, repository.CommentRow{
			Comment:   c,
			Nickname:  &nickname,
			VoteCount: int64(len(m.votes[c.ID])),
		})
	}
	return rows, nil
}

func (m *memoryComments) VotedByUser(_ context.Context, reviewID int64, userID string) (map[int64]bool, error) {
	out := map[int64]bool{}
	for _, c := range m.comments {
		if c.ReviewID == reviewID && m.votes[c.ID][userID] {
			out[c.ID] = true
		}
	}
	return out, nil
}

func (m *memoryComments) Delete(_ context.Context, comment *models.Comment) (int64, error) {
	kept := m.comments[:0]
	var removed int64
	for _, c := range m.comments {
		if c.ID == comment.ID || (c.ParentID != nil && *c.ParentID == comment.ID) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.comments = kept
	return removed, nil
}

func (m *memoryComments) ToggleVote(_ context.Context, commentID int64, userID string) (bool, int64, error) {
	if m.votes[commentID] == nil {
		m.votes[commentID] = map[string]bool{}
	}
	voted := !m.votes[commentID][userID]
	if voted {
		m.votes[commentID][userID] = true
	} else {
		delete(m.votes[commentID], userID)
	}
	return voted, int64(len(m.votes[commentID])), nil
}

func (m *memoryComments) Count(context.Context) (int64, error) {
	return int64(len(m.comments)), nil
}

type commentFixture struct {
	svc      CommentService
	comments *memoryComments
	reviews  *MockReviewRepository
	users    *MockUserRepository
}

// review 1 is by "author" and public, review 2 by "author" and anonymous.
func newCommentFixture() *commentFixture {
	rv1 := models.Review{ID: 1, UserID: "author"}
	rv2 := models.Review{ID: 2, UserID: "author", IsAnonymous: true}
	f := &commentFixture{
		comments: newMemoryComments(rv1, rv2),
		reviews:  new(MockReviewRepository),
		users:    new(MockUserRepository),
	}
	f.reviews.On("FindByID", mock.Anything, int64(1)).Return(&rv1, nil).Maybe()
	f.reviews.On("FindByID", mock.Anything, int64(2)).Return(&rv2, nil).Maybe()
	for _, id := range []string{"author", "u1", "u2", "u3"} {
		f.users.On("FindByID", mock.Anything, id).Return(&models.User{ID: id, Nickname: "nick-" + id}, nil).Maybe()
	}
	f.svc = NewCommentService(f.comments, f.reviews, f.users, testLogger())
	return f
}

func (f *commentFixture) post(t *testing.T, reviewID int64, userID string, req dto.CreateCommentDTO) *dto.CommentResponse {
	t.Helper()
	if req.Content == "" {
		req.Content = "hello"
	}
	resp, err := f.svc.Create(context.Background(), reviewID, userID, req)
	require.NoError(t, err)
	return resp
}

func TestCommentCreate_AnonymityIsSticky(t *testing.T) {
	f := newCommentFixture()

	first := f.post(t, 1, "u2", dto.CreateCommentDTO{IsAnonymous: false})
	second := f.post(t, 1, "u2", dto.CreateCommentDTO{IsAnonymous: true})

	assert.False(t, first.IsAnonymous)
	assert.False(t, second.IsAnonymous)
	assert.Equal(t, "nick-u2", second.Author)
	assert.Nil(t, second.AnonNumber)
	assert.Equal(t, "u2", second.UserID)
}

func TestCommentCreate_SharesOrdinals(t *testing.T) {
	f := newCommentFixture()

	a := f.post(t, 1, "u1", dto.CreateCommentDTO{IsAnonymous: true})
	b := f.post(t, 1, "u2", dto.CreateCommentDTO{IsAnonymous: true})
	c := f.post(t, 1, "u1", dto.CreateCommentDTO{IsAnonymous: false})

	require.NotNil(t, a.AnonNumber)
	require.NotNil(t, b.AnonNumber)
	require.NotNil(t, c.AnonNumber)
	assert.Equal(t, 1, *a.AnonNumber)
	assert.Equal(t, 2, *b.AnonNumber)
	assert.Equal(t, 1, *c.AnonNumber)
	assert.Equal(t, "익명1", c.Author)
	assert.Empty(t, c.UserID)
	assert.Empty(t, c.ProfileImage)

	// ordinals are per review
	other := f.post(t, 2, "u2", dto.CreateCommentDTO{IsAnonymous: true})
	assert.Equal(t, 1, *other.AnonNumber)
}

func TestCommentCreate_ReviewAuthorFollowsReview(t *testing.T) {
	f := newCommentFixture()

	onAnonymous := f.post(t, 2, "author", dto.CreateCommentDTO{IsAnonymous: false})
	assert.True(t, onAnonymous.IsAnonymous)
	assert.True(t, onAnonymous.IsReviewAuthor)
	assert.Equal(t, "익명1 (작성자)", onAnonymous.Author)

	onPublic := f.post(t, 1, "author", dto.CreateCommentDTO{IsAnonymous: true})
	assert.False(t, onPublic.IsAnonymous)
	assert.Equal(t, "nick-author (작성자)", onPublic.Author)
}

func TestCommentCreate_ReplyCollapsesToTopLevel(t *testing.T) {
	f := newCommentFixture()

	top := f.post(t, 1, "u1", dto.CreateCommentDTO{})
	reply := f.post(t, 1, "u2", dto.CreateCommentDTO{ParentID: &top.ID})
	nested := f.post(t, 1, "u3", dto.CreateCommentDTO{ParentID: &reply.ID})

	require.NotNil(t, reply.ParentID)
	require.NotNil(t, nested.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)
	assert.Equal(t, top.ID, *nested.ParentID)
}

func TestCommentCreate_ParentMustBelongToReview(t *testing.T) {
	f := newCommentFixture()
	top := f.post(t, 2, "u1", dto.CreateCommentDTO{})

	_, err := f.svc.Create(context.Background(), 1, "u1", dto.CreateCommentDTO{Content: "x", ParentID: &top.ID})
	assert.ErrorIs(t, err, ErrParentNotFound)

	missing := int64(999)
	_, err = f.svc.Create(context.Background(), 1, "u1", dto.CreateCommentDTO{Content: "x", ParentID: &missing})
	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommentCreate_ParentDeletedBeforeInsert(t *testing.T) {
	f := newCommentFixture()
	top := f.post(t, 1, "u1", dto.CreateCommentDTO{})
	f.comments.beforeCreate = func() {
		_, _ = f.comments.Delete(context.Background(), &models.Comment{ID: top.ID})
	}

	_, err := f.svc.Create(context.Background(), 1, "u2", dto.CreateCommentDTO{Content: "x", ParentID: &top.ID})

	assert.ErrorIs(t, err, ErrParentNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestCommentCreate_Validation(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 1, "u1", dto.CreateCommentDTO{Content: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(ctx, 1, "u1", dto.CreateCommentDTO{Content: strings.Repeat("a", content.MaxCommentLength+1)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(ctx, 1, "u1", dto.CreateCommentDTO{Content: "ok", TierRequest: ptrString("Z")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Create(ctx, 404, "u1", dto.CreateCommentDTO{Content: "ok"})
	assert.ErrorIs(t, err, ErrReviewNotFound)

	resp, err := f.svc.Create(ctx, 1, "u1", dto.CreateCommentDTO{Content: "<b>ok</b>", TierRequest: ptrString("sss")})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	require.NotNil(t, resp.TierRequest)
	assert.Equal(t, "SSS", *resp.TierRequest)
}

func TestCommentAnonStatus(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()

	st, err := f.svc.AnonStatus(ctx, 1, "u1")
	require.NoError(t, err)
	assert.Equal(t, dto.AnonStatusResponse{Forced: false, IsAnonymous: false, Reason: string(review.SourceNone)}, *st)

	f.post(t, 1, "u1", dto.CreateCommentDTO{IsAnonymous: true})
	st, err = f.svc.AnonStatus(ctx, 1, "u1")
	require.NoError(t, err)
	assert.True(t, st.Forced)
	assert.True(t, st.IsAnonymous)
	assert.Equal(t, string(review.SourcePriorComment), st.Reason)

	st, err = f.svc.AnonStatus(ctx, 2, "author")
	require.NoError(t, err)
	assert.True(t, st.Forced)
	assert.True(t, st.IsAnonymous)
	assert.True(t, st.IsReviewAuthor)
	assert.Equal(t, string(review.SourceReviewAuthor), st.Reason)

	_, err = f.svc.AnonStatus(ctx, 404, "u1")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestCommentList_ThreadOrder(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()

	a := f.post(t, 1, "u1", dto.CreateCommentDTO{})
	b := f.post(t, 1, "u2", dto.CreateCommentDTO{IsAnonymous: true})
	ra := f.post(t, 1, "u3", dto.CreateCommentDTO{ParentID: &a.ID})
	rb := f.post(t, 1, "author", dto.CreateCommentDTO{ParentID: &a.ID})
	_, _ = f.svc.ToggleVote(ctx, a.ID, "u9")

	ids := func(list *dto.CommentListResponse) []int64 {
		var out []int64
		for _, c := range list.Comments {
			out = append(out, c.ID)
		}
		return out
	}

	recent, err := f.svc.List(ctx, 1, "", "", "u9")
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, a.ID, ra.ID, rb.ID}, ids(recent))
	assert.Equal(t, 4, recent.Total)

	oldest, err := f.svc.List(ctx, 1, "recent", "asc", "")
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, ra.ID, rb.ID, b.ID}, ids(oldest))

	popular, err := f.svc.List(ctx, 1, "popular", "", "u9")
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, ra.ID, rb.ID, b.ID}, ids(popular))
	assert.True(t, popular.Comments[0].IsVoted)
	assert.Equal(t, int64(1), popular.Comments[0].VoteCount)

	anon := popular.Comments[3]
	assert.Equal(t, "익명1", anon.Author)
	assert.Empty(t, anon.UserID)
	assert.Equal(t, "nick-author (작성자)", popular.Comments[2].Author)

	_, err = f.svc.List(ctx, 1, "loud", "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCommentDelete(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	top := f.post(t, 1, "u1", dto.CreateCommentDTO{})
	f.post(t, 1, "u2", dto.CreateCommentDTO{ParentID: &top.ID})

	err := f.svc.Delete(ctx, top.ID, "u2")
	assert.ErrorIs(t, err, ErrNotCommentAuthor)

	require.NoError(t, f.svc.Delete(ctx, top.ID, "u1"))
	n, _ := f.comments.Count(ctx)
	assert.Zero(t, n)

	err = f.svc.Delete(ctx, top.ID, "u1")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestCommentToggleVote(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	c := f.post(t, 1, "u1", dto.CreateCommentDTO{})

	on, err := f.svc.ToggleVote(ctx, c.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, dto.CommentVoteResponse{Voted: true, VoteCount: 1}, *on)

	off, err := f.svc.ToggleVote(ctx, c.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, dto.CommentVoteResponse{Voted: false, VoteCount: 0}, *off)

	_, err = f.svc.ToggleVote(ctx, 999, "u2")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
