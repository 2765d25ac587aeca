package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReview(t *testing.T) {
	out := RenderReview("**great** show")
	assert.Contains(t, out, "<strong>great</strong>")

	out = RenderReview("hi <script>alert(1)</script>")
	assert.NotContains(t, out, "<script>")
}

func TestSanitizeComment(t *testing.T) {
	got, err := SanitizeComment("  <b>좋아요</b> & 추천  ")
	require.NoError(t, err)
	assert.Equal(t, "좋아요 & 추천", got)

	_, err = SanitizeComment("   ")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = SanitizeComment("<img src=x>")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = SanitizeComment(strings.Repeat("가", MaxCommentLength+1))
	assert.ErrorIs(t, err, ErrTooLong)

	got, err = SanitizeComment(strings.Repeat("가", MaxCommentLength))
	require.NoError(t, err)
	assert.Len(t, []rune(got), MaxCommentLength)
}
