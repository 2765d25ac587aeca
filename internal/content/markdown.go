package content

import (
	"bytes"
	"errors"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

const MaxCommentLength = 1000

var (
	ErrEmpty   = errors.New("content is empty")
	ErrTooLong = errors.New("content is too long")
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

func init() {
	ugcPolicy.AllowImages()
	ugcPolicy.AddTargetBlankToFullyQualifiedLinks(true)
	ugcPolicy.RequireNoReferrerOnLinks(true)
}

// RenderReview turns a review body written in markdown into sanitized HTML.
func RenderReview(source string) string {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return html.EscapeString(source)
	}
	return string(ugcPolicy.SanitizeBytes(buf.Bytes()))
}

// SanitizeComment trims a comment and strips all markup from it. Entities
// produced by the sanitizer are decoded back so the stored text stays plain.
func SanitizeComment(raw string) (string, error) {
	text := strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(raw)))
	if text == "" {
		return "", ErrEmpty
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return "", ErrTooLong
	}
	return text, nil
}

// SanitizePlain strips markup from short single-line fields such as one-liners.
func SanitizePlain(raw string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(raw)))
}
