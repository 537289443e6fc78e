package core

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// PreviewLength is the number of characters shown on a note card.
const PreviewLength = 100

var stripPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Preview renders the content as plain text cut to limit runes.
// Markup is stripped; an ellipsis marks truncation.
func Preview(content string, limit int) string {
	text := html.UnescapeString(stripPolicy.Sanitize(content))
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "No content"
	}

	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
