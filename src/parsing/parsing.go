// Package parsing flattens post markdown into plain text for topic
// summaries. Cooked HTML arrives pre-rendered from the posting pipeline;
// nothing here produces it.
package parsing

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var PlaintextMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRenderer(plaintextRenderer{}),
)

func ParseMarkdown(source string, md goldmark.Markdown) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		panic(err)
	}

	return buf.String()
}

const summaryMaxLength = 500

// Produces the plain-text summary of a post for topic metadata. The result
// is a single line, truncated on a rune boundary.
func Summarize(source string) string {
	plaintext := strings.TrimSpace(ParseMarkdown(source, PlaintextMarkdown))

	runes := []rune(plaintext)
	if len(runes) > summaryMaxLength {
		return string(runes[:summaryMaxLength-1]) + "…"
	}
	return plaintext
}
