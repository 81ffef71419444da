// Package htmlsanitize turns user-written note bodies into HTML that is safe
// to embed in notification emails.
package htmlsanitize

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	policy = newPolicy()
	md     = goldmark.New(goldmark.WithExtensions(extension.GFM))
)

// newPolicy allows the formatting notes render to. Links are forced to
// nofollow. Images are dropped since most mail clients block them anyway.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowStandardAttributes()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.AllowElements("p", "br", "hr", "span",
		"strong", "b", "em", "i", "del", "s", "mark",
		"code", "pre", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowLists()
	p.AllowTables()
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	return p
}

// Sanitize strips everything unsafe from s.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// RenderMarkdown renders a markdown note body and sanitizes the result.
// Raw HTML in the body is escaped by the renderer, not passed through.
func RenderMarkdown(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return PlainTextToHTML(body)
	}
	return strings.TrimSpace(Sanitize(buf.String()))
}

// PlainTextToHTML escapes s and turns newlines into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// Excerpt returns at most n runes of s on one line, adding an ellipsis
// when cut.
func Excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
