// Package mentions finds @handle references in markdown text.
//
// Text inside code spans, code blocks, raw HTML and autolinks is ignored, so
// "`@bob`" or an email address never counts as a mention. The handle "all"
// is the broadcast token and is reported separately.
package mentions

import (
	"regexp"
	"strings"

	"github.com/dalemusser/notifyhub/internal/app/notify"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// BroadcastHandle notifies every team member.
const BroadcastHandle = "all"

var handleRe = regexp.MustCompile(`(?:^|[^\w@.\-/])@([A-Za-z0-9_][A-Za-z0-9_.\-]*)`)

// Extractor implements notify.MentionExtractor. It is safe for concurrent
// use.
type Extractor struct {
	md goldmark.Markdown
}

// New returns an extractor parsing GitHub-flavored markdown.
func New() *Extractor {
	return &Extractor{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Extract returns the distinct handles referenced in src, in order of first
// appearance.
func (e *Extractor) Extract(src string) notify.Mentions {
	var m notify.Mentions
	if !strings.Contains(src, "@") {
		return m
	}

	seen := make(map[string]bool)
	for _, match := range handleRe.FindAllStringSubmatch(e.plainText([]byte(src)), -1) {
		h := strings.TrimRight(match[1], ".-")
		if h == "" {
			continue
		}
		if strings.EqualFold(h, BroadcastHandle) {
			m.Broadcast = true
			continue
		}
		key := strings.ToLower(h)
		if seen[key] {
			continue
		}
		seen[key] = true
		m.Handles = append(m.Handles, h)
	}
	return m
}

// plainText returns the prose of the document with code and HTML removed.
// Removed spans are replaced by a space so they still separate words.
func (e *Extractor) plainText(source []byte) string {
	doc := e.md.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindCodeSpan, ast.KindAutoLink, ast.KindRawHTML:
			if entering {
				b.WriteByte(' ')
			}
			return ast.WalkSkipChildren, nil
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
			if entering {
				b.WriteByte('\n')
			}
			return ast.WalkSkipChildren, nil
		case ast.KindText:
			if entering {
				t := n.(*ast.Text)
				b.Write(t.Segment.Value(source))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
		case ast.KindString:
			if entering {
				b.Write(n.(*ast.String).Value)
			}
		default:
			if !entering && n.Type() == ast.TypeBlock {
				b.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
