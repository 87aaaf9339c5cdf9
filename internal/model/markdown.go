package model

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DescriptionPreview extracts the first paragraph of a card description as
// plain text, for rendering on card fronts where markdown markup would be
// noise. Returns "" for empty or heading-only descriptions.
func DescriptionPreview(description string) string {
	src := []byte(description)
	if len(strings.TrimSpace(description)) == 0 {
		return ""
	}

	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var preview string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if p, ok := n.(*ast.Paragraph); ok {
			preview = string(textOf(p, src))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(preview)
}

func textOf(n ast.Node, src []byte) []byte {
	var out []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			out = append(out, t.Segment.Value(src)...)
			if t.SoftLineBreak() || t.HardLineBreak() {
				out = append(out, ' ')
			}
		default:
			out = append(out, textOf(c, src)...)
		}
	}
	return out
}
