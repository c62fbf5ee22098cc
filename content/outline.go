package content

import (
	"strings"

	"github.com/foomo/devguide/service/vo"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
).Parser()

// Outline describes the structure of a markdown document.
type Outline struct {
	Title       string
	Description string
	Sections    []vo.Section
}

// ParseOutline takes the first level one heading as title, the first top
// level paragraph as description and every level two heading as a section.
func ParseOutline(markdown vo.Markdown) Outline {
	src := []byte(markdown)
	doc := markdownParser.Parse(text.NewReader(src))

	var outline Outline
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			title := plainText(node, src)
			switch node.Level {
			case 1:
				if outline.Title == "" {
					outline.Title = title
				}
			case 2:
				section := vo.Section{Title: title}
				if id, ok := node.AttributeString("id"); ok {
					if b, ok := id.([]byte); ok {
						section.Anchor = string(b)
					}
				}
				outline.Sections = append(outline.Sections, section)
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if outline.Description == "" && node.Parent() == doc {
				outline.Description = plainText(node, src)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return outline
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
