package scrape

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// extractNodeBySelector supports "#id", ".class" and tag selectors.
func extractNodeBySelector(doc *html.Node, selector string) (*html.Node, error) {
	var match func(*html.Node) bool
	switch {
	case strings.HasPrefix(selector, "#"):
		id := strings.TrimPrefix(selector, "#")
		match = func(n *html.Node) bool { return attr(n, "id") == id }
	case strings.HasPrefix(selector, "."):
		class := strings.TrimPrefix(selector, ".")
		match = func(n *html.Node) bool {
			for _, c := range strings.Fields(attr(n, "class")) {
				if c == class {
					return true
				}
			}
			return false
		}
	default:
		match = func(n *html.Node) bool { return n.Data == selector }
	}

	if n := findNode(doc, match); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("no element matches '%s'", selector)
}

// findNode walks the tree depth first and returns the first element for
// which match is true.
func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result := findNode(c, match); result != nil {
			return result
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// extractTitle extracts the title from the HTML document
func extractTitle(doc *html.Node) string {
	n := findNode(doc, func(n *html.Node) bool { return n.Data == "title" })
	if n == nil || n.FirstChild == nil || n.FirstChild.Type != html.TextNode {
		return ""
	}
	return strings.TrimSpace(n.FirstChild.Data)
}

func extractMeta(doc *html.Node, name string) string {
	n := findNode(doc, func(n *html.Node) bool {
		return n.Data == "meta" && attr(n, "name") == name && attr(n, "content") != ""
	})
	if n == nil {
		return ""
	}
	return attr(n, "content")
}

// extractMetaDescription extracts the meta description from the HTML document
func extractMetaDescription(doc *html.Node) string {
	return extractMeta(doc, "description")
}

// extractMetaKeywords extracts the comma separated meta keywords
func extractMetaKeywords(doc *html.Node) []string {
	var keywords []string
	for _, keyword := range strings.Split(extractMeta(doc, "keywords"), ",") {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}
