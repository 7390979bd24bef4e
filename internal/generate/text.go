package generate

import (
	"strings"

	"golang.org/x/net/html"
)

// strippedText concatenates the text nodes below nodes, each stripped of
// surrounding whitespace, the same way the page's visible labels are read
func strippedText(nodes []*html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}
