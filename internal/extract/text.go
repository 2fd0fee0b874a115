package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// skippedElements never contribute to rendered text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// renderedText returns the visible text under sel with text nodes joined by
// single spaces, so adjacent blocks never fuse into one number.
func renderedText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		collectText(n, &b)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	case html.ElementNode:
		if skippedElements[n.Data] {
			return
		}
	case html.CommentNode:
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// documentText is the rendered text of the whole page.
func documentText(doc *goquery.Document) string {
	return renderedText(doc.Selection)
}

// WordCount counts whitespace-separated words in the main content region:
// the post body container, else the article element, else the whole body.
func WordCount(doc *goquery.Document) int {
	for _, selector := range []string{"div.post-content", "article", "body"} {
		region := doc.Find(selector).First()
		if region.Length() > 0 {
			return len(strings.Fields(renderedText(region)))
		}
	}

	return len(strings.Fields(documentText(doc)))
}
