package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"article": true, "br": true, "details": true, "div": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ol": true, "p": true, "section": true, "summary": true,
	"table": true, "td": true, "tr": true, "ul": true,
}

// BlockText renders a selection as plain text with newlines at block element
// boundaries, so line-oriented extraction patterns see the page the way a
// reader does. Script and style contents are dropped.
func BlockText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, node := range sel.Nodes {
		writeBlockText(&b, node)
	}

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}

func writeBlockText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
		if blockTags[n.Data] {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeBlockText(b, c)
		}
		if blockTags[n.Data] {
			b.WriteByte('\n')
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeBlockText(b, c)
	}
}
