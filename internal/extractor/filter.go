package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Link is an anchor found in a content element.
type Link struct {
	Href string
	Text string

	node *html.Node
}

// FilterLinks returns the links of element a reader may click, in document
// order. Links inside parentheses and citation markers are left out.
func FilterLinks(element *goquery.Selection) []Link {
	if element.Length() == 0 || strings.TrimSpace(element.Text()) == "" {
		return nil
	}

	citations := citationLinks(element)

	var links []Link
	depth := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				depth += parenthesisDelta(c.Data)
			case html.ElementNode:
				if c.DataAtom == atom.A && depth == 0 {
					if href, ok := attr(c, "href"); ok {
						if _, cited := citations[c]; !cited {
							links = append(links, Link{Href: href, Text: nodeText(c), node: c})
						}
					}
				}
			}
			walk(c)
		}
	}
	walk(element.Get(0))

	return links
}

// citationLinks collects the first anchor of every superscript in element.
func citationLinks(element *goquery.Selection) map[*html.Node]struct{} {
	citations := make(map[*html.Node]struct{})
	element.Find("sup").Each(func(_ int, sup *goquery.Selection) {
		if a := sup.Find("a").First(); a.Length() > 0 {
			citations[a.Get(0)] = struct{}{}
		}
	})
	return citations
}

// parenthesisDelta is the change in nesting depth after reading text.
func parenthesisDelta(text string) int {
	return strings.Count(text, "(") - strings.Count(text, ")")
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(b.String())
}
