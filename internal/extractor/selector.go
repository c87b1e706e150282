package extractor

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	contentElementMatcher = cascadia.MustCompile("p, li")

	// Paragraphs and list items inside tables, navigation boxes and image
	// captions hold links a reader cannot "click" in the game.
	excludedElementMatcher = cascadia.MustCompile(
		"table p, table li, " +
			"div.navbar p, div.navbar li, .navbox p, .navbox li, " +
			"div.thumbcaption p, div.thumbcaption li, figcaption p, figcaption li",
	)
)

// SelectElements returns the content elements of doc eligible to be scanned
// for links, in document order. Each returned selection holds one node.
func SelectElements(doc *Document) []*goquery.Selection {
	root := doc.Root()
	if root.Length() == 0 {
		return nil
	}

	excluded := make(map[*html.Node]struct{})
	for _, n := range root.FindMatcher(excludedElementMatcher).Nodes {
		excluded[n] = struct{}{}
	}

	var elements []*goquery.Selection
	root.FindMatcher(contentElementMatcher).Each(func(_ int, s *goquery.Selection) {
		if _, skip := excluded[s.Get(0)]; skip {
			return
		}
		elements = append(elements, s)
	})
	return elements
}
