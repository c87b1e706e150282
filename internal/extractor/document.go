// Package extractor finds the first link a reader would click on an article
// page under the rules of the Philosophy game.
package extractor

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ContentRootID is the id of the element holding the article body.
const ContentRootID = "mw-content-text"

// Document is a parsed article page rooted at its main content region.
// It is read-only once parsed.
type Document struct {
	root *goquery.Selection
}

// ParseDocument parses raw HTML. A page without a content region yields a
// Document with an empty root, which has no content elements.
func ParseDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{root: doc.Find("#" + ContentRootID).First()}, nil
}

// ParseDocumentString is ParseDocument for an in-memory page.
func ParseDocumentString(html string) (*Document, error) {
	return ParseDocument(strings.NewReader(html))
}

// Root returns the content region. It may be an empty selection.
func (d *Document) Root() *goquery.Selection {
	return d.root
}

// HasContent reports whether the content region was found.
func (d *Document) HasContent() bool {
	return d.root.Length() > 0
}
