package extractor

// ResolveFirst returns the first eligible link of doc: the first link of the
// first content element that has any. ok is false when the page has none.
func ResolveFirst(doc *Document) (link Link, ok bool) {
	for _, element := range SelectElements(doc) {
		if links := FilterLinks(element); len(links) > 0 {
			return links[0], true
		}
	}
	return Link{}, false
}
