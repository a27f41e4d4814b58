package extractor

import "net/url"

// ExtractionResult holds the outbound links discovered in a single HTML
// document, already normalized to canonical form, deduplicated and
// sorted by string representation.
type ExtractionResult struct {
	Links []url.URL
}
