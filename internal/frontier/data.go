package frontier

/*
 Frontier - manages crawl state & ordering
*/

import (
	"net/url"
)

// CrawlToken is a frontier-issued, per-URL crawl token: "this URL, at this
// depth, in this deterministic order, is next". It carries ordering and
// depth metadata only — no admission or scheduling policy.
type CrawlToken struct {
	url   url.URL
	depth int
}

// NewCrawlToken creates a new CrawlToken with the given URL and depth.
func NewCrawlToken(u url.URL, depth int) CrawlToken {
	return CrawlToken{
		url:   u,
		depth: depth,
	}
}

func (c *CrawlToken) URL() url.URL {
	return c.url
}

func (c *CrawlToken) Depth() int {
	return c.depth
}
