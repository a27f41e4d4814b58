// Package frontier holds the crawl engine's ordering and deduplication
// primitives: a generic FIFO queue, a generic set, and the CrawlToken
// value type the engine enqueues and dequeues as it expands the crawl.
//
// Frontier Responsibilities
//   - Maintain BFS ordering
//   - Deduplicate URLs
//   - Track crawl depth
//   - Prevent infinite traversal
//   - Knows nothing about fetching, extraction, or staleness
//
// It is a data structure module, not a pipeline executor.
package frontier
