// Package crawler orchestrates fetching, extraction, deduplication and
// persistence of web pages.
//
// Two entry points share the same per-URL processing:
//   - CrawlSite walks one site breadth-first from a seed URL, bounded by a
//     maximum depth and a page cap, with a politeness delay between fetches.
//   - BatchFetch processes an explicit list of URLs on a bounded worker
//     pool without following links and without a delay.
//
// Each run returns a Result describing that session only. Per-URL failures
// are counted and never stop a run; a failing Store does.
package crawler
