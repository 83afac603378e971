// Package report renders stored pages and crawl results for people and
// for other tools.
//
// Exporters write page records in one of three formats:
//   - JSON: the full record, including metadata and analysis
//   - CSV: one row per page with URL, Title, Content and Timestamp
//   - Markdown: a readable summary of every page and its signals
//
// SimpleWriter prints crawl summaries, search hits, statistics and the
// effective settings to a terminal. MarkdownWriter also renders
// statistics for sharing.
package report
