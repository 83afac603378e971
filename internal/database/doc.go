// Package database provides SQLite-based storage for mined pages.
//
// CrawlDB stores two tables:
//   - pages: one row per distinct content fingerprint, with the page's
//     metadata and analysis as JSON
//   - urls: the crawl status of every URL ever scheduled
//
// The fingerprint column carries a UNIQUE constraint and inserts use
// ON CONFLICT DO NOTHING, so the database itself decides which of several
// concurrent writers of the same content wins. Losers get
// ErrDuplicateContent.
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver.
package database
