// Package main provides the entry point for the dataminer CLI.
//
// dataminer crawls websites or fetches lists of URLs, extracts the visible
// text and content signals of every page and stores one record per unique
// content in a local SQLite database.
//
// Usage:
//
//	dataminer crawl https://example.com -d 2
//	dataminer scrape https://a.example,https://b.example
//	dataminer search "contact"
//	dataminer export -f csv -o pages.csv
//
// See --help for all available options.
package main

func main() {
	Execute()
}
