// Package model defines the data structures shared by the crawler,
// extractor, deduplicator and store.
//
// This package contains the following main types:
//   - PageRecord: A deduplicated, persisted page with its analysis
//   - Document: The structural result of parsing one HTML page
//   - Analysis: Content signals extracted from normalized page text
//   - URLStatus: The per-URL crawl state kept by the store
//   - FrontierEntry: A depth-tagged URL waiting to be fetched
//
// The models are serializable to JSON for export and database storage.
package model
