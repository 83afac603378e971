package model

// Document is the structural result of parsing one HTML page.
// It is produced by the extractor and turned into a PageRecord by the crawler
// once the response metadata and analysis are attached.
type Document struct {
	// Title is the trimmed text of the first <title> element, or "".
	Title string

	// Content is the visible text with whitespace collapsed and trimmed.
	Content string

	// Links are absolute URLs resolved from <a href> attributes.
	Links []string

	// Images are absolute URLs resolved from <img src> attributes.
	Images []string

	// Forms, Tables, Scripts and Stylesheets are element counts.
	Forms       int
	Tables      int
	Scripts     int
	Stylesheets int
}
