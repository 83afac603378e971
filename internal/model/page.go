package model

import "time"

// PageRecord is a fetched page after extraction and analysis.
// Records are keyed by Fingerprint, which is derived from Content, so two
// URLs serving identical normalized text produce one stored record.
// A PageRecord is not modified after it has been handed to the store.
type PageRecord struct {
	// ID is the store-assigned row identifier. Zero until persisted.
	ID int64 `json:"id,omitempty"`

	// URL is the address the page was requested from.
	URL string `json:"url"`

	// Title is the trimmed text of the first <title> element.
	Title string `json:"title"`

	// Content is the visible page text with whitespace runs collapsed.
	Content string `json:"content"`

	// Metadata describes the HTTP response and page structure.
	Metadata Metadata `json:"metadata"`

	// Analysis holds the content signals extracted from Content.
	Analysis Analysis `json:"analysis"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"timestamp"`

	// Fingerprint is the content-addressed digest of Content.
	Fingerprint string `json:"hash"`
}

// Metadata describes the HTTP response a record was built from and the
// structural resources found in the page.
type Metadata struct {
	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the Content-Type response header.
	ContentType string `json:"content_type"`

	// ContentLength is the number of body bytes read.
	ContentLength int `json:"content_length"`

	// Links are absolute URLs of all anchors on the page.
	Links []string `json:"links"`

	// Images are absolute URLs of all <img> sources on the page.
	Images []string `json:"images"`

	// Forms is the number of <form> elements.
	Forms int `json:"forms"`

	// Tables is the number of <table> elements.
	Tables int `json:"tables"`

	// Scripts is the number of <script> elements.
	Scripts int `json:"scripts"`

	// Stylesheets is the number of <link rel="stylesheet"> elements.
	Stylesheets int `json:"stylesheets"`
}

// Analysis contains the signals extracted from a page's normalized text.
// Map entries are only present for platforms and categories that matched.
type Analysis struct {
	WordCount      int `json:"word_count"`
	CharCount      int `json:"character_count"`
	SentenceCount  int `json:"sentences"`
	ParagraphCount int `json:"paragraphs"`

	// Emails are local@domain.tld addresses in order of appearance.
	Emails []string `json:"emails"`

	// Phones are North-American style phone numbers as matched.
	Phones []string `json:"phones"`

	// URLs are http(s) URLs written in the page text.
	URLs []string `json:"urls"`

	// SocialHandles maps a platform to the handles or profile paths found.
	SocialHandles map[SocialPlatform][]string `json:"social_media"`

	// FinancialTokens maps a category to the matching tokens found.
	FinancialTokens map[FinancialCategory][]string `json:"financial_data"`

	// Keywords are the most frequent words, most frequent first.
	Keywords []string `json:"keywords"`
}

// HasSignals reports whether any contact, social or financial signal was found.
func (a *Analysis) HasSignals() bool {
	return len(a.Emails) > 0 || len(a.Phones) > 0 ||
		len(a.SocialHandles) > 0 || len(a.FinancialTokens) > 0
}
