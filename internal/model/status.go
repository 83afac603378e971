package model

// URLStatus is the crawl state of a single URL.
// A URL starts as pending and moves once to either scraped or error.
type URLStatus string

// URL status constants.
const (
	// URLStatusPending means the URL was scheduled but has no outcome yet.
	URLStatusPending URLStatus = "pending"
	// URLStatusScraped means the URL was fetched and extracted successfully.
	URLStatusScraped URLStatus = "scraped"
	// URLStatusError means fetching or processing the URL failed.
	URLStatusError URLStatus = "error"
)

// String returns the string representation of the URLStatus.
func (s URLStatus) String() string {
	return string(s)
}

// IsValid returns true if this is a known status.
func (s URLStatus) IsValid() bool {
	switch s {
	case URLStatusPending, URLStatusScraped, URLStatusError:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no further transition is allowed.
func (s URLStatus) IsTerminal() bool {
	return s == URLStatusScraped || s == URLStatusError
}

// ParseURLStatus converts a string to URLStatus.
// Unknown values are returned as pending.
func ParseURLStatus(s string) URLStatus {
	switch s {
	case "scraped":
		return URLStatusScraped
	case "error":
		return URLStatusError
	default:
		return URLStatusPending
	}
}

// FrontierEntry is a URL waiting in the crawl frontier.
type FrontierEntry struct {
	// URL is the absolute URL to fetch.
	URL string

	// Depth is the number of links followed from the seed. The seed is 0.
	Depth int
}
