package crawler

import (
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/dataminer/internal/model"
)

// Result describes one CrawlSite or BatchFetch session.
type Result struct {
	// SessionID identifies the session in logs.
	SessionID string `json:"session_id"`

	// Visited lists every URL the session processed. For CrawlSite this is
	// traversal order, for BatchFetch completion order.
	Visited []string `json:"visited"`

	// Pages are the records stored during this session.
	Pages []*model.PageRecord `json:"pages"`

	// Scraped counts URLs fetched and extracted successfully.
	Scraped int `json:"pages_scraped"`

	// Stored counts records newly persisted.
	Stored int `json:"data_extracted"`

	// Duplicates counts scraped URLs whose content was already stored.
	Duplicates int `json:"duplicates"`

	// Errors counts URLs that were invalid or could not be fetched.
	Errors int `json:"errors"`

	// StartedAt is when the session began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the session's wall-clock duration.
	Elapsed time.Duration `json:"elapsed"`
}

func newResult() *Result {
	return &Result{
		SessionID: uuid.NewString(),
		Visited:   []string{},
		Pages:     []*model.PageRecord{},
		StartedAt: time.Now(),
	}
}

// Processed returns the number of URLs with an outcome.
func (r *Result) Processed() int {
	return r.Scraped + r.Errors
}

// add folds one URL outcome into the result.
func (r *Result) add(url string, o outcome, record *model.PageRecord) {
	r.Visited = append(r.Visited, url)
	switch o {
	case outcomeStored:
		r.Scraped++
		r.Stored++
		r.Pages = append(r.Pages, record)
	case outcomeDuplicate:
		r.Scraped++
		r.Duplicates++
	case outcomeFailed:
		r.Errors++
	}
}

func (r *Result) finish() *Result {
	r.Elapsed = time.Since(r.StartedAt)
	return r
}
