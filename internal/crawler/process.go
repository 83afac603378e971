package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/dataminer/internal/extract"
	"github.com/nao1215/dataminer/internal/model"
)

// outcome is the result class of one processed URL.
type outcome int

const (
	outcomeFailed outcome = iota
	outcomeStored
	outcomeDuplicate
)

// process runs one URL through fetch, extract, analyze and store.
// The returned error is non-nil only for store failures and cancellation;
// fetch failures are reported as outcomeFailed.
func (c *Crawler) process(ctx context.Context, rawURL string) (outcome, *model.PageRecord, []string, error) {
	if err := ctx.Err(); err != nil {
		return outcomeFailed, nil, nil, err
	}
	if err := c.store.PutURLStatus(ctx, rawURL, model.URLStatusPending); err != nil {
		return outcomeFailed, nil, nil, fmt.Errorf("failed to record url status: %w", err)
	}

	resp, err := c.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return outcomeFailed, nil, nil, ctx.Err()
		}
		c.logger.Debug("fetch failed", "url", rawURL, "error", err)
		if err := c.store.PutURLStatus(ctx, rawURL, model.URLStatusError); err != nil {
			return outcomeFailed, nil, nil, fmt.Errorf("failed to record url status: %w", err)
		}
		return outcomeFailed, nil, nil, nil
	}

	doc, perr := extract.ParseDocument(resp.Body, resp.FinalURL, resp.ContentType)
	if perr != nil {
		c.logger.Debug("page parsed with degraded output", "url", rawURL, "error", perr)
	}

	record := &model.PageRecord{
		URL:     rawURL,
		Title:   doc.Title,
		Content: doc.Content,
		Metadata: model.Metadata{
			StatusCode:    resp.StatusCode,
			ContentType:   resp.ContentType,
			ContentLength: resp.ContentLength,
			Links:         doc.Links,
			Images:        doc.Images,
			Forms:         doc.Forms,
			Tables:        doc.Tables,
			Scripts:       doc.Scripts,
			Stylesheets:   doc.Stylesheets,
		},
		Analysis:  extract.Analyze(doc.Content),
		FetchedAt: time.Now(),
	}

	stored, err := c.dedup.RegisterIfNew(ctx, record)
	if err != nil {
		return outcomeFailed, nil, nil, err
	}

	if err := c.store.PutURLStatus(ctx, rawURL, model.URLStatusScraped); err != nil {
		return outcomeFailed, nil, nil, fmt.Errorf("failed to record url status: %w", err)
	}

	if !stored {
		c.logger.Debug("duplicate content", "url", rawURL, "fingerprint", record.Fingerprint)
		return outcomeDuplicate, record, doc.Links, nil
	}

	c.logger.Debug("page stored",
		"url", rawURL,
		"title", record.Title,
		"words", record.Analysis.WordCount,
		"links", len(doc.Links),
	)
	return outcomeStored, record, doc.Links, nil
}
