package crawler

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/dataminer/internal/frontier"
	"github.com/nao1215/dataminer/internal/model"
)

// BatchFetch processes every URL in urls independently on a pool of the
// configured width. Links are not followed and no delay is applied.
// Blank and repeated entries are skipped; malformed URLs are counted as
// errors. Results are gathered in completion order.
//
// Cancellation stops dispatching new URLs; in-flight URLs finish and the
// partial result is returned with ctx.Err(). A store failure cancels the
// remaining work and is returned with the partial result.
func (c *Crawler) BatchFetch(ctx context.Context, urls []string) (*Result, error) {
	result := newResult()
	logger := c.logger.With("crawl_id", result.SessionID)

	logger.Info("starting batch",
		"urls", len(urls),
		"workers", c.workers,
	)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	seen := make(map[string]bool, len(urls))

dispatch:
	for _, raw := range urls {
		u := strings.TrimSpace(raw)
		if u == "" {
			continue
		}
		key := frontier.NormalizeURL(u)
		if seen[key] {
			continue
		}
		seen[key] = true

		select {
		case <-gctx.Done():
			break dispatch
		default:
		}

		if !IsValidURL(u) {
			logger.Debug("skipping invalid url", "url", u)
			if err := c.store.PutURLStatus(ctx, u, model.URLStatusError); err != nil {
				_ = g.Wait() //nolint:errcheck // the store error is reported instead
				return result.finish(), err
			}
			mu.Lock()
			result.add(u, outcomeFailed, nil)
			mu.Unlock()
			continue
		}

		g.Go(func() error {
			o, record, _, err := c.process(gctx, u)
			if err != nil {
				return err
			}
			mu.Lock()
			result.add(u, o, record)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	result.finish()

	logger.Info("batch complete",
		"processed", result.Processed(),
		"stored", result.Stored,
		"duplicates", result.Duplicates,
		"errors", result.Errors,
		"elapsed", result.Elapsed,
	)

	return result, err
}
