package crawler

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/dataminer/internal/frontier"
)

// CrawlSite crawls breadth-first from seedURL. Pages at depth maxDepth are
// fetched but their links are not followed; a negative maxDepth is treated
// as zero. Fetches are spaced by the configured delay and the session stops
// once the page cap is reached.
//
// When ctx is cancelled the partial result is returned with ctx.Err().
// A store failure aborts the crawl and is returned with the partial result.
func (c *Crawler) CrawlSite(ctx context.Context, seedURL string, maxDepth int) (*Result, error) {
	if !IsValidURL(seedURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, seedURL)
	}
	if maxDepth < 0 {
		maxDepth = 0
	}

	seed, _ := url.Parse(seedURL) //nolint:errcheck // validated above
	result := newResult()
	logger := c.logger.With("crawl_id", result.SessionID)

	logger.Info("starting crawl",
		"seed", seedURL,
		"max_depth", maxDepth,
		"max_pages", c.maxPages,
		"delay", c.delay,
	)

	fr := frontier.New(maxDepth, c.maxPages)
	fr.Push(seedURL, 0)
	pace := newPacer(c.delay)

	for !fr.Done() {
		if err := ctx.Err(); err != nil {
			return result.finish(), err
		}
		if err := pace.wait(ctx); err != nil {
			return result.finish(), err
		}

		entry, ok := fr.Pop()
		if !ok {
			break
		}

		o, record, links, err := c.process(ctx, entry.URL)
		pace.restart(time.Now())
		if err != nil {
			return result.finish(), err
		}
		result.add(entry.URL, o, record)

		if o == outcomeFailed || entry.Depth >= maxDepth {
			continue
		}
		for _, link := range links {
			if c.shouldFollow(seed, link) {
				fr.Push(link, entry.Depth+1)
			}
		}
	}

	result.finish()
	logger.Info("crawl complete",
		"visited", len(result.Visited),
		"stored", result.Stored,
		"duplicates", result.Duplicates,
		"errors", result.Errors,
		"elapsed", result.Elapsed,
	)

	return result, nil
}

// pacer keeps a full delay between the end of one fetch and the start of
// the next. The first wait returns immediately.
type pacer struct {
	limiter *rate.Limiter
}

func newPacer(delay time.Duration) *pacer {
	if delay <= 0 {
		return &pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// wait blocks until the delay since the last restart has passed.
func (p *pacer) wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// restart empties the bucket at t, so the next token arrives one delay
// after t however long the fetch took. Lowering the burst to zero caps the
// accumulated tokens at zero.
func (p *pacer) restart(t time.Time) {
	if p.limiter.Limit() == rate.Inf {
		return
	}
	p.limiter.SetBurstAt(t, 0)
	p.limiter.SetBurstAt(t, 1)
}
