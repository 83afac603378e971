// Package fetcher performs single HTTP GET requests for the crawler.
//
// A Fetcher is built once from an immutable ClientConfig and is safe for
// concurrent use by the batch worker pool. Every request is bounded by the
// configured timeout and never retried. Failures are reported as *FetchError
// so callers can distinguish network failures, timeouts and non-2xx
// responses with errors.As:
//
//	resp, err := f.Fetch(ctx, "https://example.com/")
//	var fe *fetcher.FetchError
//	if errors.As(err, &fe) && fe.Kind == fetcher.KindTimeout {
//		// slow host
//	}
//
// Traffic can optionally be routed through a SOCKS5 proxy.
package fetcher
