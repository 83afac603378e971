package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Default values applied by New when the corresponding ClientConfig field is zero.
const (
	// DefaultTimeout bounds a single request including the body read.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is a desktop browser identity. Many sites serve
	// stripped or blocked pages to obvious bot user agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultMaxBodySize caps how many body bytes are read per response.
	DefaultMaxBodySize int64 = 10 * 1024 * 1024

	// maxRedirects stops redirect loops.
	maxRedirects = 10
)

// ClientConfig is the immutable configuration of a Fetcher.
type ClientConfig struct {
	// Timeout is the per-request deadline.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize is the maximum number of body bytes read.
	MaxBodySize int64

	// Headers are extra request headers added to every request.
	Headers map[string]string

	// Cookie is a raw Cookie header value such as "session=abc", sent to
	// every host that has no cookie of its own in Sites.
	Cookie string

	// Sites holds credentials sent only to one host. Keys are a host name
	// or host:port and match case-insensitively; host:port wins.
	Sites map[string]SiteAuth

	// ProxyAddress routes traffic through a SOCKS5 proxy at host:port when set.
	ProxyAddress string
}

// SiteAuth is the header and cookie set for a single host.
type SiteAuth struct {
	// Headers are added after ClientConfig.Headers and override them.
	Headers map[string]string

	// Cookie replaces ClientConfig.Cookie for this host.
	Cookie string
}

// Response is a successfully fetched HTTP response with its body read.
type Response struct {
	// URL is the URL that was requested.
	URL string

	// FinalURL is the URL after redirects.
	FinalURL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// ContentType is the Content-Type header.
	ContentType string

	// Body is the response body, truncated to MaxBodySize.
	Body []byte

	// ContentLength is len(Body).
	ContentLength int

	// Header holds the response headers.
	Header http.Header
}

// Fetcher retrieves pages over HTTP. It is safe for concurrent use.
type Fetcher struct {
	client *http.Client
	cfg    ClientConfig
}

// New creates a Fetcher from cfg. Zero fields are replaced by defaults.
// An invalid ProxyAddress returns ErrInvalidProxyAddress. The proxy itself
// is not contacted until the first request.
func New(cfg ClientConfig) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	cfg.Headers = copyHeaders(cfg.Headers)
	cfg.Sites = copySites(cfg.Sites)

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if cfg.ProxyAddress != "" {
		if !isValidProxyAddress(cfg.ProxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", cfg.ProxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		cd, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("SOCKS5 dialer %T does not support contexts", dialer)
		}
		transport.Proxy = nil
		transport.DialContext = cd.DialContext
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	f := &Fetcher{cfg: cfg}
	f.client = &http.Client{
		Transport: transport,
		Jar:       jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			// The client copies the previous request's headers, so
			// credentials are recomputed for the redirect target.
			f.prepare(req)
			return nil
		},
	}
	return f, nil
}

// Config returns a copy of the effective configuration.
func (f *Fetcher) Config() ClientConfig {
	cfg := f.cfg
	cfg.Headers = copyHeaders(f.cfg.Headers)
	cfg.Sites = copySites(f.cfg.Sites)
	return cfg
}

// Fetch performs one GET request for rawURL. It returns a *FetchError on
// failure and never retries.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, URL: rawURL, Err: err}
	}

	f.prepare(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return nil, &FetchError{Kind: KindHTTPStatus, URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodySize))
	if err != nil {
		return nil, classify(ctx, rawURL, err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		URL:           rawURL,
		FinalURL:      finalURL,
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		Body:          body,
		ContentLength: len(body),
		Header:        resp.Header,
	}, nil
}

// prepare sets the request headers for req.URL's host. Headers and cookies
// scoped to other hosts are removed first.
func (f *Fetcher) prepare(req *http.Request) {
	for _, site := range f.cfg.Sites {
		for key := range site.Headers {
			req.Header.Del(key)
		}
	}
	req.Header.Del("Cookie")

	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	for key, value := range f.cfg.Headers {
		req.Header.Set(key, value)
	}

	cookie := f.cfg.Cookie
	if site, ok := f.siteFor(req.URL); ok {
		for key, value := range site.Headers {
			req.Header.Set(key, value)
		}
		if site.Cookie != "" {
			cookie = site.Cookie
		}
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
}

// siteFor looks u up in Sites by host:port, then by host name.
func (f *Fetcher) siteFor(u *url.URL) (SiteAuth, bool) {
	if len(f.cfg.Sites) == 0 || u == nil {
		return SiteAuth{}, false
	}
	if site, ok := f.cfg.Sites[strings.ToLower(u.Host)]; ok {
		return site, true
	}
	site, ok := f.cfg.Sites[strings.ToLower(u.Hostname())]
	return site, ok
}

// classify maps a transport error to a FetchError kind.
func classify(ctx context.Context, rawURL string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, URL: rawURL, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: KindTimeout, URL: rawURL, Err: err}
	}
	return &FetchError{Kind: KindNetwork, URL: rawURL, Err: err}
}

// isValidProxyAddress checks that address is host:port with a port in 1..65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || port == "" {
		return false
	}
	if strings.ContainsAny(host, "/ ") {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

func copyHeaders(h map[string]string) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// copySites copies sites with lower-cased keys.
func copySites(sites map[string]SiteAuth) map[string]SiteAuth {
	if len(sites) == 0 {
		return nil
	}
	out := make(map[string]SiteAuth, len(sites))
	for host, site := range sites {
		out[strings.ToLower(host)] = SiteAuth{
			Headers: copyHeaders(site.Headers),
			Cookie:  site.Cookie,
		}
	}
	return out
}
