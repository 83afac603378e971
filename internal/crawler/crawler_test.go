package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/dataminer/internal/database"
	"github.com/nao1215/dataminer/internal/fetcher"
	"github.com/nao1215/dataminer/internal/model"
)

// memoryStore is a hand-written Store for tests.
type memoryStore struct {
	mu       sync.Mutex
	statuses map[string]model.URLStatus
	records  map[string]*model.PageRecord
	failPut  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		statuses: make(map[string]model.URLStatus),
		records:  make(map[string]*model.PageRecord),
	}
}

func (m *memoryStore) PutURLStatus(_ context.Context, url string, status model.URLStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.statuses[url]; ok && cur.IsTerminal() {
		return nil
	}
	m.statuses[url] = status
	return nil
}

func (m *memoryStore) PutPageRecord(_ context.Context, record *model.PageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return m.failPut
	}
	if _, ok := m.records[record.Fingerprint]; ok {
		return fmt.Errorf("page %s: %w", record.URL, ErrDuplicateContent)
	}
	m.records[record.Fingerprint] = record
	return nil
}

func (m *memoryStore) ExistsFingerprint(_ context.Context, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[fingerprint]
	return ok, nil
}

func (m *memoryStore) status(url string) model.URLStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[url]
}

func (m *memoryStore) recordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// site serves HTML pages keyed by path and counts requests per path.
type site struct {
	server *httptest.Server
	mu     sync.Mutex
	hits   map[string]int
}

func newSite(t *testing.T, pages map[string]string) *site {
	t.Helper()
	s := &site{hits: make(map[string]int)}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()

		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *site) url(path string) string {
	return s.server.URL + path
}

func (s *site) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func page(title string, links ...string) string {
	body := "<html><head><title>" + title + "</title></head><body><p>Page " + title + "</p>"
	for _, l := range links {
		body += `<a href="` + l + `">` + l + `</a>`
	}
	return body + "</body></html>"
}

func newTestFetcher(t *testing.T, timeout time.Duration) *fetcher.Fetcher {
	t.Helper()
	f, err := fetcher.New(fetcher.ClientConfig{Timeout: timeout})
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}
	return f
}

func sortedPaths(s *site, urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		out = append(out, u[len(s.server.URL):])
	}
	sort.Strings(out)
	return out
}

func TestCrawlSite(t *testing.T) {
	t.Parallel()

	t.Run("max depth one visits seed and its links only", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{
			"/a": page("A", "/b", "/c"),
			"/b": page("B", "/d"),
			"/c": page("C", "/e"),
			"/d": page("D"),
			"/e": page("E"),
		})
		store := newMemoryStore()
		c := New(newTestFetcher(t, 5*time.Second), store, WithDelay(0))

		result, err := c.CrawlSite(context.Background(), s.url("/a"), 1)
		if err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}

		if got := sortedPaths(s, result.Visited); !slices.Equal(got, []string{"/a", "/b", "/c"}) {
			t.Errorf("visited = %v, expected [/a /b /c]", got)
		}
		if s.hitCount("/d") != 0 || s.hitCount("/e") != 0 {
			t.Error("links of depth-1 pages must not be fetched")
		}
		if result.Stored != 3 || result.Scraped != 3 || result.Errors != 0 {
			t.Errorf("result = %+v", result)
		}
		if store.status(s.url("/b")) != model.URLStatusScraped {
			t.Errorf("status of /b = %v", store.status(s.url("/b")))
		}
		if result.SessionID == "" {
			t.Error("expected a session ID")
		}
	})

	t.Run("depth zero fetches only the seed", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{
			"/":  page("root", "/x"),
			"/x": page("X"),
		})
		c := New(newTestFetcher(t, 5*time.Second), newMemoryStore(), WithDelay(0))

		result, err := c.CrawlSite(context.Background(), s.url("/"), 0)
		if err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}
		if len(result.Visited) != 1 {
			t.Errorf("visited = %v", result.Visited)
		}
	})

	t.Run("chain is cut at max depth", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{
			"/0": page("0", "/1"),
			"/1": page("1", "/2"),
			"/2": page("2", "/3"),
			"/3": page("3", "/4"),
		})
		c := New(newTestFetcher(t, 5*time.Second), newMemoryStore(), WithDelay(0))

		result, err := c.CrawlSite(context.Background(), s.url("/0"), 2)
		if err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}
		if got := sortedPaths(s, result.Visited); !slices.Equal(got, []string{"/0", "/1", "/2"}) {
			t.Errorf("visited = %v", got)
		}
	})

	t.Run("page cap bounds visited count", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{}
		var links []string
		for i := 0; i < 10; i++ {
			p := fmt.Sprintf("/p%d", i)
			links = append(links, p)
			pages[p] = page(p)
		}
		pages["/"] = page("root", links...)
		s := newSite(t, pages)

		c := New(newTestFetcher(t, 5*time.Second), newMemoryStore(), WithDelay(0), WithMaxPages(3))
		result, err := c.CrawlSite(context.Background(), s.url("/"), 1)
		if err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}
		if len(result.Visited) != 3 {
			t.Errorf("visited %d pages, expected 3", len(result.Visited))
		}
	})

	t.Run("each url is fetched once", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{
			"/a": page("A", "/b", "/b#frag", "/a"),
			"/b": page("B", "/a", "/b"),
		})
		c := New(newTestFetcher(t, 5*time.Second), newMemoryStore(), WithDelay(0))

		if _, err := c.CrawlSite(context.Background(), s.url("/a"), 3); err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}
		if s.hitCount("/a") != 1 || s.hitCount("/b") != 1 {
			t.Errorf("hits: /a=%d /b=%d", s.hitCount("/a"), s.hitCount("/b"))
		}
	})

	t.Run("identical content is stored once", func(t *testing.T) {
		t.Parallel()

		same := "<html><body>same body</body></html>"
		s := newSite(t, map[string]string{
			"/":    page("root", "/one", "/two"),
			"/one": same,
			"/two": same,
		})
		store := newMemoryStore()
		c := New(newTestFetcher(t, 5*time.Second), store, WithDelay(0))

		result, err := c.CrawlSite(context.Background(), s.url("/"), 1)
		if err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}
		if result.Stored != 2 || result.Duplicates != 1 {
			t.Errorf("stored = %d, duplicates = %d", result.Stored, result.Duplicates)
		}
		if store.recordCount() != 2 {
			t.Errorf("records = %d, expected 2", store.recordCount())
		}
	})

	t.Run("broken links are counted as errors", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{
			"/": page("root", "/missing", "mailto:x@y.z", "javascript:void(0)"),
		})
		store := newMemoryStore()
		c := New(newTestFetcher(t, 5*time.Second), store, WithDelay(0))

		result, err := c.CrawlSite(context.Background(), s.url("/"), 1)
		if err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}
		if result.Errors != 1 || result.Scraped != 1 {
			t.Errorf("errors = %d, scraped = %d", result.Errors, result.Scraped)
		}
		if store.status(s.url("/missing")) != model.URLStatusError {
			t.Errorf("status = %v, expected error", store.status(s.url("/missing")))
		}
		if len(result.Visited) != 2 {
			t.Errorf("visited = %v", result.Visited)
		}
	})

	t.Run("ignore patterns skip links", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{
			"/":            page("root", "/admin/panel", "/doc.pdf", "/ok"),
			"/admin/panel": page("admin"),
			"/doc.pdf":     page("pdf"),
			"/ok":          page("ok"),
		})
		c := New(newTestFetcher(t, 5*time.Second), newMemoryStore(),
			WithDelay(0), WithIgnorePatterns([]string{"/admin/*", "*.pdf"}))

		result, err := c.CrawlSite(context.Background(), s.url("/"), 1)
		if err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}
		if got := sortedPaths(s, result.Visited); !slices.Equal(got, []string{"/", "/ok"}) {
			t.Errorf("visited = %v", got)
		}
	})

	t.Run("same host restriction drops external links", func(t *testing.T) {
		t.Parallel()

		other := newSite(t, map[string]string{"/x": page("other")})
		s := newSite(t, map[string]string{
			"/": page("root", other.url("/x")),
		})

		c := New(newTestFetcher(t, 5*time.Second), newMemoryStore(), WithDelay(0), WithSameHost(true))
		result, err := c.CrawlSite(context.Background(), s.url("/"), 1)
		if err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}
		// Both test servers listen on 127.0.0.1, so the link shares the host.
		if len(result.Visited) != 2 {
			t.Errorf("visited = %v", result.Visited)
		}

		c = New(newTestFetcher(t, 5*time.Second), newMemoryStore(), WithDelay(0), WithSameHost(true))
		s2 := newSite(t, map[string]string{
			"/": page("root", "http://elsewhere.invalid/x"),
		})
		result, err = c.CrawlSite(context.Background(), s2.url("/"), 1)
		if err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}
		if len(result.Visited) != 1 {
			t.Errorf("visited = %v, expected seed only", result.Visited)
		}
	})

	t.Run("delay spaces fetches", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{
			"/":  page("root", "/1", "/2"),
			"/1": page("1"),
			"/2": page("2"),
		})
		c := New(newTestFetcher(t, 5*time.Second), newMemoryStore(), WithDelay(50*time.Millisecond))

		start := time.Now()
		if _, err := c.CrawlSite(context.Background(), s.url("/"), 1); err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
			t.Errorf("three fetches took %v, expected about 100ms", elapsed)
		}
	})

	t.Run("delay follows slow responses", func(t *testing.T) {
		t.Parallel()

		const (
			respondAfter = 150 * time.Millisecond
			delay        = 100 * time.Millisecond
		)
		pages := map[string]string{
			"/":  page("root", "/a", "/b"),
			"/a": page("a"),
			"/b": page("b"),
		}

		var (
			mu     sync.Mutex
			starts []time.Time
			ends   []time.Time
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			starts = append(starts, time.Now())
			mu.Unlock()

			time.Sleep(respondAfter)
			w.Header().Set("Content-Type", "text/html")
			_, _ = fmt.Fprint(w, pages[r.URL.Path])

			mu.Lock()
			ends = append(ends, time.Now())
			mu.Unlock()
		}))
		t.Cleanup(srv.Close)

		c := New(newTestFetcher(t, 5*time.Second), newMemoryStore(), WithDelay(delay))
		if _, err := c.CrawlSite(context.Background(), srv.URL+"/", 1); err != nil {
			t.Fatalf("CrawlSite failed: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(starts) != 3 || len(ends) != 3 {
			t.Fatalf("expected 3 requests, got %d", len(starts))
		}
		for i := 1; i < len(starts); i++ {
			if pause := starts[i].Sub(ends[i-1]); pause < delay-10*time.Millisecond {
				t.Errorf("pause before request %d was %v, expected at least %v", i+1, pause, delay)
			}
		}
	})

	t.Run("invalid seeds are rejected", func(t *testing.T) {
		t.Parallel()

		c := New(newTestFetcher(t, time.Second), newMemoryStore())
		for _, seed := range []string{"", "javascript:void(0)", "ftp://example.com/", "/relative"} {
			if _, err := c.CrawlSite(context.Background(), seed, 1); !errors.Is(err, ErrInvalidURL) {
				t.Errorf("CrawlSite(%q) error = %v, expected ErrInvalidURL", seed, err)
			}
		}
	})

	t.Run("cancelled context returns partial result", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{"/": page("root")})
		c := New(newTestFetcher(t, time.Second), newMemoryStore(), WithDelay(0))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := c.CrawlSite(ctx, s.url("/"), 1)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, expected context.Canceled", err)
		}
		if result == nil || len(result.Visited) != 0 {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("store failure aborts the crawl", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{
			"/":  page("root", "/1"),
			"/1": page("1"),
		})
		store := newMemoryStore()
		store.failPut = errors.New("disk full")
		c := New(newTestFetcher(t, time.Second), store, WithDelay(0))

		_, err := c.CrawlSite(context.Background(), s.url("/"), 1)
		if err == nil {
			t.Fatal("expected store error")
		}
		if s.hitCount("/1") != 0 {
			t.Error("crawl should stop after the store failed")
		}
	})
}

func TestBatchFetch(t *testing.T) {
	t.Parallel()

	t.Run("twenty urls with identical content store one record", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			_, _ = w.Write([]byte("<html><body>identical content</body></html>"))
		}))
		defer server.Close()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		urls := make([]string, 20)
		for i := range urls {
			urls[i] = fmt.Sprintf("%s/page/%d", server.URL, i)
		}

		c := New(newTestFetcher(t, 5*time.Second), db, WithWorkers(5))
		result, err := c.BatchFetch(context.Background(), urls)
		if err != nil {
			t.Fatalf("BatchFetch failed: %v", err)
		}

		if result.Stored != 1 || result.Duplicates != 19 || result.Scraped != 20 {
			t.Errorf("stored = %d, duplicates = %d, scraped = %d", result.Stored, result.Duplicates, result.Scraped)
		}
		stats, err := db.Stats(context.Background())
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.Records != 1 {
			t.Errorf("stored records = %d, expected 1", stats.Records)
		}
		if stats.Scraped != 20 {
			t.Errorf("scraped urls = %d, expected 20", stats.Scraped)
		}
		if p := peak.Load(); p > 5 {
			t.Errorf("peak concurrency = %d, expected at most 5", p)
		}
	})

	t.Run("one timeout of twenty leaves nineteen successes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/page/7" {
				<-r.Context().Done()
				return
			}
			_, _ = fmt.Fprintf(w, "<html><body>content of %s</body></html>", r.URL.Path)
		}))
		defer server.Close()

		urls := make([]string, 20)
		for i := range urls {
			urls[i] = fmt.Sprintf("%s/page/%d", server.URL, i)
		}

		store := newMemoryStore()
		c := New(newTestFetcher(t, 200*time.Millisecond), store, WithWorkers(5))
		result, err := c.BatchFetch(context.Background(), urls)
		if err != nil {
			t.Fatalf("BatchFetch failed: %v", err)
		}

		if result.Scraped != 19 || result.Errors != 1 {
			t.Errorf("scraped = %d, errors = %d; expected 19 and 1", result.Scraped, result.Errors)
		}
		if result.Processed() != 20 {
			t.Errorf("processed = %d, expected 20", result.Processed())
		}
		if store.recordCount() != 19 {
			t.Errorf("records = %d, expected 19", store.recordCount())
		}
		if got := store.status(urls[7]); got != model.URLStatusError {
			t.Errorf("status of timed out url = %v, expected error", got)
		}
	})

	t.Run("blank and repeated inputs are skipped and malformed ones are errors", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{"/x": page("x")})
		store := newMemoryStore()
		c := New(newTestFetcher(t, 5*time.Second), store, WithWorkers(2))

		result, err := c.BatchFetch(context.Background(), []string{
			s.url("/x"), "", "   ", s.url("/x"), "not a url", "ftp://example.com/f",
		})
		if err != nil {
			t.Fatalf("BatchFetch failed: %v", err)
		}
		if s.hitCount("/x") != 1 {
			t.Errorf("hits = %d, expected 1", s.hitCount("/x"))
		}
		if result.Scraped != 1 || result.Errors != 2 {
			t.Errorf("scraped = %d, errors = %d", result.Scraped, result.Errors)
		}
		if store.status("not a url") != model.URLStatusError {
			t.Errorf("malformed url status = %v", store.status("not a url"))
		}
	})

	t.Run("links are not followed", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{
			"/":      page("root", "/child"),
			"/child": page("child"),
		})
		c := New(newTestFetcher(t, 5*time.Second), newMemoryStore())

		if _, err := c.BatchFetch(context.Background(), []string{s.url("/")}); err != nil {
			t.Fatalf("BatchFetch failed: %v", err)
		}
		if s.hitCount("/child") != 0 {
			t.Error("batch mode must not expand links")
		}
	})

	t.Run("cancelled context stops dispatch", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{"/": page("root")})
		c := New(newTestFetcher(t, time.Second), newMemoryStore())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := c.BatchFetch(ctx, []string{s.url("/"), s.url("/")})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("error = %v, expected context.Canceled", err)
		}
		if s.hitCount("/") != 0 {
			t.Error("no URL should be fetched after cancellation")
		}
		if result.Processed() != 0 {
			t.Errorf("processed = %d", result.Processed())
		}
	})

	t.Run("store failure is returned", func(t *testing.T) {
		t.Parallel()

		s := newSite(t, map[string]string{"/": page("root")})
		store := newMemoryStore()
		store.failPut = errors.New("disk full")
		c := New(newTestFetcher(t, time.Second), store)

		if _, err := c.BatchFetch(context.Background(), []string{s.url("/")}); err == nil {
			t.Error("expected store error")
		}
	})
}

func TestIsValidURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"http://example.com", true},
		{"https://example.com/a?b=c", true},
		{"HTTPS://EXAMPLE.COM/", true},
		{"javascript:void(0)", false},
		{"", false},
		{"ftp://example.com/file", false},
		{"mailto:a@b.com", false},
		{"/relative/path", false},
		{"http://", false},
		{" http://example.com", false},
		{"http://[::1", false},
	}
	for _, tt := range tests {
		if got := IsValidURL(tt.in); got != tt.want {
			t.Errorf("IsValidURL(%q) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/admin/*", "/admin/dashboard", true},
		{"/admin/*", "/admin/users/1", true},
		{"/admin/*", "/admin", true},
		{"/admin/*", "/administrator", false},
		{"*.pdf", "/docs/file.pdf", true},
		{"*.pdf", "/docs/file.html", false},
		{"/api/v?", "/api/v1", true},
		{"/api/v?", "/api/v10", false},
		{"report-*.html", "/archive/report-2024.html", true},
		{"/logout*", "/logout-now", true},
		{"[", "/x", false},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, expected %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestFollowPatterns(t *testing.T) {
	t.Parallel()

	c := New(nil, newMemoryStore(), WithFollowPatterns([]string{"/blog/*"}), WithIgnorePatterns([]string{"/blog/drafts/*"}))
	seed := mustParse(t, "http://example.com/")

	tests := []struct {
		link string
		want bool
	}{
		{"http://example.com/blog/post", true},
		{"http://example.com/blog/drafts/x", false},
		{"http://example.com/shop", false},
		{"mailto:x@example.com", false},
	}
	for _, tt := range tests {
		if got := c.shouldFollow(seed, tt.link); got != tt.want {
			t.Errorf("shouldFollow(%q) = %v, expected %v", tt.link, got, tt.want)
		}
	}
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}
