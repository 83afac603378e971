// Package frontier holds the breadth-first work queue of a single-site crawl.
//
// A Frontier is owned by exactly one crawl and is not safe for concurrent
// use.
package frontier

import (
	"net/url"
	"strings"

	"github.com/nao1215/dataminer/internal/model"
)

// Frontier is a FIFO queue of depth-tagged URLs with a visited set and a
// page cap. A URL is accepted at most once per Frontier, whether it is
// still queued or already visited.
type Frontier struct {
	// maxDepth is the deepest depth Push accepts.
	maxDepth int

	// maxPages caps how many entries Pop hands out. Zero or less means no cap.
	maxPages int

	// queue holds entries waiting to be popped, oldest first.
	queue []model.FrontierEntry

	// seen contains the normalized form of every queued or visited URL.
	seen map[string]bool

	// visited lists popped or explicitly marked URLs in visit order.
	visited []string
}

// New creates an empty Frontier.
func New(maxDepth, maxPages int) *Frontier {
	return &Frontier{
		maxDepth: maxDepth,
		maxPages: maxPages,
		seen:     make(map[string]bool),
	}
}

// Push appends rawURL at depth. It returns false and does nothing when the
// URL is already queued or visited, or when depth is outside [0, maxDepth].
func (f *Frontier) Push(rawURL string, depth int) bool {
	if depth < 0 || depth > f.maxDepth {
		return false
	}
	key := NormalizeURL(rawURL)
	if f.seen[key] {
		return false
	}
	f.seen[key] = true
	f.queue = append(f.queue, model.FrontierEntry{URL: rawURL, Depth: depth})
	return true
}

// Pop removes the oldest entry and marks it visited. It returns false when
// the queue is empty or the page cap has been reached.
func (f *Frontier) Pop() (model.FrontierEntry, bool) {
	if len(f.queue) == 0 || f.capReached() {
		return model.FrontierEntry{}, false
	}
	entry := f.queue[0]
	f.queue[0] = model.FrontierEntry{}
	f.queue = f.queue[1:]
	f.visited = append(f.visited, entry.URL)
	return entry, true
}

// MarkVisited records rawURL as visited without queueing it.
// It is a no-op for a URL that was already pushed or visited.
func (f *Frontier) MarkVisited(rawURL string) {
	key := NormalizeURL(rawURL)
	if f.seen[key] {
		return
	}
	f.seen[key] = true
	f.visited = append(f.visited, rawURL)
}

// IsSeen reports whether rawURL was already pushed or visited.
func (f *Frontier) IsSeen(rawURL string) bool {
	return f.seen[NormalizeURL(rawURL)]
}

// Visited returns the visited URLs in visit order.
func (f *Frontier) Visited() []string {
	out := make([]string, len(f.visited))
	copy(out, f.visited)
	return out
}

// VisitedCount returns the number of visited URLs.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// Done reports whether Pop can no longer return an entry.
func (f *Frontier) Done() bool {
	return len(f.queue) == 0 || f.capReached()
}

func (f *Frontier) capReached() bool {
	return f.maxPages > 0 && len(f.visited) >= f.maxPages
}

// NormalizeURL returns the key used for visited-set membership: scheme and
// host lower-cased, fragment removed and an empty path replaced by "/".
// Unparsable input is returned unchanged.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}
