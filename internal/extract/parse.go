package extract

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/dataminer/internal/model"
)

// ErrNotHTML is returned by ParseDocument when the content type is known and
// is not a markup or text type.
var ErrNotHTML = errors.New("content is not HTML")

// skippedElements are elements whose text never counts as visible content.
var skippedElements = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Parse extracts the title, visible text, links, images and resource counts
// from raw. Relative references are resolved against sourceURL, or against
// the document's <base href> when present. Parse never panics and never
// returns nil; unparsable input yields an empty Document.
func Parse(raw []byte, sourceURL, contentType string) *model.Document {
	doc, _ := ParseDocument(raw, sourceURL, contentType) //nolint:errcheck // degraded document is still usable
	return doc
}

// ParseDocument is Parse with the degradation reason exposed. The returned
// Document is always non-nil.
func ParseDocument(raw []byte, sourceURL, contentType string) (result *model.Document, err error) {
	result = &model.Document{Links: []string{}, Images: []string{}}

	defer func() {
		if r := recover(); r != nil {
			result = &model.Document{Links: []string{}, Images: []string{}}
			err = fmt.Errorf("parse %s: recovered: %v", sourceURL, r)
		}
	}()

	if !isMarkup(contentType) {
		return result, ErrNotHTML
	}

	root, err := html.Parse(decode(raw, contentType))
	if err != nil {
		return result, fmt.Errorf("parse %s: %w", sourceURL, err)
	}

	doc := goquery.NewDocumentFromNode(root)

	result.Title = strings.TrimSpace(doc.Find("title").First().Text())
	result.Content = visibleText(root)
	result.Forms = doc.Find("form").Length()
	result.Tables = doc.Find("table").Length()
	result.Scripts = doc.Find("script").Length()
	result.Stylesheets = doc.Find(`link[rel~="stylesheet"]`).Length()

	base, perr := url.Parse(sourceURL)
	if perr != nil || !base.IsAbs() {
		base = nil
	}
	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if b := resolve(base, href); b != "" {
			base, _ = url.Parse(b) //nolint:errcheck // resolve returned a valid URL
		}
	}

	result.Links = collect(doc, "a[href]", "href", base)
	result.Images = collect(doc, "img[src]", "src", base)

	return result, nil
}

// decode converts raw bytes to UTF-8 using the Content-Type charset, a BOM
// or a <meta charset> declaration. Undecodable input is passed through.
func decode(raw []byte, contentType string) *bytes.Reader {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return bytes.NewReader(raw)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return bytes.NewReader(raw)
	}
	return bytes.NewReader(buf.Bytes())
}

// isMarkup reports whether contentType can be parsed as HTML.
// An empty or unparsable type is treated as HTML.
func isMarkup(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return true
	}
	return strings.HasPrefix(mediaType, "text/") ||
		strings.Contains(mediaType, "html") ||
		strings.Contains(mediaType, "xml")
}

// visibleText walks the tree and joins all text outside skipped elements,
// collapsing whitespace runs into single spaces.
func visibleText(root *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// collect resolves the attr of every element matching selector.
// Duplicates are dropped, first occurrence order is kept.
func collect(doc *goquery.Document, selector, attr string, base *url.URL) []string {
	out := []string{}
	seen := make(map[string]bool)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr(attr)
		abs := resolve(base, v)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	})
	return out
}

// resolve turns href into an absolute URL. Script and data references and
// malformed values return "".
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "data:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		if !u.IsAbs() {
			return ""
		}
		return u.String()
	}
	return base.ResolveReference(u).String()
}
