package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/dataminer/internal/crawler"
	"github.com/nao1215/dataminer/internal/database"
	"github.com/nao1215/dataminer/internal/model"
)

const ruleWidth = 60

// SimpleWriter prints plain text summaries for terminal display.
type SimpleWriter struct {
	output  io.Writer
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose lists every visited URL in crawl summaries.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{output: output}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteResult prints the outcome of a crawl or batch session.
func (w *SimpleWriter) WriteResult(res *crawler.Result) error {
	var sb strings.Builder

	n := res.Processed()
	fmt.Fprintf(&sb, "Processed %d %s\n\n", n, plural(n, "URL", "URLs"))
	writeSection(&sb, "SESSION SUMMARY")
	fmt.Fprintf(&sb, "  Pages scraped:  %d\n", res.Scraped)
	fmt.Fprintf(&sb, "  Data extracted: %d\n", res.Stored)
	fmt.Fprintf(&sb, "  Duplicates:     %d\n", res.Duplicates)
	fmt.Fprintf(&sb, "  Errors:         %d\n", res.Errors)
	fmt.Fprintf(&sb, "  Uptime:         %s\n", res.Elapsed.Round(time.Millisecond))
	sb.WriteString("\n")

	if w.verbose && len(res.Visited) > 0 {
		writeSection(&sb, "VISITED")
		for _, u := range res.Visited {
			fmt.Fprintf(&sb, "  %s\n", u)
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w.output, sb.String())
	return err
}

// WriteSearch prints the pages matching query.
func (w *SimpleWriter) WriteSearch(query string, pages []*model.PageRecord) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Found %d %s for %q\n\n", len(pages), plural(len(pages), "result", "results"), query)
	for i, p := range pages {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, titleOrDash(p.Title))
		fmt.Fprintf(&sb, "   URL:     %s\n", p.URL)
		fmt.Fprintf(&sb, "   Fetched: %s\n", p.FetchedAt.Local().Format("2006-01-02 15:04:05"))
		if p.Content != "" {
			fmt.Fprintf(&sb, "   %s\n", truncate(p.Content, 200))
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w.output, sb.String())
	return err
}

// WriteStats prints database statistics.
func (w *SimpleWriter) WriteStats(stats *database.Stats) error {
	var sb strings.Builder

	writeSection(&sb, "DATABASE STATISTICS")
	fmt.Fprintf(&sb, "  Total records: %d\n", stats.Records)
	fmt.Fprintf(&sb, "  Total URLs:    %d\n", stats.URLs)
	fmt.Fprintf(&sb, "  Scraped URLs:  %d\n", stats.Scraped)
	fmt.Fprintf(&sb, "  Error URLs:    %d\n", stats.Errors)
	fmt.Fprintf(&sb, "  Pending URLs:  %d\n", stats.Pending)
	sb.WriteString("\n")

	_, err := io.WriteString(w.output, sb.String())
	return err
}

// WriteSettings prints settings as aligned name/value pairs.
func (w *SimpleWriter) WriteSettings(settings []Setting) error {
	var sb strings.Builder

	width := 0
	for _, s := range settings {
		width = max(width, len(s.Name))
	}

	writeSection(&sb, "SETTINGS")
	for _, s := range settings {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width+1, s.Name+":", s.Value)
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w.output, sb.String())
	return err
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
