package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/dataminer/internal/database"
	"github.com/nao1215/dataminer/internal/model"
)

// MarkdownWriter renders pages and statistics as GitHub-flavored Markdown.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Export writes an overview table of pages followed by a section per page
// that carries content signals. Card numbers and SSNs are reported as
// counts only.
func (w *MarkdownWriter) Export(pages []*model.PageRecord) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Dataminer Export")
	md.PlainText("")
	md.PlainTextf("%d page(s) exported.", len(pages))
	md.PlainText("")

	if len(pages) == 0 {
		md.Note("The database holds no pages yet. Run `dataminer crawl` or `dataminer scrape` first.")
		md.PlainText("")
		w.writeFooter(md)
		return md.Build()
	}

	rows := make([][]string, len(pages))
	for i, p := range pages {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			truncate(titleOrDash(p.Title), 60),
			p.URL,
			strconv.Itoa(p.Analysis.WordCount),
			p.FetchedAt.UTC().Format(time.RFC3339),
		}
	}
	md.H2("Pages")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"#", "Title", "URL", "Words", "Fetched"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Signals")
	md.PlainText("")
	found := false
	for _, p := range pages {
		if !p.Analysis.HasSignals() {
			continue
		}
		found = true
		w.writeSignals(md, p)
	}
	if !found {
		md.PlainText("No emails, phone numbers, social handles or financial data were found.")
		md.PlainText("")
	}

	w.writeFooter(md)
	return md.Build()
}

func (w *MarkdownWriter) writeSignals(md *markdown.Markdown, p *model.PageRecord) {
	md.H3(titleOrDash(p.Title))
	md.PlainText("")
	md.PlainTextf("Source: %s", p.URL)
	md.PlainText("")

	a := p.Analysis
	var items []string
	if len(a.Emails) > 0 {
		items = append(items, "Emails: "+strings.Join(a.Emails, ", "))
	}
	if len(a.Phones) > 0 {
		items = append(items, "Phones: "+strings.Join(a.Phones, ", "))
	}
	for _, platform := range model.SocialPlatforms {
		if handles := a.SocialHandles[platform]; len(handles) > 0 {
			items = append(items, displayName(platform.String())+": "+strings.Join(handles, ", "))
		}
	}
	for _, category := range model.FinancialCategories {
		tokens := a.FinancialTokens[category]
		if len(tokens) == 0 {
			continue
		}
		if category.IsSensitive() {
			items = append(items, displayName(category.String())+": "+strconv.Itoa(len(tokens))+" found")
			continue
		}
		items = append(items, displayName(category.String())+": "+strings.Join(tokens, ", "))
	}
	if len(a.Keywords) > 0 {
		items = append(items, "Keywords: "+strings.Join(a.Keywords, ", "))
	}

	md.BulletList(items...)
	md.PlainText("")
}

// WriteStats renders database statistics and, when given, the effective
// settings.
func (w *MarkdownWriter) WriteStats(stats *database.Stats, settings []Setting) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Dataminer Statistics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Records", strconv.Itoa(stats.Records)},
			{"Total URLs", strconv.Itoa(stats.URLs)},
			{"Scraped URLs", strconv.Itoa(stats.Scraped)},
			{"Error URLs", strconv.Itoa(stats.Errors)},
			{"Pending URLs", strconv.Itoa(stats.Pending)},
		},
	})
	md.PlainText("")

	if stats.URLs > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("URL Status"),
			piechart.WithShowData(true),
		)
		if stats.Scraped > 0 {
			chart.LabelAndIntValue("Scraped", uint64(stats.Scraped))
		}
		if stats.Errors > 0 {
			chart.LabelAndIntValue("Error", uint64(stats.Errors))
		}
		if stats.Pending > 0 {
			chart.LabelAndIntValue("Pending", uint64(stats.Pending))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case stats.URLs == 0:
		md.Note("No URLs have been processed yet.")
	case stats.Errors > 0:
		md.Warningf("%d URL(s) could not be fetched.", stats.Errors)
	default:
		md.Tip("Every processed URL was fetched successfully.")
	}
	md.PlainText("")

	if len(settings) > 0 {
		md.H2("Settings")
		md.PlainText("")
		rows := make([][]string, len(settings))
		for i, s := range settings {
			rows[i] = []string{s.Name, s.Value}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Setting", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	w.writeFooter(md)
	return md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by dataminer on %s*", time.Now().UTC().Format("2006-01-02 15:04:05 MST"))
}

// displayName turns an identifier such as "credit_cards" into "Credit Cards".
func displayName(id string) string {
	if id == string(model.FinancialSSN) {
		return "SSN"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}

func titleOrDash(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
