package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/nao1215/dataminer/internal/model"
)

// csvHeader is the column layout of CSV exports.
var csvHeader = []string{"URL", "Title", "Content", "Timestamp"}

// CSVWriter exports one row per page.
type CSVWriter struct {
	output io.Writer
}

// NewCSVWriter creates a CSVWriter.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{output: output}
}

// Export writes the header row followed by one row per page.
// Timestamps are RFC 3339 in UTC.
func (w *CSVWriter) Export(pages []*model.PageRecord) error {
	cw := csv.NewWriter(w.output)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, p := range pages {
		row := []string{
			p.URL,
			p.Title,
			p.Content,
			p.FetchedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", p.URL, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
