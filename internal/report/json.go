package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nao1215/dataminer/internal/model"
)

// JSONWriter exports pages as a JSON array of full records.
type JSONWriter struct {
	output io.Writer
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents the output with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter. Output is compact unless
// WithPrettyPrint is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{output: output}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Export writes pages as a JSON array. An empty input writes "[]".
func (w *JSONWriter) Export(pages []*model.PageRecord) error {
	if pages == nil {
		pages = []*model.PageRecord{}
	}

	enc := json.NewEncoder(w.output)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(pages); err != nil {
		return fmt.Errorf("failed to encode pages: %w", err)
	}
	return nil
}
