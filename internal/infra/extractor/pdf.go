package extractor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts the plain text layer of a PDF document.
// Pages are read in order and joined by a newline; image-only pages contribute nothing.
type PDFExtractor struct {
	logger *slog.Logger
}

// NewPDFExtractor creates a PDFExtractor. A nil logger uses slog.Default.
func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

// ExtractText returns the concatenated text of every page in data.
func (p *PDFExtractor) ExtractText(ctx context.Context, data []byte) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrInvalidPDF, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	pages := reader.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrInvalidPDF, i, err)
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(content)
	}

	text = strings.TrimSpace(b.String())
	p.logger.DebugContext(ctx, "PDF text extracted",
		slog.Int("pages", pages),
		slog.Int("bytes", len(data)),
		slog.Int("text_length", len(text)))
	return text, nil
}
