package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the embedded text layer of a portable document. A
// scanned (image-only) PDF yields ErrScannedPDF so the orchestrator can
// escalate to rasterize-and-OCR instead of silently returning nothing.
type PDFExtractor struct {
	// MinTextLen is the threshold below which the text layer counts as
	// scanned. Zero means any non-empty text is accepted.
	MinTextLen int
}

func NewPDFExtractor(minTextLen int) *PDFExtractor {
	return &PDFExtractor{MinTextLen: minTextLen}
}

func (e *PDFExtractor) Extract(ctx context.Context, content []byte) (Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Result{}, NewExtractionError(MethodPDFText, fmt.Errorf("open pdf: %w", err))
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, NewExtractionError(MethodPDFText, err)
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// a single broken page does not abort the document
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
	}

	text := strings.TrimSpace(b.String())
	if len(text) < e.MinTextLen || text == "" {
		return Result{}, NewExtractionError(MethodPDFText, ErrScannedPDF)
	}
	return Result{Text: text, Method: MethodPDFText, Pages: pages}, nil
}
