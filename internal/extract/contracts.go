// Package extract holds the per-format text extractors. Each extractor
// turns raw uploaded bytes into text; OCR-based extraction for images and
// scanned documents lives in the ocr package.
package extract

import (
	"errors"
	"fmt"
)

// Extraction method labels, reported in the pipeline output for diagnostics.
const (
	MethodPlainText = "plain-text"
	MethodCSVTable  = "csv-table"
	MethodPDFText   = "pdf-text"
	MethodDocxText  = "docx-text"
	MethodXLSXSheet = "xlsx-sheet"
	MethodPDFOCR    = "pdf-ocr"
	MethodImageOCR  = "image-ocr"
)

// Result is raw extracted text plus provenance.
type Result struct {
	Text   string
	Method string
	Pages  int
}

// ExtractionError is a typed per-tier failure carrying the attempted method
// name so the orchestrator can report every tier it tried.
type ExtractionError struct {
	Method string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Method, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// NewExtractionError wraps err with the attempted method name.
func NewExtractionError(method string, err error) *ExtractionError {
	return &ExtractionError{Method: method, Err: err}
}

// ErrScannedPDF signals a PDF whose text layer is empty or too short to be
// usable, so the orchestrator escalates to rasterize-and-OCR instead of
// returning an empty result.
var ErrScannedPDF = errors.New("pdf text layer empty or too short")
