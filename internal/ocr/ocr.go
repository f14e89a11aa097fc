// Package ocr recognizes text in packaging photos and scanned documents.
// Recognition itself is delegated to the tesseract binary through a
// stubbable Runner; preprocessing of the uploaded bitmap is pure Go.
package ocr

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"

	// Languages is the tesseract -l value. Packaging text is multinational,
	// so the default set covers Latin-script European languages plus Arabic,
	// Hebrew, Thai and Vietnamese.
	Languages string

	TessdataDir string
	DPI         int // rasterization DPI for scanned PDFs, default 300
	MaxPages    int // 0 = no limit

	PSM int // page segmentation mode; 6 works for uniform text blocks
	OEM int // 1 = LSTM; 0 uses the engine default
}

// Result is OCR-derived text plus the quality signals downstream tiers use.
type Result struct {
	Text       string
	Pages      int
	Confidence float32 // 0..1, TSV mean word confidence blended with shape heuristic
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Languages == "" {
		cfg.Languages = "eng+fra+deu+spa+ita+por+nld+pol+ara+heb+tha+vie"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner replaces the exec runner; tests use this to stub tesseract.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// writeTemp spills content to a temp file and returns its path plus a
// cleanup func. Uploaded bytes only ever touch disk here and are removed on
// every exit path.
func writeTemp(pattern string, content []byte) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() { _ = os.Remove(path) }
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
