package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ExtractPDF rasterizes a scanned PDF with pdftoppm and recognizes each
// rendered page. Used when the text-layer tier reports a scanned document.
func (e *Extractor) ExtractPDF(ctx context.Context, content []byte) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "ia-pp-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.pdf.temp_cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, content, 0o600); err != nil {
		return Result{}, fmt.Errorf("write pdf temp: %w", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", in, prefix)
	if err != nil {
		return Result{}, fmt.Errorf("pdftoppm: %w (stderr: %s)", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{}, fmt.Errorf("pdftoppm produced no page images")
	}

	var b strings.Builder
	var confSum float32
	confPages := 0
	for _, img := range matches {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		txt, err := e.tesseract(ctx, img)
		if err != nil {
			e.logger.Warn("ocr.pdf.page_failed", "page", filepath.Base(img), "error", err)
			continue
		}
		if c, err := e.tesseractTSVConfidence(ctx, img); err == nil && c > 0 {
			confSum += c
			confPages++
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("recognition produced no text on any page")
	}

	conf := heuristicConfidence(text)
	if confPages > 0 {
		conf = 0.7*(confSum/float32(confPages)) + 0.3*conf
	}
	return Result{Text: text, Pages: len(matches), Confidence: conf}, nil
}
