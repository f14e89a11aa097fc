package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"strconv"
	"strings"

	// registered for image.Decode of common packaging photo formats
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var reBoxNoise = regexp.MustCompile(`(?m)^[\s|_\-=~]{3,}$`)

// ExtractImage decodes a packaging photo, preprocesses it and runs
// multi-language recognition on the result.
func (e *Extractor) ExtractImage(ctx context.Context, content []byte) (Result, error) {
	img, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}
	e.logger.Debug("ocr.image.decoded", "format", format, "bounds", img.Bounds().String())

	prepared := Preprocess(img)
	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return Result{}, fmt.Errorf("encode preprocessed image: %w", err)
	}

	path, cleanup, err := writeTemp("ia-ocr-*.png", buf.Bytes())
	if err != nil {
		return Result{}, err
	}
	defer cleanup()

	text, err := e.tesseract(ctx, path)
	if err != nil {
		return Result{}, err
	}

	var conf float32
	if c, err := e.tesseractTSVConfidence(ctx, path); err == nil {
		conf = c
	} else {
		e.logger.Warn("ocr.image.tsv_confidence_failed", "error", err)
	}
	heur := heuristicConfidence(text)
	if conf > 0 {
		conf = 0.7*conf + 0.3*heur
	} else {
		conf = heur
	}
	if conf > 1.0 {
		conf = 1.0
	}

	if strings.TrimSpace(text) == "" {
		return Result{}, fmt.Errorf("recognition produced no text")
	}
	return Result{Text: text, Pages: 1, Confidence: conf}, nil
}

func (e *Extractor) tesseract(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Languages}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(errb), 512))
	}

	// minor cleanup of obvious line noise
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (e *Extractor) tesseractTSVConfidence(ctx context.Context, path string) (float32, error) {
	args := []string{path, "stdout", "-l", e.cfg.Languages}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w", err)
	}
	lines := strings.Split(string(out), "\n")
	// conf sits before the trailing text column; first line is the header
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[len(cols)-2]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float32(sum / n / 100.0), nil
}
