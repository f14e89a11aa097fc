// Package pipeline sequences the extraction stages for one upload:
// detect -> extract (tiered) -> normalize -> segment -> tokenize. Each
// upload is handled by one sequential invocation with no shared mutable
// state, so concurrent uploads need no locking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/complyline/ingredient-audit/constants"
	"github.com/complyline/ingredient-audit/internal/common"
	"github.com/complyline/ingredient-audit/internal/detect"
	"github.com/complyline/ingredient-audit/internal/extract"
	"github.com/complyline/ingredient-audit/internal/metrics"
	"github.com/complyline/ingredient-audit/internal/normalize"
	"github.com/complyline/ingredient-audit/internal/ocr"
	"github.com/complyline/ingredient-audit/internal/segment"
	"github.com/complyline/ingredient-audit/internal/tokenize"
)

// State tracks one upload's progress through the pipeline.
type State string

const (
	StateDetected   State = "detected"
	StateExtracting State = "extracting"
	StateSegmenting State = "segmenting"
	StateTokenizing State = "tokenizing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Upload is one user-submitted file. The pipeline owns the byte content for
// the duration of Process; any temp files spilled for external tools are
// removed on every exit path.
type Upload struct {
	Filename  string
	MediaType string
	Content   []byte
}

// Product is one normalized (name, ingredients) record in document order.
type Product struct {
	Name        string   `json:"productName"`
	Ingredients []string `json:"ingredients"`
	Strategy    string   `json:"strategy"`
}

// Outcome is the pipeline output contract: ordered products plus the
// metadata operators need to diagnose how the text was obtained.
type Outcome struct {
	Products      []Product            `json:"products"`
	Format        constants.Format     `json:"sourceFormat"`
	Confidence    constants.Confidence `json:"extractionConfidence"`
	Method        string               `json:"extractionMethod"`
	Pages         int                  `json:"pages,omitempty"`
	OCRConfidence float32              `json:"ocrConfidence,omitempty"`
	NeedsReview   bool                 `json:"needsReview,omitempty"`
	State         State                `json:"-"`
}

type Orchestrator struct {
	cfg     common.PipelineConfig
	ocrWait time.Duration
	logger  *slog.Logger
	metrics *metrics.Pipeline

	ocr  *ocr.Extractor
	text *extract.TextExtractor
	csv  *extract.CSVExtractor
	pdf  *extract.PDFExtractor
	docx *extract.DocxExtractor
	xlsx *extract.XLSXExtractor
}

func NewOrchestrator(cfg common.PipelineConfig, ocrTimeout time.Duration, ocrEx *ocr.Extractor, m *metrics.Pipeline, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TierTimeout <= 0 {
		cfg.TierTimeout = 20 * time.Second
	}
	if ocrTimeout <= 0 {
		ocrTimeout = 30 * time.Second
	}
	return &Orchestrator{
		cfg:     cfg,
		ocrWait: ocrTimeout,
		logger:  logger,
		metrics: m,
		ocr:     ocrEx,
		text:    extract.NewTextExtractor(),
		csv:     extract.NewCSVExtractor(),
		pdf:     extract.NewPDFExtractor(cfg.MinPDFTextLen),
		docx:    extract.NewDocxExtractor(),
		xlsx:    extract.NewXLSXExtractor(),
	}
}

// Process runs the full pipeline for one upload. Failures come back as the
// pipeline error taxonomy, never a panic: per-tier extractor failures are
// recovered here and only surface when every applicable tier is exhausted.
func (o *Orchestrator) Process(ctx context.Context, up Upload) (Outcome, error) {
	start := time.Now()
	format := detect.Detect(up.Filename, up.MediaType)
	o.logger.Info("pipeline.detected", "filename", up.Filename, "media_type", up.MediaType, "format", string(format), "size", len(up.Content))

	var ocrConf float32
	attempts := o.tiersFor(format, up.Content, &ocrConf)

	var obs TierObserver
	if o.metrics != nil {
		obs = o.metrics
	}
	extractStart := time.Now()
	res, err := RunTiers(ctx, o.logger, obs, attempts)
	o.observeStage("extract", extractStart)
	if err != nil {
		if ctx.Err() != nil {
			o.countUpload(format, "cancelled")
			return Outcome{State: StateFailed}, err
		}
		o.countUpload(format, "extraction_failed")
		if format == constants.UNKNOWN {
			return Outcome{State: StateFailed}, common.NewAppError("UNSUPPORTED_FORMAT",
				fmt.Sprintf("%q could not be read as text; %s", up.Filename, constants.SupportedSummary),
				errors.Join(common.ErrUnsupportedFormat, err))
		}
		return Outcome{State: StateFailed}, common.NewAppError("EXTRACTION_FAILED",
			fmt.Sprintf("no extractable content in %q", up.Filename),
			errors.Join(common.ErrExtractionFailed, err))
	}

	segmentStart := time.Now()
	normalized := normalize.Clean(res.Text)
	blocks := segment.Segment(normalized)
	o.observeStage("segment", segmentStart)

	tokenizeStart := time.Now()
	products := make([]Product, 0, len(blocks))
	flatOnly := true
	for _, b := range blocks {
		tokens := tokenize.Tokenize(b.Ingredients)
		if len(tokens) == 0 {
			continue
		}
		if b.Strategy != segment.StrategyFlatFallback {
			flatOnly = false
		}
		products = append(products, Product{Name: b.Name, Ingredients: tokens, Strategy: b.Strategy})
	}
	o.observeStage("tokenize", tokenizeStart)

	if len(products) == 0 {
		o.countUpload(format, "no_products")
		return Outcome{State: StateFailed}, common.NewAppError("NO_PRODUCTS_FOUND",
			"extraction succeeded but no product/ingredient blocks were recognized; "+constants.SupportedSummary,
			common.ErrNoProductsFound)
	}

	out := Outcome{
		Products:      products,
		Format:        format,
		Confidence:    confidenceFor(res.Method, flatOnly),
		Method:        res.Method,
		Pages:         res.Pages,
		OCRConfidence: ocrConf,
		NeedsReview:   ocrConf > 0 && ocrConf < constants.ImageConfidenceThreshold,
		State:         StateDone,
	}
	o.countUpload(format, "ok")
	if o.metrics != nil {
		o.metrics.ObserveProducts(len(products))
	}
	o.logger.Info("pipeline.done",
		"filename", up.Filename,
		"format", string(format),
		"method", res.Method,
		"products", len(products),
		"confidence", string(out.Confidence),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// tiersFor builds the ordered attempt list for a format. PDF escalates from
// text layer to rasterize-and-OCR; unknown formats get only the generic
// plain-text read.
func (o *Orchestrator) tiersFor(format constants.Format, content []byte, ocrConf *float32) []Attempt {
	plain := Attempt{Method: extract.MethodPlainText, Timeout: o.cfg.TierTimeout, Run: func(ctx context.Context) (extract.Result, error) {
		return o.text.Extract(ctx, content)
	}}

	switch format {
	case constants.CSV:
		return []Attempt{
			{Method: extract.MethodCSVTable, Timeout: o.cfg.TierTimeout, Run: func(ctx context.Context) (extract.Result, error) {
				return o.csv.Extract(ctx, content)
			}},
			plain,
		}
	case constants.PDF:
		return []Attempt{
			{Method: extract.MethodPDFText, Timeout: o.cfg.TierTimeout, Run: func(ctx context.Context) (extract.Result, error) {
				return o.pdf.Extract(ctx, content)
			}},
			{Method: extract.MethodPDFOCR, Timeout: o.ocrWait, Run: func(ctx context.Context) (extract.Result, error) {
				res, err := o.ocr.ExtractPDF(ctx, content)
				if err != nil {
					return extract.Result{}, extract.NewExtractionError(extract.MethodPDFOCR, err)
				}
				*ocrConf = res.Confidence
				return extract.Result{Text: res.Text, Method: extract.MethodPDFOCR, Pages: res.Pages}, nil
			}},
		}
	case constants.DOCX:
		return []Attempt{
			{Method: extract.MethodDocxText, Timeout: o.cfg.TierTimeout, Run: func(ctx context.Context) (extract.Result, error) {
				return o.docx.Extract(ctx, content)
			}},
			plain,
		}
	case constants.XLSX:
		return []Attempt{
			{Method: extract.MethodXLSXSheet, Timeout: o.cfg.TierTimeout, Run: func(ctx context.Context) (extract.Result, error) {
				return o.xlsx.Extract(ctx, content)
			}},
		}
	case constants.IMAGE:
		return []Attempt{
			{Method: extract.MethodImageOCR, Timeout: o.ocrWait, Run: func(ctx context.Context) (extract.Result, error) {
				res, err := o.ocr.ExtractImage(ctx, content)
				if err != nil {
					return extract.Result{}, extract.NewExtractionError(extract.MethodImageOCR, err)
				}
				*ocrConf = res.Confidence
				return extract.Result{Text: res.Text, Method: extract.MethodImageOCR, Pages: res.Pages}, nil
			}},
		}
	case constants.TEXT, constants.UNKNOWN:
		return []Attempt{plain}
	default:
		return []Attempt{plain}
	}
}

func confidenceFor(method string, flatOnly bool) constants.Confidence {
	if flatOnly {
		return constants.ConfidenceLow
	}
	if strings.Contains(method, "ocr") {
		return constants.ConfidenceMedium
	}
	return constants.ConfidenceHigh
}

func (o *Orchestrator) countUpload(format constants.Format, outcome string) {
	if o.metrics != nil {
		o.metrics.Upload(string(format), outcome)
	}
}

func (o *Orchestrator) observeStage(stage string, start time.Time) {
	if o.metrics != nil {
		o.metrics.ObserveStage(stage, time.Since(start).Seconds())
	}
}
