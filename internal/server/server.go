// Package server exposes the upload boundary: one multipart endpoint that
// runs the extraction pipeline and, on request, the compliance classifier.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/complyline/ingredient-audit/constants"
	"github.com/complyline/ingredient-audit/internal/classify"
	"github.com/complyline/ingredient-audit/internal/common"
	"github.com/complyline/ingredient-audit/internal/detect"
	"github.com/complyline/ingredient-audit/internal/metrics"
	"github.com/complyline/ingredient-audit/internal/pipeline"
)

type Server struct {
	orch     *pipeline.Orchestrator
	classify *classify.Service
	metrics  *metrics.Pipeline
	logger   *slog.Logger
	maxBytes int64
}

func New(orch *pipeline.Orchestrator, cls *classify.Service, m *metrics.Pipeline, maxUploadMB int64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	return &Server{
		orch:     orch,
		classify: cls,
		metrics:  m,
		logger:   logger,
		maxBytes: maxUploadMB << 20,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthz)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	mux.HandleFunc("/v1/labels/analyze", s.analyze)
	return s.instrument(mux)
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyzeResponse is the pipeline output contract plus per-product verdicts
// when classification was requested.
type analyzeResponse struct {
	pipeline.Outcome
	Verdicts []productVerdicts `json:"verdicts,omitempty"`
}

type productVerdicts struct {
	ProductName string                       `json:"productName"`
	Ingredients []classify.IngredientVerdict `json:"ingredients"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody("method not allowed", ""))
		return
	}

	reqID := uuid.New().String()
	ctx := common.WithRequestID(r.Context(), reqID)
	logger := s.logger.With("req_id", reqID)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("upload exceeds the size limit", ""))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody("multipart field 'file' is required", ""))
		return
	}
	defer file.Close()

	mediaType := header.Header.Get("Content-Type")
	// reject unrecognized uploads before reading the body: a specific,
	// enumerable error beats a generic failure after a wasted parse
	if detect.Detect(header.Filename, mediaType) == constants.UNKNOWN {
		logger.Warn("upload.rejected", "filename", header.Filename, "media_type", mediaType,
			"ext", filepath.Ext(header.Filename))
		writeJSON(w, http.StatusUnsupportedMediaType,
			errorBody("unsupported file type", constants.SupportedSummary))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("upload exceeds the size limit", ""))
			return
		}
		logger.Error("upload.read_failed", "error", err)
		writeJSON(w, http.StatusBadRequest, errorBody("could not read upload", ""))
		return
	}

	outcome, err := s.orch.Process(ctx, pipeline.Upload{
		Filename:  header.Filename,
		MediaType: mediaType,
		Content:   content,
	})
	if err != nil {
		s.writeError(w, logger, err)
		return
	}

	resp := analyzeResponse{Outcome: outcome}
	if r.URL.Query().Get("classify") == "1" {
		if s.classify == nil {
			writeJSON(w, http.StatusBadGateway, errorBody(
				"classification is not configured on this server; extraction results are available without classify=1", ""))
			return
		}
		verdicts, err := s.classifyProducts(ctx, outcome.Products)
		if err != nil {
			s.writeError(w, logger, err)
			return
		}
		resp.Verdicts = verdicts
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) classifyProducts(ctx context.Context, products []pipeline.Product) ([]productVerdicts, error) {
	out := make([]productVerdicts, 0, len(products))
	for _, p := range products {
		res, err := s.classify.ClassifyAndRepair(ctx, classify.Request{
			ProductName: p.Name,
			Ingredients: p.Ingredients,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, productVerdicts{ProductName: p.Name, Ingredients: res.Ingredients})
	}
	return out, nil
}

// writeError maps the pipeline error taxonomy onto HTTP statuses with
// human-actionable messages.
func (s *Server) writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrUnsupportedFormat):
		writeJSON(w, http.StatusUnsupportedMediaType, errorBody(err.Error(), constants.SupportedSummary))
	case errors.Is(err, common.ErrNoProductsFound):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(
			"no product or ingredient declarations were recognized in this file", constants.SupportedSummary))
	case errors.Is(err, common.ErrExtractionFailed):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(
			"the file could not be read by any available extraction method", constants.SupportedSummary))
	case errors.Is(err, common.ErrClassificationUnavailable):
		writeJSON(w, http.StatusBadGateway, errorBody(
			"the analysis service is currently unavailable; extraction succeeded, try classification again later", ""))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// client went away; 499-style, nothing useful to write
		writeJSON(w, http.StatusRequestTimeout, errorBody("request cancelled", ""))
	default:
		logger.Error("analyze.internal_error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error", ""))
	}
}

func errorBody(msg, hint string) map[string]string {
	body := map[string]string{"error": msg}
	if hint != "" {
		body["hint"] = hint
	}
	return body
}
