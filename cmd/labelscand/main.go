package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/complyline/ingredient-audit/internal/classify"
	"github.com/complyline/ingredient-audit/internal/common"
	"github.com/complyline/ingredient-audit/internal/metrics"
	"github.com/complyline/ingredient-audit/internal/ocr"
	"github.com/complyline/ingredient-audit/internal/pipeline"
	"github.com/complyline/ingredient-audit/internal/server"
)

func main() {
	cfg := common.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(1)
	}

	m := metrics.NewPipeline()

	ocrEx := ocr.NewExtractor(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Pdftoppm:    cfg.OCR.Pdftoppm,
		Languages:   cfg.OCR.Languages,
		TessdataDir: cfg.OCR.TessdataDir,
		DPI:         cfg.OCR.DPI,
		MaxPages:    cfg.OCR.MaxPages,
	}, logger)

	orch := pipeline.NewOrchestrator(cfg.Pipeline, cfg.OCR.Timeout, ocrEx, m, logger)

	var svc *classify.Service
	if cfg.Classifier.APIKey != "" {
		cls := classify.NewHTTPClassifier(cfg.Classifier, logger)
		svc = classify.NewService(cls, m, logger)
	} else {
		logger.Warn("classifier.disabled", "reason", "CLASSIFIER_API_KEY not set")
	}

	srv := server.New(orch, svc, m, cfg.Server.MaxUploadMB, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// uploads plus OCR can legitimately take a while
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listening", "addr", cfg.Server.HTTPAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("server.shutdown.signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server.failed", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server.shutdown.error", "error", err)
	}
	logger.Info("server.stopped")
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
