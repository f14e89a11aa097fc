package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/complyline/ingredient-audit/internal/extract"
)

// Attempt is one extraction tier: a method label, a wall-clock budget, and
// the work itself.
type Attempt struct {
	Method  string
	Timeout time.Duration
	Run     func(ctx context.Context) (extract.Result, error)
}

// TierError aggregates every tier failure after exhaustion, so callers see
// the full list of attempted methods instead of only the last error.
type TierError struct {
	Methods []string
	Errs    []error
}

func (e *TierError) Error() string {
	parts := make([]string, len(e.Methods))
	for i, m := range e.Methods {
		parts[i] = fmt.Sprintf("%s: %v", m, e.Errs[i])
	}
	return "all extraction tiers failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the last tier's error for errors.Is checks.
func (e *TierError) Unwrap() error {
	if len(e.Errs) == 0 {
		return nil
	}
	return e.Errs[len(e.Errs)-1]
}

// TierObserver receives per-attempt outcomes; satisfied by metrics.Pipeline.
type TierObserver interface {
	TierAttempt(method, outcome string)
}

// RunTiers executes attempts in order and returns the first success. Each
// attempt runs under its own timeout so a hanging parser or OCR call cannot
// block the request; on timeout or error the next tier is tried. A
// cancelled parent context aborts immediately — partial results are not
// returned.
func RunTiers(ctx context.Context, logger *slog.Logger, obs TierObserver, attempts []Attempt) (extract.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	agg := &TierError{}
	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			return extract.Result{}, err
		}

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if a.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, a.Timeout)
		}

		start := time.Now()
		res, err := a.Run(attemptCtx)
		cancel()
		elapsed := time.Since(start)

		if err == nil {
			logger.Info("pipeline.tier.ok", "method", a.Method, "elapsed_ms", elapsed.Milliseconds(), "text_bytes", len(res.Text))
			if obs != nil {
				obs.TierAttempt(a.Method, "ok")
			}
			return res, nil
		}

		// parent cancellation is not a tier failure; stop escalating
		if ctx.Err() != nil {
			return extract.Result{}, ctx.Err()
		}

		logger.Warn("pipeline.tier.failed", "method", a.Method, "elapsed_ms", elapsed.Milliseconds(), "error", err)
		if obs != nil {
			obs.TierAttempt(a.Method, "failed")
		}
		agg.Methods = append(agg.Methods, a.Method)
		agg.Errs = append(agg.Errs, err)
	}
	return extract.Result{}, agg
}
