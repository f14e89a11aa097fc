package classify

import (
	"context"
	"log/slog"
)

// Repair enforces the completeness invariant: the repaired result has at
// least as many verdict entries as ingredients were submitted. Shortfall
// entries are synthesized by position — the classifier is instructed to
// preserve order, so the i-th missing slot gets the i-th submitted name,
// never a fuzzy name match. Extra entries are left untouched.
func Repair(req Request, res Result) (Result, int) {
	missing := len(req.Ingredients) - len(res.Ingredients)
	if missing <= 0 {
		return res, 0
	}
	repaired := make([]IngredientVerdict, 0, len(req.Ingredients))
	repaired = append(repaired, res.Ingredients...)
	for i := len(res.Ingredients); i < len(req.Ingredients); i++ {
		repaired = append(repaired, IngredientVerdict{
			Name:      req.Ingredients[i],
			Verdict:   SentinelVerdict,
			RiskLevel: SentinelRisk,
			Rationale: SentinelRationale,
		})
	}
	return Result{Ingredients: repaired}, missing
}

// SentinelObserver counts synthesized verdicts; satisfied by metrics.Pipeline.
type SentinelObserver interface {
	SentinelVerdicts(n int)
}

// Service is the only classification entry point the rest of the system
// uses. Repair is not optional and cannot be bypassed: every call site goes
// through ClassifyAndRepair.
type Service struct {
	classifier Classifier
	obs        SentinelObserver
	logger     *slog.Logger
}

func NewService(c Classifier, obs SentinelObserver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{classifier: c, obs: obs, logger: logger}
}

// ClassifyAndRepair submits the request and reconciles the returned verdict
// count against the submitted ingredient count.
func (s *Service) ClassifyAndRepair(ctx context.Context, req Request) (Result, error) {
	res, err := s.classifier.Classify(ctx, req)
	if err != nil {
		return Result{}, err
	}
	repaired, missing := Repair(req, res)
	if missing > 0 {
		s.logger.Warn("classify.repair.sentinels_appended",
			"product", req.ProductName,
			"submitted", len(req.Ingredients),
			"returned", len(res.Ingredients),
			"appended", missing,
		)
		if s.obs != nil {
			s.obs.SentinelVerdicts(missing)
		}
	}
	return repaired, nil
}
