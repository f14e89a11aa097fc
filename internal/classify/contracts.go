// Package classify is the boundary to the external reasoning service that
// judges ingredient compliance. The service is consumed as a black box; the
// only local logic is transport, response validation, and the mandatory
// completeness repair that reconciles returned verdict counts against what
// was submitted.
package classify

import "context"

// Request carries one product's name and its ordered ingredient tokens.
type Request struct {
	ProductName string   `json:"product_name"`
	Ingredients []string `json:"ingredients"`
}

// IngredientVerdict is the classifier's judgment for one ingredient.
type IngredientVerdict struct {
	Name      string `json:"name"`
	Verdict   string `json:"verdict"`
	RiskLevel string `json:"risk_level,omitempty"`
	Category  string `json:"category,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

// Result is the classifier's response for one product.
type Result struct {
	Ingredients []IngredientVerdict `json:"ingredients"`
}

// Sentinel verdict values synthesized when the classifier silently drops a
// submitted ingredient.
const (
	SentinelVerdict   = "needs verification"
	SentinelRisk      = "unknown"
	SentinelRationale = "analysis incomplete"
)

// Classifier is the interface the pipeline depends on.
type Classifier interface {
	Classify(ctx context.Context, req Request) (Result, error)
}
