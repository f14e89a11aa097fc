package classify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRepairNoShortfall(t *testing.T) {
	req := Request{ProductName: "Soda", Ingredients: []string{"water", "sugar"}}
	res := Result{Ingredients: []IngredientVerdict{
		{Name: "water", Verdict: "approved"},
		{Name: "sugar", Verdict: "approved"},
	}}

	repaired, missing := Repair(req, res)
	assert.Zero(t, missing)
	assert.Equal(t, res, repaired)
}

func TestRepairAppendsSentinelsByPosition(t *testing.T) {
	req := Request{ProductName: "Cookies", Ingredients: []string{"flour", "sugar", "salt", "yeast"}}
	res := Result{Ingredients: []IngredientVerdict{
		{Name: "flour", Verdict: "approved"},
		{Name: "sugar", Verdict: "restricted"},
	}}

	repaired, missing := Repair(req, res)
	assert.Equal(t, 2, missing)
	require.Len(t, repaired.Ingredients, 4)

	// original entries untouched
	assert.Equal(t, "approved", repaired.Ingredients[0].Verdict)
	assert.Equal(t, "restricted", repaired.Ingredients[1].Verdict)

	// positions 3 and 4 synthesized with the submitted names, in order
	assert.Equal(t, "salt", repaired.Ingredients[2].Name)
	assert.Equal(t, SentinelVerdict, repaired.Ingredients[2].Verdict)
	assert.Equal(t, SentinelRisk, repaired.Ingredients[2].RiskLevel)
	assert.Equal(t, SentinelRationale, repaired.Ingredients[2].Rationale)
	assert.Equal(t, "yeast", repaired.Ingredients[3].Name)
	assert.Equal(t, SentinelVerdict, repaired.Ingredients[3].Verdict)
}

func TestRepairEmptyResponse(t *testing.T) {
	req := Request{ProductName: "Tea", Ingredients: []string{"water", "black tea"}}

	repaired, missing := Repair(req, Result{})
	assert.Equal(t, 2, missing)
	require.Len(t, repaired.Ingredients, 2)
	for i, v := range repaired.Ingredients {
		assert.Equal(t, req.Ingredients[i], v.Name)
		assert.Equal(t, SentinelVerdict, v.Verdict)
	}
}

func TestRepairExtraEntriesKept(t *testing.T) {
	req := Request{ProductName: "Water", Ingredients: []string{"water"}}
	res := Result{Ingredients: []IngredientVerdict{
		{Name: "water", Verdict: "approved"},
		{Name: "minerals", Verdict: "approved"},
	}}

	repaired, missing := Repair(req, res)
	assert.Zero(t, missing)
	assert.Len(t, repaired.Ingredients, 2)
}

type stubClassifier struct {
	res Result
	err error
}

func (s stubClassifier) Classify(context.Context, Request) (Result, error) {
	return s.res, s.err
}

type countingObserver struct{ n int }

func (c *countingObserver) SentinelVerdicts(n int) { c.n += n }

func TestServiceClassifyAndRepair(t *testing.T) {
	obs := &countingObserver{}
	svc := NewService(stubClassifier{res: Result{Ingredients: []IngredientVerdict{
		{Name: "flour", Verdict: "approved"},
	}}}, obs, testLogger())

	req := Request{ProductName: "Bread", Ingredients: []string{"flour", "water", "salt"}}
	res, err := svc.ClassifyAndRepair(context.Background(), req)
	require.NoError(t, err)

	// every call site gets exactly one verdict per submitted ingredient
	require.Len(t, res.Ingredients, 3)
	assert.Equal(t, 2, obs.n)
}

func TestServicePropagatesClassifierError(t *testing.T) {
	wantErr := errors.New("service down")
	svc := NewService(stubClassifier{err: wantErr}, nil, testLogger())

	_, err := svc.ClassifyAndRepair(context.Background(), Request{Ingredients: []string{"water"}})
	assert.ErrorIs(t, err, wantErr)
}
