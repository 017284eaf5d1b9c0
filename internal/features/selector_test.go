package features_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dan9191/loan-risk-service/internal/features"
)

func TestSelect_SubsetOfDerived(t *testing.T) {
	derived := map[string]float64{"age": 41, "loan_amount": 1000, "balance_trend": -0.2}
	names := []string{"loan_amount", "age"}

	vec := features.Select(derived, names)

	assert.Equal(t, names, vec.Names)
	assert.Len(t, vec.Values, 2)
	assert.Equal(t, 1000.0, vec.Values["loan_amount"])
	assert.Equal(t, 41.0, vec.Values["age"])
	_, ok := vec.Get("balance_trend")
	assert.False(t, ok)
}

func TestSelect_UnknownNamesDefaultToZero(t *testing.T) {
	derived := map[string]float64{"age": 41}
	names := []string{"age", "credit_bureau_score", "num_dependents"}

	vec := features.Select(derived, names)

	assert.Len(t, vec.Values, 3)
	assert.Equal(t, []float64{41, 0, 0}, vec.Row())
	v, ok := vec.Get("credit_bureau_score")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestSelect_KeepsConfiguredOrder(t *testing.T) {
	derived := map[string]float64{"a": 1, "b": 2, "c": 3}
	vec := features.Select(derived, []string{"c", "a", "b"})
	assert.Equal(t, []float64{3, 1, 2}, vec.Row())
}

func TestSelect_DoesNotAliasNames(t *testing.T) {
	names := []string{"age"}
	vec := features.Select(map[string]float64{"age": 1}, names)
	names[0] = "changed"
	assert.Equal(t, []string{"age"}, vec.Names)
}
