package risk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dan9191/loan-risk-service/internal/models"
	"github.com/Dan9191/loan-risk-service/internal/risk"
)

func factorsNamed(names ...string) []models.RiskFactor {
	out := make([]models.RiskFactor, len(names))
	for i, n := range names {
		out[i] = models.RiskFactor{Factor: n, Severity: models.SeverityMedium}
	}
	return out
}

func TestGenerateRecommendations_Empty(t *testing.T) {
	recs := risk.GenerateRecommendations(nil, 30)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestGenerateRecommendations_FactorOrder(t *testing.T) {
	recs := risk.GenerateRecommendations(factorsNamed(
		risk.FactorDecliningBalance,
		risk.FactorMissedPayments,
		risk.FactorWithdrawalDeposit,
		risk.FactorLoanToIncome,
		risk.FactorBalanceVolatility,
		risk.FactorInfrequentActivity,
	), 10)

	assert.Equal(t, []string{
		risk.RecRestructureLoan,
		risk.RecMonitorCashFlow,
		risk.RecPaymentReminders,
		risk.RecFlexibleSchedule,
		risk.RecCounselingSession,
	}, recs)
}

func TestGenerateRecommendations_MissedPaymentsIff(t *testing.T) {
	with := risk.GenerateRecommendations(factorsNamed(risk.FactorMissedPayments), 0)
	assert.Equal(t, []string{risk.RecPaymentReminders, risk.RecFlexibleSchedule}, with)

	without := risk.GenerateRecommendations(factorsNamed(risk.FactorLoanToIncome), 0)
	assert.NotContains(t, without, risk.RecPaymentReminders)
	assert.NotContains(t, without, risk.RecFlexibleSchedule)
}

func TestGenerateRecommendations_ScoreBands(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected []string
	}{
		{"moderate", 60, []string{}},
		{"high", 60.5, []string{risk.RecIncreaseMonitoring, risk.RecProactiveOutreach}},
		{"high edge", 80, []string{risk.RecIncreaseMonitoring, risk.RecProactiveOutreach}},
		{"very high", 85, []string{risk.RecImmediateReview, risk.RecAdditionalSecurity}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, risk.GenerateRecommendations(nil, tt.score))
		})
	}
}

func TestGenerateRecommendations_FactorsThenScore(t *testing.T) {
	recs := risk.GenerateRecommendations(factorsNamed(risk.FactorLoanToIncome), 95)
	assert.Equal(t, []string{
		risk.RecRestructureLoan,
		risk.RecImmediateReview,
		risk.RecAdditionalSecurity,
	}, recs)
}
