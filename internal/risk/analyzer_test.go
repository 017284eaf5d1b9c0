package risk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/loan-risk-service/internal/features"
	"github.com/Dan9191/loan-risk-service/internal/models"
	"github.com/Dan9191/loan-risk-service/internal/risk"
)

var allNames = []string{
	features.Age,
	features.EstimatedMonthlyIncome,
	features.LoanAmount,
	features.InterestRate,
	features.TenureMonths,
	features.EMIAmount,
	features.NumAccounts,
	features.WithdrawalCount,
	features.DepositCount,
	features.WithdrawalDepositRatio,
	features.AvgTransactionAmount,
	features.BalanceVolatility,
	features.MissedPayments,
	features.DaysSinceLastTransaction,
	features.BalanceTrend,
}

// quiet is a feature set that triggers no factor
func quiet() map[string]float64 {
	return map[string]float64{
		features.EstimatedMonthlyIncome:   50000,
		features.LoanAmount:               100000,
		features.WithdrawalDepositRatio:   0.5,
		features.BalanceVolatility:        0.1,
		features.MissedPayments:           0,
		features.DaysSinceLastTransaction: 3,
		features.BalanceTrend:             0.05,
	}
}

func vector(overrides map[string]float64) models.FeatureVector {
	derived := quiet()
	for k, v := range overrides {
		derived[k] = v
	}
	return features.Select(derived, allNames)
}

func TestAnalyzeFactors_NoneTriggered(t *testing.T) {
	assert.Empty(t, risk.AnalyzeFactors(vector(nil), 50))
}

func TestAnalyzeFactors_Thresholds(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]float64
		factor    string
		value     string
		severity  models.Severity
		triggered bool
	}{
		{"loan-to-income at trigger", map[string]float64{features.LoanAmount: 240000}, risk.FactorLoanToIncome, "", "", false},
		{"loan-to-income medium", map[string]float64{features.LoanAmount: 300000}, risk.FactorLoanToIncome, "0.50", models.SeverityMedium, true},
		{"loan-to-income at high edge", map[string]float64{features.LoanAmount: 360000}, risk.FactorLoanToIncome, "0.60", models.SeverityMedium, true},
		{"loan-to-income high", map[string]float64{features.LoanAmount: 420000}, risk.FactorLoanToIncome, "0.70", models.SeverityHigh, true},
		{"withdrawal ratio at trigger", map[string]float64{features.WithdrawalDepositRatio: 1.2}, risk.FactorWithdrawalDeposit, "", "", false},
		{"withdrawal ratio medium", map[string]float64{features.WithdrawalDepositRatio: 1.5}, risk.FactorWithdrawalDeposit, "1.50", models.SeverityMedium, true},
		{"withdrawal ratio high", map[string]float64{features.WithdrawalDepositRatio: 2}, risk.FactorWithdrawalDeposit, "2.00", models.SeverityHigh, true},
		{"volatility at trigger", map[string]float64{features.BalanceVolatility: 0.3}, risk.FactorBalanceVolatility, "", "", false},
		{"volatility medium", map[string]float64{features.BalanceVolatility: 0.35}, risk.FactorBalanceVolatility, "0.35", models.SeverityMedium, true},
		{"volatility high", map[string]float64{features.BalanceVolatility: 0.45}, risk.FactorBalanceVolatility, "0.45", models.SeverityHigh, true},
		{"late payment", map[string]float64{features.MissedPayments: 1}, risk.FactorMissedPayments, "1", models.SeverityMedium, true},
		{"default", map[string]float64{features.MissedPayments: 3}, risk.FactorMissedPayments, "3", models.SeverityHigh, true},
		{"activity at trigger", map[string]float64{features.DaysSinceLastTransaction: 15}, risk.FactorInfrequentActivity, "", "", false},
		{"activity low", map[string]float64{features.DaysSinceLastTransaction: 20}, risk.FactorInfrequentActivity, "20 days since last transaction", models.SeverityLow, true},
		{"activity at medium edge", map[string]float64{features.DaysSinceLastTransaction: 25}, risk.FactorInfrequentActivity, "25 days since last transaction", models.SeverityLow, true},
		{"activity medium", map[string]float64{features.DaysSinceLastTransaction: 30}, risk.FactorInfrequentActivity, "30 days since last transaction", models.SeverityMedium, true},
		{"trend at trigger", map[string]float64{features.BalanceTrend: -0.1}, risk.FactorDecliningBalance, "", "", false},
		{"trend medium", map[string]float64{features.BalanceTrend: -0.2}, risk.FactorDecliningBalance, "-0.20", models.SeverityMedium, true},
		{"trend high", map[string]float64{features.BalanceTrend: -0.5}, risk.FactorDecliningBalance, "-0.50", models.SeverityHigh, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factors := risk.AnalyzeFactors(vector(tt.overrides), 0)
			if !tt.triggered {
				assert.Empty(t, factors)
				return
			}
			require.Len(t, factors, 1)
			assert.Equal(t, tt.factor, factors[0].Factor)
			assert.Equal(t, tt.value, factors[0].Value)
			assert.Equal(t, tt.severity, factors[0].Severity)
			assert.NotEmpty(t, factors[0].Description)
		})
	}
}

func TestAnalyzeFactors_ZeroIncome(t *testing.T) {
	factors := risk.AnalyzeFactors(vector(map[string]float64{features.EstimatedMonthlyIncome: 0}), 0)
	require.Len(t, factors, 1)
	assert.Equal(t, risk.FactorLoanToIncome, factors[0].Factor)
	assert.Equal(t, models.SeverityHigh, factors[0].Severity)

	none := risk.AnalyzeFactors(vector(map[string]float64{
		features.EstimatedMonthlyIncome: 0,
		features.LoanAmount:             0,
	}), 0)
	assert.Empty(t, none)
}

func TestAnalyzeFactors_SortedBySeverityStable(t *testing.T) {
	factors := risk.AnalyzeFactors(vector(map[string]float64{
		features.LoanAmount:               300000, // Medium
		features.WithdrawalDepositRatio:   2,      // High
		features.BalanceVolatility:        0.35,   // Medium
		features.MissedPayments:           3,      // High
		features.DaysSinceLastTransaction: 20,     // Low
		features.BalanceTrend:             -0.2,   // Medium
	}), 90)

	names := make([]string, len(factors))
	for i, f := range factors {
		names[i] = f.Factor
	}
	assert.Equal(t, []string{
		risk.FactorWithdrawalDeposit,
		risk.FactorMissedPayments,
		risk.FactorLoanToIncome,
		risk.FactorBalanceVolatility,
		risk.FactorDecliningBalance,
		risk.FactorInfrequentActivity,
	}, names)

	for i := 1; i < len(factors); i++ {
		assert.LessOrEqual(t, factors[i-1].Severity.Rank(), factors[i].Severity.Rank())
	}
}

func TestAnalyzeFactors_ScoreDoesNotChangeFactors(t *testing.T) {
	v := vector(map[string]float64{features.MissedPayments: 1, features.BalanceTrend: -0.5})
	assert.Equal(t, risk.AnalyzeFactors(v, 0), risk.AnalyzeFactors(v, 100))
}

func TestAnalyzeFactors_SkipsFeaturesTheModelDoesNotDeclare(t *testing.T) {
	derived := quiet()
	derived[features.MissedPayments] = 3
	derived[features.BalanceTrend] = -0.9

	v := features.Select(derived, []string{features.MissedPayments, features.Age})
	factors := risk.AnalyzeFactors(v, 0)

	require.Len(t, factors, 1)
	assert.Equal(t, risk.FactorMissedPayments, factors[0].Factor)
}
