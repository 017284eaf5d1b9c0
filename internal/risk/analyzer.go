package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/Dan9191/loan-risk-service/internal/features"
	"github.com/Dan9191/loan-risk-service/internal/models"
)

// Risk factor names
const (
	FactorLoanToIncome       = "High Loan-to-Income Ratio"
	FactorWithdrawalDeposit  = "High Withdrawal-to-Deposit Ratio"
	FactorBalanceVolatility  = "High Balance Volatility"
	FactorMissedPayments     = "Missed Payments"
	FactorInfrequentActivity = "Infrequent Account Activity"
	FactorDecliningBalance   = "Declining Account Balance"
)

// rule inspects the feature vector and reports a factor when triggered
type rule func(v models.FeatureVector) (models.RiskFactor, bool)

// rules are evaluated in this order; ties in severity keep it
var rules = []rule{
	loanToIncomeRule,
	withdrawalDepositRule,
	balanceVolatilityRule,
	missedPaymentsRule,
	infrequentActivityRule,
	decliningBalanceRule,
}

// AnalyzeFactors returns the triggered risk factors sorted by severity.
// Factors are driven by features only; score is accepted for callers that
// hold it but does not change any threshold.
func AnalyzeFactors(v models.FeatureVector, score float64) []models.RiskFactor {
	factors := make([]models.RiskFactor, 0, len(rules))
	for _, r := range rules {
		if f, ok := r(v); ok {
			factors = append(factors, f)
		}
	}
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Severity.Rank() < factors[j].Severity.Rank()
	})
	return factors
}

func severity(high bool, otherwise models.Severity) models.Severity {
	if high {
		return models.SeverityHigh
	}
	return otherwise
}

// loanToIncomeRatio compares the loan with annual income. No income with an
// outstanding loan is treated as an unbounded ratio.
func loanToIncomeRatio(loan, monthlyIncome float64) float64 {
	annual := monthlyIncome * 12
	if annual <= 0 {
		if loan > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return loan / annual
}

func loanToIncomeRule(v models.FeatureVector) (models.RiskFactor, bool) {
	loan, ok := v.Get(features.LoanAmount)
	if !ok {
		return models.RiskFactor{}, false
	}
	income, ok := v.Get(features.EstimatedMonthlyIncome)
	if !ok {
		return models.RiskFactor{}, false
	}
	ratio := loanToIncomeRatio(loan, income)
	if ratio <= 0.4 {
		return models.RiskFactor{}, false
	}
	return models.RiskFactor{
		Factor:      FactorLoanToIncome,
		Value:       fmt.Sprintf("%.2f", ratio),
		Severity:    severity(ratio > 0.6, models.SeverityMedium),
		Description: "Loan amount is high relative to income, increasing debt burden.",
	}, true
}

func withdrawalDepositRule(v models.FeatureVector) (models.RiskFactor, bool) {
	ratio, ok := v.Get(features.WithdrawalDepositRatio)
	if !ok || ratio <= 1.2 {
		return models.RiskFactor{}, false
	}
	return models.RiskFactor{
		Factor:      FactorWithdrawalDeposit,
		Value:       fmt.Sprintf("%.2f", ratio),
		Severity:    severity(ratio > 1.5, models.SeverityMedium),
		Description: "More money going out than coming in, potential cash flow issues.",
	}, true
}

func balanceVolatilityRule(v models.FeatureVector) (models.RiskFactor, bool) {
	vol, ok := v.Get(features.BalanceVolatility)
	if !ok || vol <= 0.3 {
		return models.RiskFactor{}, false
	}
	return models.RiskFactor{
		Factor:      FactorBalanceVolatility,
		Value:       fmt.Sprintf("%.2f", vol),
		Severity:    severity(vol > 0.4, models.SeverityMedium),
		Description: "Irregular account balance fluctuations, indicating unstable finances.",
	}, true
}

func missedPaymentsRule(v models.FeatureVector) (models.RiskFactor, bool) {
	missed, ok := v.Get(features.MissedPayments)
	if !ok || missed <= 0 {
		return models.RiskFactor{}, false
	}
	return models.RiskFactor{
		Factor:      FactorMissedPayments,
		Value:       fmt.Sprintf("%d", int(missed)),
		Severity:    severity(missed > 1, models.SeverityMedium),
		Description: "History of missed or delayed loan payments.",
	}, true
}

func infrequentActivityRule(v models.FeatureVector) (models.RiskFactor, bool) {
	days, ok := v.Get(features.DaysSinceLastTransaction)
	if !ok || days <= 15 {
		return models.RiskFactor{}, false
	}
	sev := models.SeverityLow
	if days > 25 {
		sev = models.SeverityMedium
	}
	return models.RiskFactor{
		Factor:      FactorInfrequentActivity,
		Value:       fmt.Sprintf("%d days since last transaction", int(days)),
		Severity:    sev,
		Description: "Low account activity may indicate financial challenges or account abandonment.",
	}, true
}

func decliningBalanceRule(v models.FeatureVector) (models.RiskFactor, bool) {
	trend, ok := v.Get(features.BalanceTrend)
	if !ok || trend >= -0.1 {
		return models.RiskFactor{}, false
	}
	return models.RiskFactor{
		Factor:      FactorDecliningBalance,
		Value:       fmt.Sprintf("%.2f", trend),
		Severity:    severity(trend < -0.3, models.SeverityMedium),
		Description: "Account balances decreasing over time, indicating potential financial distress.",
	}, true
}
