package risk

import "github.com/Dan9191/loan-risk-service/internal/models"

// Recommendation texts
const (
	RecRestructureLoan    = "Consider restructuring the loan to lower EMI payments"
	RecMonitorCashFlow    = "Monitor cash flow patterns more closely"
	RecPaymentReminders   = "Set up automated payment reminders"
	RecFlexibleSchedule   = "Evaluate potential for flexible payment schedule"
	RecCounselingSession  = "Schedule financial counseling session with the borrower"
	RecImmediateReview    = "Flag for immediate review by risk management team"
	RecAdditionalSecurity = "Consider requiring additional collateral or guarantor"
	RecIncreaseMonitoring = "Increase monitoring frequency for this account"
	RecProactiveOutreach  = "Proactively reach out to discuss financial situation"
)

var factorRecommendations = []struct {
	factor string
	recs   []string
}{
	{FactorLoanToIncome, []string{RecRestructureLoan}},
	{FactorWithdrawalDeposit, []string{RecMonitorCashFlow}},
	{FactorMissedPayments, []string{RecPaymentReminders, RecFlexibleSchedule}},
	{FactorDecliningBalance, []string{RecCounselingSession}},
}

// GenerateRecommendations suggests actions for the identified factors and
// the overall score
func GenerateRecommendations(factors []models.RiskFactor, score float64) []string {
	present := make(map[string]bool, len(factors))
	for _, f := range factors {
		present[f.Factor] = true
	}

	recs := []string{}
	for _, fr := range factorRecommendations {
		if present[fr.factor] {
			recs = append(recs, fr.recs...)
		}
	}

	switch {
	case score > 80:
		recs = append(recs, RecImmediateReview, RecAdditionalSecurity)
	case score > 60:
		recs = append(recs, RecIncreaseMonitoring, RecProactiveOutreach)
	}
	return recs
}
