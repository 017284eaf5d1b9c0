package features

import (
	"math"
	"sort"
	"time"

	"github.com/Dan9191/loan-risk-service/internal/models"
)

// Feature names produced by Extract
const (
	Age                      = "age"
	EstimatedMonthlyIncome   = "estimated_monthly_income"
	LoanAmount               = "loan_amount"
	InterestRate             = "interest_rate"
	TenureMonths             = "tenure_months"
	EMIAmount                = "emi_amount"
	NumAccounts              = "num_accounts"
	WithdrawalCount          = "withdrawal_count"
	DepositCount             = "deposit_count"
	WithdrawalDepositRatio   = "withdrawal_deposit_ratio"
	AvgTransactionAmount     = "avg_transaction_amount"
	BalanceVolatility        = "balance_volatility"
	MissedPayments           = "missed_payments"
	DaysSinceLastTransaction = "days_since_last_transaction"
	BalanceTrend             = "balance_trend"
)

// Fallback values used when a feature cannot be derived
const (
	DefaultAge                  = 30
	DefaultInterestRate         = 10.0
	DefaultTenureMonths         = 24
	DefaultBalanceVolatility    = 0.2
	DefaultDaysNoTransactions   = 30
	DefaultDaysUnparseableDates = 7

	// incomeWindowMonths is the span the transaction history is assumed to cover
	incomeWindowMonths = 3
	// emiIncomeMultiplier estimates income from the EMI when no credits exist
	emiIncomeMultiplier = 3
)

// Extract derives every known feature from a borrower record. now is the
// reference time for age and recency features.
func Extract(b *models.BorrowerRecord, now time.Time) map[string]float64 {
	loan := loanTerms(b)
	txs := b.FinancialTransactions

	withdrawals := 0
	accounts := make(map[string]struct{}, len(txs))
	for _, t := range txs {
		accounts[t.AccountNumber] = struct{}{}
		if t.Category != nil && *t.Category == models.CategoryWithdrawal {
			withdrawals++
		}
	}
	deposits := len(txs) - withdrawals

	return map[string]float64{
		Age:                      float64(age(b.DateOfBirth, now)),
		EstimatedMonthlyIncome:   estimatedMonthlyIncome(txs, loan.EMIAmount),
		LoanAmount:               loan.LoanAmount,
		InterestRate:             loan.InterestRate,
		TenureMonths:             float64(loan.TenureMonths),
		EMIAmount:                loan.EMIAmount,
		NumAccounts:              float64(len(accounts)),
		WithdrawalCount:          float64(withdrawals),
		DepositCount:             float64(deposits),
		WithdrawalDepositRatio:   float64(withdrawals) / float64(max(1, deposits)),
		AvgTransactionAmount:     avgAmount(txs),
		BalanceVolatility:        balanceVolatility(txs),
		MissedPayments:           float64(missedPayments(loan.LoanStatus)),
		DaysSinceLastTransaction: float64(daysSinceLastTransaction(txs, now)),
		BalanceTrend:             balanceTrend(txs),
	}
}

func age(dob string, now time.Time) int {
	t, err := parseISODate(dob)
	if err != nil {
		return DefaultAge
	}
	return ageOn(t, now)
}

// loanTerms returns the first loan, or defaults built from the standalone amount
func loanTerms(b *models.BorrowerRecord) models.Loan {
	if len(b.Loans) > 0 {
		return b.Loans[0]
	}
	loan := models.Loan{
		InterestRate: DefaultInterestRate,
		TenureMonths: DefaultTenureMonths,
		LoanStatus:   models.LoanStatusActive,
	}
	if b.LoanAmount != nil {
		loan.LoanAmount = *b.LoanAmount
	}
	return loan
}

func missedPayments(status models.LoanStatus) int {
	switch status {
	case models.LoanStatusLate:
		return 1
	case models.LoanStatusDefault:
		return 3
	default:
		return 0
	}
}

func avgAmount(txs []models.Transaction) float64 {
	if len(txs) == 0 {
		return 0
	}
	var sum float64
	for _, t := range txs {
		sum += t.Amount
	}
	return sum / float64(len(txs))
}

// balances returns every balance, or false if any transaction lacks one
func balances(txs []models.Transaction) ([]float64, bool) {
	if len(txs) == 0 {
		return nil, false
	}
	out := make([]float64, 0, len(txs))
	for _, t := range txs {
		if t.Balance == nil {
			return nil, false
		}
		out = append(out, *t.Balance)
	}
	return out, true
}

// balanceVolatility is the coefficient of variation of balances
func balanceVolatility(txs []models.Transaction) float64 {
	bals, ok := balances(txs)
	if !ok {
		return DefaultBalanceVolatility
	}
	var sum float64
	for _, v := range bals {
		sum += v
	}
	mean := sum / float64(len(bals))

	var sq float64
	for _, v := range bals {
		sq += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sq / float64(len(bals)))

	if mean <= 0 {
		mean = 1
	}
	return std / mean
}

// balanceTrend is the relative change from the earliest to the latest balance
func balanceTrend(txs []models.Transaction) float64 {
	if _, ok := balances(txs); !ok || len(txs) < 2 {
		return 0
	}

	type dated struct {
		at      time.Time
		balance float64
	}
	points := make([]dated, 0, len(txs))
	for _, t := range txs {
		at, err := parseISODate(t.TransactionDate)
		if err != nil {
			return 0
		}
		points = append(points, dated{at: at, balance: *t.Balance})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].at.Before(points[j].at) })

	first := points[0].balance
	last := points[len(points)-1].balance
	denom := first
	if denom <= 0 {
		denom = 1
	}
	return (last - first) / denom
}

func daysSinceLastTransaction(txs []models.Transaction, now time.Time) int {
	if len(txs) == 0 {
		return DefaultDaysNoTransactions
	}
	var latest time.Time
	for i, t := range txs {
		at, err := parseISODate(t.TransactionDate)
		if err != nil {
			return DefaultDaysUnparseableDates
		}
		if i == 0 || at.After(latest) {
			latest = at
		}
	}
	return int(math.Floor(now.Sub(latest).Hours() / 24))
}

// estimatedMonthlyIncome averages credits over the history window, falling
// back to a multiple of the EMI
func estimatedMonthlyIncome(txs []models.Transaction, emi float64) float64 {
	var credits float64
	found := false
	for _, t := range txs {
		if t.TransactionType == models.TransactionTypeCredit {
			credits += t.Amount
			found = true
		}
	}
	if !found {
		return emi * emiIncomeMultiplier
	}
	return credits / incomeWindowMonths
}
