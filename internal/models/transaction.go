package models

// TransactionTypeCredit marks money flowing into the account
const TransactionTypeCredit = "Credit"

// CategoryWithdrawal is the only category counted as a withdrawal
const CategoryWithdrawal = "withdrawal"

// Transaction represents a financial transaction on a borrower account
type Transaction struct {
	ID              string   `json:"id"`
	BorrowerID      string   `json:"borrower_id"`
	AccountNumber   string   `json:"account_number"`
	TransactionDate string   `json:"transaction_date"`
	TransactionType string   `json:"transaction_type"`
	Category        *string  `json:"category,omitempty"`
	Amount          float64  `json:"amount"`
	Balance         *float64 `json:"balance,omitempty"`
	Description     *string  `json:"description,omitempty"`
}
