package models

// LoanStatus is the repayment state of a loan
type LoanStatus string

const (
	LoanStatusActive  LoanStatus = "Active"
	LoanStatusLate    LoanStatus = "Late"
	LoanStatusDefault LoanStatus = "Default"
)

// Valid reports whether s is one of the known loan states
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusActive, LoanStatusLate, LoanStatusDefault:
		return true
	}
	return false
}

// Loan represents a loan taken by a borrower
type Loan struct {
	ID               string     `json:"id"`
	BorrowerID       string     `json:"borrower_id"`
	LoanAmount       float64    `json:"loan_amount"`
	InterestRate     float64    `json:"interest_rate"`
	TenureMonths     int        `json:"tenure_months"`
	EMIAmount        float64    `json:"emi_amount"`
	DisbursementDate string     `json:"disbursement_date"`
	LoanStatus       LoanStatus `json:"loan_status"`
}

// BorrowerRecord is the borrower payload scored by the pipeline.
// Only Loans[0] is consulted when deriving loan features.
// Stored borrowers get a server-assigned ID; the caller's own id is kept in
// ExternalID.
type BorrowerRecord struct {
	ID                    string        `json:"id"`
	ExternalID            string        `json:"external_id,omitempty"`
	LenderID              int64         `json:"lender_id,omitempty"`
	Name                  string        `json:"name"`
	FirstName             string        `json:"first_name"`
	LastName              string        `json:"last_name"`
	Email                 string        `json:"email"`
	PhoneNumber           string        `json:"phone_number"`
	Address               string        `json:"address"`
	DateOfBirth           string        `json:"date_of_birth"`
	AadharNumber          *string       `json:"aadhar_number,omitempty"`
	PANNumber             *string       `json:"pan_number,omitempty"`
	LoanAmount            *float64      `json:"loan_amount,omitempty"`
	Loans                 []Loan        `json:"loans"`
	FinancialTransactions []Transaction `json:"financial_transactions"`
}
