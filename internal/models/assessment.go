package models

import "time"

// Severity grades a risk factor
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
	SeverityLow    Severity = "Low"
)

// Rank orders severities with High first
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// RiskFactor explains one contribution to a borrower's risk
type RiskFactor struct {
	Factor      string   `json:"factor"`
	Value       string   `json:"value"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// RiskAssessment is the scored result returned for a borrower
type RiskAssessment struct {
	ID              string       `json:"id,omitempty"`
	BorrowerID      string       `json:"borrower_id"`
	BorrowerName    string       `json:"borrower_name"`
	RiskScore       float64      `json:"risk_score"`
	RiskLevel       string       `json:"risk_level"`
	RiskDescription string       `json:"risk_description"`
	RiskFactors     []RiskFactor `json:"risk_factors"`
	Recommendations []string     `json:"recommendations"`
	CreatedAt       time.Time    `json:"created_at,omitempty"`
}
