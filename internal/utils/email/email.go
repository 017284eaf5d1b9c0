package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/loan-risk-service/internal/config"
	"github.com/Dan9191/loan-risk-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// BuildHighRiskAlert formats the alert mail for an assessment
func (s *Sender) BuildHighRiskAlert(a *models.RiskAssessment) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{s.cfg.RiskTeamEmail}
	e.Subject = fmt.Sprintf("%s: borrower %s (score %.1f)", a.RiskLevel, a.BorrowerID, a.RiskScore)

	var body strings.Builder
	fmt.Fprintf(&body, "Borrower %s (%s) was assessed as %s with a risk score of %.2f.\n",
		a.BorrowerName, a.BorrowerID, a.RiskLevel, a.RiskScore)
	if a.RiskDescription != "" {
		fmt.Fprintf(&body, "%s\n", a.RiskDescription)
	}
	if len(a.RiskFactors) > 0 {
		body.WriteString("\nRisk factors:\n")
		for _, f := range a.RiskFactors {
			fmt.Fprintf(&body, "  - [%s] %s: %s\n", f.Severity, f.Factor, f.Value)
		}
	}
	if len(a.Recommendations) > 0 {
		body.WriteString("\nRecommended actions:\n")
		for _, r := range a.Recommendations {
			fmt.Fprintf(&body, "  - %s\n", r)
		}
	}
	body.WriteString("\nLoan Risk Service")
	e.Text = []byte(body.String())
	return e
}

// SendHighRiskAlert notifies the risk team about an assessment
func (s *Sender) SendHighRiskAlert(a *models.RiskAssessment) error {
	e := s.BuildHighRiskAlert(a)

	// Send email
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send risk alert to %s: %v", s.cfg.RiskTeamEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", s.cfg.RiskTeamEmail, e.Subject)
	return nil
}
