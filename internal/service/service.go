package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/loan-risk-service/internal/cache"
	"github.com/Dan9191/loan-risk-service/internal/config"
	"github.com/Dan9191/loan-risk-service/internal/features"
	"github.com/Dan9191/loan-risk-service/internal/metrics"
	"github.com/Dan9191/loan-risk-service/internal/models"
	"github.com/Dan9191/loan-risk-service/internal/repository"
	"github.com/Dan9191/loan-risk-service/internal/risk"
	"github.com/Dan9191/loan-risk-service/internal/scoring"
	"github.com/Dan9191/loan-risk-service/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrPrediction matches every failure raised while scoring a borrower
	ErrPrediction = errors.New("prediction error")
	// ErrInvalidCredentials is returned by Login for unknown emails or bad passwords
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput is returned for borrower payloads that cannot be stored
	ErrInvalidInput = errors.New("invalid input")
)

// PredictionError wraps the cause of a failed assessment
type PredictionError struct {
	Cause error
}

func (e *PredictionError) Error() string { return "prediction error: " + e.Cause.Error() }

func (e *PredictionError) Unwrap() error { return e.Cause }

func (e *PredictionError) Is(target error) bool { return target == ErrPrediction }

// Store is the persistence the service depends on
type Store interface {
	CreateLender(ctx context.Context, lender *models.Lender) error
	FindLenderByEmail(ctx context.Context, email string) (*models.Lender, error)
	FindLenderByID(ctx context.Context, id int64) (*models.Lender, error)
	CreateBorrower(ctx context.Context, b *models.BorrowerRecord) error
	UpdateBorrower(ctx context.Context, b *models.BorrowerRecord) error
	DeleteBorrower(ctx context.Context, lenderID int64, id string) error
	FindBorrower(ctx context.Context, lenderID int64, id string) (*models.BorrowerRecord, error)
	ListLenderBorrowers(ctx context.Context, lenderID int64) ([]models.BorrowerRecord, error)
	ListBorrowers(ctx context.Context) ([]models.BorrowerRecord, error)
	SaveAssessment(ctx context.Context, a *models.RiskAssessment) error
	LatestAssessment(ctx context.Context, borrowerID string) (*models.RiskAssessment, error)
}

// Notifier delivers alerts for very high risk assessments
type Notifier interface {
	SendHighRiskAlert(a *models.RiskAssessment) error
}

// Service handles business logic
type Service struct {
	artifacts   *scoring.Artifacts
	interpreter *risk.Interpreter
	repo        Store
	cache       cache.AssessmentCache
	notifier    Notifier
	metrics     *metrics.Metrics
	log         *logrus.Logger
	config      *config.Config
	now         func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithCache sets the latest-assessment cache
func WithCache(c cache.AssessmentCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithNotifier enables very high risk alerts
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the reference time used for recency features
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService initializes a new service over the loaded scoring artifacts
func NewService(artifacts *scoring.Artifacts, repo Store, log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		artifacts:   artifacts,
		interpreter: risk.NewInterpreter(artifacts.Descriptions),
		repo:        repo,
		cache:       cache.NewMemoryCache(),
		metrics:     metrics.New(),
		log:         log,
		config:      cfg,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ModelVersion reports the version of the loaded scoring model
func (s *Service) ModelVersion() string {
	return s.artifacts.Version
}

// Assess scores a borrower and explains the result. ctx bounds remote
// model calls.
func (s *Service) Assess(ctx context.Context, b *models.BorrowerRecord) (assessment *models.RiskAssessment, err error) {
	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			err = &PredictionError{Cause: fmt.Errorf("%v", r)}
		}
		if err != nil {
			s.metrics.ObservePredictionError()
			s.log.WithField("borrower_id", b.ID).Errorf("Risk assessment failed: %v", err)
		}
	}()

	derived := features.Extract(b, start)
	vec := features.Select(derived, s.artifacts.FeatureNames)
	s.log.WithField("borrower_id", b.ID).Debugf("Model features: %v", vec.Values)

	raw, err := s.artifacts.Model.Predict(ctx, vec)
	if err != nil {
		return nil, &PredictionError{Cause: err}
	}
	if math.IsNaN(raw) {
		return nil, &PredictionError{Cause: errors.New("model returned NaN")}
	}
	s.log.WithField("borrower_id", b.ID).Debugf("Raw model score: %f", raw)

	score := risk.Clamp(raw)
	level, description := s.interpreter.Interpret(score)
	factors := risk.AnalyzeFactors(vec, score)

	assessment = &models.RiskAssessment{
		ID:              uuid.NewString(),
		BorrowerID:      b.ID,
		BorrowerName:    b.Name,
		RiskScore:       score,
		RiskLevel:       level,
		RiskDescription: description,
		RiskFactors:     factors,
		Recommendations: risk.GenerateRecommendations(factors, score),
		CreatedAt:       start,
	}

	s.metrics.ObserveAssessment(level, s.now().Sub(start))
	s.log.WithFields(logrus.Fields{
		"borrower_id": b.ID,
		"risk_score":  score,
		"risk_level":  level,
		"factors":     len(factors),
	}).Info("Risk assessment completed")
	return assessment, nil
}

// record persists an assessment, refreshes the cache and raises alerts.
// Only the save can fail the call.
func (s *Service) record(ctx context.Context, a *models.RiskAssessment) error {
	if err := s.repo.SaveAssessment(ctx, a); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, a); err != nil {
		s.log.Warnf("Failed to cache assessment for borrower %s: %v", a.BorrowerID, err)
	}
	if a.RiskLevel == risk.LevelVeryHigh && s.notifier != nil {
		if err := s.notifier.SendHighRiskAlert(a); err != nil {
			s.log.Warnf("Failed to send risk alert for borrower %s: %v", a.BorrowerID, err)
		}
	}
	return nil
}

// prepareBorrower validates a borrower payload and assigns server-side ids.
// A client supplied id is kept as ExternalID only.
func prepareBorrower(lenderID int64, id string, b *models.BorrowerRecord) error {
	if b.FirstName == "" || b.LastName == "" || b.Email == "" {
		return fmt.Errorf("%w: first_name, last_name and email are required", ErrInvalidInput)
	}
	for _, l := range b.Loans {
		if !l.LoanStatus.Valid() {
			return fmt.Errorf("%w: unknown loan status %q", ErrInvalidInput, l.LoanStatus)
		}
	}

	if b.ExternalID == "" && b.ID != id {
		b.ExternalID = b.ID
	}
	b.ID = id
	b.LenderID = lenderID
	if b.Name == "" {
		b.Name = strings.TrimSpace(b.FirstName + " " + b.LastName)
	}
	for i := range b.Loans {
		b.Loans[i].ID = uuid.NewString()
		b.Loans[i].BorrowerID = b.ID
	}
	for i := range b.FinancialTransactions {
		b.FinancialTransactions[i].ID = uuid.NewString()
		b.FinancialTransactions[i].BorrowerID = b.ID
	}
	return nil
}

func identifierFields(b *models.BorrowerRecord) logrus.Fields {
	fields := logrus.Fields{"borrower_id": b.ID}
	if b.AadharNumber != nil {
		fields["aadhar_number"] = utils.MaskIdentifier(*b.AadharNumber)
	}
	if b.PANNumber != nil {
		fields["pan_number"] = utils.MaskIdentifier(*b.PANNumber)
	}
	return fields
}

// CreateBorrower stores a borrower for the lender under a new id
func (s *Service) CreateBorrower(ctx context.Context, lenderID int64, b *models.BorrowerRecord) error {
	if err := prepareBorrower(lenderID, uuid.NewString(), b); err != nil {
		return err
	}

	if err := s.repo.CreateBorrower(ctx, b); err != nil {
		return err
	}

	s.log.WithFields(identifierFields(b)).Infof("Borrower created for lender %d", lenderID)
	return nil
}

// UpdateBorrower replaces a lender's borrower, including loans and transactions
func (s *Service) UpdateBorrower(ctx context.Context, lenderID int64, id string, b *models.BorrowerRecord) error {
	if err := prepareBorrower(lenderID, id, b); err != nil {
		return err
	}

	if err := s.repo.UpdateBorrower(ctx, b); err != nil {
		return err
	}

	s.log.WithFields(identifierFields(b)).Infof("Borrower updated for lender %d", lenderID)
	return nil
}

// DeleteBorrower removes a lender's borrower with its saved assessments
func (s *Service) DeleteBorrower(ctx context.Context, lenderID int64, id string) error {
	if err := s.repo.DeleteBorrower(ctx, lenderID, id); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warnf("Failed to evict cached assessment for borrower %s: %v", id, err)
	}

	s.log.Infof("Borrower %s deleted for lender %d", id, lenderID)
	return nil
}

// GetBorrower returns a lender's borrower
func (s *Service) GetBorrower(ctx context.Context, lenderID int64, id string) (*models.BorrowerRecord, error) {
	return s.repo.FindBorrower(ctx, lenderID, id)
}

// ListBorrowers returns every borrower owned by the lender
func (s *Service) ListBorrowers(ctx context.Context, lenderID int64) ([]models.BorrowerRecord, error) {
	borrowers, err := s.repo.ListLenderBorrowers(ctx, lenderID)
	if err != nil {
		return nil, err
	}
	if borrowers == nil {
		borrowers = []models.BorrowerRecord{}
	}
	return borrowers, nil
}

// AssessStored scores a stored borrower owned by the lender and saves the result
func (s *Service) AssessStored(ctx context.Context, lenderID int64, borrowerID string) (*models.RiskAssessment, error) {
	b, err := s.repo.FindBorrower(ctx, lenderID, borrowerID)
	if err != nil {
		return nil, err
	}

	a, err := s.Assess(ctx, b)
	if err != nil {
		return nil, err
	}

	if err := s.record(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// LatestAssessment returns the most recent saved assessment of a lender's borrower
func (s *Service) LatestAssessment(ctx context.Context, lenderID int64, borrowerID string) (*models.RiskAssessment, error) {
	if _, err := s.repo.FindBorrower(ctx, lenderID, borrowerID); err != nil {
		return nil, err
	}

	if a, ok := s.cache.Get(ctx, borrowerID); ok {
		return a, nil
	}

	a, err := s.repo.LatestAssessment(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, a); err != nil {
		s.log.Warnf("Failed to cache assessment for borrower %s: %v", borrowerID, err)
	}
	return a, nil
}

// RescoreReport summarizes a batch rescoring run
type RescoreReport struct {
	Scored int
	Failed int
}

// RescoreAll scores every stored borrower. Individual failures are logged
// and counted; the run continues.
func (s *Service) RescoreAll(ctx context.Context) (RescoreReport, error) {
	var report RescoreReport

	borrowers, err := s.repo.ListBorrowers(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list borrowers: %w", err)
	}

	for i := range borrowers {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		b := &borrowers[i]
		a, err := s.Assess(ctx, b)
		if err == nil {
			err = s.record(ctx, a)
		}
		if err != nil {
			report.Failed++
			s.log.Errorf("Failed to rescore borrower %s: %v", b.ID, err)
			continue
		}
		report.Scored++
	}

	s.log.Infof("Rescored %d borrowers, %d failed", report.Scored, report.Failed)
	return report, nil
}

// Register creates a new lender with hashed password
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.Lender, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	lender := &models.Lender{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateLender(ctx, lender); err != nil {
		return nil, err
	}

	s.log.Infof("Lender registered: %s", lender.Email)
	return lender, nil
}

// Login authenticates a lender and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	lender, err := s.repo.FindLenderByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up lender: %w", err)
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(lender.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	// Generate JWT
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(lender.ID, 10),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("Lender logged in: %s", lender.Email)
	return tokenString, nil
}

// CurrentLender returns the authenticated lender's account
func (s *Service) CurrentLender(ctx context.Context, lenderID int64) (*models.Lender, error) {
	return s.repo.FindLenderByID(ctx, lenderID)
}
