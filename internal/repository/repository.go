package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dan9191/loan-risk-service/internal/models"
	"github.com/Dan9191/loan-risk-service/internal/utils"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a row collides with a unique key
	ErrConflict = errors.New("already exists")
)

// uniqueViolation is the PostgreSQL error code for a duplicate key
const uniqueViolation = "23505"

// wrapErr wraps a database error, mapping duplicate keys to ErrConflict
func wrapErr(msg string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w: %s", msg, ErrConflict, pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Repository provides database operations
type Repository struct {
	db  *sql.DB
	key []byte
}

// NewRepository initializes a new repository. key encrypts borrower
// identifiers at rest.
func NewRepository(db *sql.DB, key []byte) *Repository {
	return &Repository{db: db, key: key}
}

// CreateLender creates a new lender in the database
func (r *Repository) CreateLender(ctx context.Context, lender *models.Lender) error {
	query := `
		INSERT INTO risk.lenders (name, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, lender.Name, lender.Email, lender.PasswordHash).
		Scan(&lender.ID, &lender.CreatedAt)
	if err != nil {
		return wrapErr("failed to create lender", err)
	}
	return nil
}

// FindLenderByEmail retrieves a lender by email
func (r *Repository) FindLenderByEmail(ctx context.Context, email string) (*models.Lender, error) {
	lender := &models.Lender{}
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM risk.lenders
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&lender.ID, &lender.Name, &lender.Email, &lender.PasswordHash, &lender.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lender %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lender: %w", err)
	}
	return lender, nil
}

// FindLenderByID retrieves a lender by id
func (r *Repository) FindLenderByID(ctx context.Context, id int64) (*models.Lender, error) {
	lender := &models.Lender{}
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM risk.lenders
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&lender.ID, &lender.Name, &lender.Email, &lender.PasswordHash, &lender.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lender %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lender: %w", err)
	}
	return lender, nil
}

// CreateBorrower stores a borrower with its loans and transactions in their
// given order
func (r *Repository) CreateBorrower(ctx context.Context, b *models.BorrowerRecord) error {
	aadhar, pan, err := r.encryptIdentifiers(b)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO risk.borrowers (id, external_id, lender_id, name, first_name, last_name, email,
			phone_number, address, date_of_birth, aadhar_number, pan_number, loan_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, CURRENT_TIMESTAMP)`,
		b.ID, nullable(b.ExternalID), b.LenderID, b.Name, b.FirstName, b.LastName, b.Email,
		b.PhoneNumber, b.Address, b.DateOfBirth, aadhar, pan, b.LoanAmount)
	if err != nil {
		return wrapErr("failed to create borrower", err)
	}

	if err := insertHistory(ctx, tx, b); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit borrower: %w", err)
	}
	return nil
}

// UpdateBorrower replaces the profile, loans and transactions of a borrower
// owned by b.LenderID
func (r *Repository) UpdateBorrower(ctx context.Context, b *models.BorrowerRecord) error {
	aadhar, pan, err := r.encryptIdentifiers(b)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE risk.borrowers
		SET external_id = $3, name = $4, first_name = $5, last_name = $6, email = $7,
			phone_number = $8, address = $9, date_of_birth = $10, aadhar_number = $11,
			pan_number = $12, loan_amount = $13, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND lender_id = $2`,
		b.ID, b.LenderID, nullable(b.ExternalID), b.Name, b.FirstName, b.LastName, b.Email,
		b.PhoneNumber, b.Address, b.DateOfBirth, aadhar, pan, b.LoanAmount)
	if err != nil {
		return wrapErr("failed to update borrower", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to update borrower: %w", err)
	} else if n == 0 {
		return fmt.Errorf("borrower %s: %w", b.ID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM risk.loans WHERE borrower_id = $1`, b.ID); err != nil {
		return fmt.Errorf("failed to replace loans: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM risk.financial_transactions WHERE borrower_id = $1`, b.ID); err != nil {
		return fmt.Errorf("failed to replace transactions: %w", err)
	}
	if err := insertHistory(ctx, tx, b); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit borrower: %w", err)
	}
	return nil
}

// DeleteBorrower removes a borrower owned by lenderID; loans, transactions
// and assessments cascade
func (r *Repository) DeleteBorrower(ctx context.Context, lenderID int64, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM risk.borrowers WHERE id = $1 AND lender_id = $2`, id, lenderID)
	if err != nil {
		return fmt.Errorf("failed to delete borrower: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete borrower: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("borrower %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *Repository) encryptIdentifiers(b *models.BorrowerRecord) (aadhar, pan *string, err error) {
	if aadhar, err = utils.EncryptOptional(b.AadharNumber, r.key); err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt aadhar number: %w", err)
	}
	if pan, err = utils.EncryptOptional(b.PANNumber, r.key); err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt pan number: %w", err)
	}
	return aadhar, pan, nil
}

// insertHistory stores loans and transactions with their slice position
func insertHistory(ctx context.Context, tx *sql.Tx, b *models.BorrowerRecord) error {
	for i, l := range b.Loans {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO risk.loans (id, borrower_id, position, loan_amount, interest_rate,
				tenure_months, emi_amount, disbursement_date, loan_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, b.ID, i, l.LoanAmount, l.InterestRate, l.TenureMonths, l.EMIAmount,
			l.DisbursementDate, string(l.LoanStatus))
		if err != nil {
			return wrapErr("failed to create loan "+l.ID, err)
		}
	}

	for i, t := range b.FinancialTransactions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO risk.financial_transactions (id, borrower_id, position, account_number,
				transaction_date, transaction_type, category, amount, balance, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			t.ID, b.ID, i, t.AccountNumber, t.TransactionDate, t.TransactionType,
			t.Category, t.Amount, t.Balance, t.Description)
		if err != nil {
			return wrapErr("failed to create transaction "+t.ID, err)
		}
	}
	return nil
}

const borrowerColumns = `
	SELECT id, external_id, lender_id, name, first_name, last_name, email, phone_number, address,
		date_of_birth, aadhar_number, pan_number, loan_amount
	FROM risk.borrowers`

// FindBorrower retrieves a borrower owned by lenderID with loans and transactions
func (r *Repository) FindBorrower(ctx context.Context, lenderID int64, id string) (*models.BorrowerRecord, error) {
	borrowers, err := r.queryBorrowers(ctx, borrowerColumns+` WHERE id = $1 AND lender_id = $2`, id, lenderID)
	if err != nil {
		return nil, err
	}
	if len(borrowers) == 0 {
		return nil, fmt.Errorf("borrower %s: %w", id, ErrNotFound)
	}
	return &borrowers[0], nil
}

// ListLenderBorrowers retrieves the borrowers owned by lenderID
func (r *Repository) ListLenderBorrowers(ctx context.Context, lenderID int64) ([]models.BorrowerRecord, error) {
	return r.queryBorrowers(ctx, borrowerColumns+` WHERE lender_id = $1 ORDER BY created_at, id`, lenderID)
}

// ListBorrowers retrieves every stored borrower with loans and transactions
func (r *Repository) ListBorrowers(ctx context.Context) ([]models.BorrowerRecord, error) {
	return r.queryBorrowers(ctx, borrowerColumns+` ORDER BY created_at, id`)
}

func (r *Repository) queryBorrowers(ctx context.Context, query string, args ...any) ([]models.BorrowerRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query borrowers: %w", err)
	}
	defer rows.Close()

	var borrowers []models.BorrowerRecord
	for rows.Next() {
		var (
			b          models.BorrowerRecord
			externalID sql.NullString
			aadhar     sql.NullString
			pan        sql.NullString
			loanAmount sql.NullFloat64
		)
		if err := rows.Scan(&b.ID, &externalID, &b.LenderID, &b.Name, &b.FirstName, &b.LastName, &b.Email,
			&b.PhoneNumber, &b.Address, &b.DateOfBirth, &aadhar, &pan, &loanAmount); err != nil {
			return nil, fmt.Errorf("failed to scan borrower: %w", err)
		}
		b.ExternalID = externalID.String
		if b.AadharNumber, err = utils.DecryptOptional(nullString(aadhar), r.key); err != nil {
			return nil, fmt.Errorf("failed to decrypt aadhar number: %w", err)
		}
		if b.PANNumber, err = utils.DecryptOptional(nullString(pan), r.key); err != nil {
			return nil, fmt.Errorf("failed to decrypt pan number: %w", err)
		}
		if loanAmount.Valid {
			b.LoanAmount = &loanAmount.Float64
		}
		b.Loans = []models.Loan{}
		b.FinancialTransactions = []models.Transaction{}
		borrowers = append(borrowers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read borrowers: %w", err)
	}
	if len(borrowers) == 0 {
		return borrowers, nil
	}

	ids := make([]string, len(borrowers))
	index := make(map[string]int, len(borrowers))
	for i, b := range borrowers {
		ids[i] = b.ID
		index[b.ID] = i
	}
	if err := r.attachLoans(ctx, ids, index, borrowers); err != nil {
		return nil, err
	}
	if err := r.attachTransactions(ctx, ids, index, borrowers); err != nil {
		return nil, err
	}
	return borrowers, nil
}

func (r *Repository) attachLoans(ctx context.Context, ids []string, index map[string]int, borrowers []models.BorrowerRecord) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, borrower_id, loan_amount, interest_rate, tenure_months, emi_amount,
			disbursement_date, loan_status
		FROM risk.loans
		WHERE borrower_id = ANY($1)
		ORDER BY borrower_id, position`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l models.Loan
		var status string
		if err := rows.Scan(&l.ID, &l.BorrowerID, &l.LoanAmount, &l.InterestRate, &l.TenureMonths,
			&l.EMIAmount, &l.DisbursementDate, &status); err != nil {
			return fmt.Errorf("failed to scan loan: %w", err)
		}
		l.LoanStatus = models.LoanStatus(status)
		i := index[l.BorrowerID]
		borrowers[i].Loans = append(borrowers[i].Loans, l)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read loans: %w", err)
	}
	return nil
}

func (r *Repository) attachTransactions(ctx context.Context, ids []string, index map[string]int, borrowers []models.BorrowerRecord) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, borrower_id, account_number, transaction_date, transaction_type, category,
			amount, balance, description
		FROM risk.financial_transactions
		WHERE borrower_id = ANY($1)
		ORDER BY borrower_id, position`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t           models.Transaction
			category    sql.NullString
			balance     sql.NullFloat64
			description sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.BorrowerID, &t.AccountNumber, &t.TransactionDate,
			&t.TransactionType, &category, &t.Amount, &balance, &description); err != nil {
			return fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Category = nullString(category)
		t.Description = nullString(description)
		if balance.Valid {
			t.Balance = &balance.Float64
		}
		i := index[t.BorrowerID]
		borrowers[i].FinancialTransactions = append(borrowers[i].FinancialTransactions, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read transactions: %w", err)
	}
	return nil
}

// SaveAssessment stores a completed risk assessment
func (r *Repository) SaveAssessment(ctx context.Context, a *models.RiskAssessment) error {
	factors, err := json.Marshal(a.RiskFactors)
	if err != nil {
		return fmt.Errorf("failed to encode risk factors: %w", err)
	}
	recs, err := json.Marshal(a.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO risk.risk_assessments (id, borrower_id, borrower_name, risk_score, risk_level,
			risk_description, risk_factors, recommendations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.BorrowerID, a.BorrowerName, a.RiskScore, a.RiskLevel, a.RiskDescription,
		string(factors), string(recs), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save assessment: %w", err)
	}
	return nil
}

// LatestAssessment retrieves the most recent assessment for a borrower
func (r *Repository) LatestAssessment(ctx context.Context, borrowerID string) (*models.RiskAssessment, error) {
	a := &models.RiskAssessment{}
	var factors, recs []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, borrower_id, borrower_name, risk_score, risk_level, risk_description,
			risk_factors, recommendations, created_at
		FROM risk.risk_assessments
		WHERE borrower_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, borrowerID).
		Scan(&a.ID, &a.BorrowerID, &a.BorrowerName, &a.RiskScore, &a.RiskLevel,
			&a.RiskDescription, &factors, &recs, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assessment for borrower %s: %w", borrowerID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find assessment: %w", err)
	}
	if err := json.Unmarshal(factors, &a.RiskFactors); err != nil {
		return nil, fmt.Errorf("failed to decode risk factors: %w", err)
	}
	if err := json.Unmarshal(recs, &a.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	return a, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
