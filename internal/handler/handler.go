package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Dan9191/loan-risk-service/internal/middleware"
	"github.com/Dan9191/loan-risk-service/internal/models"
	"github.com/Dan9191/loan-risk-service/internal/repository"
	"github.com/Dan9191/loan-risk-service/internal/service"
	"github.com/gorilla/mux"
)

const apiVersion = "1.0.0"

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeServiceError maps service errors to HTTP responses
func writeServiceError(w http.ResponseWriter, err error) {
	var predErr *service.PredictionError
	switch {
	case errors.As(err, &predErr):
		writeError(w, http.StatusInternalServerError, "Prediction error: "+predErr.Cause.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeBorrower reads and checks a borrower payload
func decodeBorrower(r *http.Request) (*models.BorrowerRecord, error) {
	var b models.BorrowerRecord
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	for i, l := range b.Loans {
		if !l.LoanStatus.Valid() {
			return nil, fmt.Errorf("loans[%d].loan_status must be Active, Late or Default", i)
		}
	}
	return &b, nil
}

// Predict scores a borrower payload without storing it
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	b, err := decodeBorrower(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	assessment, err := h.svc.Assess(r.Context(), b)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

// Health reports service liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "healthy",
		"model_version": h.svc.ModelVersion(),
	})
}

// Root describes the API
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Loan Default Risk Prediction API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"predict": "/api/predict - POST request to predict risk score",
			"health":  "/health - GET request to check API health",
		},
	})
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles lender registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lender, err := h.svc.Register(r.Context(), c.Name, c.Email, c.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lender)
}

// Login handles lender authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.svc.Login(r.Context(), c.Email, c.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateBorrower stores a borrower for the authenticated lender
func (h *Handler) CreateBorrower(w http.ResponseWriter, r *http.Request) {
	lenderID, ok := middleware.LenderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "lender not authenticated")
		return
	}

	b, err := decodeBorrower(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.CreateBorrower(r.Context(), lenderID, b); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// ListBorrowers returns the authenticated lender's borrowers
func (h *Handler) ListBorrowers(w http.ResponseWriter, r *http.Request) {
	lenderID, ok := middleware.LenderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "lender not authenticated")
		return
	}

	borrowers, err := h.svc.ListBorrowers(r.Context(), lenderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, borrowers)
}

// GetBorrower returns one of the lender's borrowers
func (h *Handler) GetBorrower(w http.ResponseWriter, r *http.Request) {
	lenderID, ok := middleware.LenderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "lender not authenticated")
		return
	}

	b, err := h.svc.GetBorrower(r.Context(), lenderID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// UpdateBorrower replaces one of the lender's borrowers
func (h *Handler) UpdateBorrower(w http.ResponseWriter, r *http.Request) {
	lenderID, ok := middleware.LenderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "lender not authenticated")
		return
	}

	b, err := decodeBorrower(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.UpdateBorrower(r.Context(), lenderID, mux.Vars(r)["id"], b); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// DeleteBorrower removes one of the lender's borrowers
func (h *Handler) DeleteBorrower(w http.ResponseWriter, r *http.Request) {
	lenderID, ok := middleware.LenderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "lender not authenticated")
		return
	}

	if err := h.svc.DeleteBorrower(r.Context(), lenderID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Borrower deleted successfully"})
}

// Me returns the authenticated lender's account
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	lenderID, ok := middleware.LenderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "lender not authenticated")
		return
	}

	lender, err := h.svc.CurrentLender(r.Context(), lenderID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lender)
}

// AssessBorrower scores a stored borrower and saves the assessment
func (h *Handler) AssessBorrower(w http.ResponseWriter, r *http.Request) {
	lenderID, ok := middleware.LenderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "lender not authenticated")
		return
	}

	assessment, err := h.svc.AssessStored(r.Context(), lenderID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

// LatestAssessment returns the most recent saved assessment of a borrower
func (h *Handler) LatestAssessment(w http.ResponseWriter, r *http.Request) {
	lenderID, ok := middleware.LenderIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "lender not authenticated")
		return
	}

	assessment, err := h.svc.LatestAssessment(r.Context(), lenderID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}
