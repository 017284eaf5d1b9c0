package handler

import (
	"net/http"

	"github.com/Dan9191/loan-risk-service/internal/config"
	"github.com/Dan9191/loan-risk-service/internal/middleware"
	"github.com/gorilla/mux"
)

// NewRouter wires the public and lender-protected routes. CORS wraps the
// router so preflight requests are answered before route matching and auth.
func NewRouter(h *Handler, cfg *config.Config, metrics http.Handler) http.Handler {
	r := mux.NewRouter()
	auth := middleware.AuthMiddleware(cfg)

	// Public routes
	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/predict", h.Predict).Methods(http.MethodPost)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	// Protected routes
	r.Handle("/api/me", auth(http.HandlerFunc(h.Me))).Methods(http.MethodGet)

	api := r.PathPrefix("/api/borrowers").Subrouter()
	api.Use(auth)
	api.HandleFunc("", h.ListBorrowers).Methods(http.MethodGet)
	api.HandleFunc("", h.CreateBorrower).Methods(http.MethodPost)
	api.HandleFunc("/{id}", h.GetBorrower).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.UpdateBorrower).Methods(http.MethodPut)
	api.HandleFunc("/{id}", h.DeleteBorrower).Methods(http.MethodDelete)
	api.HandleFunc("/{id}/assess", h.AssessBorrower).Methods(http.MethodPost)
	api.HandleFunc("/{id}/assessment", h.LatestAssessment).Methods(http.MethodGet)

	return middleware.CORSMiddleware(cfg.CORSOrigin)(r)
}
