package cache

import (
	"context"
	"sync"

	"github.com/Dan9191/loan-risk-service/internal/models"
)

// AssessmentCache keeps the latest assessment per borrower
type AssessmentCache interface {
	Get(ctx context.Context, borrowerID string) (*models.RiskAssessment, bool)
	Set(ctx context.Context, a *models.RiskAssessment) error
	Delete(ctx context.Context, borrowerID string) error
}

// MemoryCache is an in-process AssessmentCache used when Redis is not configured
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]models.RiskAssessment
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]models.RiskAssessment)}
}

func (m *MemoryCache) Get(_ context.Context, borrowerID string) (*models.RiskAssessment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.data[borrowerID]
	if !ok {
		return nil, false
	}
	return &a, true
}

func (m *MemoryCache) Set(_ context.Context, a *models.RiskAssessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[a.BorrowerID] = *a
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, borrowerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, borrowerID)
	return nil
}
