package scoring

import (
	"context"

	"github.com/Dan9191/loan-risk-service/internal/models"
)

// Model scores a single row of features. The returned score is not clamped.
type Model interface {
	Predict(ctx context.Context, row models.FeatureVector) (float64, error)
}

// Artifacts bundles the scoring model with its static configuration tables.
// It is loaded once at startup and only read afterwards.
type Artifacts struct {
	Model        Model
	FeatureNames []string
	Descriptions map[string]string
	Version      string
}
