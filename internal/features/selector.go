package features

import "github.com/Dan9191/loan-risk-service/internal/models"

// Select restricts derived features to the model's ordered names. Names the
// extractor does not produce are set to zero.
func Select(derived map[string]float64, names []string) models.FeatureVector {
	vec := models.FeatureVector{
		Names:  append([]string(nil), names...),
		Values: make(map[string]float64, len(names)),
	}
	for _, name := range names {
		vec.Values[name] = derived[name]
	}
	return vec
}
