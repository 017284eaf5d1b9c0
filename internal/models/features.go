package models

// FeatureVector holds model inputs keyed by name, in the model's column order
type FeatureVector struct {
	Names  []string
	Values map[string]float64
}

// Get returns the value for name and whether the model declares it
func (v FeatureVector) Get(name string) (float64, bool) {
	val, ok := v.Values[name]
	return val, ok
}

// Row returns the values in column order
func (v FeatureVector) Row() []float64 {
	row := make([]float64, len(v.Names))
	for i, name := range v.Names {
		row[i] = v.Values[name]
	}
	return row
}
