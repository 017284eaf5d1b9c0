package scoring

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/Dan9191/loan-risk-service/internal/models"
	"github.com/beevik/etree"
)

// numericPredictor contributes coefficient * x^exponent
type numericPredictor struct {
	name        string
	coefficient float64
	exponent    float64
}

// categoricalPredictor contributes coefficient when x equals value
type categoricalPredictor struct {
	name        string
	value       float64
	coefficient float64
}

// RegressionModel is a linear scoring model read from a PMML RegressionModel
type RegressionModel struct {
	intercept   float64
	numeric     []numericPredictor
	categorical []categoricalPredictor
}

// LoadPMML reads a PMML file containing a single RegressionModel
func LoadPMML(path string) (*RegressionModel, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to read PMML %s: %w", path, err)
	}
	return parsePMML(doc)
}

// ParsePMML parses a PMML document from memory
func ParsePMML(data []byte) (*RegressionModel, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse PMML: %w", err)
	}
	return parsePMML(doc)
}

func parsePMML(doc *etree.Document) (*RegressionModel, error) {
	table := doc.FindElement("//RegressionModel/RegressionTable")
	if table == nil {
		return nil, fmt.Errorf("no RegressionModel/RegressionTable found in PMML")
	}

	m := &RegressionModel{}
	var err error
	if m.intercept, err = floatAttr(table, "intercept", 0); err != nil {
		return nil, err
	}

	for _, el := range table.SelectElements("NumericPredictor") {
		p := numericPredictor{name: el.SelectAttrValue("name", "")}
		if p.name == "" {
			return nil, fmt.Errorf("NumericPredictor without name")
		}
		if p.coefficient, err = floatAttr(el, "coefficient", math.NaN()); err != nil {
			return nil, err
		}
		if math.IsNaN(p.coefficient) {
			return nil, fmt.Errorf("NumericPredictor %s has no coefficient", p.name)
		}
		if p.exponent, err = floatAttr(el, "exponent", 1); err != nil {
			return nil, err
		}
		m.numeric = append(m.numeric, p)
	}

	for _, el := range table.SelectElements("CategoricalPredictor") {
		p := categoricalPredictor{name: el.SelectAttrValue("name", "")}
		if p.name == "" {
			return nil, fmt.Errorf("CategoricalPredictor without name")
		}
		if p.value, err = floatAttr(el, "value", math.NaN()); err != nil {
			return nil, err
		}
		if p.coefficient, err = floatAttr(el, "coefficient", 0); err != nil {
			return nil, err
		}
		m.categorical = append(m.categorical, p)
	}

	return m, nil
}

func floatAttr(el *etree.Element, key string, def float64) (float64, error) {
	raw := el.SelectAttrValue(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s attribute on %s: %w", key, el.Tag, err)
	}
	return v, nil
}

// Predictors returns the feature names the model reads
func (m *RegressionModel) Predictors() []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range m.numeric {
		if !seen[p.name] {
			seen[p.name] = true
			names = append(names, p.name)
		}
	}
	for _, p := range m.categorical {
		if !seen[p.name] {
			seen[p.name] = true
			names = append(names, p.name)
		}
	}
	return names
}

// Predict evaluates the regression table on the row. Evaluation is local
// and does not block, so ctx is unused.
func (m *RegressionModel) Predict(_ context.Context, row models.FeatureVector) (float64, error) {
	score := m.intercept
	for _, p := range m.numeric {
		x, ok := row.Get(p.name)
		if !ok {
			return 0, fmt.Errorf("feature %q required by model is not a column", p.name)
		}
		score += p.coefficient * math.Pow(x, p.exponent)
	}
	for _, p := range m.categorical {
		x, ok := row.Get(p.name)
		if !ok {
			return 0, fmt.Errorf("feature %q required by model is not a column", p.name)
		}
		if x == p.value {
			score += p.coefficient
		}
	}
	return score, nil
}
