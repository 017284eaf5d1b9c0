package risk

import "math"

// Risk level labels
const (
	LevelVeryLow  = "Very Low Risk"
	LevelLow      = "Low Risk"
	LevelModerate = "Moderate Risk"
	LevelHigh     = "High Risk"
	LevelVeryHigh = "Very High Risk"
)

// DescriptionUnavailable is returned when a band has no description
const DescriptionUnavailable = "Risk level description not available"

// band is an inclusive upper bound on the score for a level
type band struct {
	upper float64
	level string
	key   string
}

var bands = []band{
	{20, LevelVeryLow, "Very Low Risk (0-20)"},
	{40, LevelLow, "Low Risk (21-40)"},
	{60, LevelModerate, "Moderate Risk (41-60)"},
	{80, LevelHigh, "High Risk (61-80)"},
	{math.Inf(1), LevelVeryHigh, "Very High Risk (81-100)"},
}

// Clamp limits a raw model score to [0, 100]
func Clamp(score float64) float64 {
	return math.Max(0, math.Min(100, score))
}

// Interpreter maps scores to risk levels using a band description table
type Interpreter struct {
	descriptions map[string]string
}

// NewInterpreter creates an interpreter over a table keyed by band label,
// e.g. "High Risk (61-80)"
func NewInterpreter(descriptions map[string]string) *Interpreter {
	return &Interpreter{descriptions: descriptions}
}

// Interpret returns the level and description for a clamped score
func (i *Interpreter) Interpret(score float64) (level, description string) {
	b := bandFor(score)
	description, ok := i.descriptions[b.key]
	if !ok {
		description = DescriptionUnavailable
	}
	return b.level, description
}

func bandFor(score float64) band {
	for _, b := range bands {
		if score <= b.upper {
			return b
		}
	}
	return bands[len(bands)-1]
}
