package scoring

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFeatureNames reads the comma-separated ordered feature list
func LoadFeatureNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feature list: %w", err)
	}
	defer f.Close()
	return ParseFeatureNames(f)
}

// ParseFeatureNames parses a comma-separated feature list
func ParseFeatureNames(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature list: %w", err)
	}

	var names []string
	for _, part := range strings.Split(string(data), ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("feature list is empty")
	}
	return names, nil
}

// LoadInterpretations reads "<band label>: <description>" lines
func LoadInterpretations(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open risk interpretations: %w", err)
	}
	defer f.Close()
	return ParseInterpretations(f)
}

// ParseInterpretations parses the band description table
func ParseInterpretations(r io.Reader) (map[string]string, error) {
	table := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		label, desc, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: missing ':' separator", lineNo)
		}
		table[strings.TrimSpace(label)] = strings.TrimSpace(desc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read risk interpretations: %w", err)
	}
	return table, nil
}

// CheckColumns verifies every predictor is one of the configured feature names
func CheckColumns(predictors, names []string) error {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	var missing []string
	for _, p := range predictors {
		if !known[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("model predictors not in feature list: %s", strings.Join(missing, ", "))
	}
	return nil
}
