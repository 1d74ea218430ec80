// Package nutrition holds the analysis value object returned by the
// analysis endpoint and the parse step that turns its response into one.
package nutrition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// UnidentifiableMealName is the meal name the endpoint reports when it cannot recognize a meal.
const UnidentifiableMealName = "Unidentifiable"

// ErrInvalidResponse is returned when the endpoint body is not a usable analysis.
var ErrInvalidResponse = errors.New("invalid response format from analysis service")

// Analysis is the structured result of one meal analysis.
// Calories and macros are grams except Sodium (milligrams).
type Analysis struct {
	MealName        string  `json:"mealName"`
	Calories        float64 `json:"calories"`
	Protein         float64 `json:"protein"`
	Carbs           float64 `json:"carbs"`
	Fat             float64 `json:"fat"`
	Fiber           float64 `json:"fiber"`
	Sugar           float64 `json:"sugar"`
	Sodium          float64 `json:"sodium"`
	ConfidenceScore float64 `json:"confidenceScore"`
	HealthScore     int     `json:"healthScore"`
	Rationale       string  `json:"rationale"`
}

// Unidentifiable reports whether a is the endpoint's "could not identify a meal" result.
func (a Analysis) Unidentifiable() bool {
	return IsUnidentifiable(a)
}

// IsUnidentifiable is true iff confidenceScore is exactly 0 and mealName is "Unidentifiable".
func IsUnidentifiable(a Analysis) bool {
	return a.ConfidenceScore == 0.0 && a.MealName == UnidentifiableMealName
}

// wireAnalysis keeps every field optional so presence and type can be checked.
type wireAnalysis struct {
	MealName        *string          `json:"mealName"`
	Calories        *json.RawMessage `json:"calories"`
	Protein         *json.RawMessage `json:"protein"`
	Carbs           *json.RawMessage `json:"carbs"`
	Fat             *json.RawMessage `json:"fat"`
	Fiber           *json.RawMessage `json:"fiber"`
	Sugar           *json.RawMessage `json:"sugar"`
	Sodium          *json.RawMessage `json:"sodium"`
	ConfidenceScore *json.RawMessage `json:"confidenceScore"`
	HealthScore     *json.RawMessage `json:"healthScore"`
	Rationale       *string          `json:"rationale"`
}

// Parse validates an endpoint response body. mealName must be a non-empty
// string and calories a JSON number; the other fields default to zero when
// absent or null.
func Parse(body []byte) (Analysis, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Analysis{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidResponse)
	}

	var w wireAnalysis
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if w.MealName == nil || strings.TrimSpace(*w.MealName) == "" {
		return Analysis{}, fmt.Errorf("%w: mealName is required", ErrInvalidResponse)
	}
	if w.Calories == nil {
		return Analysis{}, fmt.Errorf("%w: calories must be a number", ErrInvalidResponse)
	}

	a := Analysis{MealName: *w.MealName}
	if w.Rationale != nil {
		a.Rationale = *w.Rationale
	}

	floats := []struct {
		name string
		src  *json.RawMessage
		dst  *float64
	}{
		{"calories", w.Calories, &a.Calories},
		{"protein", w.Protein, &a.Protein},
		{"carbs", w.Carbs, &a.Carbs},
		{"fat", w.Fat, &a.Fat},
		{"fiber", w.Fiber, &a.Fiber},
		{"sugar", w.Sugar, &a.Sugar},
		{"sodium", w.Sodium, &a.Sodium},
		{"confidenceScore", w.ConfidenceScore, &a.ConfidenceScore},
		{"healthScore", w.HealthScore, nil},
	}
	for _, f := range floats {
		if f.src == nil {
			continue
		}
		var v float64
		if err := json.Unmarshal(*f.src, &v); err != nil {
			return Analysis{}, fmt.Errorf("%w: %s must be a number", ErrInvalidResponse, f.name)
		}
		if f.dst == nil {
			// Some models emit 72.0 for an integer score.
			if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
				return Analysis{}, fmt.Errorf("%w: healthScore must be an integer", ErrInvalidResponse)
			}
			a.HealthScore = int(v)
			continue
		}
		*f.dst = v
	}

	return a, nil
}
