// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// EvaluationType is the skill category an evaluation rates.
type EvaluationType string

// The six evaluation categories. Order matters: it drives category
// iteration in the aggregator and the column order of the heatmap.
const (
	Pitching EvaluationType = "pitching"
	Infield  EvaluationType = "infield"
	Outfield EvaluationType = "outfield"
	Batting  EvaluationType = "batting"
	Catching EvaluationType = "catching"
	Speed    EvaluationType = "speed"
)

var evaluationTypes = [...]EvaluationType{Pitching, Infield, Outfield, Batting, Catching, Speed}

// Types returns every evaluation type in canonical order.
func Types() []EvaluationType {
	out := make([]EvaluationType, len(evaluationTypes))
	copy(out, evaluationTypes[:])
	return out
}

// Valid reports whether t is one of the six known categories.
func (t EvaluationType) Valid() bool {
	for _, known := range evaluationTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t EvaluationType) String() string { return string(t) }

// ParseType converts user input into an EvaluationType.
func ParseType(s string) (EvaluationType, error) {
	t := EvaluationType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Rating is a single criterion score on the 2 (poor) to 8 (excellent) scale.
type Rating struct {
	Criteria string  `json:"criteria"`
	Rating   float64 `json:"rating"`
	Time     string  `json:"time,omitempty"` // speed evaluations only
}

// Evaluation is one coach's rating of one player in one category.
// Records are immutable once stored.
type Evaluation struct {
	ID            int64          `json:"id"`
	PlayerName    string         `json:"player_name"`
	EvaluatorName string         `json:"evaluator_name"`
	Type          EvaluationType `json:"evaluation_type"`
	Velocity      float64        `json:"velocity,omitempty"` // MPH, pitching only; 0 means absent
	Ratings       []Rating       `json:"ratings"`
	Notes         string         `json:"notes,omitempty"`
	AverageScore  float64        `json:"average_score"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// HasVelocity reports whether the record carries a usable pitching velocity.
func (e *Evaluation) HasVelocity() bool {
	return e.Type == Pitching && e.Velocity > 0
}
