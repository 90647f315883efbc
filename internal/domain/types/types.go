// Package types contains view types shared by the HTTP adapters.
package types

import (
	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/scoring"
)

// Cell is one coloured heatmap value. Missing cells have Value 0.
type Cell struct {
	Value  float64        `json:"value"`
	Bucket scoring.Bucket `json:"bucket"`
	Color  string         `json:"color"`
}

// Missing reports whether the cell has no data.
func (c Cell) Missing() bool { return c.Bucket == scoring.Missing }

// Row is one player line of the heatmap.
type Row struct {
	Name        string                        `json:"name"`
	Categories  map[model.EvaluationType]Cell `json:"categories"`
	Velocity    Cell                          `json:"velocity"`
	Overall     Cell                          `json:"overall"`
	Evaluations int                           `json:"evaluations"`
}

// Heatmap is the sorted table plus the ranges the cells were coloured with.
type Heatmap struct {
	Sort      scoring.SortField      `json:"sort"`
	Direction scoring.Direction      `json:"direction"`
	Ranges    scoring.ScoreRanges    `json:"ranges"`
	Columns   []model.EvaluationType `json:"columns"`
	Rows      []Row                  `json:"rows"`
}

// NewCell classifies v against breakpoints.
func NewCell(v float64, breakpoints [6]float64) Cell {
	b := scoring.Classify(v, breakpoints)
	return Cell{Value: v, Bucket: b, Color: b.Color()}
}

// NewRow builds the coloured row for s.
func NewRow(s *scoring.PlayerSummary, r scoring.ScoreRanges) Row {
	row := Row{
		Name:        s.Name,
		Categories:  make(map[model.EvaluationType]Cell, len(model.Types())),
		Velocity:    NewCell(s.Velocity, r.Velocity.Breakpoints),
		Overall:     NewCell(s.Overall, r.Score.Breakpoints),
		Evaluations: len(s.Evaluations),
	}
	for _, t := range model.Types() {
		row.Categories[t] = NewCell(s.Score(t), r.Score.Breakpoints)
	}
	return row
}

// NewHeatmap colours summaries, which must already be in display order.
func NewHeatmap(summaries []scoring.PlayerSummary, r scoring.ScoreRanges, field scoring.SortField, dir scoring.Direction) Heatmap {
	h := Heatmap{
		Sort:      field,
		Direction: dir,
		Ranges:    r,
		Columns:   model.Types(),
		Rows:      make([]Row, 0, len(summaries)),
	}
	for i := range summaries {
		h.Rows = append(h.Rows, NewRow(&summaries[i], r))
	}
	return h
}

// Profile is a single player's drill-down view.
type Profile struct {
	Summary scoring.PlayerSummary `json:"summary"`
	Row     Row                   `json:"row"`
}

// CriteriaSet describes the rated criteria of one evaluation type.
type CriteriaSet struct {
	Type     model.EvaluationType `json:"type"`
	Label    string               `json:"label"`
	Criteria []string             `json:"criteria"`
}

// AllCriteria lists every evaluation type with its criteria, in canonical order.
func AllCriteria() []CriteriaSet {
	out := make([]CriteriaSet, 0, len(model.Types()))
	for _, t := range model.Types() {
		out = append(out, CriteriaSet{Type: t, Label: model.Label(t), Criteria: model.Criteria(t)})
	}
	return out
}

// SubmitRequest is a coach's form post.
type SubmitRequest struct {
	// SubmissionID is an optional client key; a repeated key is stored once.
	SubmissionID  string       `json:"submission_id,omitempty"`
	PlayerName    string       `json:"player_name"`
	EvaluatorName string       `json:"evaluator_name"`
	Type          string       `json:"evaluation_type"`
	Fields        model.Fields `json:"fields"`
	Notes         string       `json:"notes,omitempty"`
}
