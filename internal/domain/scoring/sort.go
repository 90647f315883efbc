package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/diamond/internal/domain/model"
)

// SortField is a heatmap column users can sort by.
type SortField string

// Sortable columns. Category fields share their EvaluationType spelling.
const (
	FieldName     SortField = "name"
	FieldPitching SortField = SortField(model.Pitching)
	FieldVelocity SortField = "velocity"
	FieldInfield  SortField = SortField(model.Infield)
	FieldOutfield SortField = SortField(model.Outfield)
	FieldBatting  SortField = SortField(model.Batting)
	FieldCatching SortField = SortField(model.Catching)
	FieldSpeed    SortField = SortField(model.Speed)
	FieldOverall  SortField = "overall"
)

// Direction is a sort order; DirNone keeps the default name order.
type Direction string

const (
	DirAsc  Direction = "asc"
	DirDesc Direction = "desc"
	DirNone Direction = "none"
)

// Fields returns the sortable columns in heatmap order.
func Fields() []SortField {
	return []SortField{
		FieldName, FieldPitching, FieldVelocity, FieldInfield, FieldOutfield,
		FieldBatting, FieldCatching, FieldSpeed, FieldOverall,
	}
}

// ParseSortField accepts a column name; empty means name.
func ParseSortField(s string) (SortField, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FieldName, nil
	}
	for _, f := range Fields() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortField, s)
}

// ParseDirection accepts asc, desc or none; empty means asc.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DirAsc, nil
	case DirAsc, DirDesc, DirNone:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// NextDirection is the header click cycle: asc, desc, none, asc on the same
// column, and asc when switching columns.
func NextDirection(current SortField, dir Direction, clicked SortField) Direction {
	if current != clicked {
		return DirAsc
	}
	switch dir {
	case DirAsc:
		return DirDesc
	case DirDesc:
		return DirNone
	default:
		return DirAsc
	}
}

// Sort returns a copy of summaries ordered by field. Input is expected in
// Aggregate's default order; ties and DirNone keep it.
func Sort(summaries []PlayerSummary, field SortField, dir Direction) []PlayerSummary {
	out := make([]PlayerSummary, len(summaries))
	copy(out, summaries)
	if dir == DirNone {
		return out
	}
	if field == FieldName {
		SortByName(out)
		if dir == DirDesc {
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
		}
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := value(&out[i], field), value(&out[j], field)
		if dir == DirDesc {
			return a > b
		}
		return a < b
	})
	return out
}

func value(s *PlayerSummary, field SortField) float64 {
	switch field {
	case FieldOverall:
		return s.Overall
	case FieldVelocity:
		return s.Velocity
	}
	return s.Score(model.EvaluationType(field))
}
