package site

import (
	"net/url"
	"strings"
	"time"

	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/scoring"
	"github.com/okian/diamond/internal/domain/types"
	"golang.org/x/text/message"
)

const (
	missingText = "-"
	timeLayout  = "Jan 2, 2006 3:04 PM"
)

// columnTitles are the heatmap headers in display order.
var columnTitles = map[scoring.SortField]string{
	scoring.FieldName:     "Player",
	scoring.FieldPitching: "Pitching",
	scoring.FieldVelocity: "Velocity",
	scoring.FieldInfield:  "Infield",
	scoring.FieldOutfield: "Outfield",
	scoring.FieldBatting:  "Batting",
	scoring.FieldCatching: "Catching",
	scoring.FieldSpeed:    "Speed",
	scoring.FieldOverall:  "Overall",
}

func formatScore(p *message.Printer, c types.Cell) string {
	if c.Missing() {
		return missingText
	}
	return p.Sprintf("%.1f", c.Value)
}

func formatVelocity(p *message.Printer, c types.Cell) string {
	if c.Missing() {
		return missingText
	}
	return p.Sprintf("%.1f MPH", c.Value)
}

func formatAverage(p *message.Printer, v float64) string {
	return p.Sprintf("Score: %.1f/%.0f", v, model.MaxRating)
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

// cellFor returns the cell shown under column f.
func cellFor(row *types.Row, f scoring.SortField) types.Cell {
	switch f {
	case scoring.FieldVelocity:
		return row.Velocity
	case scoring.FieldOverall:
		return row.Overall
	}
	return row.Categories[model.EvaluationType(f)]
}

func cellText(p *message.Printer, row *types.Row, f scoring.SortField) string {
	c := cellFor(row, f)
	if f == scoring.FieldVelocity {
		return formatVelocity(p, c)
	}
	return formatScore(p, c)
}

// sortHref is the link a header click follows.
func sortHref(h *types.Heatmap, f scoring.SortField) string {
	q := url.Values{}
	q.Set("sort", string(f))
	q.Set("dir", string(scoring.NextDirection(h.Sort, h.Direction, f)))
	return "/?" + q.Encode()
}

func sortIndicator(h *types.Heatmap, f scoring.SortField) string {
	if h.Sort != f {
		return ""
	}
	switch h.Direction {
	case scoring.DirAsc:
		return " ▲"
	case scoring.DirDesc:
		return " ▼"
	}
	return ""
}

func playerHref(name string) string {
	return "/player/" + url.PathEscape(name)
}

func typeBadge(t model.EvaluationType) string {
	return strings.ToUpper(t.String())
}

// ratingText renders one criterion; speed ratings show the recorded time.
func ratingText(p *message.Printer, r model.Rating) string {
	if r.Time != "" {
		return p.Sprintf("%s: %s (%.1f)", r.Criteria, r.Time, r.Rating)
	}
	return p.Sprintf("%s: %.1f", r.Criteria, r.Rating)
}
