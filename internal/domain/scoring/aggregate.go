// Package scoring turns raw evaluation records into per-player summaries,
// derives the colour-bucket ranges for the current population and
// classifies individual values against them.
//
// Every function here is pure: no I/O, no shared state, no errors. Callers
// recompute from the full record set whenever it changes.
package scoring

import (
	"sort"
	"strings"

	"github.com/okian/diamond/internal/domain/model"
	"golang.org/x/text/cases"
	"gonum.org/v1/gonum/stat"
)

// PlayerSummary is the derived per-player view. Scores always holds all six
// categories; 0 means the player has no evaluations of that type.
type PlayerSummary struct {
	Name        string                           `json:"name"`
	Scores      map[model.EvaluationType]float64 `json:"scores"`
	Velocity    float64                          `json:"velocity"`
	Overall     float64                          `json:"overall"`
	Evaluations []model.Evaluation               `json:"evaluations"`
}

// Score returns the category mean for t, 0 when absent.
func (p *PlayerSummary) Score(t model.EvaluationType) float64 {
	return p.Scores[t]
}

// Evaluated reports how many categories contribute to Overall.
func (p *PlayerSummary) Evaluated() int {
	n := 0
	for _, v := range p.Scores {
		if v > 0 {
			n++
		}
	}
	return n
}

// Aggregate groups records by exact player name and computes category means,
// the category-weighted overall and the mean positive pitching velocity.
//
// Output is sorted by name (case-folded, raw bytes as tie-break) and does not
// depend on input order: every mean is taken over values in sorted order so
// permuted inputs produce bit-identical results.
func Aggregate(records []model.Evaluation) []PlayerSummary {
	byName := make(map[string][]model.Evaluation)
	for _, r := range records {
		byName[r.PlayerName] = append(byName[r.PlayerName], r)
	}

	out := make([]PlayerSummary, 0, len(byName))
	for name, recs := range byName {
		out = append(out, summarize(name, recs))
	}
	SortByName(out)
	return out
}

func summarize(name string, recs []model.Evaluation) PlayerSummary {
	perType := make(map[model.EvaluationType][]float64, len(model.Types()))
	var velocities []float64
	for i := range recs {
		r := &recs[i]
		perType[r.Type] = append(perType[r.Type], r.AverageScore)
		if r.HasVelocity() {
			velocities = append(velocities, r.Velocity)
		}
	}

	s := PlayerSummary{
		Name:        name,
		Scores:      make(map[model.EvaluationType]float64, len(model.Types())),
		Evaluations: newestFirst(recs),
	}

	var means []float64
	for _, t := range model.Types() {
		vals := perType[t]
		if len(vals) == 0 {
			s.Scores[t] = 0
			continue
		}
		m := mean(vals)
		s.Scores[t] = m
		means = append(means, m)
	}
	s.Overall = mean(means)
	s.Velocity = mean(velocities)
	return s
}

// mean returns 0 for an empty slice. Values are summed in ascending order.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	return stat.Mean(sorted, nil)
}

func newestFirst(recs []model.Evaluation) []model.Evaluation {
	out := make([]model.Evaluation, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}

// SortByName orders summaries by case-folded name. Names that fold to the
// same key keep a deterministic order by raw byte comparison.
func SortByName(s []PlayerSummary) {
	keys := foldKeys(s)
	sort.Sort(byName{s: s, keys: keys})
}

func foldKeys(s []PlayerSummary) []string {
	folder := cases.Fold()
	keys := make([]string, len(s))
	for i := range s {
		keys[i] = folder.String(s[i].Name)
	}
	return keys
}

func compareNames(aKey, bKey, a, b string) int {
	if c := strings.Compare(aKey, bKey); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

type byName struct {
	s    []PlayerSummary
	keys []string
}

func (b byName) Len() int { return len(b.s) }

func (b byName) Less(i, j int) bool {
	return compareNames(b.keys[i], b.keys[j], b.s[i].Name, b.s[j].Name) < 0
}

func (b byName) Swap(i, j int) {
	b.s[i], b.s[j] = b.s[j], b.s[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
