package service

import (
	"time"

	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/scoring"
)

// Snapshot is an immutable view of the evaluation set and everything derived
// from it. A new one is built from scratch on every change.
type Snapshot struct {
	Evaluations []model.Evaluation      `json:"-"`
	Players     []scoring.PlayerSummary `json:"players"`
	Ranges      scoring.ScoreRanges     `json:"ranges"`
	BuiltAt     time.Time               `json:"built_at"`

	byName map[string]int
}

func newSnapshot(evals []model.Evaluation, builtAt time.Time) *Snapshot {
	players := scoring.Aggregate(evals)
	snap := &Snapshot{
		Evaluations: evals,
		Players:     players,
		Ranges:      scoring.ComputeRanges(players),
		BuiltAt:     builtAt,
		byName:      make(map[string]int, len(players)),
	}
	for i := range players {
		snap.byName[players[i].Name] = i
	}
	return snap
}

// Player looks up a summary by exact name.
func (s *Snapshot) Player(name string) (scoring.PlayerSummary, bool) {
	i, ok := s.byName[name]
	if !ok {
		return scoring.PlayerSummary{}, false
	}
	return s.Players[i], true
}
