package seeder

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/okian/diamond/internal/domain/model"
	"github.com/okian/diamond/internal/domain/types"
)

var (
	firstNames = []string{"Alex", "Sam", "Jordan", "Riley", "Casey", "Jamie", "Morgan", "Drew", "Taylor", "Quinn", "Avery", "Parker"}
	lastNames  = []string{"Rivera", "Lee", "Nguyen", "Smith", "Garcia", "Kim", "Brown", "Lopez", "Chen", "Patel", "Walker", "Young"}
	coaches    = []string{"Coach Kim", "Coach Ortiz", "Coach Bell", "Coach Shaw"}
)

// Generator produces type-appropriate random submissions.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator with a deterministic seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// PlayerNames returns n distinct names. Past the first/last combinations a
// jersey number keeps them unique.
func (g *Generator) PlayerNames(n int) []string {
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		name := first + " " + last
		if round := i / (len(firstNames) * len(lastNames)); round > 0 {
			name = fmt.Sprintf("%s #%d", name, round+1)
		}
		names = append(names, name)
	}
	return names
}

// rating returns a value on the 2-8 scale in half steps.
func (g *Generator) rating() float64 {
	return model.MinRating + float64(g.rng.IntN(13))*0.5
}

// Fields builds a valid form payload for t.
func (g *Generator) Fields(t model.EvaluationType) model.Fields {
	switch t {
	case model.Pitching:
		return model.Fields{"velocity": float64(45 + g.rng.IntN(41)), "mechanics": g.rating(), "control": g.rating()}
	case model.Infield:
		return model.Fields{"range_feet": g.rating(), "glove": g.rating(), "mechanics": g.rating(), "arm_strength": g.rating()}
	case model.Outfield:
		return model.Fields{"range_speed": g.rating(), "mechanics": g.rating(), "arm_strength": g.rating()}
	case model.Batting:
		return model.Fields{"mechanics": g.rating(), "contact": g.rating(), "power": g.rating()}
	case model.Catching:
		return model.Fields{"receiving": g.rating(), "blocking": g.rating(), "pop_time": g.rating()}
	case model.Speed:
		return model.Fields{"sixty_time": 6.0 + float64(g.rng.IntN(26))/10}
	}
	return model.Fields{}
}

// Plan generates cfg.Evaluations submissions over the given players. Every
// player gets at least one; a DuplicateRate share is followed by a resend.
func (g *Generator) Plan(cfg *Config, players []string) []submission {
	kinds := model.Types()
	out := make([]submission, 0, cfg.Evaluations+int(float64(cfg.Evaluations)*cfg.DuplicateRate)+1)
	for i := 0; i < cfg.Evaluations; i++ {
		player := players[i%len(players)]
		if i >= len(players) {
			player = players[g.rng.IntN(len(players))]
		}
		t := kinds[g.rng.IntN(len(kinds))]
		req := types.SubmitRequest{
			SubmissionID:  uuid.NewString(),
			PlayerName:    player,
			EvaluatorName: coaches[g.rng.IntN(len(coaches))],
			Type:          t.String(),
			Fields:        g.Fields(t),
		}
		if g.rng.IntN(4) == 0 {
			req.Notes = "seeded"
		}
		out = append(out, submission{req: req})
		if g.rng.Float64() < cfg.DuplicateRate {
			out = append(out, submission{req: req, resend: true})
		}
	}
	return out
}
