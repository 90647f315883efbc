package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Rating scale and form limits.
const (
	MinRating   = 2.0
	MaxRating   = 8.0
	MaxVelocity = 120.0

	MinSixtyTime = 5.0
	MaxSixtyTime = 10.0

	// Sixty-yard times at or below fastSixty earn MaxRating, at or above
	// slowSixty earn MinRating; ratings are linear in between.
	fastSixty = 6.0
	slowSixty = 8.0
)

// Submission is the per-category payload a coach fills in. Each evaluation
// type has its own variant so required fields are checked at compile time;
// only Pitching carries a velocity.
type Submission interface {
	Type() EvaluationType
	Ratings() []Rating
	Velocity() float64
	Validate() error
}

// PitchingForm rates mechanics and control and records velocity in MPH.
type PitchingForm struct {
	MPH       float64
	Mechanics float64
	Control   float64
}

func (PitchingForm) Type() EvaluationType { return Pitching }
func (p PitchingForm) Velocity() float64 { return p.MPH }

func (p PitchingForm) Ratings() []Rating {
	return rate(Pitching, p.Mechanics, p.Control)
}

func (p PitchingForm) Validate() error {
	if p.MPH <= 0 || p.MPH > MaxVelocity {
		return fmt.Errorf("%w: velocity must be between 0 and %.0f MPH", ErrInvalidSubmission, MaxVelocity)
	}
	return checkRatings(p.Ratings())
}

// InfieldForm rates range, glove, mechanics and arm strength.
type InfieldForm struct {
	RangeFeet   float64
	Glove       float64
	Mechanics   float64
	ArmStrength float64
}

func (InfieldForm) Type() EvaluationType { return Infield }
func (InfieldForm) Velocity() float64 { return 0 }
func (i InfieldForm) Validate() error { return checkRatings(i.Ratings()) }

func (i InfieldForm) Ratings() []Rating {
	return rate(Infield, i.RangeFeet, i.Glove, i.Mechanics, i.ArmStrength)
}

// OutfieldForm rates range, mechanics and arm strength.
type OutfieldForm struct {
	RangeSpeed  float64
	Mechanics   float64
	ArmStrength float64
}

func (OutfieldForm) Type() EvaluationType { return Outfield }
func (OutfieldForm) Velocity() float64 { return 0 }
func (o OutfieldForm) Validate() error { return checkRatings(o.Ratings()) }

func (o OutfieldForm) Ratings() []Rating {
	return rate(Outfield, o.RangeSpeed, o.Mechanics, o.ArmStrength)
}

// BattingForm rates mechanics, contact and power.
type BattingForm struct {
	Mechanics float64
	Contact   float64
	Power     float64
}

func (BattingForm) Type() EvaluationType { return Batting }
func (BattingForm) Velocity() float64 { return 0 }
func (b BattingForm) Validate() error { return checkRatings(b.Ratings()) }

func (b BattingForm) Ratings() []Rating {
	return rate(Batting, b.Mechanics, b.Contact, b.Power)
}

// CatchingForm rates receiving, blocking and pop time.
type CatchingForm struct {
	Receiving float64
	Blocking  float64
	PopTime   float64
}

func (CatchingForm) Type() EvaluationType { return Catching }
func (CatchingForm) Velocity() float64 { return 0 }
func (c CatchingForm) Validate() error { return checkRatings(c.Ratings()) }

func (c CatchingForm) Ratings() []Rating {
	return rate(Catching, c.Receiving, c.Blocking, c.PopTime)
}

// SpeedForm records a sixty-yard dash time in seconds. The rating is derived
// from the time rather than entered by the coach.
type SpeedForm struct {
	SixtyTime float64
}

func (SpeedForm) Type() EvaluationType { return Speed }
func (SpeedForm) Velocity() float64 { return 0 }

func (s SpeedForm) Ratings() []Rating {
	return []Rating{{
		Criteria: criteria[Speed][0],
		Rating:   SixtyRating(s.SixtyTime),
		Time:     strconv.FormatFloat(s.SixtyTime, 'f', -1, 64) + "s",
	}}
}

func (s SpeedForm) Validate() error {
	if s.SixtyTime < MinSixtyTime || s.SixtyTime > MaxSixtyTime {
		return fmt.Errorf("%w: 60 yard time must be between %.1f and %.1f seconds", ErrInvalidSubmission, MinSixtyTime, MaxSixtyTime)
	}
	return nil
}

// SixtyRating converts a sixty-yard time to the rating scale; faster is better.
func SixtyRating(seconds float64) float64 {
	switch {
	case seconds <= fastSixty:
		return MaxRating
	case seconds >= slowSixty:
		return MinRating
	}
	return MaxRating - (seconds-fastSixty)/(slowSixty-fastSixty)*(MaxRating-MinRating)
}

func rate(t EvaluationType, values ...float64) []Rating {
	names := criteria[t]
	out := make([]Rating, len(values))
	for i, v := range values {
		out[i] = Rating{Criteria: names[i], Rating: v}
	}
	return out
}

func checkRatings(ratings []Rating) error {
	for _, r := range ratings {
		if r.Rating < MinRating || r.Rating > MaxRating {
			return fmt.Errorf("%w: %s rating must be between %.0f and %.0f", ErrInvalidSubmission, r.Criteria, MinRating, MaxRating)
		}
	}
	return nil
}

// Fields is the flat, loosely typed form payload keyed by snake_case field
// name, as it arrives over the wire.
type Fields map[string]float64

// DecodeSubmission builds the typed variant for t from raw form fields.
// Missing fields decode as zero and are caught by Validate.
func DecodeSubmission(t EvaluationType, f Fields) (Submission, error) {
	switch t {
	case Pitching:
		return PitchingForm{MPH: f["velocity"], Mechanics: f["mechanics"], Control: f["control"]}, nil
	case Infield:
		return InfieldForm{RangeFeet: f["range_feet"], Glove: f["glove"], Mechanics: f["mechanics"], ArmStrength: f["arm_strength"]}, nil
	case Outfield:
		return OutfieldForm{RangeSpeed: f["range_speed"], Mechanics: f["mechanics"], ArmStrength: f["arm_strength"]}, nil
	case Batting:
		return BattingForm{Mechanics: f["mechanics"], Contact: f["contact"], Power: f["power"]}, nil
	case Catching:
		return CatchingForm{Receiving: f["receiving"], Blocking: f["blocking"], PopTime: f["pop_time"]}, nil
	case Speed:
		return SpeedForm{SixtyTime: f["sixty_time"]}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, string(t))
}

// NewEvaluation validates sub and builds the record to be stored. ID and
// timestamps other than now are assigned by the store.
func NewEvaluation(player, evaluator, notes string, sub Submission, now time.Time) (Evaluation, error) {
	player = strings.TrimSpace(player)
	evaluator = strings.TrimSpace(evaluator)
	switch {
	case sub == nil:
		return Evaluation{}, fmt.Errorf("%w: missing evaluation payload", ErrInvalidSubmission)
	case player == "":
		return Evaluation{}, fmt.Errorf("%w: player name is required", ErrInvalidSubmission)
	case evaluator == "":
		return Evaluation{}, fmt.Errorf("%w: evaluator name is required", ErrInvalidSubmission)
	}
	if err := sub.Validate(); err != nil {
		return Evaluation{}, err
	}

	ratings := sub.Ratings()
	values := make([]float64, len(ratings))
	for i, r := range ratings {
		values[i] = r.Rating
	}

	return Evaluation{
		PlayerName:    player,
		EvaluatorName: evaluator,
		Type:          sub.Type(),
		Velocity:      sub.Velocity(),
		Ratings:       ratings,
		Notes:         strings.TrimSpace(notes),
		AverageScore:  stat.Mean(values, nil),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
