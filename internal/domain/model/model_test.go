package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/diamond/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestEvaluationType(t *testing.T) {
	convey.Convey("Given the evaluation categories", t, func() {
		convey.Convey("Then Types returns all six in canonical order", func() {
			convey.So(model.Types(), convey.ShouldResemble, []model.EvaluationType{
				model.Pitching, model.Infield, model.Outfield, model.Batting, model.Catching, model.Speed,
			})
		})

		convey.Convey("And mutating the returned slice does not leak", func() {
			types := model.Types()
			types[0] = "bogus"
			convey.So(model.Types()[0], convey.ShouldEqual, model.Pitching)
		})

		convey.Convey("When parsing user input", func() {
			typ, err := model.ParseType("  Batting ")
			convey.So(err, convey.ShouldBeNil)
			convey.So(typ, convey.ShouldEqual, model.Batting)

			_, err = model.ParseType("bowling")
			convey.So(errors.Is(err, model.ErrUnknownType), convey.ShouldBeTrue)
		})

		convey.Convey("Then labels and criteria follow the forms", func() {
			convey.So(model.Label(model.Speed), convey.ShouldEqual, "Speed & Agility")
			convey.So(model.Label("unknown"), convey.ShouldEqual, "unknown")
			convey.So(model.Criteria(model.Catching), convey.ShouldResemble, []string{"Receiving", "Blocking", "Pop Time"})
			convey.So(model.Criteria(model.Infield), convey.ShouldHaveLength, 4)
		})
	})
}

func TestNewEvaluation(t *testing.T) {
	now := time.Date(2025, 4, 12, 17, 30, 0, 0, time.UTC)

	convey.Convey("Given a pitching submission", t, func() {
		sub := model.PitchingForm{MPH: 72, Mechanics: 5, Control: 6}

		convey.Convey("When building the evaluation", func() {
			ev, err := model.NewEvaluation("  Alex Rivera ", " Coach Kim ", "  good tempo ", sub, now)

			convey.Convey("Then names and notes are trimmed and the average computed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(ev.PlayerName, convey.ShouldEqual, "Alex Rivera")
				convey.So(ev.EvaluatorName, convey.ShouldEqual, "Coach Kim")
				convey.So(ev.Notes, convey.ShouldEqual, "good tempo")
				convey.So(ev.Type, convey.ShouldEqual, model.Pitching)
				convey.So(ev.Velocity, convey.ShouldEqual, 72.0)
				convey.So(ev.AverageScore, convey.ShouldEqual, 5.5)
				convey.So(ev.CreatedAt, convey.ShouldEqual, now)
				convey.So(ev.HasVelocity(), convey.ShouldBeTrue)
				convey.So(ev.Ratings, convey.ShouldResemble, []model.Rating{
					{Criteria: "Mechanics", Rating: 5},
					{Criteria: "Control", Rating: 6},
				})
			})
		})

		convey.Convey("When the velocity is out of range", func() {
			_, err := model.NewEvaluation("Alex", "Coach", "", model.PitchingForm{MPH: 130, Mechanics: 5, Control: 5}, now)
			convey.So(errors.Is(err, model.ErrInvalidSubmission), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "velocity")
		})
	})

	convey.Convey("Given submissions with missing names", t, func() {
		sub := model.BattingForm{Mechanics: 5, Contact: 5, Power: 5}

		_, err := model.NewEvaluation("   ", "Coach", "", sub, now)
		convey.So(errors.Is(err, model.ErrInvalidSubmission), convey.ShouldBeTrue)
		convey.So(err.Error(), convey.ShouldContainSubstring, "player name")

		_, err = model.NewEvaluation("Sam", "", "", sub, now)
		convey.So(err.Error(), convey.ShouldContainSubstring, "evaluator name")

		_, err = model.NewEvaluation("Sam", "Coach", "", nil, now)
		convey.So(errors.Is(err, model.ErrInvalidSubmission), convey.ShouldBeTrue)
	})

	convey.Convey("Given a rating outside 2-8", t, func() {
		_, err := model.NewEvaluation("Sam", "Coach", "", model.InfieldForm{RangeFeet: 5, Glove: 9, Mechanics: 5, ArmStrength: 5}, now)
		convey.So(errors.Is(err, model.ErrInvalidSubmission), convey.ShouldBeTrue)
		convey.So(err.Error(), convey.ShouldContainSubstring, "Glove")
	})

	convey.Convey("Given a non-pitching submission", t, func() {
		ev, err := model.NewEvaluation("Sam", "Coach", "", model.CatchingForm{Receiving: 4, Blocking: 6, PopTime: 8}, now)
		convey.So(err, convey.ShouldBeNil)
		convey.So(ev.Velocity, convey.ShouldEqual, 0.0)
		convey.So(ev.HasVelocity(), convey.ShouldBeFalse)
		convey.So(ev.AverageScore, convey.ShouldEqual, 6.0)
	})
}

func TestSpeedForm(t *testing.T) {
	convey.Convey("Given sixty-yard times", t, func() {
		convey.Convey("Then fast times cap at the top of the scale", func() {
			convey.So(model.SixtyRating(5.4), convey.ShouldEqual, 8.0)
			convey.So(model.SixtyRating(6.0), convey.ShouldEqual, 8.0)
		})

		convey.Convey("And slow times floor at the bottom", func() {
			convey.So(model.SixtyRating(8.0), convey.ShouldEqual, 2.0)
			convey.So(model.SixtyRating(9.5), convey.ShouldEqual, 2.0)
		})

		convey.Convey("And times in between are linear", func() {
			convey.So(model.SixtyRating(7.0), convey.ShouldEqual, 5.0)
			convey.So(model.SixtyRating(6.8), convey.ShouldAlmostEqual, 5.6, 1e-9)
		})

		convey.Convey("When building a speed evaluation", func() {
			ev, err := model.NewEvaluation("Sam", "Coach", "", model.SpeedForm{SixtyTime: 6.8}, time.Now())
			convey.So(err, convey.ShouldBeNil)
			convey.So(ev.Ratings, convey.ShouldHaveLength, 1)
			convey.So(ev.Ratings[0].Criteria, convey.ShouldEqual, "60 Time")
			convey.So(ev.Ratings[0].Time, convey.ShouldEqual, "6.8s")
			convey.So(ev.AverageScore, convey.ShouldAlmostEqual, 5.6, 1e-9)
		})

		convey.Convey("When the time is outside the form limits", func() {
			err := model.SpeedForm{SixtyTime: 4.2}.Validate()
			convey.So(errors.Is(err, model.ErrInvalidSubmission), convey.ShouldBeTrue)
		})
	})
}

func TestDecodeSubmission(t *testing.T) {
	convey.Convey("Given raw form fields", t, func() {
		fields := model.Fields{"velocity": 68, "mechanics": 6, "control": 4, "sixty_time": 7}

		convey.Convey("When decoding a pitching form", func() {
			sub, err := model.DecodeSubmission(model.Pitching, fields)
			convey.So(err, convey.ShouldBeNil)
			convey.So(sub, convey.ShouldResemble, model.PitchingForm{MPH: 68, Mechanics: 6, Control: 4})
			convey.So(sub.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When decoding a speed form", func() {
			sub, err := model.DecodeSubmission(model.Speed, fields)
			convey.So(err, convey.ShouldBeNil)
			convey.So(sub.Type(), convey.ShouldEqual, model.Speed)
			convey.So(sub.Ratings()[0].Rating, convey.ShouldEqual, 5.0)
		})

		convey.Convey("When required fields are missing", func() {
			sub, err := model.DecodeSubmission(model.Outfield, model.Fields{"mechanics": 5})
			convey.So(err, convey.ShouldBeNil)
			convey.So(errors.Is(sub.Validate(), model.ErrInvalidSubmission), convey.ShouldBeTrue)
		})

		convey.Convey("When the type is unknown", func() {
			_, err := model.DecodeSubmission("bowling", fields)
			convey.So(errors.Is(err, model.ErrUnknownType), convey.ShouldBeTrue)
		})

		convey.Convey("Then every known type decodes", func() {
			for _, typ := range model.Types() {
				sub, err := model.DecodeSubmission(typ, fields)
				convey.So(err, convey.ShouldBeNil)
				convey.So(sub.Type(), convey.ShouldEqual, typ)
				convey.So(sub.Ratings(), convey.ShouldHaveLength, len(model.Criteria(typ)))
			}
		})
	})
}
