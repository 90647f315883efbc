package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the default initialisation", t, func() {
		So(Init(), ShouldBeNil)
		So(Get(), ShouldNotBeNil)
		So(Sync(), ShouldBeNil)
	})

	Convey("Given an unknown format", t, func() {
		err := InitWithOptions(WithFormat("xml"))
		So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(WithFormat("JSON"), WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Get().Info(ctx, "stored evaluation", String("player", "Alex"), Int64("id", 7), Float64("avg", 5.5))

			Convey("Then the record carries the fields and a source", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "stored evaluation")
				So(rec["player"], ShouldEqual, "Alex")
				So(rec["id"], ShouldEqual, 7.0)
				So(rec["avg"], ShouldEqual, 5.5)
				So(rec["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When using a named logger", func() {
			Named("app").Named("snapshot").Warn(ctx, "rebuild slow")

			Convey("Then the component is the dotted name", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["component"], ShouldEqual, "app.snapshot")
				So(rec["level"], ShouldEqual, "WARN")
			})
		})

		Convey("When the level is raised", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Debug(ctx, "hidden")

			Convey("Then lower records are dropped", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(WithWriter(&buf)), ShouldBeNil)

		for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}

		err := SetLevelString("loud")
		So(errors.Is(err, ErrUnknownLevel), ShouldBeTrue)

		So(SetLevelString("debug"), ShouldBeNil)
		Get().Debug(context.Background(), "visible", Error(errors.New("boom")))
		So(strings.Contains(buf.String(), "error=boom"), ShouldBeTrue)
	})
}
