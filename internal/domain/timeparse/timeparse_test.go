package timeparse_test

import (
	"testing"

	"github.com/okian/carelog/internal/domain/timeparse"
	"github.com/smartystreets/goconvey/convey"
)

func TestClockMinutes(t *testing.T) {
	convey.Convey("Given single clock tokens", t, func() {
		convey.Convey("When the token is 24-hour with a colon", func() {
			v, ok := timeparse.ClockMinutes("23:45")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 1425)
		})

		convey.Convey("When the token uses a dot separator", func() {
			v, ok := timeparse.ClockMinutes("7.30")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 450)
		})

		convey.Convey("When the token carries am/pm", func() {
			pm, ok := timeparse.ClockMinutes("6pm")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(pm, convey.ShouldEqual, 1080)

			withMin, ok := timeparse.ClockMinutes("7:15 pm")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(withMin, convey.ShouldEqual, 1155)
		})

		convey.Convey("When the hour is 12 with a meridiem", func() {
			midnight, _ := timeparse.ClockMinutes("12am")
			noon, _ := timeparse.ClockMinutes("12pm")
			convey.So(midnight, convey.ShouldEqual, 0)
			convey.So(noon, convey.ShouldEqual, 720)
		})

		convey.Convey("When the token is a bare hour", func() {
			v, ok := timeparse.ClockMinutes("9")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 540)
		})

		convey.Convey("When the numbers overflow", func() {
			_, okHour := timeparse.ClockMinutes("25:10")
			_, okMin := timeparse.ClockMinutes("10:75")
			_, okEmpty := timeparse.ClockMinutes("")
			convey.So(okHour, convey.ShouldBeFalse)
			convey.So(okMin, convey.ShouldBeFalse)
			convey.So(okEmpty, convey.ShouldBeFalse)
		})
	})
}

func TestParseRange(t *testing.T) {
	convey.Convey("Given text with clock ranges", t, func() {
		convey.Convey("When the range crosses midnight", func() {
			r, ok := timeparse.ParseRange("garmin sleep last night 23:45-06:30 (tst 6h 45m)")

			convey.Convey("Then the duration wraps by one day", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(r.Start, convey.ShouldEqual, 1425)
				convey.So(r.End, convey.ShouldEqual, 390)
				convey.So(r.Duration, convey.ShouldEqual, 405)
			})
		})

		convey.Convey("When the range uses the word to with meridiems", func() {
			r, ok := timeparse.ParseRange("6pm to 7:15pm")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r.Duration, convey.ShouldEqual, 75)
		})

		convey.Convey("When the range uses an en dash", func() {
			r, ok := timeparse.ParseRange("sleep 00:15–06:45")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r.Duration, convey.ShouldEqual, 390)
		})

		convey.Convey("When the first candidate overflows", func() {
			r, ok := timeparse.ParseRange("30-40 mins walk, then 18:00-19:00 rest")

			convey.Convey("Then the next candidate is used", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(r.Duration, convey.ShouldEqual, 60)
			})
		})

		convey.Convey("When start equals end", func() {
			r, ok := timeparse.ParseRange("07:00-07:00")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r.Duration, convey.ShouldEqual, timeparse.MinutesPerDay)
		})

		convey.Convey("When there is no range", func() {
			_, ok := timeparse.ParseRange("no times here")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestDuration(t *testing.T) {
	convey.Convey("Given explicit durations", t, func() {
		convey.Convey("When hours and minutes are quoted", func() {
			v, ok := timeparse.Duration("6h 45m")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 405)
		})

		convey.Convey("When a fractional hour is quoted", func() {
			v, ok := timeparse.Duration("1.5h")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 90)
		})

		convey.Convey("When only minutes are quoted", func() {
			v, ok := timeparse.Duration("40m")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 40)
		})

		convey.Convey("When hour+minute and simpler forms both appear", func() {
			v, ok := timeparse.Duration("1h 30m run")

			convey.Convey("Then the hour+minute pattern wins", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, 90)
			})
		})

		convey.Convey("When several minute mentions appear", func() {
			v, _ := timeparse.Duration("40 min treadmill + 20 min strength")

			convey.Convey("Then only the first is used", func() {
				convey.So(v, convey.ShouldEqual, 40)
			})
		})

		convey.Convey("When the hour count does not fit in an int", func() {
			v, ok := timeparse.Duration("200000000000000000000h")

			convey.Convey("Then the minutes are capped instead of wrapping negative", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, timeparse.MaxMinutes)
			})
		})

		convey.Convey("When nothing matches", func() {
			_, ok := timeparse.Duration("felt great today")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestStrategies(t *testing.T) {
	convey.Convey("Given composed strategies", t, func() {
		convey.Convey("When an explicit duration is present alongside a range", func() {
			v, ok := timeparse.DurationThenRange("sleep 00:15-06:45 (~6h30m)")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 390)
		})

		convey.Convey("When only a range is present", func() {
			v, ok := timeparse.DurationThenRange("gym 18:00-19:15")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 75)
		})

		convey.Convey("When a strategy returns zero", func() {
			s := timeparse.FirstOf(timeparse.NonZero(timeparse.MinuteOnly), timeparse.RangeMinutes)
			v, ok := s("0 min warmup 10:00-10:30")

			convey.Convey("Then NonZero lets the next strategy run", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When a loose hours mention is read", func() {
			v, ok := timeparse.LooseHours("about 7.5hours")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, 450)
		})

		convey.Convey("When a loose hours mention is huge", func() {
			v, ok := timeparse.LooseHours("about 200000000000000000000 hours")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(v, convey.ShouldEqual, timeparse.MaxMinutes)
		})
	})
}

func TestFormatClock(t *testing.T) {
	convey.Convey("Given minute-of-day values", t, func() {
		convey.So(timeparse.FormatClock(0), convey.ShouldEqual, "00:00")
		convey.So(timeparse.FormatClock(1425), convey.ShouldEqual, "23:45")
		convey.So(timeparse.FormatClock(390), convey.ShouldEqual, "06:30")
		convey.So(timeparse.FormatClock(1830), convey.ShouldEqual, "06:30")
	})
}
