package classify_test

import (
	"testing"
	"time"

	"github.com/okian/carelog/internal/domain/classify"
	"github.com/okian/carelog/internal/domain/identity"
	"github.com/okian/carelog/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func at(day, hour int) time.Time {
	return time.Date(2025, time.August, day, hour, 0, 0, 0, time.UTC)
}

func types(events []model.Event) []model.EventType {
	out := make([]model.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestClassifyMessage(t *testing.T) {
	Convey("Given a classifier", t, func() {
		c := classify.New(identity.NewRules())

		Convey("When a message mentions a trip", func() {
			got := c.ClassifyMessage(model.Message{Timestamp: at(20, 9), SenderRaw: "Rohan (Member)", Text: "Flying to London on Monday"})

			Convey("Then a travel event is emitted with the resolved sender", func() {
				So(types(got), ShouldResemble, []model.EventType{model.EventTravel})
				So(got[0].Title, ShouldEqual, classify.TitleTravel)
				So(got[0].Sender, ShouldEqual, "Rohan")
				So(got[0].Role, ShouldEqual, model.RoleMember)
				So(got[0].Date, ShouldEqual, "2025-08-20")
				So(got[0].Detail, ShouldEqual, "Flying to London on Monday")
			})
		})

		Convey("When the trip is to the home base", func() {
			got := c.ClassifyMessage(model.Message{Text: "Back in Singapore from London"})
			So(got, ShouldBeEmpty)
		})

		Convey("When a message triggers several rules", func() {
			got := c.ClassifyMessage(model.Message{
				Timestamp: at(20, 9),
				SenderRaw: "Dr. Warren",
				Text:      "Book a lipid panel and start the new meal plan",
			})

			Convey("Then one event per rule is emitted", func() {
				So(types(got), ShouldResemble, []model.EventType{model.EventDiagnostics, model.EventIntervention})
				So(got[0].Role, ShouldEqual, model.RolePhysician)
			})
		})

		Convey("When a sleep duration is short", func() {
			got := c.ClassifyMessage(model.Message{Timestamp: at(20, 7), SenderRaw: "Advik", Text: "Garmin sleep 2h"})

			Convey("Then it is floored in the detail", func() {
				So(types(got), ShouldResemble, []model.EventType{model.EventBiomarker})
				So(got[0].Title, ShouldEqual, classify.TitleSleep)
				So(got[0].Detail, ShouldEqual, "Sleep log (normalized): 180 min | raw: Garmin sleep 2h")
			})
		})

		Convey("When an exercise duration overflows", func() {
			got := c.ClassifyMessage(model.Message{Timestamp: at(20, 7), SenderRaw: "Rohan", Text: "Long walk 240 minutes"})

			// Documented quirk: overflow minutes become 45 rather than being capped.
			Convey("Then the detail carries the fallback value", func() {
				So(types(got), ShouldResemble, []model.EventType{model.EventBiomarker})
				So(got[0].Title, ShouldEqual, classify.TitleExercise)
				So(got[0].Detail, ShouldEqual, "Exercise log (normalized): 45 min | raw: Long walk 240 minutes")
			})
		})

		Convey("When an exercise hour count does not fit in an int", func() {
			got := c.ClassifyMessage(model.Message{Timestamp: at(20, 7), SenderRaw: "Rohan", Text: "Run 200000000000000000000h"})

			Convey("Then the detail carries the fallback value", func() {
				So(got, ShouldHaveLength, 1)
				So(got[0].Detail, ShouldEqual, "Exercise log (normalized): 45 min | raw: Run 200000000000000000000h")
			})
		})

		Convey("When nothing matches", func() {
			So(c.ClassifyMessage(model.Message{Text: "Thanks!"}), ShouldBeEmpty)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given messages out of order", t, func() {
		c := classify.New(identity.NewRules())
		msgs := []model.Message{
			{Text: "Weekly summary attached"},
			{Timestamp: at(22, 9), SenderRaw: "Ruby", Text: "Travel to Tokyo next week"},
			{Timestamp: at(21, 9), SenderRaw: "Ruby", Text: "Scan booked"},
		}
		got := c.Classify(msgs)

		Convey("Then events are ordered by timestamp with untimed last", func() {
			So(types(got), ShouldResemble, []model.EventType{
				model.EventDiagnostics, model.EventTravel, model.EventSummary,
			})
			So(got[2].Timestamp.IsZero(), ShouldBeTrue)
			So(got[2].Sender, ShouldEqual, identity.UnknownName)
		})
	})

	Convey("Given no messages", t, func() {
		So(classify.New(identity.NewRules()).Classify(nil), ShouldBeEmpty)
	})
}

func TestIsSummary(t *testing.T) {
	Convey("Given summary phrasings", t, func() {
		for _, s := range []string{
			"weekly summary for rohan",
			"here is the week summary",
			"weekly progress summary",
			"weekly update: all good",
			"summary of this week",
			"this week's report",
			"weekly notes",
		} {
			So(classify.IsSummary(s), ShouldBeTrue)
		}
		So(classify.IsSummary("see you next week"), ShouldBeFalse)
		So(classify.IsSummary(""), ShouldBeFalse)
	})
}

func TestIsTravel(t *testing.T) {
	Convey("Given travel mentions", t, func() {
		So(classify.IsTravel("travel next week"), ShouldBeTrue)
		So(classify.IsTravel("landing in new york"), ShouldBeTrue)
		So(classify.IsTravel("back home in singapore after travel"), ShouldBeFalse)
		So(classify.IsTravel("staying home"), ShouldBeFalse)
	})
}
