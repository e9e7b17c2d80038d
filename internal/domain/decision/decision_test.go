package decision_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/okian/carelog/internal/domain/decision"
	"github.com/okian/carelog/internal/domain/identity"
	"github.com/okian/carelog/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.August, day, hour, minute, 0, 0, time.UTC)
}

func TestExtract(t *testing.T) {
	Convey("Given a decision with evidence around it", t, func() {
		e := decision.New(identity.NewRules())
		msgs := []model.Message{
			{Timestamp: at(20, 14, 30), SenderRaw: "Dr. Warren", Text: "Start Mediterranean diet"},
			{Timestamp: at(16, 14, 30), SenderRaw: "Lab", Text: "LDL 160 result"},
			{Timestamp: at(18, 9, 12), SenderRaw: "Ruby", Text: "LDL is borderline high"},
			{Timestamp: at(17, 14, 30), SenderRaw: "Ruby", Text: "CRP raised"},
			{Timestamp: at(21, 8, 0), SenderRaw: "Rohan", Text: "sleep poor"},
			{SenderRaw: "Rohan", Text: "because ldl"},
		}
		got := e.Extract(msgs)

		Convey("Then one decision is found", func() {
			So(got, ShouldHaveLength, 1)
			d := got[0]
			So(d.DecisionText, ShouldEqual, "Start Mediterranean diet")
			So(d.By, ShouldEqual, "Warren")
			So(d.Role, ShouldEqual, model.RolePhysician)
			So(d.Date, ShouldEqual, "2025-08-20")

			Convey("And only evidence inside the three-day window is kept, oldest first", func() {
				So(d.Rationale, ShouldResemble, []string{
					"14:30 Ruby: CRP raised",
					"09:12 Ruby: LDL is borderline high",
				})
			})
		})
	})

	Convey("Given more evidence than the snippet limit", t, func() {
		var msgs []model.Message
		for i := 0; i < 8; i++ {
			msgs = append(msgs, model.Message{
				Timestamp: at(20, 8, i),
				SenderRaw: "Advik",
				Text:      fmt.Sprintf("HRV %d", 50+i),
			})
		}
		msgs = append(msgs, model.Message{Timestamp: at(20, 12, 0), SenderRaw: "Carla", Text: "Add omega-3"})

		Convey("When using the default limit", func() {
			got := decision.New(identity.NewRules()).Extract(msgs)
			So(got, ShouldHaveLength, 1)
			So(got[0].Rationale, ShouldHaveLength, decision.DefaultMaxRationale)
			So(got[0].Rationale[0], ShouldEqual, "08:00 Advik: HRV 50")
		})

		Convey("When using a custom limit and window", func() {
			got := decision.New(identity.NewRules(),
				decision.WithMaxRationale(2),
				decision.WithWindow(time.Hour*4-time.Minute*5),
			).Extract(msgs)
			So(got[0].Rationale, ShouldResemble, []string{"08:05 Advik: HRV 55", "08:06 Advik: HRV 56"})
		})
	})

	Convey("Given an untimed decision message", t, func() {
		got := decision.New(identity.NewRules()).Extract([]model.Message{{Text: "Start statin"}})
		So(got, ShouldBeEmpty)
	})

	Convey("Given a decision with no evidence", t, func() {
		got := decision.New(identity.NewRules()).Extract([]model.Message{{Timestamp: at(20, 9, 0), Text: "Begin now"}})
		So(got, ShouldHaveLength, 1)
		So(got[0].Rationale, ShouldNotBeNil)
		So(got[0].Rationale, ShouldBeEmpty)
		So(got[0].By, ShouldEqual, identity.UnknownName)
	})
}
