package pipeline_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/carelog/internal/domain/identity"
	"github.com/okian/carelog/internal/domain/model"
	"github.com/okian/carelog/internal/domain/pipeline"
	"github.com/okian/carelog/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.August, day, hour, minute, 0, 0, time.UTC)
}

func transcript() []model.Message {
	return []model.Message{
		{Timestamp: at(15, 9, 2), SenderRaw: "Rohan (Member)", Text: "Hi Ruby, just signed up."},
		{Timestamp: at(19, 9, 12), SenderRaw: "Ruby (Concierge)", Text: "Your results are in. LDL 165, hs-CRP 3.1"},
		{Timestamp: at(20, 14, 30), SenderRaw: "Dr. Warren (Physician)", Text: "Start Mediterranean diet because LDL is high"},
		{Timestamp: at(20, 22, 0), SenderRaw: "Advik (Performance Scientist)", Text: "Garmin sleep 23:45-06:30"},
		{Timestamp: at(21, 7, 0), SenderRaw: "Rohan (Member)", Text: "Morning run 40m"},
		{SenderRaw: "Rohan (Member)", Text: "weekly update soon"},
	}
}

func weights() map[string]float64 {
	return map[string]float64{"Physician": 12, "Concierge": 6, "Member": 0}
}

func TestRun(t *testing.T) {
	Convey("Given a pipeline over a short transcript", t, func() {
		p := pipeline.New(identity.NewRules(), pipeline.WithWeights(weights(), 5))
		res := p.Run(transcript(), nil)

		Convey("Then every table is populated", func() {
			So(res.Labs, ShouldHaveLength, 2)
			So(res.Sleep, ShouldHaveLength, 1)
			So(res.Sleep[0].Minutes, ShouldEqual, 405)
			So(res.Activity, ShouldHaveLength, 1)
			So(res.Decisions, ShouldHaveLength, 1)
			So(res.Biomarkers, ShouldHaveLength, 4)
			So(res.Events, ShouldNotBeEmpty)
			So(res.Effort, ShouldNotBeEmpty)
		})

		Convey("Then the summary reflects the stream", func() {
			So(res.Summary, ShouldResemble, pipeline.Summary{
				Messages:    6,
				Untimed:     1,
				JourneyDays: 6,
				Decisions:   1,
				LabMarkers:  2,
				Events:      len(res.Events),
			})
		})

		Convey("Then the effort report excludes members", func() {
			for _, r := range res.EffortReport {
				So(r.Role, ShouldNotEqual, model.RoleMember)
			}
			So(res.EffortReport, ShouldNotBeEmpty)
		})

		Convey("When the pipeline is run again", func() {
			again := p.Run(transcript(), nil)

			Convey("Then the output is byte-identical", func() {
				a, err := json.Marshal(types.FromResult(res))
				So(err, ShouldBeNil)
				b, err := json.Marshal(types.FromResult(again))
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, string(a))
			})
		})

		Convey("When a weight override is supplied", func() {
			over := p.Run(transcript(), map[string]float64{"Physician": 60})

			Convey("Then only that run changes", func() {
				var phys float64
				for _, r := range over.Effort {
					if r.Role == model.RolePhysician {
						phys = r.Minutes
					}
				}
				So(phys, ShouldEqual, 60)
				So(p.Weights(nil).For(model.RolePhysician), ShouldEqual, 12)
			})
		})
	})

	Convey("Given an empty stream", t, func() {
		res := pipeline.New(identity.NewRules()).Run(nil, nil)

		Convey("Then every table is empty but present", func() {
			So(res.Events, ShouldNotBeNil)
			So(res.Events, ShouldBeEmpty)
			So(res.Labs, ShouldBeEmpty)
			So(res.Sleep, ShouldBeEmpty)
			So(res.Activity, ShouldBeEmpty)
			So(res.Biomarkers, ShouldBeEmpty)
			So(res.Decisions, ShouldBeEmpty)
			So(res.Effort, ShouldBeEmpty)
			So(res.EffortReport, ShouldBeEmpty)
			So(res.Summary, ShouldResemble, pipeline.Summary{})
		})
	})
}

func TestStages(t *testing.T) {
	Convey("Given the stage table", t, func() {
		stages := pipeline.New(identity.NewRules()).Stages(nil)

		Convey("Then it has one stage per extractor", func() {
			names := make([]string, 0, len(stages))
			for _, s := range stages {
				names = append(names, s.Name)
			}
			So(names, ShouldResemble, []string{
				pipeline.StageEvents, pipeline.StageLabs, pipeline.StageSleep,
				pipeline.StageActivity, pipeline.StageDecisions, pipeline.StageEffort,
			})
		})

		Convey("When stages run in reverse order", func() {
			msgs := transcript()
			var res pipeline.Result
			for i := len(stages) - 1; i >= 0; i-- {
				stages[i].Run(msgs, &res)
			}
			pipeline.Finalize(msgs, &res)

			Convey("Then the result matches a sequential run", func() {
				So(res, ShouldResemble, pipeline.New(identity.NewRules()).Run(msgs, nil))
			})
		})
	})
}

func TestSnapshot(t *testing.T) {
	Convey("Given a finalized run", t, func() {
		p := pipeline.New(identity.NewRules())
		msgs := transcript()
		res := p.Run(msgs, nil)

		Convey("When taking a snapshot of a day", func() {
			snap, err := p.Snapshot(msgs, res, "2025-08-20")

			Convey("Then it gathers that day's view", func() {
				So(err, ShouldBeNil)
				So(snap.Messages, ShouldHaveLength, 2)
				So(snap.Messages[0].Time, ShouldEqual, "14:30")
				So(snap.Messages[0].Sender, ShouldEqual, "Warren")
				So(snap.Messages[0].Role, ShouldEqual, model.RolePhysician)
				So(snap.Biomarkers, ShouldHaveLength, 3)
				So(snap.Biomarkers[0].Date, ShouldEqual, "2025-08-19")
				So(snap.Biomarkers[0].Values["LDL"], ShouldEqual, 165)
				So(snap.Biomarkers[1].Values[model.SeriesSleepHours], ShouldEqual, 6.75)
				So(snap.Sleep, ShouldNotBeNil)
				So(snap.Sleep.Date, ShouldEqual, "2025-08-20")
				So(snap.Activity, ShouldBeNil)
			})
		})

		Convey("When the day is far from any reading", func() {
			snap, err := p.Snapshot(msgs, res, "2025-10-01")
			So(err, ShouldBeNil)
			So(snap.Messages, ShouldBeEmpty)
			So(snap.Biomarkers, ShouldBeEmpty)
			So(snap.Sleep, ShouldNotBeNil)
		})

		Convey("When the date is malformed", func() {
			_, err := p.Snapshot(msgs, res, "20/08/2025")
			So(errors.Is(err, pipeline.ErrInvalidDate), ShouldBeTrue)
		})
	})
}
