package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/okian/carelog/internal/domain/model"
)

// SnapshotRadius bounds the biomarker pivot around the snapshot date.
const SnapshotRadius = 7 * 24 * time.Hour

// ErrInvalidDate is returned when a snapshot date is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid snapshot date")

// DayMessage is one message of the snapshot day.
type DayMessage struct {
	Time   string
	Sender string
	Role   model.Role
	Text   string
}

// PivotRow holds the last value per marker for one date.
type PivotRow struct {
	Date   string
	Values map[string]float64
}

// DaySnapshot is the view of a single calendar date.
type DaySnapshot struct {
	Date       string
	Messages   []DayMessage
	Biomarkers []PivotRow
	Sleep      *model.SleepRecord // latest on or before Date
	Activity   *model.ActivityRecord
}

// Snapshot builds the view of date (YYYY-MM-DD) from a finalized result.
func (p *Pipeline) Snapshot(msgs []model.Message, res Result, date string) (DaySnapshot, error) {
	day, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return DaySnapshot{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	snap := DaySnapshot{Date: date, Messages: []DayMessage{}, Biomarkers: []PivotRow{}}

	for _, m := range model.SortMessages(msgs) {
		if m.Date() != date {
			continue
		}
		who := p.resolver.Resolve(m.SenderRaw, m.RoleHint)
		snap.Messages = append(snap.Messages, DayMessage{
			Time:   model.ClockOf(m.Timestamp),
			Sender: who.Name,
			Role:   who.Role,
			Text:   m.Text,
		})
	}

	from := day.Add(-SnapshotRadius).Format(model.DateLayout)
	to := day.Add(SnapshotRadius).Format(model.DateLayout)
	rows := make(map[string]map[string]float64)
	for _, e := range res.Biomarkers {
		d := model.DateOf(e.Timestamp)
		if d == "" || d < from || d > to {
			continue
		}
		if rows[d] == nil {
			rows[d] = make(map[string]float64)
		}
		rows[d][e.Marker] = e.Value
	}
	for d, values := range rows {
		snap.Biomarkers = append(snap.Biomarkers, PivotRow{Date: d, Values: values})
	}
	sort.Slice(snap.Biomarkers, func(i, j int) bool {
		return snap.Biomarkers[i].Date < snap.Biomarkers[j].Date
	})

	for i := range res.Sleep {
		if res.Sleep[i].Date <= date {
			s := res.Sleep[i]
			snap.Sleep = &s
		}
	}
	for i := range res.Activity {
		if res.Activity[i].Date == date {
			a := res.Activity[i]
			snap.Activity = &a
			break
		}
	}
	return snap, nil
}
