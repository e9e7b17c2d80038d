package biomarker

import (
	"sort"

	"github.com/okian/carelog/internal/domain/model"
)

// Merge unions lab readings, sleep records (in hours) and activity records
// (in minutes) into one series ordered by timestamp. Ties keep input order:
// labs, then sleep, then activity. Nothing is deduplicated.
func Merge(labs []model.LabReading, sleep []model.SleepRecord, activity []model.ActivityRecord) []model.BiomarkerEntry {
	out := make([]model.BiomarkerEntry, 0, len(labs)+len(sleep)+len(activity))
	for _, l := range labs {
		out = append(out, model.BiomarkerEntry{Timestamp: l.Timestamp, Marker: string(l.Marker), Value: l.Value})
	}
	for _, s := range sleep {
		out = append(out, model.BiomarkerEntry{
			Timestamp: s.Timestamp,
			Marker:    model.SeriesSleepHours,
			Value:     Round(float64(s.Minutes)/60, 2),
		})
	}
	for _, a := range activity {
		out = append(out, model.BiomarkerEntry{
			Timestamp: a.LastTimestamp,
			Marker:    model.SeriesExerciseMinutes,
			Value:     float64(a.Minutes),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return model.Before(out[i].Timestamp, out[j].Timestamp)
	})
	return out
}
