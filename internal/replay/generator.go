package replay

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/okian/carelog/internal/adapters/stream"
)

const timestampLayout = "2006-01-02 15:04"

// Journey cadence in days.
const (
	labEvery     = 14
	travelEvery  = 21
	summaryEvery = 7
	workoutEvery = 2
)

var (
	journeyStart = time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)

	workouts = []string{"Morning run %d min", "Strength session %d min done", "Zone 2 cycle %d min", "Yoga %d min before work"}
	cities   = []string{"London", "Tokyo", "Dubai", "New York", "Seoul"}
	plans    = []string{
		"Start omega-3 supplement because LDL is still high",
		"Increase zone 2 sessions to 3 per week to lower ApoB",
		"Switch to Mediterranean meal plan due to CRP trend",
		"Schedule repeat lipid panel in 6 weeks",
	}
)

// Generate builds a deterministic conversation covering days days. The same
// seed always yields the same records.
func Generate(days int, seed uint64) []stream.Record {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var out []stream.Record

	add := func(day time.Time, at time.Duration, sender, role, text string) {
		out = append(out, stream.Record{
			Timestamp: day.Add(at).Format(timestampLayout),
			Sender:    sender,
			Role:      role,
			Text:      text,
		})
	}

	for d := range days {
		day := journeyStart.AddDate(0, 0, d)

		h, m := 5+rng.IntN(4), rng.IntN(60)
		add(day, 7*time.Hour+time.Duration(rng.IntN(50))*time.Minute,
			"Rohan", "Member", fmt.Sprintf("Garmin shows I slept %dh %dm last night", h, m))

		if d%workoutEvery == 0 {
			w := workouts[rng.IntN(len(workouts))]
			add(day, 18*time.Hour, "Rohan", "Member", fmt.Sprintf(w, 20+rng.IntN(50)))
		}

		if d%labEvery == labEvery-1 {
			add(day, 10*time.Hour, "Ruby", "Concierge", fmt.Sprintf(
				"Your blood panel results are in: LDL %d, HDL %d, hs-CRP %.1f, ApoB %d",
				120+rng.IntN(60), 40+rng.IntN(20), 0.5+float64(rng.IntN(30))/10, 80+rng.IntN(40)))
			add(day, 15*time.Hour, "Dr. Warren", "Physician", plans[rng.IntN(len(plans))])
		}

		if d%travelEvery == travelEvery-1 {
			city := cities[rng.IntN(len(cities))]
			add(day, 11*time.Hour, "Ruby", "Concierge",
				fmt.Sprintf("Flight to %s booked, we will adjust your sleep around jet lag", city))
		}

		if d%summaryEvery == summaryEvery-1 {
			add(day, 17*time.Hour, "Neel", "Concierge Lead", "Weekly summary: adherence is good, keep the routine")
		}

		if rng.IntN(4) == 0 {
			add(day, 13*time.Hour, "Carla", "Nutritionist", "Meal plan update: reduce refined carbs at dinner")
		}
	}
	return out
}
